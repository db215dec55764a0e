// Package interfaces holds compile-time checks that the store adapters satisfy
// the interfaces the services consume.
package interfaces

import (
	"nerdfootball/database"
	"nerdfootball/handlers"
	"nerdfootball/services"
)

// Interface compliance checks - these will fail to compile if an adapter drifts
var (
	// MongoDB repositories
	_ services.GameReader           = (*database.MongoGameRepository)(nil)
	_ services.ConfidencePickReader = (*database.MongoWeeklyPicksRepository)(nil)
	_ services.SurvivorPickReader   = (*database.MongoSurvivorPicksRepository)(nil)
	_ services.WeeklyScoreStore     = (*database.MongoWeeklyScoreRepository)(nil)
	_ services.SeasonStandingStore  = (*database.MongoSeasonStandingRepository)(nil)
	_ services.SurvivorStatusStore  = (*database.MongoSurvivorStatusRepository)(nil)

	// Legacy hosted store, usable as a read source
	_ services.GameReader           = (*database.FirestoreLegacySource)(nil)
	_ services.ConfidencePickReader = (*database.FirestoreLegacySource)(nil)
	_ services.SurvivorPickReader   = (*database.FirestoreLegacySource)(nil)
	_ services.LegacySource         = (*database.FirestoreLegacySource)(nil)

	// Import targets
	_ services.GameWriter           = (*database.MongoGameRepository)(nil)
	_ services.ConfidencePickWriter = (*database.MongoWeeklyPicksRepository)(nil)
	_ services.SurvivorPickWriter   = (*database.MongoSurvivorPicksRepository)(nil)

	// Cache and read side
	_ services.StandingsCache   = (*services.MemoryStandingsCache)(nil)
	_ services.CacheInvalidator = (*services.MemoryStandingsCache)(nil)
	_ handlers.StandingsReader  = (*services.StandingsService)(nil)
	_ handlers.Coordinator      = (*services.Coordinator)(nil)
	_ handlers.HealthChecker    = (*database.MongoDB)(nil)
	_ services.Recomputer       = (*services.Coordinator)(nil)
)
