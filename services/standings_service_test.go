package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"nerdfootball/models"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStandingsCache(t *testing.T) {
	Convey("Given a cache with a five minute TTL", t, func() {
		now := time.Date(2025, time.October, 1, 12, 0, 0, 0, time.UTC)
		cache := NewMemoryStandingsCache(5 * time.Minute)
		cache.now = func() time.Time { return now }

		cache.Set(StandingsKey(2025), "leaderboard")

		Convey("Then a fresh entry is returned", func() {
			v, ok := cache.Get(StandingsKey(2025))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "leaderboard")
		})

		Convey("Then an expired entry is a miss and is dropped", func() {
			now = now.Add(5 * time.Minute)
			_, ok := cache.Get(StandingsKey(2025))
			So(ok, ShouldBeFalse)
			So(cache.Len(), ShouldEqual, 0)
		})

		Convey("Then invalidation removes only the named keys", func() {
			cache.Set(SurvivorKey(2025), "board")
			cache.Invalidate(StandingsKey(2025), WeekScoresKey(2025, 3))
			_, ok := cache.Get(StandingsKey(2025))
			So(ok, ShouldBeFalse)
			_, ok = cache.Get(SurvivorKey(2025))
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a load that started before an invalidation", t, func() {
		cache := NewMemoryStandingsCache(time.Minute)
		key := StandingsKey(2025)

		_, ok := cache.Get(key)
		So(ok, ShouldBeFalse)
		generation := cache.Generation(key)

		cache.Invalidate(key)

		Convey("Then the late write is dropped", func() {
			So(cache.SetIfCurrent(key, "stale", generation), ShouldBeFalse)
			_, ok := cache.Get(key)
			So(ok, ShouldBeFalse)
		})

		Convey("Then a load started after the invalidation is kept", func() {
			So(cache.SetIfCurrent(key, "fresh", cache.Generation(key)), ShouldBeTrue)
			v, ok := cache.Get(key)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "fresh")
		})
	})

	Convey("Given the cache keys", t, func() {
		So(StandingsKey(2025), ShouldEqual, "standings:2025")
		So(WeekScoresKey(2025, 3), ShouldEqual, "scores:2025:3")
		So(SurvivorKey(2025), ShouldEqual, "survivor:2025")
	})
}

// recomputeDuringRead simulates a week recompute landing between the
// service's store read and its cache write.
type recomputeDuringRead struct {
	*memoryStore
	cache  *MemoryStandingsCache
	update func()
}

func (r *recomputeDuringRead) GetSeasonWeeklyScores(ctx context.Context, season int) ([]models.WeeklyScoreRecord, error) {
	records, err := r.memoryStore.GetSeasonWeeklyScores(ctx, season)
	if r.update != nil {
		r.update()
		r.update = nil
		r.cache.Invalidate(StandingsKey(season))
	}
	return records, err
}

func TestStandingsService(t *testing.T) {
	Convey("Given stored weekly records and a stale standings projection", t, func() {
		store := newMemoryStore()
		store.weekly[weeklyKey("alice", 1)] = weekly("alice", 1, 40, 5, 8)
		store.weekly[weeklyKey("bob", 1)] = weekly("bob", 1, 55, 6, 8)
		store.standings["alice"] = models.SeasonStanding{UserID: "alice", Season: 2025, Rank: 1, TotalPoints: 999}

		cache := NewMemoryStandingsCache(time.Minute)
		service := NewStandingsService(store, store, cache)
		ctx := context.Background()

		Convey("When standings are read on a cold cache", func() {
			standings, err := service.SeasonStandings(ctx, 2025)

			Convey("Then they are regenerated from the weekly records", func() {
				So(err, ShouldBeNil)
				So(len(standings), ShouldEqual, 2)
				So(standings[0].UserID, ShouldEqual, "bob")
				So(standings[0].TotalPoints, ShouldEqual, 55)
				So(standings[1].TotalPoints, ShouldEqual, 40)
			})

			Convey("Then the next read is served from the cache", func() {
				store.failReads = true
				again, err := service.SeasonStandings(ctx, 2025)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, standings)
			})

			Convey("Then invalidation forces a fresh read", func() {
				store.weekly[weeklyKey("alice", 2)] = weekly("alice", 2, 30, 4, 8)
				cache.Invalidate(StandingsKey(2025))
				fresh, err := service.SeasonStandings(ctx, 2025)
				So(err, ShouldBeNil)
				So(fresh[0].UserID, ShouldEqual, "alice")
				So(fresh[0].TotalPoints, ShouldEqual, 70)
			})
		})

		Convey("When the store is down on a cold cache", func() {
			store.failReads = true
			_, err := service.SeasonStandings(ctx, 2025)
			So(errors.Is(err, ErrStoreUnavailable), ShouldBeTrue)
		})

		Convey("When week scores are read", func() {
			records, err := service.WeekScores(ctx, 2025, 1)
			So(err, ShouldBeNil)
			So(records[0].UserID, ShouldEqual, "bob")
			So(records[1].UserID, ShouldEqual, "alice")
		})

		Convey("When the survivor board is read", func() {
			store.survivor["dead"] = models.SurvivorEntry{UserID: "dead", Season: 2025, Status: models.SurvivorEliminated, EliminatedWeek: 2}
			store.survivor["live"] = models.SurvivorEntry{UserID: "live", Season: 2025, Status: models.SurvivorAlive}
			board, err := service.SurvivorBoard(ctx, 2025)
			So(err, ShouldBeNil)
			So(board[0].UserID, ShouldEqual, "live")
			So(board[1].UserID, ShouldEqual, "dead")
		})
	})

	Convey("Given a recompute that lands while standings are regenerated", t, func() {
		store := newMemoryStore()
		store.weekly[weeklyKey("alice", 1)] = weekly("alice", 1, 40, 5, 8)
		cache := NewMemoryStandingsCache(time.Minute)
		racing := &recomputeDuringRead{memoryStore: store, cache: cache}
		racing.update = func() {
			store.weekly[weeklyKey("alice", 2)] = weekly("alice", 2, 30, 4, 8)
		}
		service := NewStandingsService(racing, store, cache)
		ctx := context.Background()

		Convey("Then the outdated result is served once but not cached", func() {
			first, err := service.SeasonStandings(ctx, 2025)
			So(err, ShouldBeNil)
			So(first[0].TotalPoints, ShouldEqual, 40)

			second, err := service.SeasonStandings(ctx, 2025)
			So(err, ShouldBeNil)
			So(second[0].TotalPoints, ShouldEqual, 70)
		})
	})
}
