package database

import (
	"context"
	"fmt"
	"time"

	"nerdfootball/logging"
	"nerdfootball/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSeasonStandingRepository persists the season leaderboard projection
type MongoSeasonStandingRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoSeasonStandingRepository(db *MongoDB) *MongoSeasonStandingRepository {
	collection := db.GetCollection(SeasonStandingsCollection)
	logger := logging.WithPrefix("StandingRepo")

	ensureIndexes(collection, logger,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "season", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		mongo.IndexModel{
			Keys: bson.D{{Key: "season", Value: 1}, {Key: "rank", Value: 1}},
		},
	)

	return &MongoSeasonStandingRepository{
		collection: collection,
		logger:     logger,
	}
}

// PutSeasonStanding replaces the (user, season) row in full
func (r *MongoSeasonStandingRepository) PutSeasonStanding(ctx context.Context, standing models.SeasonStanding) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	standing.UpdatedAt = time.Now().UTC()
	filter := bson.M{"user_id": standing.UserID, "season": standing.Season}

	if _, err := r.collection.ReplaceOne(ctx, filter, standing, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to replace season standing for %s: %w", standing.UserID, err)
	}
	return nil
}

// DeleteSeasonStanding removes the row of a user with no weekly records left
func (r *MongoSeasonStandingRepository) DeleteSeasonStanding(ctx context.Context, season int, userID string) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "season": season}); err != nil {
		return fmt.Errorf("failed to delete season standing for %s: %w", userID, err)
	}
	return nil
}

// GetSeasonStandings returns the stored leaderboard ordered by rank
func (r *MongoSeasonStandingRepository) GetSeasonStandings(ctx context.Context, season int) ([]models.SeasonStanding, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"season": season}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find season standings: %w", err)
	}
	defer cursor.Close(ctx)

	standings := []models.SeasonStanding{}
	if err := cursor.All(ctx, &standings); err != nil {
		return nil, fmt.Errorf("failed to decode season standings: %w", err)
	}
	return standings, nil
}
