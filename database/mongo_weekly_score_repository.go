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

// MongoWeeklyScoreRepository persists derived weekly score records
type MongoWeeklyScoreRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoWeeklyScoreRepository creates a new MongoDB weekly score repository
func NewMongoWeeklyScoreRepository(db *MongoDB) *MongoWeeklyScoreRepository {
	collection := db.GetCollection(WeeklyScoresCollection)
	logger := logging.WithPrefix("WeeklyScoreRepo")

	ensureIndexes(collection, logger,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "season", Value: 1}, {Key: "week", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		mongo.IndexModel{
			Keys: bson.D{{Key: "season", Value: 1}, {Key: "week", Value: 1}},
		},
	)

	return &MongoWeeklyScoreRepository{
		collection: collection,
		logger:     logger,
	}
}

// PutWeeklyScore replaces the (user, season, week) record in full
func (r *MongoWeeklyScoreRepository) PutWeeklyScore(ctx context.Context, record models.WeeklyScoreRecord) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	record.UpdatedAt = time.Now().UTC()
	filter := bson.M{"user_id": record.UserID, "season": record.Season, "week": record.Week}

	if _, err := r.collection.ReplaceOne(ctx, filter, record, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to replace weekly score for %s week %d: %w", record.UserID, record.Week, err)
	}
	return nil
}

// DeleteWeeklyScore removes a record whose user no longer has picks for the week
func (r *MongoWeeklyScoreRepository) DeleteWeeklyScore(ctx context.Context, season, week int, userID string) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "season": season, "week": week}
	if _, err := r.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete weekly score for %s week %d: %w", userID, week, err)
	}
	return nil
}

// GetWeekScores returns every user's record for one week
func (r *MongoWeeklyScoreRepository) GetWeekScores(ctx context.Context, season, week int) ([]models.WeeklyScoreRecord, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "total_points", Value: -1}, {Key: "user_id", Value: 1}})
	return r.find(ctx, bson.M{"season": season, "week": week}, opts)
}

// GetSeasonWeeklyScores returns every record of the season, the input to season aggregation
func (r *MongoWeeklyScoreRepository) GetSeasonWeeklyScores(ctx context.Context, season int) ([]models.WeeklyScoreRecord, error) {
	ctx, cancel := withTimeout(ctx, LongTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "week", Value: 1}})
	return r.find(ctx, bson.M{"season": season}, opts)
}

func (r *MongoWeeklyScoreRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.WeeklyScoreRecord, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find weekly scores: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.WeeklyScoreRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode weekly scores: %w", err)
	}
	return records, nil
}
