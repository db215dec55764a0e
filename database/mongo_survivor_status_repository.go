package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nerdfootball/logging"
	"nerdfootball/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSurvivorStatusRepository persists evaluated survivor entries
type MongoSurvivorStatusRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoSurvivorStatusRepository(db *MongoDB) *MongoSurvivorStatusRepository {
	collection := db.GetCollection(SurvivorStatusCollection)
	logger := logging.WithPrefix("SurvivorStatusRepo")

	ensureIndexes(collection, logger,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "season", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)

	return &MongoSurvivorStatusRepository{
		collection: collection,
		logger:     logger,
	}
}

// PutSurvivorStatus replaces the (user, season) entry in full
func (r *MongoSurvivorStatusRepository) PutSurvivorStatus(ctx context.Context, entry models.SurvivorEntry) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	entry.UpdatedAt = time.Now().UTC()
	filter := bson.M{"user_id": entry.UserID, "season": entry.Season}

	if _, err := r.collection.ReplaceOne(ctx, filter, entry, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to replace survivor status for %s: %w", entry.UserID, err)
	}
	return nil
}

// GetSurvivorStatus returns the stored entry, or nil when the user has never been evaluated
func (r *MongoSurvivorStatusRepository) GetSurvivorStatus(ctx context.Context, season int, userID string) (*models.SurvivorEntry, error) {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	var entry models.SurvivorEntry
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "season": season}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find survivor status for %s: %w", userID, err)
	}
	return &entry, nil
}

// GetSeasonSurvivorStatuses returns every entry of the season ordered by user
func (r *MongoSurvivorStatusRepository) GetSeasonSurvivorStatuses(ctx context.Context, season int) ([]models.SurvivorEntry, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"season": season}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find survivor statuses: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.SurvivorEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode survivor statuses: %w", err)
	}
	return entries, nil
}
