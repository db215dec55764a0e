package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nerdfootball/logging"
	"nerdfootball/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSurvivorPicksRepository stores survivor selections, one document per (user, season, week)
type MongoSurvivorPicksRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

type survivorPickDocument struct {
	UserID    string    `bson:"user_id"`
	Season    int       `bson:"season"`
	Week      int       `bson:"week"`
	Team      string    `bson:"team"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewMongoSurvivorPicksRepository(db *MongoDB) *MongoSurvivorPicksRepository {
	collection := db.GetCollection(SurvivorPicksCollection)
	logger := logging.WithPrefix("SurvivorPicksRepo")

	ensureIndexes(collection, logger,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "season", Value: 1}, {Key: "week", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)

	return &MongoSurvivorPicksRepository{
		collection: collection,
		logger:     logger,
	}
}

// GetSurvivorPickHistory returns a user's picks ordered by week
func (r *MongoSurvivorPicksRepository) GetSurvivorPickHistory(ctx context.Context, season int, userID string) ([]models.SurvivorPick, error) {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "week", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"season": season, "user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find survivor picks for %s: %w", userID, err)
	}
	docs, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode survivor picks for %s: %w", userID, err)
	}

	history := make([]models.SurvivorPick, 0, len(docs))
	for _, doc := range docs {
		_, picks, notes := NormalizeSurvivorPicks(doc, userID)
		for _, note := range notes {
			r.logger.Warnf("%s", note)
		}
		history = append(history, picks...)
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].Week < history[j].Week })
	return history, nil
}

// ListSurvivorUsers returns every user with at least one survivor pick in the season
func (r *MongoSurvivorPicksRepository) ListSurvivorUsers(ctx context.Context, season int) ([]string, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "user_id", bson.M{"season": season})
	if err != nil {
		return nil, fmt.Errorf("failed to list survivor users: %w", err)
	}

	users := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := asString(v); ok && id != "" {
			users = append(users, id)
		}
	}
	sort.Strings(users)
	return users, nil
}

// PutSurvivorPick replaces a user's pick for one week; used by the legacy import
func (r *MongoSurvivorPicksRepository) PutSurvivorPick(ctx context.Context, userID string, season int, pick models.SurvivorPick) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	doc := survivorPickDocument{
		UserID:    userID,
		Season:    season,
		Week:      pick.Week,
		Team:      pick.Team,
		UpdatedAt: time.Now().UTC(),
	}
	filter := bson.M{"user_id": userID, "season": season, "week": pick.Week}
	if _, err := r.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to replace survivor pick for %s week %d: %w", userID, pick.Week, err)
	}
	return nil
}
