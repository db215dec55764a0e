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

// MongoWeeklyPicksRepository stores confidence picks, one document per (user, season, week)
type MongoWeeklyPicksRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

type weeklyPicksEntry struct {
	Team       string `bson:"team"`
	Confidence int    `bson:"confidence"`
}

type weeklyPicksDocument struct {
	UserID    string                      `bson:"user_id"`
	Season    int                         `bson:"season"`
	Week      int                         `bson:"week"`
	Picks     map[string]weeklyPicksEntry `bson:"picks"`
	UpdatedAt time.Time                   `bson:"updated_at"`
}

// NewMongoWeeklyPicksRepository creates a new MongoDB weekly picks repository
func NewMongoWeeklyPicksRepository(db *MongoDB) *MongoWeeklyPicksRepository {
	collection := db.GetCollection(ConfidencePicksCollection)
	logger := logging.WithPrefix("WeeklyPicksRepo")

	ensureIndexes(collection, logger,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "season", Value: 1}, {Key: "week", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		mongo.IndexModel{
			Keys: bson.D{{Key: "season", Value: 1}, {Key: "week", Value: 1}},
		},
	)

	return &MongoWeeklyPicksRepository{
		collection: collection,
		logger:     logger,
	}
}

// GetWeekPicks returns every user's normalized picks for a week, keyed by user then game
func (r *MongoWeeklyPicksRepository) GetWeekPicks(ctx context.Context, season, week int) (models.WeekPicks, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"season": season, "week": week})
	if err != nil {
		return nil, fmt.Errorf("failed to find weekly picks: %w", err)
	}
	docs, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode weekly picks: %w", err)
	}

	picks := make(models.WeekPicks, len(docs))
	for _, doc := range docs {
		userID, userPicks, notes := NormalizeConfidencePicks(doc, "", season, week)
		for _, note := range notes {
			r.logger.Warnf("week %d: %s", week, note)
		}
		if userID == "" {
			r.logger.Errorf("Skipping week %d picks document without user id", week)
			continue
		}
		picks[userID] = userPicks
	}
	return picks, nil
}

// PutWeekPicks replaces one user's week of picks; used by the legacy import
func (r *MongoWeeklyPicksRepository) PutWeekPicks(ctx context.Context, userID string, season, week int, picks map[string]models.Pick) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	doc := weeklyPicksDocument{
		UserID:    userID,
		Season:    season,
		Week:      week,
		Picks:     make(map[string]weeklyPicksEntry, len(picks)),
		UpdatedAt: time.Now().UTC(),
	}
	for gameID, p := range picks {
		doc.Picks[gameID] = weeklyPicksEntry{Team: p.Team, Confidence: p.Confidence}
	}

	filter := bson.M{"user_id": userID, "season": season, "week": week}
	if _, err := r.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to replace weekly picks for %s week %d: %w", userID, week, err)
	}
	return nil
}
