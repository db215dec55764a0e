package database

import (
	"context"
	"fmt"
	"time"

	"nerdfootball/logging"
	"nerdfootball/metrics"
	"nerdfootball/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGameRepository reads the game result store written by the sync layer
type MongoGameRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoGameRepository(db *MongoDB) *MongoGameRepository {
	collection := db.GetCollection(GamesCollection)
	logger := logging.WithPrefix("GameRepo")

	ensureIndexes(collection, logger,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "season", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		mongo.IndexModel{
			Keys: bson.D{{Key: "season", Value: 1}, {Key: "week", Value: 1}},
		},
	)

	return &MongoGameRepository{
		collection: collection,
		logger:     logger,
	}
}

// GetWeekGames returns the normalized games of one week, ordered by kickoff
func (r *MongoGameRepository) GetWeekGames(ctx context.Context, season, week int) ([]models.Game, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"season": season, "week": week})
}

// GetSeasonGames returns every normalized game of a season
func (r *MongoGameRepository) GetSeasonGames(ctx context.Context, season int) ([]models.Game, error) {
	ctx, cancel := withTimeout(ctx, LongTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"season": season})
}

func (r *MongoGameRepository) find(ctx context.Context, filter bson.M) ([]models.Game, error) {
	opts := options.Find().SetSort(bson.D{{Key: "week", Value: 1}, {Key: "kickoff", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find games: %w", err)
	}
	docs, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}

	season, _ := filter["season"].(int)
	week, _ := filter["week"].(int)

	games := make([]models.Game, 0, len(docs))
	for _, doc := range docs {
		game, notes, err := NormalizeGame(doc, "", season, week)
		for _, note := range notes {
			r.logger.Warnf("%s", note)
		}
		if err != nil {
			metrics.RecordNormalizationReject("game")
			r.logger.Errorf("Skipping game document: %v", err)
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

// UpsertGames replaces each game document whole, keyed by (season, id)
func (r *MongoGameRepository) UpsertGames(ctx context.Context, games []models.Game) error {
	if len(games) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, LongTimeout)
	defer cancel()

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(games))
	for _, game := range games {
		game.UpdatedAt = now
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"season": game.Season, "id": game.ID}).
			SetReplacement(game).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to upsert %d games: %w", len(games), err)
	}

	r.logger.Debugf("Upserted games: %d matched, %d upserted", result.MatchedCount, result.UpsertedCount)
	return nil
}
