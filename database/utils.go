package database

import (
	"context"
	"time"

	"nerdfootball/logging"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// ShortTimeout for single-document reads and replaces
	ShortTimeout = 5 * time.Second

	// MediumTimeout for week-sized queries
	MediumTimeout = 10 * time.Second

	// LongTimeout for season-wide scans and bulk writes
	LongTimeout = 30 * time.Second
)

// withTimeout bounds a store call by d while still honouring the caller's cancellation
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}

// ensureIndexes creates indexes at repository construction; failures are logged, not fatal
func ensureIndexes(collection *mongo.Collection, logger *logging.Logger, indexes ...mongo.IndexModel) {
	ctx, cancel := withTimeout(context.Background(), MediumTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warnf("Failed to create indexes on %s: %v", collection.Name(), err)
	}
}

// decodeAll drains a cursor into raw documents for the normalizer
func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]map[string]interface{}, error) {
	defer cursor.Close(ctx)

	var docs []map[string]interface{}
	for cursor.Next(ctx) {
		var doc map[string]interface{}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, cursor.Err()
}
