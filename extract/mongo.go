package extract

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"airbnb-etl/models"
	"airbnb-etl/utils"
)

// Collections read from the source database.
const (
	collListings = "listings"
	collReviews  = "reviews"
	collCalendar = "calendar"
)

// MongoExtractor reads the raw listing, review and calendar collections from
// MongoDB into in-memory tables. It is a thin I/O wrapper: no cleaning
// happens here beyond dropping the _id column.
type MongoExtractor struct {
	uri        string
	dbName     string
	maxRetries int
	logger     *utils.Logger
}

// New creates a MongoExtractor for the given connection URI and database.
func New(uri, dbName string, maxRetries int, logger *utils.Logger) *MongoExtractor {
	return &MongoExtractor{uri: uri, dbName: dbName, maxRetries: maxRetries, logger: logger}
}

// ExtractAll connects, reads the three collections and disconnects. Empty
// collections are reported as warnings, not errors.
func (e *MongoExtractor) ExtractAll(ctx context.Context) (listings, reviews, calendar *models.Table, err error) {
	e.logger.Section("Extracción desde MongoDB")
	e.logger.Info("[extract] connecting to %s (db %s)", e.uri, e.dbName)

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(e.uri).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mongo: connect: %w", err)
	}
	defer func() {
		if derr := client.Disconnect(ctx); derr != nil {
			e.logger.Warn("[extract] disconnect: %v", derr)
		}
	}()

	retry := &utils.RetryConfig{MaxAttempts: e.maxRetries, BaseDelay: 2 * time.Second, Logger: e.logger}
	if err := retry.Do(ctx, "mongo ping", func() error {
		return client.Ping(ctx, readpref.Primary())
	}); err != nil {
		return nil, nil, nil, fmt.Errorf("mongo: %w", err)
	}

	db := client.Database(e.dbName)
	if listings, err = e.extractCollection(ctx, db, collListings); err != nil {
		return nil, nil, nil, err
	}
	if reviews, err = e.extractCollection(ctx, db, collReviews); err != nil {
		return nil, nil, nil, err
	}
	if calendar, err = e.extractCollection(ctx, db, collCalendar); err != nil {
		return nil, nil, nil, err
	}

	total := listings.Len() + reviews.Len() + calendar.Len()
	e.logger.Info("[extract] done — %d records total (listings: %d, reviews: %d, calendar: %d)",
		total, listings.Len(), reviews.Len(), calendar.Len())
	return listings, reviews, calendar, nil
}

// extractCollection reads every document of one collection into a table.
// Documents are decoded in BSON field order so the table's column order is
// deterministic (first appearance wins).
func (e *MongoExtractor) extractCollection(ctx context.Context, db *mongo.Database, name string) (*models.Table, error) {
	cur, err := db.Collection(name).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo: find %s: %w", name, err)
	}

	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: read %s: %w", name, err)
	}

	var cols []string
	seen := make(map[string]struct{})
	rows := make([]models.Row, len(docs))
	for i, doc := range docs {
		row := make(models.Row, len(doc))
		for _, field := range doc {
			if field.Key == "_id" {
				continue
			}
			if _, ok := seen[field.Key]; !ok {
				seen[field.Key] = struct{}{}
				cols = append(cols, field.Key)
			}
			row[field.Key] = fromBSON(field.Value)
		}
		rows[i] = row
	}

	e.logger.Info("[extract] collection %q: %d records", name, len(rows))
	if len(rows) == 0 {
		e.logger.Warn("[extract] collection %q is empty", name)
	}
	return models.NewTable(cols, rows), nil
}

// fromBSON maps driver-specific wrapper types onto plain Go values so the
// transformation stage never sees BSON types.
func fromBSON(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Decimal128:
		return val.String()
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromBSON(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(val))
		for _, field := range val {
			out[field.Key] = fromBSON(field.Value)
		}
		return out
	case primitive.Null:
		return nil
	default:
		return v
	}
}
