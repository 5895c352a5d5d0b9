// Package mongo holds the MongoDB read model fed by the balance outbox.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blueshark0/pas/internal/domain/activity"
	"github.com/blueshark0/pas/internal/domain/shared"
)

const (
	// ActivityCollectionName is the name of the account activity collection in MongoDB
	ActivityCollectionName = "account_activity"
)

// activityDocument is the stored shape of an activity.Record. Amounts are kept
// as Decimal128 so Mongo aggregations stay exact.
type activityDocument struct {
	EventID              int64                `bson:"event_id"`
	AccountID            int64                `bson:"account_id"`
	ChangeType           string               `bson:"change_type"`
	AmountChange         primitive.Decimal128 `bson:"amount_change"`
	BalanceAfter         primitive.Decimal128 `bson:"balance_after"`
	RelatedTransactionID *int64               `bson:"related_transaction_id,omitempty"`
	RelatedEntryID       *int64               `bson:"related_entry_id,omitempty"`
	Description          string               `bson:"description,omitempty"`
	OccurredAt           time.Time            `bson:"occurred_at"`
	ProjectedAt          time.Time            `bson:"projected_at"`
}

func toDocument(r *activity.Record) (*activityDocument, error) {
	amountChange, err := toDecimal128(r.AmountChange)
	if err != nil {
		return nil, err
	}
	balanceAfter, err := toDecimal128(r.BalanceAfter)
	if err != nil {
		return nil, err
	}
	return &activityDocument{
		EventID:              r.EventID,
		AccountID:            r.AccountID,
		ChangeType:           string(r.ChangeType),
		AmountChange:         amountChange,
		BalanceAfter:         balanceAfter,
		RelatedTransactionID: r.RelatedTransactionID,
		RelatedEntryID:       r.RelatedEntryID,
		Description:          r.Description,
		OccurredAt:           r.OccurredAt.UTC(),
		ProjectedAt:          r.ProjectedAt.UTC(),
	}, nil
}

func (d *activityDocument) record() (*activity.Record, error) {
	amountChange, err := decimal.NewFromString(d.AmountChange.String())
	if err != nil {
		return nil, fmt.Errorf("invalid amount_change for event %d: %w", d.EventID, err)
	}
	balanceAfter, err := decimal.NewFromString(d.BalanceAfter.String())
	if err != nil {
		return nil, fmt.Errorf("invalid balance_after for event %d: %w", d.EventID, err)
	}
	return &activity.Record{
		EventID:              d.EventID,
		AccountID:            d.AccountID,
		ChangeType:           shared.ChangeType(d.ChangeType),
		AmountChange:         amountChange,
		BalanceAfter:         balanceAfter,
		RelatedTransactionID: d.RelatedTransactionID,
		RelatedEntryID:       d.RelatedEntryID,
		Description:          d.Description,
		OccurredAt:           d.OccurredAt,
		ProjectedAt:          d.ProjectedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.StringFixed(shared.MoneyScale))
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert %s to decimal128: %w", d.String(), err)
	}
	return v, nil
}

// ActivityRepository implements the activity.Repository interface for MongoDB
type ActivityRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewActivityRepository creates a new MongoDB activity repository
func NewActivityRepository(logger *slog.Logger, db *mongo.Database) activity.Repository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the record keyed by event id. Projecting the same event twice
// leaves a single document.
func (r *ActivityRepository) Upsert(ctx context.Context, record *activity.Record) error {
	doc, err := toDocument(record)
	if err != nil {
		return err
	}

	collection := r.db.Collection(ActivityCollectionName)
	filter := bson.M{"event_id": doc.EventID}
	update := bson.M{"$set": doc}

	if _, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		r.logger.Error("Failed to upsert activity record",
			"event_id", record.EventID,
			"account_id", record.AccountID,
			"error", err)
		return fmt.Errorf("failed to upsert activity record: %w", err)
	}

	return nil
}

func (r *ActivityRepository) GetByEventID(ctx context.Context, eventID int64) (*activity.Record, error) {
	collection := r.db.Collection(ActivityCollectionName)

	var doc activityDocument
	err := collection.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, activity.ErrRecordNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get activity record", "event_id", eventID, "error", err)
		return nil, fmt.Errorf("failed to get activity record: %w", err)
	}

	return doc.record()
}

// ListByAccount returns a page of the account's activity, newest first
func (r *ActivityRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*activity.Record, error) {
	collection := r.db.Collection(ActivityCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "event_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		r.logger.Error("Failed to list activity records", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list activity records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []activityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode activity records", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to decode activity records: %w", err)
	}

	records := make([]*activity.Record, 0, len(docs))
	for i := range docs {
		rec, err := docs[i].record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *ActivityRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	collection := r.db.Collection(ActivityCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"account_id": accountID})
	if err != nil {
		r.logger.Error("Failed to count activity records", "account_id", accountID, "error", err)
		return 0, fmt.Errorf("failed to count activity records: %w", err)
	}

	return count, nil
}
