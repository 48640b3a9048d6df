package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/mongodb"
)

type entryDoc struct {
	Date        string  `bson:"date"`
	Hours       int     `bson:"hours"`
	Code        string  `bson:"code,omitempty"`
	Overtime    int     `bson:"overtime"`
	Notes       string  `bson:"notes"`
	Source      string  `bson:"source,omitempty"`
	HasData     bool    `bson:"has_data"`
	IsWeekend   bool    `bson:"is_weekend"`
	IsHoliday   bool    `bson:"is_holiday"`
	HolidayName *string `bson:"holiday_name,omitempty"`
	DayType     string  `bson:"day_type"`
}

type ledgerDoc struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"user_id"`
	Month     int        `bson:"month"`
	Year      int        `bson:"year"`
	Entries   []entryDoc `bson:"entries"`
	Version   int64      `bson:"version"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func toEntryDocs(entries []ledger.DayEntry) []entryDoc {
	out := make([]entryDoc, len(entries))
	for i, e := range entries {
		out[i] = entryDoc{
			Date:        e.Date,
			Hours:       e.Total.Hours,
			Code:        string(e.Total.Code),
			Overtime:    e.Overtime,
			Notes:       e.Notes,
			Source:      string(e.Source),
			HasData:     e.HasData,
			IsWeekend:   e.IsWeekend,
			IsHoliday:   e.IsHoliday,
			HolidayName: e.HolidayName,
			DayType:     string(e.DayType),
		}
	}
	return out
}

func (d ledgerDoc) toDomain() ledger.Ledger {
	entries := make([]ledger.DayEntry, len(d.Entries))
	for i, e := range d.Entries {
		entries[i] = ledger.DayEntry{
			Date:        e.Date,
			Total:       ledger.Total{Hours: e.Hours, Code: ledger.Code(e.Code)},
			Overtime:    e.Overtime,
			Notes:       e.Notes,
			Source:      ledger.Source(e.Source),
			HasData:     e.HasData,
			IsWeekend:   e.IsWeekend,
			IsHoliday:   e.IsHoliday,
			HolidayName: e.HolidayName,
			DayType:     calendar.DayType(e.DayType),
		}
	}
	return ledger.Ledger{
		ID:        d.ID,
		UserID:    d.UserID,
		Month:     d.Month,
		Year:      d.Year,
		Entries:   entries,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type ledgerRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewLedgerRepository(db *mongodb.DB) ledger.Repository {
	return &ledgerRepository{coll: db.Collection(collLedgers), now: func() time.Time { return time.Now().UTC() }}
}

func (r *ledgerRepository) GetByKey(ctx context.Context, key string) (ledger.Ledger, error) {
	var doc ledgerDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return ledger.Ledger{}, ledger.ErrLedgerNotFound
		}
		return ledger.Ledger{}, fmt.Errorf("failed to get ledger: %w", err)
	}
	return doc.toDomain(), nil
}

// Save inserts new documents (duplicate _id means a concurrent creator won) and updates
// existing ones only when the stored version matches.
func (r *ledgerRepository) Save(ctx context.Context, l ledger.Ledger, expectedVersion int64) (ledger.Ledger, error) {
	now := r.now()

	if expectedVersion == 0 {
		doc := ledgerDoc{
			ID:        l.ID,
			UserID:    l.UserID,
			Month:     l.Month,
			Year:      l.Year,
			Entries:   toEntryDocs(l.Entries),
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ledger.Ledger{}, ledger.ErrLedgerConflict
			}
			return ledger.Ledger{}, fmt.Errorf("failed to insert ledger: %w", err)
		}
		return doc.toDomain(), nil
	}

	update := bson.M{
		"$set": bson.M{"entries": toEntryDocs(l.Entries), "updated_at": now},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc ledgerDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": l.ID, "version": expectedVersion}, update, opts).Decode(&doc)
	if err != nil {
		if isNotFound(err) {
			return ledger.Ledger{}, ledger.ErrLedgerConflict
		}
		return ledger.Ledger{}, fmt.Errorf("failed to update ledger: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ledgerRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListByMonth(ctx context.Context, month, year int) ([]ledger.Ledger, error) {
	return r.find(ctx, bson.M{"month": month, "year": year})
}

func (r *ledgerRepository) ListLegacy(ctx context.Context) ([]ledger.Ledger, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$regex": `_0[1-9]_[0-9]+$`}})
}

func (r *ledgerRepository) find(ctx context.Context, filter bson.M) ([]ledger.Ledger, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers: %w", err)
	}

	var docs []ledgerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode ledgers: %w", err)
	}

	out := make([]ledger.Ledger, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
