package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/mongodb"
)

type ledgerSyncDoc struct {
	Applied  bool      `bson:"applied"`
	Reason   string    `bson:"reason,omitempty"`
	Error    string    `bson:"error,omitempty"`
	SyncedAt time.Time `bson:"synced_at"`
}

type recordDoc struct {
	ID              string         `bson:"_id"`
	UserID          string         `bson:"user_id"`
	Date            string         `bson:"date"` // YYYY-MM-DD
	ClockInTime     string         `bson:"clock_in_time"`
	ClockOutTime    *string        `bson:"clock_out_time,omitempty"`
	ClockInAt       time.Time      `bson:"clock_in_at"`
	ClockOutAt      *time.Time     `bson:"clock_out_at,omitempty"`
	StandardHours   int            `bson:"standard_hours"`
	OvertimeHours   int            `bson:"overtime_hours"`
	Status          string         `bson:"status"`
	AutoCloseReason *string        `bson:"auto_close_reason,omitempty"`
	DeviceID        *string        `bson:"device_id,omitempty"`
	LedgerSync      *ledgerSyncDoc `bson:"ledger_sync,omitempty"`
	CreatedAt       time.Time      `bson:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at"`
}

func toRecordDoc(rec timeclock.Record) recordDoc {
	doc := recordDoc{
		ID:              rec.ID,
		UserID:          rec.UserID,
		Date:            calendar.FormatDate(rec.Date),
		ClockInTime:     rec.ClockInTime,
		ClockOutTime:    rec.ClockOutTime,
		ClockInAt:       rec.ClockInAt,
		ClockOutAt:      rec.ClockOutAt,
		StandardHours:   rec.StandardHours,
		OvertimeHours:   rec.OvertimeHours,
		Status:          string(rec.Status),
		AutoCloseReason: rec.AutoCloseReason,
		DeviceID:        rec.DeviceID,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
	if s := rec.LedgerSync; s != nil {
		doc.LedgerSync = &ledgerSyncDoc{Applied: s.Applied, Reason: s.Reason, Error: s.Error, SyncedAt: s.SyncedAt}
	}
	return doc
}

func (d recordDoc) toDomain() (timeclock.Record, error) {
	date, err := calendar.ParseDate(d.Date)
	if err != nil {
		return timeclock.Record{}, fmt.Errorf("record %s: %w", d.ID, err)
	}
	rec := timeclock.Record{
		ID:              d.ID,
		UserID:          d.UserID,
		Date:            date,
		ClockInTime:     d.ClockInTime,
		ClockOutTime:    d.ClockOutTime,
		ClockInAt:       d.ClockInAt,
		ClockOutAt:      d.ClockOutAt,
		StandardHours:   d.StandardHours,
		OvertimeHours:   d.OvertimeHours,
		Status:          timeclock.Status(d.Status),
		AutoCloseReason: d.AutoCloseReason,
		DeviceID:        d.DeviceID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if s := d.LedgerSync; s != nil {
		rec.LedgerSync = &timeclock.LedgerSync{Applied: s.Applied, Reason: s.Reason, Error: s.Error, SyncedAt: s.SyncedAt}
	}
	return rec, nil
}

type timeclockRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewTimeclockRepository(db *mongodb.DB) timeclock.Repository {
	return &timeclockRepository{coll: db.Collection(collRecords), now: func() time.Time { return time.Now().UTC() }}
}

// CreateIfAbsent relies on the unique (user_id, date) index.
func (r *timeclockRepository) CreateIfAbsent(ctx context.Context, rec timeclock.Record) (timeclock.Record, bool, error) {
	now := r.now()
	rec.CreatedAt, rec.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, toRecordDoc(rec)); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return timeclock.Record{}, false, fmt.Errorf("failed to create time clock record: %w", err)
		}
		existing, err := r.GetByUserAndDate(ctx, rec.UserID, rec.Date)
		if err != nil {
			return timeclock.Record{}, false, err
		}
		return existing, false, nil
	}
	return rec, true, nil
}

func (r *timeclockRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (timeclock.Record, error) {
	var doc recordDoc
	filter := bson.M{"user_id": userID, "date": calendar.FormatDate(date)}
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNotFound(err) {
			return timeclock.Record{}, timeclock.ErrRecordNotFound
		}
		return timeclock.Record{}, fmt.Errorf("failed to get time clock record: %w", err)
	}
	return doc.toDomain()
}

func (r *timeclockRepository) Update(ctx context.Context, rec timeclock.Record, from timeclock.Status) error {
	doc := toRecordDoc(rec)
	set := bson.M{
		"clock_out_time":    doc.ClockOutTime,
		"clock_out_at":      doc.ClockOutAt,
		"standard_hours":    doc.StandardHours,
		"overtime_hours":    doc.OvertimeHours,
		"status":            doc.Status,
		"auto_close_reason": doc.AutoCloseReason,
		"ledger_sync":       doc.LedgerSync,
		"updated_at":        r.now(),
	}
	filter := bson.M{"user_id": doc.UserID, "date": doc.Date, "status": string(from)}

	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update time clock record: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	if _, err := r.GetByUserAndDate(ctx, rec.UserID, rec.Date); err != nil {
		return err
	}
	return timeclock.ErrStatusChanged
}

func (r *timeclockRepository) ListStaleOpen(ctx context.Context, userID string, before time.Time, limit int) ([]timeclock.Record, error) {
	filter := bson.M{
		"status": string(timeclock.StatusInProgress),
		"date":   bson.M{"$lt": calendar.FormatDate(before)},
	}
	if userID != "" {
		filter["user_id"] = userID
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "user_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *timeclockRepository) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]timeclock.Record, error) {
	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": calendar.FormatDate(from), "$lte": calendar.FormatDate(to)},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

func (r *timeclockRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]timeclock.Record, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query time clock records: %w", err)
	}

	var docs []recordDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode time clock records: %w", err)
	}

	out := make([]timeclock.Record, 0, len(docs))
	for _, d := range docs {
		rec, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
