// Package mongodb stores the documents in MongoDB. Each domain type maps to one collection
// of bson-tagged documents; dates are kept as "YYYY-MM-DD" strings.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/mongodb"
)

const (
	collLedgers       = "monthly_ledgers"
	collRecords       = "time_clock_records"
	collLeaveRequests = "leave_requests"
	collUsers         = "users"
	collDevices       = "devices"
	collNotifications = "notifications"
)

// EnsureIndexes creates the unique and lookup indexes. Existing indexes are left alone.
func EnsureIndexes(ctx context.Context, db *mongodb.DB) error {
	indexes := map[string][]mongo.IndexModel{
		collLedgers: {
			{Keys: bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}},
		},
		collRecords: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
		},
		collLeaveRequests: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date_from", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collNotifications: {
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
