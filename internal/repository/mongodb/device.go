package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/mongodb"
)

type deviceDoc struct {
	ID         string     `bson:"_id"`
	Name       string     `bson:"name"`
	Location   string     `bson:"location"`
	KeyHash    string     `bson:"key_hash"`
	Active     bool       `bson:"active"`
	LastSeenAt *time.Time `bson:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at"`
}

type deviceRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewDeviceRepository(db *mongodb.DB) device.DeviceRepository {
	return &deviceRepository{coll: db.Collection(collDevices), now: func() time.Time { return time.Now().UTC() }}
}

func (r *deviceRepository) Create(ctx context.Context, d device.Device) (device.Device, error) {
	now := r.now()
	d.CreatedAt, d.UpdatedAt = now, now

	doc := deviceDoc(d)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return device.Device{}, fmt.Errorf("failed to create device: %w", err)
	}
	return d, nil
}

func (r *deviceRepository) GetByID(ctx context.Context, id string) (device.Device, error) {
	var doc deviceDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}
	return device.Device(doc), nil
}

func (r *deviceRepository) List(ctx context.Context) ([]device.Device, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}

	var docs []deviceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode devices: %w", err)
	}

	out := make([]device.Device, 0, len(docs))
	for _, d := range docs {
		out = append(out, device.Device(d))
	}
	return out, nil
}

func (r *deviceRepository) Update(ctx context.Context, d device.Device) error {
	set := bson.M{
		"name":       d.Name,
		"location":   d.Location,
		"key_hash":   d.KeyHash,
		"active":     d.Active,
		"updated_at": r.now(),
	}
	return r.update(ctx, d.ID, set)
}

func (r *deviceRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, bson.M{"last_seen_at": at})
}

func (r *deviceRepository) update(ctx context.Context, id string, set bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if result.MatchedCount == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}
