package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/mongodb"
)

type userDoc struct {
	ID          string    `bson:"_id"`
	Email       string    `bson:"email"`
	DisplayName string    `bson:"display_name"`
	Role        string    `bson:"role"`
	QRActive    bool      `bson:"qr_active"`
	Active      bool      `bson:"active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d userDoc) toDomain() user.User {
	return user.User{
		ID:          d.ID,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		Role:        user.Role(d.Role),
		QRActive:    d.QRActive,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type userRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongodb.DB) user.UserRepository {
	return &userRepository{coll: db.Collection(collUsers), now: func() time.Time { return time.Now().UTC() }}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) List(ctx context.Context, filter user.Filter) ([]user.User, error) {
	q := bson.M{}
	if filter.Role != nil {
		q["role"] = string(*filter.Role)
	}
	if filter.ActiveOnly {
		q["active"] = true
	}

	cursor, err := r.coll.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	out := make([]user.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Upsert sets qr_active and active only when the profile is created.
func (r *userRepository) Upsert(ctx context.Context, u user.User) (user.User, error) {
	now := r.now()
	update := bson.M{
		"$set": bson.M{
			"email":        u.Email,
			"display_name": u.DisplayName,
			"role":         string(u.Role),
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"qr_active":  u.QRActive,
			"active":     u.Active,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": u.ID}, update, opts).Decode(&doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) Update(ctx context.Context, u user.User) error {
	set := bson.M{
		"email":        u.Email,
		"display_name": u.DisplayName,
		"role":         string(u.Role),
		"qr_active":    u.QRActive,
		"active":       u.Active,
		"updated_at":   r.now(),
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrUserEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
