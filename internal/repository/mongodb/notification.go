package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/mongodb"
)

type notificationDoc struct {
	ID          string                 `bson:"_id"`
	RecipientID string                 `bson:"recipient_id"`
	SenderID    *string                `bson:"sender_id,omitempty"`
	Type        string                 `bson:"type"`
	Title       string                 `bson:"title"`
	Message     string                 `bson:"message"`
	Data        map[string]interface{} `bson:"data,omitempty"`
	IsRead      bool                   `bson:"is_read"`
	ReadAt      *time.Time             `bson:"read_at,omitempty"`
	CreatedAt   time.Time              `bson:"created_at"`
}

func (d notificationDoc) toDomain() *notification.Notification {
	return &notification.Notification{
		ID:          d.ID,
		RecipientID: d.RecipientID,
		SenderID:    d.SenderID,
		Type:        notification.NotificationType(d.Type),
		Title:       d.Title,
		Message:     d.Message,
		Data:        d.Data,
		IsRead:      d.IsRead,
		ReadAt:      d.ReadAt,
		CreatedAt:   d.CreatedAt,
	}
}

type notificationRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewNotificationRepository(db *mongodb.DB) notification.Repository {
	return &notificationRepository{coll: db.Collection(collNotifications), now: func() time.Time { return time.Now().UTC() }}
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = r.now()
		}
		docs = append(docs, notificationDoc{
			ID:          n.ID,
			RecipientID: n.RecipientID,
			SenderID:    n.SenderID,
			Type:        string(n.Type),
			Title:       n.Title,
			Message:     n.Message,
			Data:        n.Data,
			IsRead:      n.IsRead,
			ReadAt:      n.ReadAt,
			CreatedAt:   n.CreatedAt,
		})
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	filter := bson.M{"recipient_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}

	var docs []notificationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode notifications: %w", err)
	}

	out := make([]*notification.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, int(total), nil
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"recipient_id": userID, "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return int(count), nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}
	filter := bson.M{"recipient_id": userID, "_id": bson.M{"$in": ids}, "is_read": false}
	return r.markRead(ctx, filter)
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	return r.markRead(ctx, bson.M{"recipient_id": userID, "is_read": false})
}

func (r *notificationRepository) markRead(ctx context.Context, filter bson.M) error {
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": r.now()}}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string, userID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "recipient_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.DeletedCount == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
