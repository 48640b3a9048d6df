package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/mongodb"
)

// leaveDoc embeds SyncInfo and DesyncResult as-is; their outcome slices encode with default
// lowercase field names.
type leaveDoc struct {
	ID              string              `bson:"_id"`
	UserID          string              `bson:"user_id"`
	Type            string              `bson:"type"`
	PermissionKind  *string             `bson:"permission_kind,omitempty"`
	Status          string              `bson:"status"`
	DateFrom        string              `bson:"date_from"`
	DateTo          *string             `bson:"date_to,omitempty"`
	DateEnd         string              `bson:"date_end"`
	TimeFrom        *string             `bson:"time_from,omitempty"`
	TimeTo          *string             `bson:"time_to,omitempty"`
	Reason          string              `bson:"reason"`
	CertificatePath *string             `bson:"certificate_path,omitempty"`
	SyncInfo        *leave.SyncInfo     `bson:"sync_info,omitempty"`
	DesyncResult    *leave.DesyncResult `bson:"desync_result,omitempty"`
	ReviewedBy      *string             `bson:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time          `bson:"reviewed_at,omitempty"`
	RejectionReason *string             `bson:"rejection_reason,omitempty"`
	DeletedAt       *time.Time          `bson:"deleted_at"`
	DeletedBy       *string             `bson:"deleted_by,omitempty"`
	CreatedAt       time.Time           `bson:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at"`
}

func toLeaveDoc(req leave.LeaveRequest) leaveDoc {
	doc := leaveDoc{
		ID:              req.ID,
		UserID:          req.UserID,
		Type:            string(req.Type),
		Status:          string(req.Status),
		DateFrom:        calendar.FormatDate(req.DateFrom),
		DateEnd:         calendar.FormatDate(req.EndDate()),
		TimeFrom:        req.TimeFrom,
		TimeTo:          req.TimeTo,
		Reason:          req.Reason,
		CertificatePath: req.CertificatePath,
		SyncInfo:        req.SyncInfo,
		DesyncResult:    req.DesyncResult,
		ReviewedBy:      req.ReviewedBy,
		ReviewedAt:      req.ReviewedAt,
		RejectionReason: req.RejectionReason,
		DeletedAt:       req.DeletedAt,
		DeletedBy:       req.DeletedBy,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
	if req.PermissionKind != nil {
		k := string(*req.PermissionKind)
		doc.PermissionKind = &k
	}
	if req.DateTo != nil {
		to := calendar.FormatDate(*req.DateTo)
		doc.DateTo = &to
	}
	return doc
}

func (d leaveDoc) toDomain() (leave.LeaveRequest, error) {
	from, err := calendar.ParseDate(d.DateFrom)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("leave request %s: %w", d.ID, err)
	}
	req := leave.LeaveRequest{
		ID:              d.ID,
		UserID:          d.UserID,
		Type:            leave.Type(d.Type),
		Status:          leave.Status(d.Status),
		DateFrom:        from,
		TimeFrom:        d.TimeFrom,
		TimeTo:          d.TimeTo,
		Reason:          d.Reason,
		CertificatePath: d.CertificatePath,
		SyncInfo:        d.SyncInfo,
		DesyncResult:    d.DesyncResult,
		ReviewedBy:      d.ReviewedBy,
		ReviewedAt:      d.ReviewedAt,
		RejectionReason: d.RejectionReason,
		DeletedAt:       d.DeletedAt,
		DeletedBy:       d.DeletedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.PermissionKind != nil {
		k := leave.PermissionKind(*d.PermissionKind)
		req.PermissionKind = &k
	}
	if d.DateTo != nil {
		to, err := calendar.ParseDate(*d.DateTo)
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("leave request %s: %w", d.ID, err)
		}
		req.DateTo = &to
	}
	return req, nil
}

type leaveRequestRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewLeaveRequestRepository(db *mongodb.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{coll: db.Collection(collLeaveRequests), now: func() time.Time { return time.Now().UTC() }}
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	now := r.now()
	req.CreatedAt, req.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, toLeaveDoc(req)); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return req, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	var doc leaveDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return doc.toDomain()
}

// Update replaces the document, keeping its created_at.
func (r *leaveRequestRepository) Update(ctx context.Context, req leave.LeaveRequest) error {
	stored, err := r.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	req.CreatedAt = stored.CreatedAt
	req.UpdatedAt = r.now()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": req.ID}, toLeaveDoc(req))
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if result.MatchedCount == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.Filter) ([]leave.LeaveRequest, error) {
	q := bson.M{}
	if !filter.IncludeDeleted {
		q["deleted_at"] = nil
	}
	if filter.UserID != nil {
		q["user_id"] = *filter.UserID
	}
	if filter.Status != nil {
		q["status"] = string(*filter.Status)
	}
	if filter.Type != nil {
		q["type"] = string(*filter.Type)
	}
	if filter.From != nil {
		q["date_end"] = bson.M{"$gte": calendar.FormatDate(*filter.From)}
	}
	if filter.To != nil {
		q["date_from"] = bson.M{"$lte": calendar.FormatDate(*filter.To)}
	}

	opts := options.Find().SetSort(bson.D{{Key: "date_from", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}

	var docs []leaveDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode leave requests: %w", err)
	}

	out := make([]leave.LeaveRequest, 0, len(docs))
	for _, d := range docs {
		req, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}
