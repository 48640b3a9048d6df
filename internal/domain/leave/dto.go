package leave

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

// MaxCertificateSize is the largest accepted sickness certificate upload.
const MaxCertificateSize = 5 << 20

var certificateExts = []string{".pdf", ".jpg", ".jpeg", ".png"}

type CreateLeaveRequest struct {
	Type           Type                  `json:"type"`
	PermissionKind *PermissionKind       `json:"permission_kind,omitempty"`
	DateFrom       string                `json:"date_from"`
	DateTo         *string               `json:"date_to,omitempty"`
	TimeFrom       *string               `json:"time_from,omitempty"`
	TimeTo         *string               `json:"time_to,omitempty"`
	Reason         string                `json:"reason"`
	File           multipart.File        `json:"-"`
	FileHeader     *multipart.FileHeader `json:"-"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	// Type
	if !validator.IsInSlice(string(r.Type), []string{string(TypePermission), string(TypeVacation), string(TypeSickness)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: permission, vacation, sickness",
		})
	}

	// Permission kind
	kind := PermissionKind("")
	if r.PermissionKind != nil {
		kind = *r.PermissionKind
	}
	if r.Type == TypePermission {
		if !validator.IsInSlice(string(kind), []string{string(PermissionDaily), string(PermissionHourly), string(PermissionMultiDay)}) {
			errs = append(errs, validator.ValidationError{
				Field:   "permission_kind",
				Message: "permission_kind must be one of: daily, hourly, multi-day",
			})
		}
	} else if kind != "" {
		errs = append(errs, validator.ValidationError{
			Field:   "permission_kind",
			Message: "permission_kind is only allowed for permission requests",
		})
	}

	// Dates
	from, fromOK := validator.IsValidDate(r.DateFrom)
	if !fromOK {
		errs = append(errs, validator.ValidationError{
			Field:   "date_from",
			Message: "date_from must be a date in YYYY-MM-DD format",
		})
	}

	var to time.Time
	toOK := false
	if r.DateTo != nil && !validator.IsEmpty(*r.DateTo) {
		to, toOK = validator.IsValidDate(*r.DateTo)
		if !toOK {
			errs = append(errs, validator.ValidationError{
				Field:   "date_to",
				Message: "date_to must be a date in YYYY-MM-DD format",
			})
		} else if fromOK && to.Before(from) {
			errs = append(errs, validator.ValidationError{
				Field:   "date_to",
				Message: "date_to must not be before date_from",
			})
		} else if fromOK && !to.Before(from.AddDate(MaxSpanYears, 0, 0)) {
			errs = append(errs, validator.ValidationError{
				Field:   "date_to",
				Message: fmt.Sprintf("a leave request may span at most %d year", MaxSpanYears),
			})
		}
	}

	singleDay := r.Type == TypePermission && (kind == PermissionDaily || kind == PermissionHourly)
	if singleDay && toOK && fromOK && !to.Equal(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "date_to",
			Message: fmt.Sprintf("a %s permission covers a single day", kind),
		})
	}

	if r.Type == TypePermission && kind == PermissionMultiDay {
		if !toOK {
			errs = append(errs, validator.ValidationError{
				Field:   "date_to",
				Message: "date_to is required for a multi-day permission",
			})
		} else if fromOK && !to.Before(from) {
			if n := calendar.WeekdaysBetween(from, to); n > MaxMultiDayPermission {
				errs = append(errs, validator.ValidationError{
					Field:   "date_to",
					Message: fmt.Sprintf("a multi-day permission may span at most %d working days, got %d", MaxMultiDayPermission, n),
				})
			}
		}
	}

	// Hours of an hourly permission
	if r.Type == TypePermission && kind == PermissionHourly {
		errs = append(errs, validateTimeRange(r.TimeFrom, r.TimeTo)...)
	}

	// Reason
	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	// Certificate
	if r.FileHeader != nil {
		if r.Type != TypeSickness {
			errs = append(errs, validator.ValidationError{
				Field:   "certificate",
				Message: "a certificate can only be attached to a sickness request",
			})
		} else if !ValidCertificate(r.FileHeader.Filename, r.FileHeader.Size) {
			errs = append(errs, validator.ValidationError{
				Field:   "certificate",
				Message: ErrInvalidCertificate.Error(),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateTimeRange(from, to *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if from == nil {
		errs = append(errs, validator.ValidationError{Field: "time_from", Message: "time_from is required for an hourly permission"})
	}
	if to == nil {
		errs = append(errs, validator.ValidationError{Field: "time_to", Message: "time_to is required for an hourly permission"})
	}
	if len(errs) > 0 {
		return errs
	}

	start, startOK := validator.IsValidClock(*from)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "time_from", Message: "time_from must be in HH:MM format"})
	}
	end, endOK := validator.IsValidClock(*to)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "time_to", Message: "time_to must be in HH:MM format"})
	}
	if startOK && endOK && !start.Before(end) {
		errs = append(errs, validator.ValidationError{Field: "time_to", Message: "time_to must be after time_from"})
	}
	return errs
}

// ValidCertificate checks the extension and size of a certificate upload.
func ValidCertificate(filename string, size int64) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return validator.IsInSlice(ext, certificateExts) && size > 0 && size <= MaxCertificateSize
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (r *RejectRequest) Validate() error {
	return validator.Struct(r)
}

type ListRequest struct {
	Status *Status `json:"status,omitempty"`
	Type   *Type   `json:"type,omitempty"`
	UserID *string `json:"user_id,omitempty"`
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != nil && !validator.IsInSlice(string(*r.Status), []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected",
		})
	}
	if r.Type != nil && !validator.IsInSlice(string(*r.Type), []string{string(TypePermission), string(TypeVacation), string(TypeSickness)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: permission, vacation, sickness",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveRequestResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Type            Type            `json:"type"`
	PermissionKind  *PermissionKind `json:"permission_kind,omitempty"`
	Status          Status          `json:"status"`
	DateFrom        string          `json:"date_from"`
	DateTo          *string         `json:"date_to,omitempty"`
	TimeFrom        *string         `json:"time_from,omitempty"`
	TimeTo          *string         `json:"time_to,omitempty"`
	Reason          string          `json:"reason"`
	CertificateURL  *string         `json:"certificate_url,omitempty"`
	SyncInfo        *SyncInfo       `json:"sync_info,omitempty"`
	DesyncResult    *DesyncResult   `json:"desync_result,omitempty"`
	ReviewedBy      *string         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	Deleted         bool            `json:"deleted"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		Type:            r.Type,
		PermissionKind:  r.PermissionKind,
		Status:          r.Status,
		DateFrom:        calendar.FormatDate(r.DateFrom),
		TimeFrom:        r.TimeFrom,
		TimeTo:          r.TimeTo,
		Reason:          r.Reason,
		SyncInfo:        r.SyncInfo,
		DesyncResult:    r.DesyncResult,
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      r.ReviewedAt,
		RejectionReason: r.RejectionReason,
		Deleted:         r.DeletedAt != nil,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.DateTo != nil {
		to := calendar.FormatDate(*r.DateTo)
		resp.DateTo = &to
	}
	return resp
}
