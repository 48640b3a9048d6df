package leave

import (
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

func strPtr(s string) *string { return &s }

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs), "expected ValidationErrors, got %v", err)
	return errs.ToMap()
}

func TestCreateLeaveRequest_MultiDayCap(t *testing.T) {
	ok := CreateLeaveRequest{
		Type:           TypePermission,
		PermissionKind: kindPtr(PermissionMultiDay),
		DateFrom:       "2025-04-07",
		DateTo:         strPtr("2025-04-18"),
	}
	assert.NoError(t, ok.Validate())

	tooLong := ok
	tooLong.DateTo = strPtr("2025-04-21")
	fields := validationFields(t, tooLong.Validate())
	assert.Contains(t, fields["date_to"], "at most 10 working days, got 11")
}

func TestCreateLeaveRequest_RangeCap(t *testing.T) {
	for _, typ := range []Type{TypeVacation, TypeSickness} {
		ok := CreateLeaveRequest{Type: typ, DateFrom: "2025-04-07", DateTo: strPtr("2026-04-06")}
		assert.NoError(t, ok.Validate(), typ)

		yearLong := ok
		yearLong.DateTo = strPtr("2026-04-07")
		assert.Contains(t, validationFields(t, yearLong.Validate())["date_to"], "at most 1 year")

		endless := ok
		endless.DateTo = strPtr("9999-12-31")
		assert.Contains(t, validationFields(t, endless.Validate()), "date_to")
	}
}

func TestCreateLeaveRequest_Validate(t *testing.T) {
	cases := []struct {
		name  string
		req   CreateLeaveRequest
		field string
	}{
		{
			name:  "unknown type",
			req:   CreateLeaveRequest{Type: "holiday", DateFrom: "2025-04-07"},
			field: "type",
		},
		{
			name:  "permission without kind",
			req:   CreateLeaveRequest{Type: TypePermission, DateFrom: "2025-04-07"},
			field: "permission_kind",
		},
		{
			name:  "kind on vacation",
			req:   CreateLeaveRequest{Type: TypeVacation, PermissionKind: kindPtr(PermissionDaily), DateFrom: "2025-04-07"},
			field: "permission_kind",
		},
		{
			name:  "bad date",
			req:   CreateLeaveRequest{Type: TypeVacation, DateFrom: "07/04/2025"},
			field: "date_from",
		},
		{
			name:  "range reversed",
			req:   CreateLeaveRequest{Type: TypeVacation, DateFrom: "2025-04-10", DateTo: strPtr("2025-04-07")},
			field: "date_to",
		},
		{
			name:  "daily permission spanning days",
			req:   CreateLeaveRequest{Type: TypePermission, PermissionKind: kindPtr(PermissionDaily), DateFrom: "2025-04-07", DateTo: strPtr("2025-04-08")},
			field: "date_to",
		},
		{
			name:  "multi-day without end",
			req:   CreateLeaveRequest{Type: TypePermission, PermissionKind: kindPtr(PermissionMultiDay), DateFrom: "2025-04-07"},
			field: "date_to",
		},
		{
			name:  "hourly without times",
			req:   CreateLeaveRequest{Type: TypePermission, PermissionKind: kindPtr(PermissionHourly), DateFrom: "2025-04-07"},
			field: "time_from",
		},
		{
			name: "hourly reversed times",
			req: CreateLeaveRequest{
				Type: TypePermission, PermissionKind: kindPtr(PermissionHourly), DateFrom: "2025-04-07",
				TimeFrom: strPtr("11:00"), TimeTo: strPtr("09:00"),
			},
			field: "time_to",
		},
		{
			name: "certificate on vacation",
			req: CreateLeaveRequest{
				Type: TypeVacation, DateFrom: "2025-04-07",
				FileHeader: &multipart.FileHeader{Filename: "cert.pdf", Size: 1024},
			},
			field: "certificate",
		},
		{
			name: "certificate too large",
			req: CreateLeaveRequest{
				Type: TypeSickness, DateFrom: "2025-04-07",
				FileHeader: &multipart.FileHeader{Filename: "cert.pdf", Size: MaxCertificateSize + 1},
			},
			field: "certificate",
		},
		{
			name: "certificate wrong type",
			req: CreateLeaveRequest{
				Type: TypeSickness, DateFrom: "2025-04-07",
				FileHeader: &multipart.FileHeader{Filename: "cert.docx", Size: 1024},
			},
			field: "certificate",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fields := validationFields(t, c.req.Validate())
			assert.Contains(t, fields, c.field)
		})
	}
}

func TestCreateLeaveRequest_ValidHourly(t *testing.T) {
	req := CreateLeaveRequest{
		Type:           TypePermission,
		PermissionKind: kindPtr(PermissionHourly),
		DateFrom:       "2025-04-07",
		TimeFrom:       strPtr("09:00"),
		TimeTo:         strPtr("11:30"),
		Reason:         "dentist",
	}
	assert.NoError(t, req.Validate())
}

func TestCreateLeaveRequest_ValidSicknessWithCertificate(t *testing.T) {
	req := CreateLeaveRequest{
		Type:       TypeSickness,
		DateFrom:   "2025-04-07",
		FileHeader: &multipart.FileHeader{Filename: "Certificate.PDF", Size: 2048},
	}
	assert.NoError(t, req.Validate())
}
