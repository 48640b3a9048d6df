package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
)

func TestGenerateEmptyMonth(t *testing.T) {
	entries := GenerateEmptyMonth(4, 2025)
	require.Len(t, entries, 30)

	assert.Equal(t, "2025-04-01", entries[0].Date)
	assert.Equal(t, "2025-04-30", entries[29].Date)

	// 2025-04-05 is a Saturday, 2025-04-21 Easter Monday, 2025-04-25 Liberation Day.
	assert.Equal(t, calendar.DayTypeWeekend, entries[4].DayType)
	assert.True(t, entries[20].IsHoliday)
	assert.True(t, entries[24].IsHoliday)
	require.NotNil(t, entries[24].HolidayName)

	for _, e := range entries {
		assert.True(t, e.IsPlaceholder(), e.Date)
	}

	assert.Len(t, GenerateEmptyMonth(2, 2024), 29)
	assert.Len(t, GenerateEmptyMonth(2, 2025), 28)
}

func TestGenerateEmptyMonth_Idempotent(t *testing.T) {
	assert.Equal(t, GenerateEmptyMonth(12, 2025), GenerateEmptyMonth(12, 2025))
}

func TestMergeExisting(t *testing.T) {
	empty := GenerateEmptyMonth(4, 2025)

	stored := NewPlaceholder(calendar.DateOf(mustDate(t, "2025-04-07")))
	stored.SetHours(6, 1, SourceManual, "site visit")
	// Stale classification must be replaced by the skeleton's.
	stored.IsWeekend = true
	stored.DayType = calendar.DayTypeWeekend

	outside := NewPlaceholder(mustDate(t, "2025-05-02"))
	outside.SetCode(CodeVacation, SourceManual, "")

	merged := MergeExisting(empty, []DayEntry{stored, outside})
	require.Len(t, merged, 30)

	got := merged[IndexOf(merged, "2025-04-07")]
	assert.Equal(t, Hours(6), got.Total)
	assert.Equal(t, 1, got.Overtime)
	assert.Equal(t, "site visit", got.Notes)
	assert.False(t, got.IsWeekend)
	assert.Equal(t, calendar.DayTypeWorkday, got.DayType)

	assert.Equal(t, -1, IndexOf(merged, "2025-05-02"))
	assert.Equal(t, 1, Summarize(merged).DaysWithData)
}

func TestMergeExisting_RoundTripIsStable(t *testing.T) {
	empty := GenerateEmptyMonth(4, 2025)
	once := MergeExisting(empty, nil)
	assert.Equal(t, empty, once)
	assert.Equal(t, once, MergeExisting(empty, once))
}

func TestNormalize(t *testing.T) {
	e := DayEntry{Total: Hours(11), Overtime: -2}
	got := Normalize(e, EditorConstraint)
	assert.Equal(t, Hours(8), got.Total)
	assert.Equal(t, 0, got.Overtime)

	e = DayEntry{Total: Hours(-3), Overtime: 2}
	got = Normalize(e, EditorConstraint)
	assert.Equal(t, Hours(0), got.Total)
	assert.Equal(t, 2, got.Overtime)

	e = DayEntry{Total: Total{Hours: 5, Code: CodeSickness}, Overtime: 3}
	got = Normalize(e, EditorConstraint)
	assert.Equal(t, CodeTotal(CodeSickness), got.Total)
	assert.Equal(t, 0, got.Overtime)
}

func TestSummarize(t *testing.T) {
	entries := GenerateEmptyMonth(4, 2025)
	entries[0].SetHours(8, 2, SourceTimeClock, NoteTimeClock)
	entries[1].SetHours(5, 0, SourceManual, "")
	entries[2].SetCode(CodeSickness, SourceLeaveSync, "")
	entries[3].SetCode(CodeSickness, SourceLeaveSync, "")

	s := Summarize(entries)
	assert.Equal(t, 13, s.StandardHours)
	assert.Equal(t, 2, s.OvertimeHours)
	assert.Equal(t, 4, s.DaysWithData)
	assert.Equal(t, 2, s.Codes[CodeSickness])
}

func TestDayEntry_Reset(t *testing.T) {
	e := NewPlaceholder(mustDate(t, "2025-04-25"))
	e.SetCode(CodeVacation, SourceLeaveSync, "vacation")
	e.Reset()

	assert.True(t, e.IsPlaceholder())
	assert.True(t, e.IsHoliday)
}

func TestSaveRequest_Validate(t *testing.T) {
	valid := SaveRequest{
		UserID: "u1", Month: 4, Year: 2025,
		Entries: []EntryInput{{Date: "2025-04-07", Total: Hours(8)}},
	}
	assert.NoError(t, valid.Validate())

	outside := valid
	outside.Entries = []EntryInput{{Date: "2025-05-01", Total: Hours(8)}}
	assert.Error(t, outside.Validate())

	dup := valid
	dup.Entries = []EntryInput{{Date: "2025-04-07"}, {Date: "2025-04-07"}}
	assert.Error(t, dup.Validate())

	badMonth := valid
	badMonth.Month = 13
	assert.Error(t, badMonth.Validate())

	negative := valid
	negative.Entries = []EntryInput{{Date: "2025-04-07", Overtime: -1}}
	assert.Error(t, negative.Validate())
}

func TestNewMonthView_LegacyVersion(t *testing.T) {
	l := &Ledger{ID: LegacyKey("u1", 4, 2025), UserID: "u1", Month: 4, Year: 2025, Version: 3}
	view := NewMonthView("u1", 4, 2025, l)
	assert.True(t, view.Stored)
	assert.Equal(t, int64(0), view.Version)

	l.ID = Key("u1", 4, 2025)
	assert.Equal(t, int64(3), NewMonthView("u1", 4, 2025, l).Version)

	empty := NewMonthView("u1", 4, 2025, nil)
	assert.False(t, empty.Stored)
	assert.Len(t, empty.Entries, 30)
}
