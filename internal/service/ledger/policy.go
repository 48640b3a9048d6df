package ledger

import "github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"

// Reasons a clock write is refused.
const (
	ReasonLeaveCode   = "entry holds a leave code"
	ReasonManualEntry = "entry was edited manually"
)

// applyClockHours decides whether clock-computed hours may replace e and writes them if so.
// Leave codes and manual edits are authoritative over clock data; everything else,
// including earlier clock writes and placeholders, is overwritten.
func applyClockHours(e *ledger.DayEntry, standard, overtime int, note string) ledger.ClockSyncResult {
	if e.HasData || !e.Total.IsZero() {
		if e.Total.IsCode() && e.Total.Code.IsLeave() {
			return ledger.ClockSyncResult{Reason: ReasonLeaveCode}
		}
		if e.Source == ledger.SourceManual {
			return ledger.ClockSyncResult{Reason: ReasonManualEntry}
		}
	}

	if note == "" {
		note = ledger.NoteTimeClock
	}
	e.SetHours(standard, overtime, ledger.SourceTimeClock, note)
	return ledger.ClockSyncResult{Applied: true}
}

// applyManualEdit writes admin input into e. It reports whether e changed.
// Clearing every field turns the entry back into a placeholder.
func applyManualEdit(e *ledger.DayEntry, in ledger.EntryInput, c ledger.Constraint) bool {
	next := *e
	next.Total = in.Total
	next.Overtime = in.Overtime
	next.Notes = in.Notes
	next = ledger.Normalize(next, c)

	if next.Total == e.Total && next.Overtime == e.Overtime && next.Notes == e.Notes {
		return false
	}

	if next.Total.IsZero() && next.Overtime == 0 && next.Notes == "" {
		e.Reset()
		return true
	}

	next.Source = ledger.SourceManual
	next.HasData = true
	*e = next
	return true
}
