package timeclock

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotClockedIn      = errors.New("you have not clocked in today")
	ErrAlreadyClockedOut = errors.New("you have already clocked out today")
	ErrAutoClosed        = errors.New("today's session was closed automatically")
	ErrRecordNotFound    = errors.New("time clock record not found")
	ErrStatusChanged     = errors.New("time clock record status changed concurrently")
	ErrInvalidClockTime  = errors.New("invalid clock time")
	ErrClockOutTooSoon   = errors.New("cannot clock out in the same minute as clock-in")
)

// StateConflictError reports a clock action refused because of the record's current state.
// It unwraps to ErrAlreadyClockedOut, ErrAutoClosed or ErrClockOutTooSoon.
type StateConflictError struct {
	Err    error
	Record Record
}

func (e *StateConflictError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	fmt.Fprintf(&b, ": clocked in at %s", e.Record.ClockInTime)
	if e.Record.ClockOutTime != nil {
		fmt.Fprintf(&b, ", clocked out at %s", *e.Record.ClockOutTime)
	}
	if e.Record.AutoCloseReason != nil {
		fmt.Fprintf(&b, " (%s)", *e.Record.AutoCloseReason)
	}
	return b.String()
}

func (e *StateConflictError) Unwrap() error { return e.Err }
