package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Code is a special day code that replaces the hour count.
type Code string

const (
	CodeSickness       Code = "M"
	CodePermission     Code = "P"
	CodeVacation       Code = "F"
	CodeAbsence        Code = "A"
	CodeRedundancyFund Code = "CIG"
)

var knownCodes = map[Code]struct{}{
	CodeSickness:       {},
	CodePermission:     {},
	CodeVacation:       {},
	CodeAbsence:        {},
	CodeRedundancyFund: {},
}

// ParseCode matches s case-insensitively against the known codes.
func ParseCode(s string) (Code, bool) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := knownCodes[c]
	return c, ok
}

// IsLeave reports whether c is a leave code that clock data must never overwrite.
func (c Code) IsLeave() bool {
	return c == CodeSickness || c == CodePermission || c == CodeAbsence
}

// Total is the value of a day: either an hour count or a special code, never both.
type Total struct {
	Hours int
	Code  Code
}

func Hours(h int) Total { return Total{Hours: h} }

func CodeTotal(c Code) Total { return Total{Code: c} }

func (t Total) IsCode() bool { return t.Code != "" }

func (t Total) IsZero() bool { return t.Code == "" && t.Hours == 0 }

func (t Total) String() string {
	if t.IsCode() {
		return string(t.Code)
	}
	return strconv.Itoa(t.Hours)
}

// ParseTotal reads a total as typed by a user. Empty input is the zero total,
// fractional hours are truncated.
func ParseTotal(s string) (Total, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Total{}, nil
	}
	if c, ok := ParseCode(s); ok {
		return CodeTotal(c), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Total{}, fmt.Errorf("%w: %q", ErrInvalidTotal, s)
	}
	return Hours(int(f)), nil
}

// MarshalJSON encodes codes as strings and hours as numbers.
func (t Total) MarshalJSON() ([]byte, error) {
	if t.IsCode() {
		return json.Marshal(string(t.Code))
	}
	return json.Marshal(t.Hours)
}

// UnmarshalJSON accepts a number, a numeric string, a code or null.
func (t *Total) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Total{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseTotal(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTotal, string(data))
	}
	*t = Hours(int(f))
	return nil
}
