package ledger

import "errors"

var (
	ErrLedgerNotFound = errors.New("monthly hours ledger not found")
	ErrLedgerConflict = errors.New("monthly hours ledger was modified concurrently")
	ErrInvalidTotal   = errors.New("total must be an hour count or one of M, P, F, A, CIG")
	ErrInvalidMonth   = errors.New("invalid month or year")
	ErrInvalidKey     = errors.New("invalid ledger key")
	ErrDateOutOfMonth = errors.New("entry date is outside the ledger month")
)
