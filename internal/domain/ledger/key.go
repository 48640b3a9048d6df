package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Key returns the canonical document key "{uid}_{month}_{year}" with an unpadded month.
func Key(userID string, month, year int) string {
	return fmt.Sprintf("%s_%d_%d", userID, month, year)
}

// LegacyKey returns the zero-padded key older documents were stored under.
// For months 10-12 it equals Key.
func LegacyKey(userID string, month, year int) string {
	return fmt.Sprintf("%s_%02d_%d", userID, month, year)
}

// ParseKey splits a canonical or legacy key. The user id may itself contain underscores.
func ParseKey(key string) (userID string, month, year int, err error) {
	yearIdx := strings.LastIndex(key, "_")
	if yearIdx <= 0 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	monthIdx := strings.LastIndex(key[:yearIdx], "_")
	if monthIdx <= 0 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	month, err = strconv.Atoi(key[monthIdx+1 : yearIdx])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	year, err = strconv.Atoi(key[yearIdx+1:])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if month < 1 || month > 12 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return key[:monthIdx], month, year, nil
}

// IsLegacyKey reports whether key uses the zero-padded month form.
func IsLegacyKey(key string) bool {
	userID, month, year, err := ParseKey(key)
	if err != nil {
		return false
	}
	return key != Key(userID, month, year)
}
