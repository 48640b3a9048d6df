package user

import "time"

type Role string

const (
	RoleUser  Role = "user"  // Employee: clocks in, requests leave, reads own ledger
	RoleAdmin Role = "admin" // Edits ledgers, reviews leave, manages kiosks
)

// User is the local profile of an identity issued by the external provider.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	QRActive    bool
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin checks if user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanUseKiosk reports whether a kiosk scan of the user's badge is accepted.
func (u *User) CanUseKiosk() bool {
	return u.Active && u.QRActive
}
