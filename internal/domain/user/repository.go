package user

import (
	"context"
)

type Filter struct {
	Role       *Role
	ActiveOnly bool
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context, filter Filter) ([]User, error)
	// Upsert creates the profile or refreshes email, name and role of an existing one.
	Upsert(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) error
}
