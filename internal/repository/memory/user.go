package memory

import (
	"context"
	"sort"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
)

type userRepository struct {
	s *Store
}

func NewUserRepository(s *Store) user.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context, filter user.Filter) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []user.User{}
	for _, u := range r.s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.ActiveOnly && !u.Active {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *userRepository) Upsert(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.users {
		if other.ID != u.ID && other.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}

	now := r.s.now()
	if stored, ok := r.s.users[u.ID]; ok {
		stored.Email = u.Email
		stored.DisplayName = u.DisplayName
		stored.Role = u.Role
		stored.UpdatedAt = now
		r.s.users[u.ID] = stored
		return stored, nil
	}

	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users[u.ID] = u
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[u.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.CreatedAt = stored.CreatedAt
	u.UpdatedAt = r.s.now()
	r.s.users[u.ID] = u
	return nil
}
