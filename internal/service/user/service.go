package user

import (
	"context"
	"fmt"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
)

type userService struct {
	repo user.UserRepository
}

func NewUserService(repo user.UserRepository) user.UserService {
	return &userService{repo: repo}
}

func (s *userService) Get(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}

func (s *userService) List(ctx context.Context, filter user.Filter) ([]user.UserResponse, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	resp := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, user.NewUserResponse(u))
	}
	return resp, nil
}

// Upsert registers a profile on first sight. New profiles are active with badge scanning disabled.
func (s *userService) Upsert(ctx context.Context, req user.UpsertUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.repo.Upsert(ctx, user.User{
		ID:          req.ID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Active:      true,
	})
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}

func (s *userService) Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}

	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.QRActive != nil {
		u.QRActive = *req.QRActive
	}
	if req.Active != nil {
		u.Active = *req.Active
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user.NewUserResponse(u), nil
}
