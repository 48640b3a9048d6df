package user

import "context"

type UserService interface {
	Get(ctx context.Context, id string) (UserResponse, error)
	List(ctx context.Context, filter Filter) ([]UserResponse, error)
	Upsert(ctx context.Context, req UpsertUserRequest) (UserResponse, error)
	Update(ctx context.Context, req UpdateUserRequest) (UserResponse, error)
}
