package core

import "context"

type UserPatch struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Department *string
	Position   *string
}

type StoreAPI interface {
	CreateUserWithBalances(ctx context.Context, user NewUser, year int) (string, int, error)
	CreateUser(ctx context.Context, user NewUser) (string, error)
	ListEmployees(ctx context.Context, year int) ([]Employee, error)
	GetEmployee(ctx context.Context, userID string, year int) (Employee, error)
	UpdateUser(ctx context.Context, userID string, patch UserPatch) error
	Summary(ctx context.Context) (Summary, error)
	ListManagers(ctx context.Context) ([]Manager, error)
	UserRole(ctx context.Context, userID string) (string, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	CreateDepartment(ctx context.Context, name, managerID string) (Department, error)
}
