package core

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"elms/internal/domain/auth"
)

type Service struct {
	store           StoreAPI
	defaultPassword string
	Now             func() time.Time
}

func NewService(store StoreAPI, defaultPassword string) *Service {
	return &Service{store: store, defaultPassword: defaultPassword, Now: time.Now}
}

// CreateEmployee provisions an employee account with the default password
// and a balance row per leave type for the current year.
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (CreatedEmployee, error) {
	first, last := SplitName(in.Name)
	if first == "" {
		return CreatedEmployee{}, ErrNameRequired
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return CreatedEmployee{}, ErrEmailRequired
	}

	hash, err := auth.HashPassword(s.defaultPassword)
	if err != nil {
		return CreatedEmployee{}, err
	}

	now := s.Now()
	id, created, err := s.store.CreateUserWithBalances(ctx, NewUser{
		Username:      email,
		Email:         email,
		PasswordHash:  hash,
		Role:          auth.RoleEmployee,
		FirstName:     first,
		LastName:      last,
		Department:    strings.TrimSpace(in.Department),
		Position:      strings.TrimSpace(in.Position),
		DateOfJoining: now,
	}, now.Year())
	if err != nil {
		return CreatedEmployee{}, err
	}

	emp, err := s.store.GetEmployee(ctx, id, now.Year())
	if err != nil {
		return CreatedEmployee{}, err
	}
	return CreatedEmployee{Employee: emp, BalancesCreated: created}, nil
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.store.ListEmployees(ctx, s.Now().Year())
}

func (s *Service) GetEmployee(ctx context.Context, userID string) (Employee, error) {
	return s.store.GetEmployee(ctx, userID, s.Now().Year())
}

func (s *Service) UpdateEmployee(ctx context.Context, userID string, in UpdateEmployeeInput) (Employee, error) {
	var patch UserPatch
	if in.Name != nil {
		first, last := SplitName(*in.Name)
		if first == "" {
			return Employee{}, ErrNameRequired
		}
		patch.FirstName, patch.LastName = &first, &last
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return Employee{}, ErrEmailRequired
		}
		patch.Email = &email
	}
	patch.Department = trimmed(in.Department)
	patch.Position = trimmed(in.Position)

	if err := s.store.UpdateUser(ctx, userID, patch); err != nil {
		return Employee{}, err
	}
	return s.GetEmployee(ctx, userID)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.store.Summary(ctx)
}

func (s *Service) CreateManager(ctx context.Context, in CreateManagerInput) (Manager, error) {
	first, last := SplitName(in.Name)
	if first == "" {
		return Manager{}, ErrNameRequired
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return Manager{}, ErrEmailRequired
	}
	if in.Password == "" {
		return Manager{}, ErrPasswordRequired
	}
	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return Manager{}, ErrPasswordTooLong
	}
	if err != nil {
		return Manager{}, err
	}

	now := s.Now()
	id, err := s.store.CreateUser(ctx, NewUser{
		Username:      email,
		Email:         email,
		PasswordHash:  hash,
		Role:          auth.RoleManager,
		FirstName:     first,
		LastName:      last,
		DateOfJoining: now,
	})
	if err != nil {
		return Manager{}, err
	}
	return Manager{ID: id, Username: email, FirstName: first, LastName: last, Email: email, CreatedAt: now}, nil
}

func (s *Service) ListManagers(ctx context.Context) ([]Manager, error) {
	return s.store.ListManagers(ctx)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.store.ListDepartments(ctx)
}

var departmentManagerRoles = []string{auth.RoleManager, auth.RoleHR, auth.RoleAdmin}

func (s *Service) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (Department, error) {
	name := strings.TrimSpace(in.Name)
	managerID := strings.TrimSpace(in.ManagerID)
	if name == "" || managerID == "" {
		return Department{}, ErrDepartmentRequired
	}
	role, err := s.store.UserRole(ctx, managerID)
	if err != nil {
		return Department{}, err
	}
	if !slices.Contains(departmentManagerRoles, role) {
		return Department{}, ErrInvalidManager
	}
	return s.store.CreateDepartment(ctx, name, managerID)
}
