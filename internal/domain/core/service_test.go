package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elms/internal/domain/apperr"
	"elms/internal/domain/auth"
)

type fakeStore struct {
	users       map[string]NewUser
	roles       map[string]string
	balanceYear int
	patch       UserPatch
	departments []Department
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]NewUser{}, roles: map[string]string{}}
}

func (f *fakeStore) CreateUserWithBalances(ctx context.Context, user NewUser, year int) (string, int, error) {
	id, err := f.CreateUser(ctx, user)
	if err != nil {
		return "", 0, err
	}
	f.balanceYear = year
	return id, 3, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user NewUser) (string, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return "", ErrEmailExists
		}
	}
	id := "u-" + user.Email
	f.users[id] = user
	f.roles[id] = user.Role
	return id, nil
}

func (f *fakeStore) ListEmployees(context.Context, int) ([]Employee, error) {
	return nil, nil
}

func (f *fakeStore) GetEmployee(_ context.Context, userID string, _ int) (Employee, error) {
	u, ok := f.users[userID]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return Employee{ID: userID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Department: u.Department, Role: u.Role}, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, userID string, patch UserPatch) error {
	if _, ok := f.users[userID]; !ok {
		return ErrEmployeeNotFound
	}
	f.patch = patch
	return nil
}

func (f *fakeStore) Summary(context.Context) (Summary, error) {
	return Summary{}, nil
}

func (f *fakeStore) ListManagers(context.Context) ([]Manager, error) {
	return nil, nil
}

func (f *fakeStore) UserRole(_ context.Context, userID string) (string, error) {
	role, ok := f.roles[userID]
	if !ok {
		return "", ErrManagerNotFound
	}
	return role, nil
}

func (f *fakeStore) ListDepartments(context.Context) ([]Department, error) {
	return f.departments, nil
}

func (f *fakeStore) CreateDepartment(_ context.Context, name, managerID string) (Department, error) {
	d := Department{ID: "d-" + name, Name: name, Manager: &ManagerRef{ID: managerID}}
	f.departments = append(f.departments, d)
	return d, nil
}

func newCoreService(store *fakeStore) *Service {
	svc := NewService(store, "defaultPassword123")
	svc.Now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateEmployeeProvisionsUserAndBalances(t *testing.T) {
	store := newFakeStore()
	svc := newCoreService(store)

	out, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		Name: "Grace Brewster Hopper", Email: " Grace@Example.com ", Department: "Engineering", Position: "Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.BalancesCreated)
	assert.Equal(t, 2026, store.balanceYear)
	assert.Equal(t, "grace@example.com", out.Employee.Email)

	saved := store.users[out.Employee.ID]
	assert.Equal(t, auth.RoleEmployee, saved.Role)
	assert.Equal(t, "Grace", saved.FirstName)
	assert.Equal(t, "Brewster Hopper", saved.LastName)
	assert.Equal(t, "grace@example.com", saved.Username)
	require.NoError(t, auth.CheckPassword(saved.PasswordHash, "defaultPassword123"))
}

func TestCreateEmployeeRejectsDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := newCoreService(store)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Name: "A B", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = svc.CreateEmployee(context.Background(), CreateEmployeeInput{Name: "C D", Email: "A@example.com"})
	require.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateEmployeeRequiresNameAndEmail(t *testing.T) {
	svc := newCoreService(newFakeStore())

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Email: "a@example.com"})
	require.ErrorIs(t, err, ErrNameRequired)
	_, err = svc.CreateEmployee(context.Background(), CreateEmployeeInput{Name: "A"})
	require.ErrorIs(t, err, ErrEmailRequired)
}

func TestUpdateEmployeeBuildsPatch(t *testing.T) {
	store := newFakeStore()
	svc := newCoreService(store)
	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Name: "A B", Email: "a@example.com"})
	require.NoError(t, err)

	name := "Alan Mathison Turing"
	blank := "   "
	position := " Lead "
	_, err = svc.UpdateEmployee(context.Background(), created.Employee.ID, UpdateEmployeeInput{
		Name: &name, Department: &blank, Position: &position,
	})
	require.NoError(t, err)

	require.NotNil(t, store.patch.FirstName)
	assert.Equal(t, "Alan", *store.patch.FirstName)
	assert.Equal(t, "Mathison Turing", *store.patch.LastName)
	assert.Nil(t, store.patch.Email)
	assert.Nil(t, store.patch.Department)
	assert.Equal(t, "Lead", *store.patch.Position)
}

func TestUpdateEmployeeErrors(t *testing.T) {
	store := newFakeStore()
	svc := newCoreService(store)

	empty := ""
	_, err := svc.UpdateEmployee(context.Background(), "u-x", UpdateEmployeeInput{Email: &empty})
	require.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.UpdateEmployee(context.Background(), "missing", UpdateEmployeeInput{})
	require.ErrorIs(t, err, ErrEmployeeNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateManagerRequiresPassword(t *testing.T) {
	svc := newCoreService(newFakeStore())
	_, err := svc.CreateManager(context.Background(), CreateManagerInput{Name: "M N", Email: "m@example.com"})
	require.ErrorIs(t, err, ErrPasswordRequired)

	m, err := svc.CreateManager(context.Background(), CreateManagerInput{Name: "M N", Email: "m@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "m@example.com", m.Username)
}

func TestCreateDepartmentChecksManager(t *testing.T) {
	store := newFakeStore()
	svc := newCoreService(store)

	manager, err := svc.CreateManager(context.Background(), CreateManagerInput{Name: "M N", Email: "m@example.com", Password: "pw"})
	require.NoError(t, err)
	worker, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Name: "E F", Email: "e@example.com"})
	require.NoError(t, err)

	cases := []struct {
		name  string
		input CreateDepartmentInput
		want  error
	}{
		{name: "missing fields", input: CreateDepartmentInput{Name: "Ops"}, want: ErrDepartmentRequired},
		{name: "unknown manager", input: CreateDepartmentInput{Name: "Ops", ManagerID: "ghost"}, want: ErrManagerNotFound},
		{name: "employee cannot manage", input: CreateDepartmentInput{Name: "Ops", ManagerID: worker.Employee.ID}, want: ErrInvalidManager},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateDepartment(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}

	dep, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: " Ops ", ManagerID: manager.ID})
	require.NoError(t, err)
	assert.Equal(t, "Ops", dep.Name)
}
