package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"elms/internal/domain/auth"
	"elms/internal/platform/logger"
	"elms/internal/platform/querier"
)

type Store struct {
	DB querier.TxQuerier
}

func NewStore(db querier.TxQuerier) *Store {
	return &Store{DB: db}
}

const insertUserSQL = `
    INSERT INTO users (username, email, password_hash, role, first_name, last_name, department_id, department_label, position, date_of_joining)
    VALUES ($1,$2,$3,$4,$5,$6,(SELECT id FROM departments WHERE name = $7),$7,$8,$9)
    RETURNING id
`

func insertUser(ctx context.Context, q querier.Querier, user NewUser) (string, error) {
	var id string
	err := q.QueryRow(ctx, insertUserSQL,
		user.Username, user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName,
		user.Department, user.Position, user.DateOfJoining,
	).Scan(&id)
	if querier.IsUniqueViolation(err) {
		return "", ErrEmailExists
	}
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (s *Store) CreateUser(ctx context.Context, user NewUser) (string, error) {
	return insertUser(ctx, s.DB, user)
}

// CreateUserWithBalances inserts the user and one balance row per leave type
// for year in a single transaction.
func (s *Store) CreateUserWithBalances(ctx context.Context, user NewUser, year int) (string, int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", 0, err
	}
	rollback := func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.S().Warnw("create employee rollback failed", "err", rbErr)
		}
	}

	id, err := insertUser(ctx, tx, user)
	if err != nil {
		rollback()
		return "", 0, err
	}
	tag, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (user_id, leave_type_id, year, balance)
    SELECT $1, id, $2, allowed_days
    FROM leave_types
  `, id, year)
	if err != nil {
		rollback()
		return "", 0, fmt.Errorf("create balances: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", 0, err
	}
	return id, int(tag.RowsAffected()), nil
}

const employeeColumns = `
    u.id, u.first_name, u.last_name, u.email, u.role, COALESCE(d.name, u.department_label), u.position, u.date_of_joining,
    COALESCE((SELECT SUM(b.balance) FROM leave_balances b WHERE b.user_id = u.id AND b.year = $1), 0)
`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Role, &e.Department, &e.Position, &e.DateOfJoining, &e.LeaveBalance); err != nil {
		return Employee{}, err
	}
	e.Name = e.FirstName + " " + e.LastName
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context, year int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+employeeColumns+`
    FROM users u
    LEFT JOIN departments d ON d.id = u.department_id
    WHERE u.role = $2
    ORDER BY u.first_name, u.last_name
  `, year, auth.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := make([]Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, userID string, year int) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `SELECT `+employeeColumns+`
    FROM users u
    LEFT JOIN departments d ON d.id = u.department_id
    WHERE u.id = $2
  `, year, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// UpdateUser is the only write path for profile fields. The department
// reference follows the label whenever the label changes, and the username
// follows the email.
func (s *Store) UpdateUser(ctx context.Context, userID string, patch UserPatch) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET first_name = COALESCE($2, first_name),
        last_name = COALESCE($3, last_name),
        email = COALESCE($4, email),
        username = COALESCE($4, username),
        department_label = COALESCE($5, department_label),
        department_id = CASE WHEN $5::text IS NULL THEN department_id
                             ELSE (SELECT id FROM departments WHERE name = $5) END,
        position = COALESCE($6, position),
        updated_at = now()
    WHERE id = $1
  `, userID, patch.FirstName, patch.LastName, patch.Email, patch.Department, patch.Position)
	if querier.IsUniqueViolation(err) {
		return ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	if err := s.DB.QueryRow(ctx, `
    SELECT (SELECT COUNT(1) FROM users WHERE role = $1),
           (SELECT COUNT(1) FROM leave_requests)
  `, auth.RoleEmployee).Scan(&out.TotalEmployees, &out.TotalLeaveRequests); err != nil {
		return Summary{}, fmt.Errorf("load summary: %w", err)
	}
	return out, nil
}

func (s *Store) ListManagers(ctx context.Context) ([]Manager, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, username, first_name, last_name, email, created_at
    FROM users
    WHERE role = $1
    ORDER BY first_name, last_name
  `, auth.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	defer rows.Close()

	out := make([]Manager, 0)
	for rows.Next() {
		var m Manager
		if err := rows.Scan(&m.ID, &m.Username, &m.FirstName, &m.LastName, &m.Email, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) UserRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.DB.QueryRow(ctx, "SELECT role FROM users WHERE id = $1", userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrManagerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load user role: %w", err)
	}
	return role, nil
}

// ListDepartments omits departments whose manager no longer resolves.
func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, d.created_at, m.id, m.first_name, m.last_name, m.email
    FROM departments d
    JOIN users m ON m.id = d.manager_id
    ORDER BY d.name
  `)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	out := make([]Department, 0)
	for rows.Next() {
		var d Department
		var m ManagerRef
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &m.ID, &m.FirstName, &m.LastName, &m.Email); err != nil {
			return nil, err
		}
		d.Manager = &m
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, name, managerID string) (Department, error) {
	d := Department{Name: name}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, manager_id)
    VALUES ($1,$2)
    RETURNING id, created_at
  `, name, managerID).Scan(&d.ID, &d.CreatedAt)
	if querier.IsUniqueViolation(err) {
		return Department{}, ErrDepartmentExists
	}
	if err != nil {
		return Department{}, fmt.Errorf("create department: %w", err)
	}

	var m ManagerRef
	if err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, email FROM users WHERE id = $1
  `, managerID).Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email); err != nil {
		logger.S().Warnw("load department manager failed", "department_id", d.ID, "manager_id", managerID, "err", err)
		return d, nil
	}
	d.Manager = &m
	return d, nil
}
