package db

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"elms/internal/domain/auth"
	"elms/internal/platform/config"
	"elms/internal/platform/querier"
)

//go:embed seed_default.yaml
var defaultSeed []byte

type SeedData struct {
	LeaveTypes  []SeedLeaveType  `yaml:"leaveTypes"`
	Departments []SeedDepartment `yaml:"departments"`
	Holidays    []SeedHoliday    `yaml:"holidays"`
}

type SeedLeaveType struct {
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	AllowedDays      int    `yaml:"allowedDays"`
	RequiresApproval *bool  `yaml:"requiresApproval"`
}

type SeedDepartment struct {
	Name string `yaml:"name"`
}

type SeedHoliday struct {
	Name string `yaml:"name"`
	Date string `yaml:"date"`
}

type SeedSummary struct {
	AdminSeeded bool `json:"adminSeeded"`
	LeaveTypes  int  `json:"leaveTypes"`
	Departments int  `json:"departments"`
	Holidays    int  `json:"holidays"`
}

// LoadSeedData reads path when it exists, otherwise the bundled defaults.
func LoadSeedData(path string) (SeedData, error) {
	raw := defaultSeed
	if strings.TrimSpace(path) != "" {
		fileRaw, err := os.ReadFile(path)
		switch {
		case err == nil:
			raw = fileRaw
		case !errors.Is(err, os.ErrNotExist):
			return SeedData{}, fmt.Errorf("read seed file: %w", err)
		}
	}
	return ParseSeedData(raw)
}

func ParseSeedData(raw []byte) (SeedData, error) {
	var data SeedData
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return SeedData{}, fmt.Errorf("decode seed data: %w", err)
	}
	if err := data.validate(); err != nil {
		return SeedData{}, err
	}
	return data, nil
}

func (d SeedData) validate() error {
	names := map[string]struct{}{}
	for i, lt := range d.LeaveTypes {
		name := strings.TrimSpace(lt.Name)
		if name == "" {
			return fmt.Errorf("leaveTypes[%d]: name is required", i)
		}
		if lt.AllowedDays < 0 {
			return fmt.Errorf("leaveTypes[%d]: allowedDays must not be negative", i)
		}
		if _, dup := names[strings.ToLower(name)]; dup {
			return fmt.Errorf("leaveTypes[%d]: duplicate name %q", i, name)
		}
		names[strings.ToLower(name)] = struct{}{}
	}
	for i, dept := range d.Departments {
		if strings.TrimSpace(dept.Name) == "" {
			return fmt.Errorf("departments[%d]: name is required", i)
		}
	}
	for i, h := range d.Holidays {
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("holidays[%d]: name is required", i)
		}
		if _, err := time.Parse("2006-01-02", h.Date); err != nil {
			return fmt.Errorf("holidays[%d]: date must be YYYY-MM-DD", i)
		}
	}
	return nil
}

func Seed(ctx context.Context, q querier.Querier, cfg config.Config, data SeedData) (SeedSummary, error) {
	var summary SeedSummary

	seeded, err := ensureAdminUser(ctx, q, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		return summary, err
	}
	summary.AdminSeeded = seeded

	for _, lt := range data.LeaveTypes {
		requiresApproval := true
		if lt.RequiresApproval != nil {
			requiresApproval = *lt.RequiresApproval
		}
		tag, err := q.Exec(ctx, `
    INSERT INTO leave_types (name, description, allowed_days, requires_approval)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (name) DO NOTHING
  `, strings.TrimSpace(lt.Name), lt.Description, lt.AllowedDays, requiresApproval)
		if err != nil {
			return summary, fmt.Errorf("seed leave type %s: %w", lt.Name, err)
		}
		summary.LeaveTypes += int(tag.RowsAffected())
	}

	for _, dept := range data.Departments {
		tag, err := q.Exec(ctx, `
    INSERT INTO departments (name) VALUES ($1)
    ON CONFLICT (name) DO NOTHING
  `, strings.TrimSpace(dept.Name))
		if err != nil {
			return summary, fmt.Errorf("seed department %s: %w", dept.Name, err)
		}
		summary.Departments += int(tag.RowsAffected())
	}

	for _, h := range data.Holidays {
		date, _ := time.Parse("2006-01-02", h.Date)
		tag, err := q.Exec(ctx, `
    INSERT INTO holidays (name, date) VALUES ($1,$2)
    ON CONFLICT (date) DO NOTHING
  `, strings.TrimSpace(h.Name), date)
		if err != nil {
			return summary, fmt.Errorf("seed holiday %s: %w", h.Name, err)
		}
		summary.Holidays += int(tag.RowsAffected())
	}

	return summary, nil
}

func ensureAdminUser(ctx context.Context, q querier.Querier, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	tag, err := q.Exec(ctx, `
    INSERT INTO users (username, email, password_hash, role, first_name, last_name)
    VALUES ($1,$1,$2,$3,'System','Admin')
    ON CONFLICT (email) DO NOTHING
  `, email, hash, auth.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("seed admin user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
