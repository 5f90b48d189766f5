package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"elms/internal/domain/auth"
	"elms/internal/domain/core"
	"elms/internal/domain/leave"
	"elms/internal/domain/scoring"
)

func exportRows() []leave.RequestView {
	decided := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []leave.RequestView{
		{
			Request: leave.Request{
				ID: "r-1", StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
				DurationDays: 3, Status: "approved", ApproverID: "m-1", DecidedAt: &decided,
				CreatedAt: time.Date(2026, 2, 20, 8, 30, 0, 0, time.UTC),
			},
			EmployeeName: "Ada Lovelace", EmployeeEmail: "ada@example.com", Department: "Engineering", LeaveTypeName: "Casual",
		},
		{
			Request: leave.Request{
				ID: "r-2", StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
				DurationDays: 1, Status: "rejected", RejectionReason: "release week, sorry",
				CreatedAt: time.Date(2026, 3, 30, 17, 0, 0, 0, time.UTC),
			},
			EmployeeName: "Alan Turing", EmployeeEmail: "alan@example.com", Department: "", LeaveTypeName: "Sick",
		},
	}
}

func TestWriteRequestsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRequestsCSV(&buf, exportRows()); err != nil {
		t.Fatalf("csv error: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "requests_export", buf.Bytes())
}

func TestWriteScorePDF(t *testing.T) {
	report := scoring.Compute(scoring.Input{
		JoinedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AsOf:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	var buf bytes.Buffer
	if err := WriteScorePDF(&buf, Subject{Name: "Ada Lovelace", Email: "ada@example.com", Department: "Engineering"}, report); err != nil {
		t.Fatalf("pdf error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected pdf header, got %q", buf.Bytes()[:8])
	}
}

type fakeStore struct {
	calls []string
}

func (f *fakeStore) ExportRequests(context.Context, ExportFilter) ([]leave.RequestView, error) {
	return exportRows(), nil
}

func (f *fakeStore) EmployeeDashboard(context.Context, string, int) (EmployeeDashboard, error) {
	f.calls = append(f.calls, "employee")
	return EmployeeDashboard{}, nil
}

func (f *fakeStore) ManagerDashboard(context.Context, string, int) (ManagerDashboard, error) {
	f.calls = append(f.calls, "manager")
	return ManagerDashboard{}, nil
}

func (f *fakeStore) HRDashboard(context.Context, time.Time) (HRDashboard, error) {
	f.calls = append(f.calls, "hr")
	return HRDashboard{}, nil
}

type fakeEmployees struct{}

func (fakeEmployees) GetEmployee(_ context.Context, userID string) (core.Employee, error) {
	return core.Employee{ID: userID, Name: "Ada Lovelace", Email: "ada@example.com"}, nil
}

type fakeScorer struct{}

func (fakeScorer) Score(_ context.Context, userID string, _ bool) (scoring.Report, error) {
	return scoring.Report{UserID: userID, OverallScore: 80}, nil
}

func TestDashboardByRole(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fakeEmployees{}, fakeScorer{})

	for _, role := range []string{auth.RoleEmployee, auth.RoleManager, auth.RoleHR, auth.RoleAdmin} {
		if _, err := svc.Dashboard(context.Background(), auth.UserContext{UserID: "u-1", RoleName: role}); err != nil {
			t.Fatalf("dashboard error: %v", err)
		}
	}
	want := []string{"employee", "manager", "hr", "hr"}
	for i, call := range want {
		if store.calls[i] != call {
			t.Fatalf("call %d: expected %s, got %s", i, call, store.calls[i])
		}
	}
}

func TestServiceExports(t *testing.T) {
	svc := NewService(&fakeStore{}, fakeEmployees{}, fakeScorer{})

	var pdf bytes.Buffer
	if err := svc.ScorePDF(context.Background(), &pdf, "u-1"); err != nil {
		t.Fatalf("pdf error: %v", err)
	}
	if pdf.Len() == 0 {
		t.Fatal("expected pdf bytes")
	}

	var csvBuf bytes.Buffer
	if err := svc.RequestsCSV(context.Background(), &csvBuf, ExportFilter{}); err != nil {
		t.Fatalf("csv error: %v", err)
	}
	if !bytes.HasPrefix(csvBuf.Bytes(), []byte("id,employee,email")) {
		t.Fatalf("unexpected csv: %s", csvBuf.String())
	}
}
