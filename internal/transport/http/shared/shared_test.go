package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "2026-03-02", want: "2026-03-02"},
		{raw: "2026-03-02T10:00:00Z", want: "2026-03-02"},
		{raw: "", want: "0001-01-01"},
		{raw: "02/03/2026", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.raw, err)
		}
		if got.Format("2006-01-02") != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.raw, tc.want, got.Format("2006-01-02"))
		}
	}
}

func TestPageFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil)
	page := PageFromQuery(req, 50, 200)
	if page.Limit != 200 || page.Offset != 20 {
		t.Fatalf("unexpected page: %+v", page)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=-1&offset=x", nil)
	page = PageFromQuery(req, 50, 200)
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", page)
	}
}

func TestValidatorRejectSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("reason", " ", "is required")
	v.Required("leaveType", "", "is required")
	v.Enum("decision", "maybe", []string{"approved", "rejected"}, "must be approved or rejected")
	v.UUID("requestId", "nope")

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var env struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "validation_error" {
		t.Fatalf("unexpected code %q", env.Error.Code)
	}
	fields := env.Error.Details.Fields
	if len(fields) != 4 || fields[0].Field != "decision" || fields[3].Field != "requestId" {
		t.Fatalf("unexpected issues: %+v", fields)
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start, _ := v.Date("startDate", "2026-03-05")
	end, _ := v.Date("endDate", "2026-03-01")
	v.DateOrder("startDate", start, "endDate", end)
	if len(v.Issues()) != 2 {
		t.Fatalf("expected two issues, got %+v", v.Issues())
	}
}

func TestValidatorYearAndEmail(t *testing.T) {
	tests := []struct {
		name   string
		year   string
		email  string
		want   int
		issues int
	}{
		{name: "blank year defaults", year: "", email: "ana@example.com", want: 0},
		{name: "valid year", year: "2026", email: "ana@example.com", want: 2026},
		{name: "year out of range", year: "1800", email: "ana@example.com", issues: 1},
		{name: "bad email", year: "2026", email: "Ana <ana@example.com>", want: 2026, issues: 1},
		{name: "both bad", year: "soon", email: "ana", issues: 2},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			v := NewValidator()
			got := v.Year("year", tc.year)
			v.Email("email", tc.email)
			if got != tc.want || len(v.Issues()) != tc.issues {
				t.Fatalf("got year %d with issues %+v", got, v.Issues())
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("unexpected ip %q", got)
	}
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.1" {
		t.Fatalf("unexpected forwarded ip %q", got)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatal("expected unknown field error")
	}
}
