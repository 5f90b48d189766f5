package leave

import (
	"errors"
	"testing"
	"time"
)

func TestCalculateDays(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	days, err := CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("expected 1 day, got %v", days)
	}

	end = time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	days, err = CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 3 {
		t.Fatalf("expected 3 days, got %v", days)
	}
}

func TestCalculateDaysRoundsPartialDayUp(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 11, 6, 0, 0, 0, time.UTC)

	days, err := CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 3 {
		t.Fatalf("expected 3 days, got %v", days)
	}
}

func TestCalculateDaysInvalid(t *testing.T) {
	start := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

	_, err := CalculateDays(start, end)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		name string
		a    [2]time.Time
		b    [2]time.Time
		want bool
	}{
		{name: "identical", a: [2]time.Time{d(1), d(5)}, b: [2]time.Time{d(1), d(5)}, want: true},
		{name: "shared edge day", a: [2]time.Time{d(1), d(5)}, b: [2]time.Time{d(5), d(8)}, want: true},
		{name: "contained", a: [2]time.Time{d(1), d(10)}, b: [2]time.Time{d(3), d(4)}, want: true},
		{name: "adjacent", a: [2]time.Time{d(1), d(5)}, b: [2]time.Time{d(6), d(8)}, want: false},
		{name: "disjoint", a: [2]time.Time{d(10), d(12)}, b: [2]time.Time{d(1), d(2)}, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a[0], tc.a[1], tc.b[0], tc.b[1]); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if got := Overlaps(tc.b[0], tc.b[1], tc.a[0], tc.a[1]); got != tc.want {
				t.Fatalf("expected symmetric result %v, got %v", tc.want, got)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusLabel(StatusApproved); got != "Approved" {
		t.Fatalf("expected Approved, got %q", got)
	}
	if got := StatusLabel(StatusPending); got != "Pending" {
		t.Fatalf("expected Pending, got %q", got)
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 5, 4, 23, 30, 0, 0, time.FixedZone("x", 3600))
	got := DateOnly(in)
	if !got.Equal(time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
}
