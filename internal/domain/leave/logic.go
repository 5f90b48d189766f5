package leave

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const day = 24 * time.Hour

// CalculateDays returns the inclusive day count between start and end,
// rounding a partial trailing day up.
func CalculateDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return int(math.Ceil(float64(end.Sub(start))/float64(day))) + 1, nil
}

// Overlaps reports whether two inclusive date ranges share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ValidDecision(decision string) bool {
	return decision == StatusApproved || decision == StatusRejected
}

var titleCaser = cases.Title(language.English)

// StatusLabel renders a status for display, e.g. "approved" as "Approved".
func StatusLabel(status string) string {
	return titleCaser.String(strings.ReplaceAll(status, "_", " "))
}
