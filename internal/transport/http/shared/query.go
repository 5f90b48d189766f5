package shared

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate returns the calendar day of a YYYY-MM-DD or RFC3339 value at UTC
// midnight. Blank input yields the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if day, err := time.Parse(dateLayout, value); err == nil {
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

type Page struct {
	Limit  int
	Offset int
}

// PageFromQuery reads limit and offset. Malformed values fall back to the
// defaults and limit is capped at maxLimit.
func PageFromQuery(r *http.Request, defaultLimit, maxLimit int) Page {
	q := r.URL.Query()
	page := Page{
		Limit:  queryInt(q.Get("limit"), defaultLimit, 1),
		Offset: queryInt(q.Get("offset"), 0, 0),
	}
	if maxLimit > 0 {
		page.Limit = min(page.Limit, maxLimit)
	}
	return page
}

func queryInt(raw string, fallback, floor int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < floor {
		return fallback
	}
	return v
}
