package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCountsRequests(t *testing.T) {
	c := New("test")
	c.Record(http.MethodGet, "/api/leave/types", 200, 10*time.Millisecond)
	c.Record(http.MethodGet, "/api/leave/types", 200, 20*time.Millisecond)
	c.Record(http.MethodPost, "/api/leave/submit", http.StatusTooManyRequests, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/leave/types", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rateLimited))
}

func TestDomainCounters(t *testing.T) {
	c := New("test")
	c.LeaveOutcome("submit", "ok")
	c.LeaveOutcome("decide", "insufficient_balance")
	c.ScoreComputed(true)
	c.ScoreComputed(false)
	c.ScoreComputed(false)
	c.JobRun("balance_rollover", "completed")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.leaveOps.WithLabelValues("submit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.leaveOps.WithLabelValues("decide", "insufficient_balance")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.scoreReads.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.jobRuns.WithLabelValues("balance_rollover", "completed")))
}

func TestHandlerExposesPrefixedMetrics(t *testing.T) {
	c := New("elms")
	c.LeaveOutcome("submit", "ok")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `elms_leave_operations_total{operation="submit",outcome="ok"} 1`))
}
