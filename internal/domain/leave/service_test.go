package leave

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	submitted []string
	decided   []string
}

func (r *recordingListener) LeaveSubmitted(_ context.Context, req Request) {
	r.submitted = append(r.submitted, req.ID)
}

func (r *recordingListener) LeaveDecided(_ context.Context, req Request) {
	r.decided = append(r.decided, req.ID+":"+req.Status)
}

type outcomeRecorder struct {
	outcomes []string
}

func (o *outcomeRecorder) LeaveOutcome(operation, outcome string) {
	o.outcomes = append(o.outcomes, operation+"/"+outcome)
}

func TestServiceNotifiesListenersAfterCommit(t *testing.T) {
	store := newFakeLifecycleStore()
	store.balances[balanceKey{"u-1", "lt-casual", 2026}] = fakeBalance{id: "b-1", remaining: 5}
	listener := &recordingListener{}
	metrics := &outcomeRecorder{}

	svc := &Service{Lifecycle: newTestLifecycle(store), Metrics: metrics, Now: time.Now}
	svc.AddListener(listener)
	svc.AddListener(nil)

	req, err := svc.Submit(context.Background(), SubmitInput{UserID: "u-1", LeaveTypeName: "Casual", StartDate: date(4, 1), EndDate: date(4, 2)})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitInput{UserID: "u-1", LeaveTypeName: "Casual", StartDate: date(4, 2), EndDate: date(4, 3)})
	require.ErrorIs(t, err, ErrOverlappingRequest)

	_, err = svc.Decide(context.Background(), DecideInput{RequestID: req.ID, Decision: " Approved ", ApproverID: "m-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{req.ID}, listener.submitted)
	assert.Equal(t, []string{req.ID + ":approved"}, listener.decided)
	assert.Equal(t, []string{"submit/ok", "submit/overlapping_request", "decide/ok"}, metrics.outcomes)
	assert.Len(t, svc.Listeners, 1)
}

func TestCreateTypeValidates(t *testing.T) {
	svc := &Service{}
	_, err := svc.CreateType(context.Background(), LeaveType{Name: "  ", AllowedDays: 3})
	require.ErrorIs(t, err, ErrInvalidLeaveType)
	_, err = svc.CreateType(context.Background(), LeaveType{Name: "Study", AllowedDays: -1})
	require.ErrorIs(t, err, ErrInvalidLeaveType)
}
