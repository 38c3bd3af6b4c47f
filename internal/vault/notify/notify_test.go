package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.subject, p.data = subject, data
	return p.err
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (e *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	e.opts = append(e.opts, opts)
	return &asynq.TaskInfo{ID: "t1", Queue: "default"}, nil
}

type recorder struct {
	events []LogoutEvent
}

func (r *recorder) LogoutOtherSessions(_ context.Context, ev LogoutEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func TestNewLogoutEvent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	ev := NewLogoutEvent("acc", "sess", ReasonKeyRotation, now)

	require.NotEmpty(t, ev.ID)
	require.Equal(t, "acc", ev.AccountID)
	require.Equal(t, "sess", ev.ExceptSessionID)
	require.Equal(t, time.UTC, ev.IssuedAt.Location())
	require.True(t, now.Equal(ev.IssuedAt))

	require.NotEqual(t, ev.ID, NewLogoutEvent("acc", "sess", ReasonKeyRotation, now).ID)
}

func TestLogNotifier(t *testing.T) {
	require.NoError(t, LogNotifier{}.LogoutOtherSessions(context.Background(), NewLogoutEvent("a", "", ReasonKeyRotation, time.Now())))
}

func TestNATSNotifier_Publishes(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATSNotifier(pub, "")
	ev := NewLogoutEvent("acc-1", "sess-1", ReasonKeyRotation, time.Now())

	require.NoError(t, n.LogoutOtherSessions(context.Background(), ev))
	require.Equal(t, "vault.accounts.acc-1.logout", pub.subject)

	var got LogoutEvent
	require.NoError(t, json.Unmarshal(pub.data, &got))
	require.Equal(t, ev.ID, got.ID)
	require.Equal(t, "sess-1", got.ExceptSessionID)
}

func TestNATSNotifier_Errors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("down")}
	n := NewNATSNotifier(pub, "prod")
	require.Equal(t, "prod.accounts.x.logout", n.Subject("x"))
	require.Error(t, n.LogoutOtherSessions(context.Background(), LogoutEvent{AccountID: "x"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, NewNATSNotifier(&fakePublisher{}, "").LogoutOtherSessions(ctx, LogoutEvent{AccountID: "x"}), context.Canceled)
}

func TestQueueNotifier_RoundTripThroughHandler(t *testing.T) {
	enq := &fakeEnqueuer{}
	q := NewQueueNotifier(enq, QueueOptions{})
	ev := NewLogoutEvent("acc-1", "sess-1", ReasonKeyRotation, time.Now())

	require.NoError(t, q.LogoutOtherSessions(context.Background(), ev))
	require.Len(t, enq.tasks, 1)
	require.Equal(t, TaskTypeLogout, enq.tasks[0].Type())
	require.Len(t, enq.opts[0], 4)

	rec := &recorder{}
	h := &LogoutTaskHandler{Next: rec}
	require.NoError(t, h.ProcessTask(context.Background(), enq.tasks[0]))
	require.Len(t, rec.events, 1)
	require.Equal(t, ev.ID, rec.events[0].ID)
}

func TestQueueNotifier_EnqueueError(t *testing.T) {
	q := NewQueueNotifier(&fakeEnqueuer{err: errors.New("redis down")}, QueueOptions{})
	require.Error(t, q.LogoutOtherSessions(context.Background(), LogoutEvent{ID: "e", AccountID: "a"}))
}

func TestLogoutTaskHandler_SkipsRetryOnBadTasks(t *testing.T) {
	h := &LogoutTaskHandler{Next: &recorder{}}

	err := h.ProcessTask(context.Background(), asynq.NewTask("other", nil))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = h.ProcessTask(context.Background(), asynq.NewTask(TaskTypeLogout, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = h.ProcessTask(context.Background(), asynq.NewTask(TaskTypeLogout, []byte(`{"id":"e"}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRetryDelay(t *testing.T) {
	require.Equal(t, time.Second, RetryDelay(0, nil, nil))
	require.Equal(t, 4*time.Second, RetryDelay(2, nil, nil))
	require.Equal(t, time.Minute, RetryDelay(20, nil, nil))
}
