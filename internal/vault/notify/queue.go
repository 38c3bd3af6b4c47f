package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aussiebroadwan/vaultkey/pkg/slogx"
)

const TaskTypeLogout = "session:logout"

// enqueuer is the part of *asynq.Client the notifier needs.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands logout events to an asynq queue so delivery is retried
// out of band. LogoutTaskHandler consumes them.
type QueueNotifier struct {
	client   enqueuer
	queue    string
	maxRetry int
	timeout  time.Duration
}

type QueueOptions struct {
	Queue    string
	MaxRetry int
	Timeout  time.Duration
}

func NewQueueNotifier(client enqueuer, opts QueueOptions) *QueueNotifier {
	if opts.Queue == "" {
		opts.Queue = "default"
	}
	if opts.MaxRetry <= 0 {
		opts.MaxRetry = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &QueueNotifier{client: client, queue: opts.Queue, maxRetry: opts.MaxRetry, timeout: opts.Timeout}
}

func NewLogoutTask(ev LogoutEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLogout, payload), nil
}

func (q *QueueNotifier) LogoutOtherSessions(ctx context.Context, ev LogoutEvent) error {
	task, err := NewLogoutTask(ev)
	if err != nil {
		return fmt.Errorf("build logout task: %w", err)
	}

	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.queue),
		asynq.MaxRetry(q.maxRetry),
		asynq.Timeout(q.timeout),
		// The event id makes retried enqueues of the same event idempotent.
		asynq.TaskID(ev.ID),
	)
	if err != nil {
		return fmt.Errorf("enqueue logout task: %w", err)
	}

	slogx.FromContext(ctx).Debug("logout task enqueued", "task_id", info.ID, "queue", info.Queue)
	return nil
}

// LogoutTaskHandler delivers queued logout events through Next.
type LogoutTaskHandler struct {
	Next Notifier
}

func (h *LogoutTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TaskTypeLogout {
		return fmt.Errorf("unexpected task type %q: %w", t.Type(), asynq.SkipRetry)
	}

	var ev LogoutEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return fmt.Errorf("decode logout task: %v: %w", err, asynq.SkipRetry)
	}
	if ev.AccountID == "" {
		return fmt.Errorf("logout task without account: %w", asynq.SkipRetry)
	}

	return h.Next.LogoutOtherSessions(ctx, ev)
}

// RetryDelay backs off exponentially from one second, capped at one minute.
func RetryDelay(attempt int, _ error, _ *asynq.Task) time.Duration {
	delay := time.Second * time.Duration(1<<min(attempt, 6))
	return min(delay, time.Minute)
}
