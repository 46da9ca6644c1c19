package models

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rflorenc/conversion-host-service/internal/errs"
)

// TaskState is the lifecycle state of an asynchronous task.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
)

// Terminal reports whether the state is final.
func (s TaskState) Terminal() bool {
	return s == TaskSucceeded || s == TaskFailed
}

var taskTransitions = map[TaskState][]TaskState{
	TaskPending: {TaskRunning, TaskFailed},
	TaskRunning: {TaskSucceeded, TaskFailed},
}

// ValidateTransition enforces the monotonic task state machine:
// pending -> running -> succeeded | failed. Terminal states never move again;
// retries create a new task instead.
func ValidateTransition(from, to TaskState) error {
	for _, next := range taskTransitions[from] {
		if next == to {
			return nil
		}
	}
	return errs.Workflow("invalid task transition %s -> %s", from, to)
}

// Task represents one asynchronous unit of work (an enable or disable
// workflow). Only the executing workflow advances its state; readers polling
// the task never write.
type Task struct {
	ID         string     `json:"id"`
	Operation  string     `json:"operation"` // "enable" or "disable"
	Subject    string     `json:"subject"`   // resource or conversion host reference
	State      TaskState  `json:"state"`
	Message    string     `json:"message,omitempty"`
	ErrorKind  string     `json:"error_kind,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Output     []string   `json:"output"`
	mu         sync.Mutex
}

// NewTask creates a pending task with a fresh UUID.
func NewTask(operation, subject string) *Task {
	return &Task{
		ID:        uuid.New().String(),
		Operation: operation,
		Subject:   subject,
		State:     TaskPending,
		StartedAt: time.Now(),
		Output:    []string{},
	}
}

// AppendLog adds a log line to the task output.
func (t *Task) AppendLog(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Output = append(t.Output, line)
}

// LogsSince returns log lines starting from the given index.
func (t *Task) LogsSince(offset int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if offset >= len(t.Output) {
		return nil
	}
	lines := make([]string, len(t.Output)-offset)
	copy(lines, t.Output[offset:])
	return lines
}

// CurrentState returns the task state under lock.
func (t *Task) CurrentState() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.State
}

// Start moves the task from pending to running.
func (t *Task) Start() error {
	return t.advance(TaskRunning, "", "")
}

// Succeed moves the task to its successful terminal state.
func (t *Task) Succeed(message string) error {
	return t.advance(TaskSucceeded, message, "")
}

// Fail moves the task to its failed terminal state, recording the error kind
// so status pollers can branch without string-matching.
func (t *Task) Fail(err error) error {
	kind, ok := errs.KindOf(err)
	if !ok {
		kind = errs.KindWorkflow
	}
	return t.advance(TaskFailed, err.Error(), string(kind))
}

func (t *Task) advance(to TaskState, message, errorKind string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ValidateTransition(t.State, to); err != nil {
		return err
	}
	t.State = to
	if message != "" {
		t.Message = message
	}
	t.ErrorKind = errorKind
	if to.Terminal() {
		now := time.Now()
		t.FinishedAt = &now
	}
	return nil
}

// Snapshot returns a copy of the task safe to persist or marshal while the
// workflow is still appending output.
func (t *Task) Snapshot() Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.Output))
	copy(out, t.Output)
	return Task{
		ID:         t.ID,
		Operation:  t.Operation,
		Subject:    t.Subject,
		State:      t.State,
		Message:    t.Message,
		ErrorKind:  t.ErrorKind,
		StartedAt:  t.StartedAt,
		FinishedAt: t.FinishedAt,
		Output:     out,
	}
}
