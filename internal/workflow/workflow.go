// Package workflow implements the asynchronous enable and disable state
// machines. A workflow owns its task from Start to the terminal state: no
// other writer advances the task, and failures are recorded on the task
// instead of crashing the worker.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rflorenc/conversion-host-service/internal/credentials"
	"github.com/rflorenc/conversion-host-service/internal/executor"
	"github.com/rflorenc/conversion-host-service/internal/inventory"
	"github.com/rflorenc/conversion-host-service/internal/metrics"
	"github.com/rflorenc/conversion-host-service/internal/models"
	"github.com/rflorenc/conversion-host-service/internal/tasks"
)

// Executor runs provisioning steps against a target resource.
type Executor interface {
	InstallPackages(ctx context.Context, t executor.Target) ([]string, error)
	EnableHost(ctx context.Context, t executor.Target) ([]string, error)
	CheckHost(ctx context.Context, t executor.Target) ([]string, error)
	DisableHost(ctx context.Context, t executor.Target) ([]string, error)
}

// Engine executes workflows. All collaborators are injected.
type Engine struct {
	Inventory   inventory.Resolver
	Hosts       *models.ConversionHostStore
	Credentials *credentials.Store
	Executor    Executor
	Tasks       *tasks.Store

	// StepTimeout bounds each call into the provisioning executor. Zero
	// means no per-step bound beyond the executor's own client timeout.
	StepTimeout time.Duration

	locks resourceLocks
}

// resourceLocks provides per-resource mutual exclusion so enable and disable
// workflows for the same resource serialize instead of racing. Held from
// acquisition to the workflow's terminal state. Entries persist for the
// process lifetime; the map grows to at most one mutex per distinct inventory
// resource ever dispatched against.
type resourceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *resourceLocks) acquire(key string) func() {
	r.mu.Lock()
	if r.locks == nil {
		r.locks = make(map[string]*sync.Mutex)
	}
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func lockKey(kind models.ResourceKind, resourceID string) string {
	return string(kind) + "/" + resourceID
}

func (e *Engine) fail(task *models.Task, err error) {
	task.AppendLog("ERROR: " + err.Error())
	task.Fail(err)
	e.Tasks.Record(task)
	metrics.TasksCompleted.WithLabelValues(task.Operation, string(models.TaskFailed)).Inc()
}

func (e *Engine) succeed(task *models.Task, message string) {
	task.AppendLog(message)
	task.Succeed(message)
	e.Tasks.Record(task)
	metrics.TasksCompleted.WithLabelValues(task.Operation, string(models.TaskSucceeded)).Inc()
}

// step runs one executor call under the step timeout, appending its log
// output to the task.
func (e *Engine) step(ctx context.Context, task *models.Task, name string,
	fn func(ctx context.Context) ([]string, error)) error {

	task.AppendLog(name)
	stepCtx := ctx
	cancel := func() {}
	if e.StepTimeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, e.StepTimeout)
	}
	log, err := fn(stepCtx)
	cancel()

	for _, line := range log {
		task.AppendLog(line)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	e.Tasks.Record(task)
	return nil
}
