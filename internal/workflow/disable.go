package workflow

import (
	"context"
	"fmt"

	"github.com/rflorenc/conversion-host-service/internal/errs"
	"github.com/rflorenc/conversion-host-service/internal/executor"
	"github.com/rflorenc/conversion-host-service/internal/metrics"
	"github.com/rflorenc/conversion-host-service/internal/models"
)

// DisableInput is the validated, typed input of a disable workflow.
type DisableInput struct {
	HostID   string
	AuthUser string
}

// Disable runs the disable state machine: run the disable playbook against
// the underlying resource, then delete the ConversionHost record. Deletion
// only happens after a successful disable; a partial failure leaves the
// record in place so the operator can retry.
func (e *Engine) Disable(ctx context.Context, task *models.Task, in DisableInput) {
	if err := task.Start(); err != nil {
		return
	}
	e.Tasks.Record(task)

	host := e.Hosts.Get(in.HostID)
	if host == nil {
		e.fail(task, errs.NotFound("conversion host %s not found", in.HostID))
		return
	}

	unlock := e.locks.acquire(lockKey(host.ResourceKind, host.ResourceID))
	defer unlock()

	// Re-check under the lock; a concurrent disable may have won.
	host = e.Hosts.Get(in.HostID)
	if host == nil {
		e.fail(task, errs.NotFound("conversion host %s not found", in.HostID))
		return
	}

	cred, err := e.Credentials.Resolve(in.AuthUser)
	if err != nil {
		e.fail(task, fmt.Errorf("resolving credential: %w", err))
		return
	}

	target := executor.Target{
		Address:      host.Name,
		ResourceKind: string(host.ResourceKind),
		ResourceID:   host.ResourceID,
		Credential:   cred,
	}

	if err := e.step(ctx, task, "disabling conversion host role", func(ctx context.Context) ([]string, error) {
		return e.Executor.DisableHost(ctx, target)
	}); err != nil {
		e.fail(task, err)
		return
	}

	task.AppendLog(fmt.Sprintf("deleting conversion host id:%s name:%s", host.ID, host.Name))
	if !e.Hosts.Delete(host.ID) {
		e.fail(task, errs.NotFound("conversion host %s not found", host.ID))
		return
	}
	metrics.HostsEnabled.Dec()

	e.succeed(task, fmt.Sprintf("conversion host %s disabled and deleted", host.ID))
}
