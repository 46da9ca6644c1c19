package workflow

import (
	"context"
	"fmt"

	"github.com/rflorenc/conversion-host-service/internal/executor"
	"github.com/rflorenc/conversion-host-service/internal/metrics"
	"github.com/rflorenc/conversion-host-service/internal/models"
)

// EnableInput is the validated, typed input of an enable workflow. auth_user
// lives here and only here; it never reaches the ConversionHost record.
type EnableInput struct {
	Name           string
	Kind           models.ResourceKind
	ResourceID     string
	VDDKPackageURL string
	AuthUser       string
}

// Enable runs the enable state machine: resolve the resource, install the
// conversion packages, configure the role, confirm it is active, then commit
// the ConversionHost record. The record is created only after every step
// succeeded; a failure at any step leaves no record behind.
func (e *Engine) Enable(ctx context.Context, task *models.Task, in EnableInput) {
	if err := task.Start(); err != nil {
		return
	}
	e.Tasks.Record(task)

	unlock := e.locks.acquire(lockKey(in.Kind, in.ResourceID))
	defer unlock()

	task.AppendLog(fmt.Sprintf("resolving resource id:%s type:%s", in.ResourceID, in.Kind))
	res, err := e.Inventory.Resolve(ctx, in.Kind, in.ResourceID)
	if err != nil {
		e.fail(task, fmt.Errorf("resolving: %w", err))
		return
	}

	cred, err := e.Credentials.Resolve(in.AuthUser)
	if err != nil {
		e.fail(task, fmt.Errorf("resolving credential: %w", err))
		return
	}

	target := executor.Target{
		Address:        res.Name,
		ResourceKind:   string(res.Kind),
		ResourceID:     res.ID,
		Credential:     cred,
		VDDKPackageURL: in.VDDKPackageURL,
	}

	if err := e.step(ctx, task, "installing conversion host packages", func(ctx context.Context) ([]string, error) {
		return e.Executor.InstallPackages(ctx, target)
	}); err != nil {
		e.fail(task, err)
		return
	}

	if err := e.step(ctx, task, "configuring conversion host role", func(ctx context.Context) ([]string, error) {
		return e.Executor.EnableHost(ctx, target)
	}); err != nil {
		e.fail(task, err)
		return
	}

	if err := e.step(ctx, task, "confirming conversion host role", func(ctx context.Context) ([]string, error) {
		return e.Executor.CheckHost(ctx, target)
	}); err != nil {
		e.fail(task, err)
		return
	}

	name := in.Name
	if name == "" {
		name = res.Name
	}
	host := &models.ConversionHost{
		Name:         name,
		ResourceKind: res.Kind,
		ResourceID:   res.ID,
	}
	if err := e.Hosts.Create(host); err != nil {
		e.fail(task, err)
		return
	}
	metrics.HostsEnabled.Inc()

	e.succeed(task, fmt.Sprintf("conversion host %s enabled on resource id:%s type:%s",
		host.ID, res.ID, res.Kind))
}
