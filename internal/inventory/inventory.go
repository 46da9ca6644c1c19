// Package inventory resolves (resource kind, id) references against the
// inventory of managed VMs and hosts. Resolution is a pure lookup: the
// service reads inventory objects but never mutates them.
package inventory

import (
	"context"
	"sync"

	"github.com/rflorenc/conversion-host-service/internal/errs"
	"github.com/rflorenc/conversion-host-service/internal/models"
)

// Resolver looks up a managed resource by kind and id, distinguishing
// not-found from forbidden.
type Resolver interface {
	Resolve(ctx context.Context, kind models.ResourceKind, id string) (*models.ManagedResource, error)
}

type key struct {
	kind models.ResourceKind
	id   string
}

// Inventory is an in-memory resolver seeded from configuration. Resources
// flagged forbidden stand in for objects the caller lacks visibility on.
type Inventory struct {
	mu        sync.RWMutex
	resources map[key]*models.ManagedResource
	forbidden map[key]bool
}

// New creates an empty inventory.
func New() *Inventory {
	return &Inventory{
		resources: make(map[key]*models.ManagedResource),
		forbidden: make(map[key]bool),
	}
}

// Add registers a resource. Forbidden resources resolve to an authorization
// error instead of the resource itself.
func (inv *Inventory) Add(res *models.ManagedResource, forbidden bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	k := key{kind: res.Kind, id: res.ID}
	inv.resources[k] = res
	if forbidden {
		inv.forbidden[k] = true
	}
}

// Resolve implements Resolver. The kind is re-checked against the allow-list
// even though the validator already did; an unknown kind must never reach a
// lookup.
func (inv *Inventory) Resolve(ctx context.Context, kind models.ResourceKind, id string) (*models.ManagedResource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, errs.Validation("invalid resource_type %s", kind)
	}

	inv.mu.RLock()
	defer inv.mu.RUnlock()
	k := key{kind: kind, id: id}
	if inv.forbidden[k] {
		return nil, errs.Authorization("resource id:%s type:%s is not visible to the caller", id, kind)
	}
	res, ok := inv.resources[k]
	if !ok {
		return nil, errs.NotFound("resource id:%s type:%s not found", id, kind)
	}
	return res, nil
}

// ListKind returns all visible resources of a kind.
func (inv *Inventory) ListKind(kind models.ResourceKind) []*models.ManagedResource {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	result := make([]*models.ManagedResource, 0)
	for k, res := range inv.resources {
		if k.kind == kind && !inv.forbidden[k] {
			result = append(result, res)
		}
	}
	return result
}
