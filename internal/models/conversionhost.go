package models

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rflorenc/conversion-host-service/internal/errs"
)

// ConversionHost is the enablement record for a ManagedResource. Its
// presence means the conversion host role is active on the resource; there is
// no status field — disable deletes the record.
type ConversionHost struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ResourceKind ResourceKind `json:"resource_kind"`
	ResourceID   string       `json:"resource_id"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ConversionHostStore is an in-memory thread-safe store for conversion hosts.
// It enforces the single-record invariant: at most one ConversionHost per
// (kind, resource id).
type ConversionHostStore struct {
	mu    sync.RWMutex
	hosts map[string]*ConversionHost
}

// NewConversionHostStore creates an empty store.
func NewConversionHostStore() *ConversionHostStore {
	return &ConversionHostStore{hosts: make(map[string]*ConversionHost)}
}

// Create adds a new conversion host, assigning it a UUID. It fails with a
// conflict error when the resource already has one.
func (s *ConversionHostStore) Create(h *ConversionHost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.hosts {
		if existing.ResourceKind == h.ResourceKind && existing.ResourceID == h.ResourceID {
			return errs.Conflict("conversion host already enabled for resource id:%s type:%s",
				h.ResourceID, h.ResourceKind)
		}
	}
	h.ID = uuid.New().String()
	h.CreatedAt = time.Now()
	s.hosts[h.ID] = h
	return nil
}

// Get returns a conversion host by ID, or nil if not found.
func (s *ConversionHostStore) Get(id string) *ConversionHost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hosts[id]
}

// FindByResource returns the conversion host enabled on the given resource,
// or nil.
func (s *ConversionHostStore) FindByResource(kind ResourceKind, resourceID string) *ConversionHost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.hosts {
		if h.ResourceKind == kind && h.ResourceID == resourceID {
			return h
		}
	}
	return nil
}

// List returns all conversion hosts.
func (s *ConversionHostStore) List() []*ConversionHost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*ConversionHost, 0, len(s.hosts))
	for _, h := range s.hosts {
		result = append(result, h)
	}
	return result
}

// Delete removes a conversion host by ID.
func (s *ConversionHostStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hosts[id]; !ok {
		return false
	}
	delete(s.hosts, id)
	return true
}
