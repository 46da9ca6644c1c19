// Package tasks tracks asynchronous tasks. The Store is the live in-memory
// registry the API and websocket streamers read; an optional Archive keeps a
// durable record of every state transition so task status survives restarts.
package tasks

import (
	"sync"

	"github.com/rflorenc/conversion-host-service/internal/models"
)

// Archive durably records task snapshots.
type Archive interface {
	// Record upserts the task's current state.
	Record(t models.Task) error
	// Load returns an archived task, or nil when absent.
	Load(id string) (*models.Task, error)
	// LoadAll returns every archived task.
	LoadAll() ([]*models.Task, error)
}

// Store is the thread-safe task registry.
type Store struct {
	mu      sync.RWMutex
	tasks   map[string]*models.Task
	archive Archive // may be nil
}

// NewStore creates a store backed by the given archive. A nil archive keeps
// tasks in memory only.
func NewStore(archive Archive) *Store {
	return &Store{tasks: make(map[string]*models.Task), archive: archive}
}

// Create registers a new pending task for the given operation.
func (s *Store) Create(operation, subject string) *models.Task {
	t := models.NewTask(operation, subject)
	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	s.Record(t)
	return t
}

// Record persists the task's current state to the archive.
func (s *Store) Record(t *models.Task) error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Record(t.Snapshot())
}

// Get returns a task by ID, falling back to the archive for tasks from a
// previous process lifetime. Returns nil when unknown.
func (s *Store) Get(id string) *models.Task {
	s.mu.RLock()
	t := s.tasks[id]
	s.mu.RUnlock()
	if t != nil {
		return t
	}
	if s.archive == nil {
		return nil
	}
	archived, err := s.archive.Load(id)
	if err != nil {
		return nil
	}
	return archived
}

// List returns all known tasks, most recent first. Live tasks win over their
// archived copies.
func (s *Store) List() []*models.Task {
	s.mu.RLock()
	seen := make(map[string]bool, len(s.tasks))
	result := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		result = append(result, t)
		seen[t.ID] = true
	}
	s.mu.RUnlock()

	if s.archive != nil {
		if archived, err := s.archive.LoadAll(); err == nil {
			for _, t := range archived {
				if !seen[t.ID] {
					result = append(result, t)
				}
			}
		}
	}

	// Sort by started_at descending
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].StartedAt.After(result[i].StartedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result
}
