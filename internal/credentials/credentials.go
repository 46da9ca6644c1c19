// Package credentials maps an auth_user name to the credential used against
// the target resource. The credential store is the external collaborator the
// workflow consults during the Installing step.
package credentials

import (
	"sync"

	"github.com/rflorenc/conversion-host-service/internal/errs"
)

// Credential is the material handed to the provisioning executor.
type Credential struct {
	Name     string `json:"name" yaml:"name"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"-" yaml:"password"`
	SSHKey   string `json:"-" yaml:"ssh_key"`
}

// Store holds named credentials plus the default used when a request carries
// no auth_user.
type Store struct {
	mu          sync.RWMutex
	creds       map[string]Credential
	defaultName string
}

// NewStore creates a store from configured entries.
func NewStore(entries []Credential, defaultName string) *Store {
	s := &Store{creds: make(map[string]Credential), defaultName: defaultName}
	for _, c := range entries {
		s.creds[c.Name] = c
	}
	return s
}

// Resolve returns the credential for authUser, falling back to the default
// when authUser is empty. An unknown name is a not-found error so the
// workflow fails before touching the resource.
func (s *Store) Resolve(authUser string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name := authUser
	if name == "" {
		name = s.defaultName
	}
	cred, ok := s.creds[name]
	if !ok {
		return Credential{}, errs.NotFound("credential %q not found", name)
	}
	return cred, nil
}
