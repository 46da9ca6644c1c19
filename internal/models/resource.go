package models

import "github.com/rflorenc/conversion-host-service/internal/errs"

// ResourceKind is the closed set of resource types that may be enabled as
// conversion hosts. Anything outside this set fails closed at parse time.
type ResourceKind string

const (
	KindOpenstackVM ResourceKind = "ManageIQ::Providers::Openstack::CloudManager::Vm"
	KindRedhatHost  ResourceKind = "ManageIQ::Providers::Redhat::InfraManager::Host"
)

// ParseResourceKind validates a raw resource_type string against the
// allow-list.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch ResourceKind(s) {
	case KindOpenstackVM:
		return KindOpenstackVM, nil
	case KindRedhatHost:
		return KindRedhatHost, nil
	default:
		return "", errs.Validation("invalid resource_type %s", s)
	}
}

// Valid reports whether k is a member of the allow-list.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindOpenstackVM, KindRedhatHost:
		return true
	}
	return false
}

// Collection returns the short inventory collection name for the kind.
func (k ResourceKind) Collection() string {
	switch k {
	case KindOpenstackVM:
		return "vms"
	case KindRedhatHost:
		return "hosts"
	default:
		return ""
	}
}

// ManagedResource is a read-only view of an inventory object (a VM or a
// physical host). The inventory system owns it; this service only resolves
// and references it.
type ManagedResource struct {
	ID   string       `json:"id"`
	Kind ResourceKind `json:"kind"`
	Name string       `json:"name"`
}
