package inventory

import (
	"context"
	"testing"

	"github.com/rflorenc/conversion-host-service/internal/errs"
	"github.com/rflorenc/conversion-host-service/internal/models"
)

func seeded() *Inventory {
	inv := New()
	inv.Add(&models.ManagedResource{ID: "7", Kind: models.KindRedhatHost, Name: "host-7"}, false)
	inv.Add(&models.ManagedResource{ID: "3", Kind: models.KindOpenstackVM, Name: "vm-3"}, false)
	inv.Add(&models.ManagedResource{ID: "9", Kind: models.KindRedhatHost, Name: "host-9"}, true)
	return inv
}

func TestResolve(t *testing.T) {
	inv := seeded()
	tests := []struct {
		name     string
		kind     models.ResourceKind
		id       string
		wantKind errs.Kind
	}{
		{"host found", models.KindRedhatHost, "7", ""},
		{"vm found", models.KindOpenstackVM, "3", ""},
		{"not found", models.KindRedhatHost, "999", errs.KindNotFound},
		{"wrong kind for id", models.KindOpenstackVM, "7", errs.KindNotFound},
		{"forbidden", models.KindRedhatHost, "9", errs.KindAuthorization},
		{"invalid kind", models.ResourceKind("Unknown::Type"), "1", errs.KindValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := inv.Resolve(context.Background(), tc.kind, tc.id)
			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("Resolve() error: %v", err)
				}
				if res.ID != tc.id {
					t.Errorf("Resolve() returned id %s, want %s", res.ID, tc.id)
				}
				return
			}
			if err == nil {
				t.Fatal("Resolve() should fail")
			}
			if kind, _ := errs.KindOf(err); kind != tc.wantKind {
				t.Errorf("error kind = %q, want %q", kind, tc.wantKind)
			}
		})
	}
}

func TestResolveCancelledContext(t *testing.T) {
	inv := seeded()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := inv.Resolve(ctx, models.KindRedhatHost, "7"); err == nil {
		t.Error("Resolve with cancelled context should fail")
	}
}

func TestListKind(t *testing.T) {
	inv := seeded()
	hosts := inv.ListKind(models.KindRedhatHost)
	if len(hosts) != 1 {
		t.Fatalf("ListKind(hosts) returned %d, want 1 (forbidden excluded)", len(hosts))
	}
	if hosts[0].Name != "host-7" {
		t.Errorf("ListKind returned %s", hosts[0].Name)
	}
}
