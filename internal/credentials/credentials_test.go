package credentials

import (
	"testing"

	"github.com/rflorenc/conversion-host-service/internal/errs"
)

func TestResolve(t *testing.T) {
	store := NewStore([]Credential{
		{Name: "default", Username: "root", SSHKey: "key-material"},
		{Name: "operator", Username: "operator", Password: "secret"},
	}, "default")

	tests := []struct {
		name     string
		authUser string
		expect   string
		wantErr  bool
	}{
		{"named user", "operator", "operator", false},
		{"empty falls back to default", "", "root", false},
		{"unknown user", "nobody", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cred, err := store.Resolve(tc.authUser)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tc.authUser, err, tc.wantErr)
			}
			if err != nil {
				if kind, _ := errs.KindOf(err); kind != errs.KindNotFound {
					t.Errorf("error kind = %q, want not_found", kind)
				}
				return
			}
			if cred.Username != tc.expect {
				t.Errorf("Resolve(%q).Username = %q, want %q", tc.authUser, cred.Username, tc.expect)
			}
		})
	}
}

func TestResolveNoDefault(t *testing.T) {
	store := NewStore(nil, "")
	if _, err := store.Resolve(""); err == nil {
		t.Error("Resolve with no default configured should fail")
	}
}
