package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rflorenc/conversion-host-service/internal/credentials"
	"github.com/rflorenc/conversion-host-service/internal/errs"
)

func newTestClient(ts *httptest.Server) *Client {
	return &Client{
		baseURL:    ts.URL,
		username:   "admin",
		password:   "secret",
		httpClient: ts.Client(),
	}
}

func testTarget() Target {
	return Target{
		Address:    "host-7.lab.local",
		Credential: credentials.Credential{Username: "root", SSHKey: "key"},
	}
}

func TestClient_Run_Success(t *testing.T) {
	var got runRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/runs" {
			t.Errorf("path = %s, want /api/v1/runs", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(runResponse{
			Status: "successful",
			Log:    []string{"PLAY [install]", "ok=3 changed=1"},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts)
	log, err := c.InstallPackages(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("InstallPackages returned error: %v", err)
	}
	if len(log) != 2 {
		t.Errorf("log has %d lines, want 2", len(log))
	}
	if got.Playbook != "conversion_host_install" {
		t.Errorf("playbook = %q, want conversion_host_install", got.Playbook)
	}
	if got.Target != "host-7.lab.local" || got.User != "root" {
		t.Errorf("target/user = (%q, %q)", got.Target, got.User)
	}
}

func TestClient_Run_AuthHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			t.Errorf("BasicAuth = (%q, %q, %v), want (admin, secret, true)", user, pass, ok)
		}
		json.NewEncoder(w).Encode(runResponse{Status: "successful"})
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, err := c.CheckHost(context.Background(), testTarget()); err != nil {
		t.Fatalf("CheckHost returned error: %v", err)
	}
}

func TestClient_EnableHost_VDDKVar(t *testing.T) {
	var got runRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(runResponse{Status: "successful"})
	}))
	defer ts.Close()

	target := testTarget()
	target.VDDKPackageURL = "http://mirror.example.com/vddk.tar.gz"
	c := newTestClient(ts)
	if _, err := c.EnableHost(context.Background(), target); err != nil {
		t.Fatalf("EnableHost returned error: %v", err)
	}
	if got.Vars["v2v_vddk_package_url"] != "http://mirror.example.com/vddk.tar.gz" {
		t.Errorf("vars = %v, missing vddk url", got.Vars)
	}
}

func TestClient_Run_PlaybookFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(runResponse{
			Status:  "failed",
			Message: "unreachable host",
			Log:     []string{"fatal: [host-7]: UNREACHABLE!"},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts)
	log, err := c.DisableHost(context.Background(), testTarget())
	if err == nil {
		t.Fatal("DisableHost should fail when the playbook fails")
	}
	if kind, _ := errs.KindOf(err); kind != errs.KindWorkflow {
		t.Errorf("error kind = %q, want workflow", kind)
	}
	if len(log) != 1 {
		t.Errorf("failure log has %d lines, want 1", len(log))
	}
}

func TestClient_Run_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("runner unavailable"))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, err := c.InstallPackages(context.Background(), testTarget()); err == nil {
		t.Fatal("InstallPackages should return error for HTTP 502")
	}
}

func TestClient_Ping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ping" {
			t.Errorf("path = %s, want /api/v1/ping", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		expect string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"empty", "", 5, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.input, tc.maxLen)
			if got != tc.expect {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.expect)
			}
		})
	}
}
