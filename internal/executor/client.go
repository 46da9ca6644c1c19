// Package executor is the client for the remote provisioning executor, the
// playbook runner that performs the actual install, configure and disable
// steps on a target resource. The service treats it as an opaque, fallible
// remote call returning a status plus log output.
package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rflorenc/conversion-host-service/internal/credentials"
	"github.com/rflorenc/conversion-host-service/internal/errs"
)

const (
	playbookInstall = "conversion_host_install"
	playbookEnable  = "conversion_host_enable"
	playbookCheck   = "conversion_host_check"
	playbookDisable = "conversion_host_disable"
)

// Config describes how to reach the playbook runner.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Insecure bool
	Timeout  time.Duration
}

// Target identifies the resource a playbook runs against and the credential
// to connect with.
type Target struct {
	Address        string
	ResourceKind   string
	ResourceID     string
	Credential     credentials.Credential
	VDDKPackageURL string
}

// Client is an authenticated HTTP client for the runner API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient creates a Client from runner configuration.
func NewClient(cfg Config) *Client {
	transport := &http.Transport{}
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// runRequest is the runner's job submission body.
type runRequest struct {
	Playbook string            `json:"playbook"`
	Target   string            `json:"target"`
	User     string            `json:"user"`
	Password string            `json:"password,omitempty"`
	SSHKey   string            `json:"ssh_key,omitempty"`
	Vars     map[string]string `json:"vars,omitempty"`
}

// runResponse is the runner's synchronous result envelope.
type runResponse struct {
	Status  string   `json:"status"` // "successful" or "failed"
	Message string   `json:"message,omitempty"`
	Log     []string `json:"log"`
}

// InstallPackages installs the conversion host packages on the target.
func (c *Client) InstallPackages(ctx context.Context, t Target) ([]string, error) {
	return c.run(ctx, playbookInstall, t, nil)
}

// EnableHost applies the conversion host role, optionally parameterized by
// the VDDK package URL.
func (c *Client) EnableHost(ctx context.Context, t Target) ([]string, error) {
	vars := map[string]string{}
	if t.VDDKPackageURL != "" {
		vars["v2v_vddk_package_url"] = t.VDDKPackageURL
	}
	return c.run(ctx, playbookEnable, t, vars)
}

// CheckHost verifies the conversion host role is active on the target.
func (c *Client) CheckHost(ctx context.Context, t Target) ([]string, error) {
	return c.run(ctx, playbookCheck, t, nil)
}

// DisableHost removes the conversion host role from the target.
func (c *Client) DisableHost(ctx context.Context, t Target) ([]string, error) {
	return c.run(ctx, playbookDisable, t, nil)
}

// Ping checks runner connectivity.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/ping", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET /api/v1/ping: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET /api/v1/ping: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) run(ctx context.Context, playbook string, t Target, vars map[string]string) ([]string, error) {
	payload := runRequest{
		Playbook: playbook,
		Target:   t.Address,
		User:     t.Credential.Username,
		Password: t.Credential.Password,
		SSHKey:   t.Credential.SSHKey,
		Vars:     vars,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/runs", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /api/v1/runs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("POST /api/v1/runs: HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var run runResponse
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if run.Status != "successful" {
		msg := run.Message
		if msg == "" {
			msg = "playbook reported failure"
		}
		return run.Log, errs.Workflow("%s: %s", playbook, msg)
	}
	return run.Log, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
