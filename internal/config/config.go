package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExecutorConfig describes the remote provisioning executor (playbook runner).
type ExecutorConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Insecure bool   `yaml:"insecure"`
}

// CredentialConfig is a named credential usable as auth_user.
type CredentialConfig struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSHKey   string `yaml:"ssh_key"`
}

// ResourceConfig seeds one inventory resource.
type ResourceConfig struct {
	Type      string `yaml:"type"` // full resource_type identifier
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Forbidden bool   `yaml:"forbidden"`
}

// Config holds all configuration (CLI flags + config file).
type Config struct {
	Listen             string             `yaml:"listen"`
	Database           string             `yaml:"database"`
	Workers            int                `yaml:"workers"`
	QueueDepth         int                `yaml:"queue_depth"`
	StepTimeoutSeconds int                `yaml:"step_timeout_seconds"`
	Executor           ExecutorConfig     `yaml:"executor"`
	DefaultCredential  string             `yaml:"default_credential"`
	Credentials        []CredentialConfig `yaml:"credentials"`
	Resources          []ResourceConfig   `yaml:"resources"`

	// internal: path to config file (from CLI flag)
	configFile string
}

// Parse reads CLI flags, then overlays config file values.
// CLI flags take precedence over config file values.
func Parse() *Config {
	c := &Config{}
	flag.StringVar(&c.configFile, "config", "", "Path to config file (YAML)")
	flag.StringVar(&c.Listen, "listen", "", "HTTP listen address")
	flag.StringVar(&c.Database, "database", "", "Path to the task database")
	flag.IntVar(&c.Workers, "workers", 0, "Worker pool size")
	flag.Parse()

	// Load config file if specified
	if c.configFile != "" {
		if err := c.loadFile(c.configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}

	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Database == "" {
		c.Database = "conversion-hosts.db"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.QueueDepth == 0 {
		c.QueueDepth = 64
	}
	if c.StepTimeoutSeconds == 0 {
		c.StepTimeoutSeconds = 300
	}
}

// loadFile reads a YAML config file. Values from the file are only applied
// if the corresponding CLI flag was not explicitly set.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if c.Listen == "" && file.Listen != "" {
		c.Listen = file.Listen
	}
	if c.Database == "" && file.Database != "" {
		c.Database = file.Database
	}
	if c.Workers == 0 && file.Workers != 0 {
		c.Workers = file.Workers
	}
	c.QueueDepth = file.QueueDepth
	c.StepTimeoutSeconds = file.StepTimeoutSeconds
	c.Executor = file.Executor
	c.DefaultCredential = file.DefaultCredential
	c.Credentials = file.Credentials
	c.Resources = file.Resources

	return nil
}
