// Package config loads the server profiles canvas-graph talks to and
// resolves their bearer tokens.
//
// The configuration file lives at ~/.config/canvas-graph/config.yaml unless
// CANVAS_GRAPH_CONFIG or an explicit path says otherwise:
//
//	default_server: school
//	servers:
//	  school:
//	    host_url: https://canvas.instructure.com
//	    token_eval: pass show canvas/token
//
// token_eval is run through `sh -c` once per process and its standard
// output, minus trailing whitespace, becomes the token.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Sternrassler/canvas-graph/pkg/client"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AppName names the configuration directory.
const AppName = "canvas-graph"

// Environment variables consulted during loading and resolution.
const (
	EnvConfigPath = "CANVAS_GRAPH_CONFIG"
	EnvAPIToken   = "CANVAS_API_TOKEN"
)

// DefaultServerName selects Config.DefaultServer.
const DefaultServerName = "default"

var (
	// ErrServerNotFound indicates the requested server is not configured.
	ErrServerNotFound = errors.New("server not found in configuration")

	// ErrNoToken indicates no token source is available for a server.
	ErrNoToken = errors.New("no api token available")
)

var validate = validator.New()

// Config is the on-disk configuration.
type Config struct {
	DefaultServer string                  `yaml:"default_server" validate:"required"`
	Servers       map[string]ServerConfig `yaml:"servers" validate:"required,min=1,dive"`
}

// ServerConfig describes one Canvas instance.
type ServerConfig struct {
	HostURL   string `yaml:"host_url" validate:"required,url"`
	TokenEval string `yaml:"token_eval"`
}

// SecretEvaluator turns a token_eval expression into a token.
type SecretEvaluator func(ctx context.Context, expr string) (string, error)

// DefaultPath returns the configuration path, honoring CANVAS_GRAPH_CONFIG.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName, "config.yaml"), nil
}

// Load reads and validates the configuration at path. An empty path means
// DefaultPath, whose directory is created if missing.
func Load(path string) (*Config, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(defaultPath), 0o700); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks field constraints and that DefaultServer names a
// configured server.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, ok := c.Servers[c.DefaultServer]; !ok {
		return fmt.Errorf("default_server %q: %w", c.DefaultServer, ErrServerNotFound)
	}
	return nil
}

// ServerName maps "" and "default" onto DefaultServer.
func (c *Config) ServerName(name string) string {
	if name == "" || name == DefaultServerName {
		return c.DefaultServer
	}
	return name
}

// ResolveProfile builds the profile for name. The token comes from, in
// order: tokenOverride, CANVAS_API_TOKEN, the server's token_eval run
// through eval (ShellEval when nil).
func (c *Config) ResolveProfile(ctx context.Context, name, tokenOverride string, eval SecretEvaluator) (*client.ServerProfile, error) {
	serverName := c.ServerName(name)
	server, ok := c.Servers[serverName]
	if !ok {
		return nil, fmt.Errorf("could not find server %q in configuration: %w", serverName, ErrServerNotFound)
	}

	token := tokenOverride
	if token == "" {
		token = os.Getenv(EnvAPIToken)
	}
	if token == "" {
		if server.TokenEval == "" {
			return nil, fmt.Errorf("server %q has no token_eval: %w", serverName, ErrNoToken)
		}
		if eval == nil {
			eval = ShellEval
		}
		evaluated, err := eval(ctx, server.TokenEval)
		if err != nil {
			return nil, fmt.Errorf("evaluate token for server %q: %w", serverName, err)
		}
		token = evaluated
	}

	profile := &client.ServerProfile{
		Name:     serverName,
		HostURL:  server.HostURL,
		APIToken: strings.TrimRight(token, " \t\r\n"),
	}
	if profile.APIToken == "" {
		return nil, fmt.Errorf("server %q resolved an empty token: %w", serverName, ErrNoToken)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// ShellEval runs expr with `sh -c` and returns its standard output.
func ShellEval(ctx context.Context, expr string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", expr)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("token_eval failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("token_eval failed: %w", err)
	}
	return string(out), nil
}
