package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chjbbs/oerplib/connector"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadClientConfigDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
server = "erp.internal"
port = 8070
protocol = "socket-rpc"
database = "production"
uid = 42
password = "secret"
`)

	cfg, err := loadClientConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server != "erp.internal" {
		t.Fatalf("unexpected server: %q", cfg.Server)
	}
	if cfg.Port != "8070" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.Protocol != "socket-rpc" {
		t.Fatalf("unexpected protocol: %q", cfg.Protocol)
	}
	if cfg.Database != "production" {
		t.Fatalf("unexpected database: %q", cfg.Database)
	}
	if cfg.UID != 42 {
		t.Fatalf("unexpected uid: %d", cfg.UID)
	}
	if cfg.Password != "secret" {
		t.Fatalf("unexpected password: %q", cfg.Password)
	}
}

func TestLoadClientConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
database = "staging"
`)

	cfg, err := loadClientConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server != "localhost" {
		t.Fatalf("unexpected default server: %q", cfg.Server)
	}
	if cfg.Port != "8069" {
		t.Fatalf("unexpected default port: %q", cfg.Port)
	}
	if cfg.Protocol != connector.DefaultProtocol {
		t.Fatalf("unexpected default protocol: %q", cfg.Protocol)
	}
	if cfg.Database != "staging" {
		t.Fatalf("unexpected database: %q", cfg.Database)
	}
}

func TestLoadClientConfigRejectsMissingFile(t *testing.T) {
	if _, err := loadClientConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadClientConfigRejectsEmptyServer(t *testing.T) {
	path := writeConfig(t, `
server = "  "
`)
	if _, err := loadClientConfig(path); err == nil {
		t.Fatalf("expected error for empty server")
	}
}
