package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
main_chain:
  name: AELF
  rpc_url: http://main.example:8000
  chain_id: 9992731
side_chain:
  name: tDVW
  rpc_url: http://side.example:8000
  chain_id: 1931928
signer:
  private_key: ${TEST_ISSUER_KEY}
`

func TestParse_Defaults(t *testing.T) {
	t.Setenv("TEST_ISSUER_KEY", "0xabc")

	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if cfg.Server.Port != 8080 || cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Issuance.ParentSync.Interval != 5*time.Second || cfg.Issuance.ParentSync.Timeout != 20*time.Minute {
		t.Errorf("unexpected parent sync defaults: %+v", cfg.Issuance.ParentSync)
	}
	if cfg.Issuance.CrossChainMaxRetries != 30 || cfg.Issuance.CrossChainBackoff != 10*time.Second {
		t.Errorf("unexpected cross chain defaults: %+v", cfg.Issuance)
	}
	if cfg.Balance.Concurrency != 8 {
		t.Errorf("expected balance concurrency 8, got %d", cfg.Balance.Concurrency)
	}
	if len(cfg.Indexer.Chains) != 1 || cfg.Indexer.Chains[0] != "tDVV" {
		t.Errorf("unexpected indexer chains %v", cfg.Indexer.Chains)
	}
	if cfg.Signer.PrivateKey != "0xabc" {
		t.Errorf("expected env expansion, got %q", cfg.Signer.PrivateKey)
	}
	if cfg.Database.Enabled() || cfg.Redis.Enabled() || cfg.Auth.Enabled() {
		t.Error("optional backends should be disabled by default")
	}
}

func TestParse_Overrides(t *testing.T) {
	yml := minimalYAML + `
issuance:
  parent_sync:
    interval: 1s
  cross_chain_max_retries: 3
database:
  host: db
`
	cfg, err := Parse([]byte(yml))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	p := cfg.Issuance.ParentSync.Policy()
	if p.Interval != time.Second {
		t.Errorf("expected 1s interval, got %s", p.Interval)
	}
	if p.Timeout != 20*time.Minute {
		t.Errorf("expected default timeout to survive partial override, got %s", p.Timeout)
	}
	if cfg.Issuance.CrossChainMaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Issuance.CrossChainMaxRetries)
	}
	if !cfg.Database.Enabled() || cfg.Database.Port != 5432 {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing side chain",
			yaml: `
main_chain:
  name: AELF
  rpc_url: http://main.example:8000
  chain_id: 9992731
`,
			want: "SideChain",
		},
		{
			name: "same chain ids",
			yaml: `
main_chain:
  name: AELF
  rpc_url: http://main.example:8000
  chain_id: 1
side_chain:
  name: tDVW
  rpc_url: http://side.example:8000
  chain_id: 1
`,
			want: "different chain ids",
		},
		{
			name: "bad log level",
			yaml: minimalYAML + `
logging:
  level: loud
`,
			want: "Level",
		},
		{
			name: "unbounded parent sync",
			yaml: minimalYAML + `
issuance:
  parent_sync:
    interval: 1s
    timeout: 0s
`,
			want: "parent_sync",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.MainChain.ChainID != 9992731 || cfg.SideChain.Name != "tDVW" {
		t.Fatalf("unexpected chains %+v %+v", cfg.MainChain, cfg.SideChain)
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(LoggingConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("NewLogger(%s) failed: %v", format, err)
		}
		_ = logger.Sync()
	}
	if _, err := NewLogger(LoggingConfig{Level: "nope"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewLogger_OutputPath(t *testing.T) {
	for path, want := range map[string]string{"": "stdout", "stdout": "stdout", "stderr": "stderr", "/var/log/issuer.log": "/var/log/issuer.log"} {
		if got := outputPaths(path); len(got) != 1 || got[0] != want {
			t.Errorf("outputPaths(%q) = %v, want [%s]", path, got, want)
		}
	}

	file := filepath.Join(t.TempDir(), "issuer.log")
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputPath: file})
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("written to file")
	_ = logger.Sync()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "written to file") || strings.Contains(out, "hidden") {
		t.Fatalf("unexpected log file contents: %s", out)
	}
	// ISO8601 timestamps, not epoch floats.
	if !strings.Contains(out, `"ts":"`) {
		t.Fatalf("expected ISO8601 timestamp: %s", out)
	}

	if _, err := NewLogger(LoggingConfig{Level: "info", Format: "console", OutputPath: "stderr"}); err != nil {
		t.Fatalf("NewLogger(stderr) failed: %v", err)
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	t.Setenv("ISSUER_PRIVATE_KEY", "0x01")
	t.Setenv("ISSUER_JWT_SECRET", "0123456789abcdef")
	t.Setenv("ISSUER_DB_PASSWORD", "secret")

	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SideChain.ChainID != 1931928 || cfg.Signer.PrivateKey != "0x01" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Redis.Enabled() || !cfg.Auth.Enabled() || !cfg.Database.Enabled() {
		t.Fatal("unexpected optional sections")
	}
	if cfg.Issuance.ParentSync.Timeout != 20*time.Minute {
		t.Fatalf("unexpected parent sync timeout %v", cfg.Issuance.ParentSync.Timeout)
	}
}
