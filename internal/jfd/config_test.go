package jfd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "jfd.toml")
	data := []byte("" +
		"[server]\n" +
		"broker = \"mqtt://localhost\"\n" +
		"identity = \"jfd-test\"\n" +
		"\n" +
		"[modules.browser]\n" +
		"enabled = true\n" +
		"node_id = \"browser-main\"\n" +
		"base_url = \"https://media.example\"\n" +
		"\n" +
		"[modules.player_cast]\n" +
		"base_url = \"cast.local:9000\"\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Broker != "mqtt://localhost" {
		t.Fatalf("expected broker")
	}
	if !cfg.Modules.Browser.Enabled || cfg.Modules.Browser.NodeID != "browser-main" {
		t.Fatalf("expected browser config, got %+v", cfg.Modules.Browser)
	}
	if cfg.Modules.PlayerCast.BaseURL != "cast.local:9000" {
		t.Fatalf("expected cast config, got %+v", cfg.Modules.PlayerCast)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("default config path: %v", err)
	}
	if path == "" {
		t.Fatalf("expected path")
	}
}
