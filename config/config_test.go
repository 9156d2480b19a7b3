package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arbiter.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `ws = "ws://+:9090/websocket"`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tcp != ":8443" || cfg.Ws != "ws://+:9090/websocket" {
		t.Fatalf("listeners = %q %q", cfg.Tcp, cfg.Ws)
	}
	if cfg.Version != 1 || cfg.Serialization != "json" || !cfg.Decode {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
tcp = "127.0.0.1:7000"
unix = "/tmp/arbiter.sock"
version = 2
handshake = true
decode = false
serialization = "msgpack"
read_buffer = 512
write_queue = 4

[log]
level = "debug"
format = "json"
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tcp != "127.0.0.1:7000" || cfg.Unix != "/tmp/arbiter.sock" {
		t.Fatalf("listeners = %q %q", cfg.Tcp, cfg.Unix)
	}
	if cfg.Version != 2 || !cfg.Handshake || cfg.Decode || cfg.Serialization != "msgpack" {
		t.Fatalf("protocol settings = %+v", cfg)
	}
	if cfg.ReadBuffer != 512 || cfg.WriteQueue != 4 {
		t.Fatalf("transport settings = %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no listener":   `tcp = ""`,
		"bad ws":        `ws = "http://localhost"`,
		"version":       `version = 300`,
		"serialization": `serialization = "xml"`,
		"read buffer":   `read_buffer = 0`,
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "config load failed") {
		t.Fatalf("expected load error, got %v", err)
	}
}
