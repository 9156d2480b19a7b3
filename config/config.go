// Package config loads arbiter settings from TOML.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jwerle/cgi-arbiter/codec"
)

type Config struct {
	Tcp           string `toml:"tcp"`
	Unix          string `toml:"unix"`
	Ws            string `toml:"ws"`
	Version       int    `toml:"version"`
	Handshake     bool   `toml:"handshake"`
	Decode        bool   `toml:"decode"`
	Serialization string `toml:"serialization"`
	ReadBuffer    int    `toml:"read_buffer"`
	WriteQueue    int    `toml:"write_queue"`
	Log           Log    `toml:"log"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Default() Config {
	return Config{
		Tcp:           ":8443",
		Version:       1,
		Decode:        true,
		Serialization: codec.JSON,
		ReadBuffer:    16 * 1024,
		WriteQueue:    64,
		Log:           Log{Level: "info", Format: "auto"},
	}
}

// Load read path over the defaults and validate the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Tcp) == "" && strings.TrimSpace(cfg.Unix) == "" && strings.TrimSpace(cfg.Ws) == "" {
		return fmt.Errorf("no listener configured, set tcp, unix or ws")
	}
	if ws := strings.TrimSpace(cfg.Ws); ws != "" && !strings.HasPrefix(ws, "ws://") && !strings.HasPrefix(ws, "wss://") {
		return fmt.Errorf("ws must be a ws:// or wss:// url, got %q", cfg.Ws)
	}
	if cfg.Version < 0 || cfg.Version > 255 {
		return fmt.Errorf("version %d out of range 0-255", cfg.Version)
	}
	if codec.GetSerializer(cfg.Serialization) == nil {
		return fmt.Errorf("unknown serialization %q, have %v", cfg.Serialization, codec.Names())
	}
	if cfg.ReadBuffer <= 0 {
		return fmt.Errorf("read_buffer must be positive")
	}
	if cfg.WriteQueue <= 0 {
		return fmt.Errorf("write_queue must be positive")
	}
	return nil
}
