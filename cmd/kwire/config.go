package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/pior/kwire"
)

// cliConfig is the resolved configuration of one invocation.
type cliConfig struct {
	Brokers          []string
	ClientID         string
	HandshakeVersion int16
	Timeout          time.Duration
	MaxFrameSize     int
	LogLevel         string
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		Brokers:          []string{"localhost:9092"},
		ClientID:         "kwire-cli",
		HandshakeVersion: 3,
		Timeout:          10 * time.Second,
		LogLevel:         "warn",
	}
}

// kwire.toml key mapping.
type fileConfig struct {
	Brokers          []string `toml:"brokers"`
	ClientID         string   `toml:"client_id"`
	HandshakeVersion int16    `toml:"handshake_version"`
	Timeout          string   `toml:"timeout"`
	MaxFrameSize     int      `toml:"max_frame_size"`
	LogLevel         string   `toml:"log_level"`
}

// loadConfigFile overlays the keys defined in path onto cfg.
func loadConfigFile(path string, cfg cliConfig) (cliConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("brokers") {
		cfg.Brokers = nil
		for _, b := range raw.Brokers {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Brokers = append(cfg.Brokers, b)
			}
		}
	}
	if meta.IsDefined("client_id") {
		cfg.ClientID = strings.TrimSpace(raw.ClientID)
	}
	if meta.IsDefined("handshake_version") {
		cfg.HandshakeVersion = raw.HandshakeVersion
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return cfg, fmt.Errorf("load config: timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("max_frame_size") {
		cfg.MaxFrameSize = raw.MaxFrameSize
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	return cfg, nil
}

func (c cliConfig) validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("no broker configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.HandshakeVersion < 0 {
		return fmt.Errorf("handshake version must not be negative, got %d", c.HandshakeVersion)
	}
	return nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "kwire").Logger(), nil
}

func (c cliConfig) clientConfig(logger *zerolog.Logger) kwire.Config {
	return kwire.Config{
		ClientID:         c.ClientID,
		HandshakeVersion: c.HandshakeVersion,
		MaxFrameSize:     c.MaxFrameSize,
		Logger:           logger,
	}
}
