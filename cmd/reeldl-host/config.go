package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/reeldl/internal/logging"
	"github.com/danmuck/reeldl/internal/protocol/frame"
)

const (
	configFileName            = "reeldl-host.toml"
	defaultMaxDiagnosticBytes = 16 * 1024
)

type hostConfig struct {
	Logging            logging.Config
	Limits             frame.Limits
	MaxDiagnosticBytes int
}

type fileConfig struct {
	LogLevel           string `toml:"log_level"`
	LogFile            string `toml:"log_file"`
	LogTimestamp       bool   `toml:"log_timestamp"`
	MaxInboundBytes    int64  `toml:"max_inbound_bytes"`
	MaxOutboundBytes   int64  `toml:"max_outbound_bytes"`
	MaxDiagnosticBytes int    `toml:"max_diagnostic_bytes"`
}

func defaultHostConfig() hostConfig {
	return hostConfig{
		Logging:            logging.DefaultConfig(logging.ProfileRuntime),
		Limits:             frame.DefaultLimits(),
		MaxDiagnosticBytes: defaultMaxDiagnosticBytes,
	}
}

// loadHostConfig reads the optional config file. A missing file yields the
// defaults; a relative log_file is resolved against the file's directory.
func loadHostConfig(path string) (hostConfig, error) {
	cfg := defaultHostConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return hostConfig{}, fmt.Errorf("load host config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return hostConfig{}, fmt.Errorf("load host config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		lvl, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return hostConfig{}, fmt.Errorf("parse log_level: %q", raw.LogLevel)
		}
		cfg.Logging.Level = lvl
	}

	if meta.IsDefined("log_file") {
		file := strings.TrimSpace(raw.LogFile)
		if file != "" && !filepath.IsAbs(file) {
			file = filepath.Join(filepath.Dir(path), file)
		}
		cfg.Logging.File = file
	}

	if meta.IsDefined("log_timestamp") {
		cfg.Logging.Timestamp = raw.LogTimestamp
	}

	if meta.IsDefined("max_inbound_bytes") {
		n, err := parseByteLimit("max_inbound_bytes", raw.MaxInboundBytes)
		if err != nil {
			return hostConfig{}, err
		}
		cfg.Limits.MaxInboundBytes = n
	}

	if meta.IsDefined("max_outbound_bytes") {
		n, err := parseByteLimit("max_outbound_bytes", raw.MaxOutboundBytes)
		if err != nil {
			return hostConfig{}, err
		}
		cfg.Limits.MaxOutboundBytes = n
	}

	if meta.IsDefined("max_diagnostic_bytes") {
		if raw.MaxDiagnosticBytes <= 0 {
			return hostConfig{}, fmt.Errorf("parse max_diagnostic_bytes: must be positive")
		}
		cfg.MaxDiagnosticBytes = raw.MaxDiagnosticBytes
	}

	// leave room for the response envelope and json escaping
	if int64(cfg.MaxDiagnosticBytes)*6+64 > int64(cfg.Limits.MaxOutboundBytes) {
		return hostConfig{}, fmt.Errorf("max_diagnostic_bytes %d does not fit max_outbound_bytes %d", cfg.MaxDiagnosticBytes, cfg.Limits.MaxOutboundBytes)
	}

	return cfg, nil
}

func parseByteLimit(key string, v int64) (uint32, error) {
	if v <= 0 || v > int64(^uint32(0)) {
		return 0, fmt.Errorf("parse %s: %d out of range", key, v)
	}
	return uint32(v), nil
}
