package logging

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "REELDL_LOG_LEVEL"
	EnvLogTimestamp = "REELDL_LOG_TIMESTAMP"
	EnvLogNoColor   = "REELDL_LOG_NOCOLOR"
	EnvLogFile      = "REELDL_LOG_FILE"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config selects level and sinks. Stdout is never a sink: it carries the
// native-messaging stream.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	File      string
}

var (
	configureOnce sync.Once
	configureErr  error
	logFile       *os.File
)

func DefaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, Timestamp: false}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

// ConfigureRuntime installs the process logger from cfg with env overrides
// applied on top. Only the first call in a process has any effect.
func ConfigureRuntime(cfg Config) error {
	return configure(cfg)
}

func ConfigureTests() {
	_ = configure(DefaultConfig(ProfileTest))
}

// Close releases the log file sink, if one was opened.
func Close() error {
	if logFile == nil {
		return nil
	}
	return logFile.Close()
}

func configure(cfg Config) error {
	configureOnce.Do(func() {
		applyEnvOverrides(&cfg)
		var w io.Writer
		w, configureErr = newWriter(cfg)
		if configureErr != nil {
			return
		}
		ctx := zerolog.New(w).Level(cfg.Level).With()
		if cfg.Timestamp {
			ctx = ctx.Timestamp()
		}
		log.Logger = ctx.Logger()
	})
	return configureErr
}

func newWriter(cfg Config) (io.Writer, error) {
	noColor := cfg.NoColor || !stderrIsTerminal()
	console := zerolog.ConsoleWriter{
		Out:        colorable.NewColorableStderr(),
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
	if !cfg.Timestamp {
		console.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	if strings.TrimSpace(cfg.File) == "" {
		return console, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logFile = f
	file := zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}
	return zerolog.MultiLevelWriter(console, file), nil
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.File = v
	}
}

func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none", "inactive":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
