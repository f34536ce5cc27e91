package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/danmuck/reeldl/internal/downloader"
	"github.com/danmuck/reeldl/internal/host"
	"github.com/danmuck/reeldl/internal/logging"
	"github.com/danmuck/reeldl/internal/protocol"
	"github.com/danmuck/reeldl/internal/tools"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "reeldl-host: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	dir, err := downloader.HostDir()
	if err != nil {
		return err
	}
	cfg, err := loadHostConfig(filepath.Join(dir, configFileName))
	if err != nil {
		return err
	}
	if err := logging.ConfigureRuntime(cfg.Logging); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logging.Close()

	log.Info().
		Str("origin", callerOrigin(args)).
		Str("dir", dir).
		Msg("reeldl-host starting")

	dl := downloader.New(dir, runtime.GOOS, tools.ExecRunner{})
	channel := protocol.NewChannel(os.Stdin, os.Stdout, cfg.Limits)
	svc := host.NewService(channel, host.NewDispatcher(dl, cfg.MaxDiagnosticBytes))
	return svc.Run()
}

// callerOrigin picks the extension origin the browser passes as the first
// positional argument; Windows adds --parent-window=<hwnd> alongside it.
func callerOrigin(args []string) string {
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			continue
		}
		return arg
	}
	return "unknown"
}
