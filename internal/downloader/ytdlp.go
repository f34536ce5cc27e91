package downloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/danmuck/reeldl/internal/tools"
)

const (
	BinaryName = "yt-dlp"

	cookiesBrowser = "chrome"
)

var ErrNotFound = errors.New("downloader: yt-dlp not found")

// StartError reports that yt-dlp exists but could not be launched.
type StartError struct {
	Path string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("downloader: start %s: %v", e.Path, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExecutableName returns the platform file name of yt-dlp for goos.
func ExecutableName(goos string) string {
	if goos == "windows" {
		return BinaryName + ".exe"
	}
	return BinaryName
}

// HostDir returns the directory holding the running executable, with
// symlinks resolved.
func HostDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("downloader: resolve host executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Args is the fixed argument list passed after the executable path.
func Args(pageURL string) []string {
	return []string{"--cookies-from-browser", cookiesBrowser, pageURL}
}

// YtDlp runs yt-dlp from Dir with Dir as the working directory.
type YtDlp struct {
	Dir    string
	Path   string
	runner tools.CommandRunner
}

func New(dir string, goos string, runner tools.CommandRunner) *YtDlp {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return &YtDlp{
		Dir:    dir,
		Path:   filepath.Join(dir, ExecutableName(goos)),
		runner: runner,
	}
}

// Download blocks until yt-dlp exits. A non-zero exit is not an error; it is
// reported through the result's ExitCode.
func (d *YtDlp) Download(pageURL string) (tools.CommandResult, error) {
	if _, err := os.Stat(d.Path); err != nil {
		return tools.CommandResult{}, fmt.Errorf("%w: %s", ErrNotFound, d.Path)
	}
	res, err := d.runner.Run(d.Dir, d.Path, Args(pageURL)...)
	if err != nil {
		return res, &StartError{Path: d.Path, Err: err}
	}
	return res, nil
}

// Diagnostic picks the text to surface for a failed run: trimmed stderr, or
// trimmed stdout when stderr is blank. Text longer than maxBytes keeps its
// tail, where yt-dlp prints the final error. maxBytes <= 0 disables clamping.
func Diagnostic(res tools.CommandResult, maxBytes int) string {
	text := strings.TrimSpace(string(res.Stderr))
	if text == "" {
		text = strings.TrimSpace(string(res.Stdout))
	}
	return clampTail(text, maxBytes)
}

func clampTail(text string, maxBytes int) string {
	if maxBytes <= 0 || len(text) <= maxBytes {
		return text
	}
	start := len(text) - maxBytes
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	return text[start:]
}

// Executable returns the resolved yt-dlp path.
func (d *YtDlp) Executable() string {
	return d.Path
}
