package host

import (
	"errors"
	"fmt"

	"github.com/danmuck/reeldl/internal/downloader"
	"github.com/danmuck/reeldl/internal/protocol"
	"github.com/danmuck/reeldl/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	MsgDownloadFinished = "yt-dlp finished downloading the reel."
	MsgMissingPageURL   = "Missing page URL for yt-dlp."
	MsgUnknownAction    = "Unknown action received."
	MsgUnknownFailure   = "yt-dlp failed with an unknown error."
	MsgMalformedMessage = "Malformed message received."
)

// Downloader is the external collaborator behind the download action.
type Downloader interface {
	Executable() string
	Download(pageURL string) (tools.CommandResult, error)
}

// Dispatcher maps one decoded message to exactly one response.
type Dispatcher struct {
	downloader         Downloader
	maxDiagnosticBytes int
}

func NewDispatcher(dl Downloader, maxDiagnosticBytes int) *Dispatcher {
	return &Dispatcher{downloader: dl, maxDiagnosticBytes: maxDiagnosticBytes}
}

// Handle never fails: every outcome is encoded as a Response.
func (d *Dispatcher) Handle(msg protocol.Message) protocol.Response {
	switch req := protocol.ParseRequest(msg).(type) {
	case protocol.DownloadRequest:
		return d.handleDownload(req)
	case protocol.UnknownRequest:
		log.Debug().Str("action", req.Name).Msg("host.Dispatcher.Handle unknown action")
		return protocol.Error(MsgUnknownAction)
	default:
		return protocol.Error(MsgUnknownAction)
	}
}

func (d *Dispatcher) handleDownload(req protocol.DownloadRequest) protocol.Response {
	if err := req.Validate(); err != nil {
		return protocol.Error(MsgMissingPageURL)
	}

	log.Info().Str("page_url", req.PageURL).Str("exe", d.downloader.Executable()).Msg("host.Dispatcher.handleDownload start")
	res, err := d.downloader.Download(req.PageURL)
	var startErr *downloader.StartError
	switch {
	case errors.Is(err, downloader.ErrNotFound):
		return protocol.Error(fmt.Sprintf("yt-dlp was not found at %s.", d.downloader.Executable()))
	case errors.As(err, &startErr):
		log.Warn().Err(err).Msg("host.Dispatcher.handleDownload start failed")
		return protocol.Error(fmt.Sprintf("failed to start yt-dlp: %v", startErr.Err))
	case err != nil:
		log.Warn().Err(err).Msg("host.Dispatcher.handleDownload failed")
		return protocol.Error(err.Error())
	case res.ExitCode != 0:
		log.Warn().Int("exit_code", res.ExitCode).Msg("host.Dispatcher.handleDownload yt-dlp failed")
		if text := downloader.Diagnostic(res, d.maxDiagnosticBytes); text != "" {
			return protocol.Error(text)
		}
		return protocol.Error(MsgUnknownFailure)
	}
	return protocol.OK(MsgDownloadFinished)
}
