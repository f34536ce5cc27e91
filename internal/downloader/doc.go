// Package downloader wraps the external yt-dlp executable that sits next to
// the host binary. It resolves the executable, builds the fixed argument list
// and runs one blocking download per call.
package downloader
