package protocol

import "strings"

const ActionDownload = "download"

// Request is the closed set of actions the host understands.
type Request interface {
	Action() string
	isRequest()
}

// DownloadRequest asks the host to fetch the media behind PageURL.
type DownloadRequest struct {
	PageURL string
}

func (DownloadRequest) Action() string { return ActionDownload }
func (DownloadRequest) isRequest() {}

// Validate reports ErrMissingPageURL when PageURL is empty or whitespace.
func (r DownloadRequest) Validate() error {
	if strings.TrimSpace(r.PageURL) == "" {
		return ErrMissingPageURL
	}
	return nil
}

// UnknownRequest is any message whose action is missing, not a string, or
// not recognized.
type UnknownRequest struct {
	Name string
}

func (r UnknownRequest) Action() string { return r.Name }
func (UnknownRequest) isRequest() {}

// ParseRequest maps an untyped message onto a Request variant. A download
// whose pageUrl is absent or not a string carries an empty PageURL.
func ParseRequest(msg Message) Request {
	action, _ := msg["action"].(string)
	switch action {
	case ActionDownload:
		pageURL, _ := msg["pageUrl"].(string)
		return DownloadRequest{PageURL: pageURL}
	default:
		return UnknownRequest{Name: action}
	}
}
