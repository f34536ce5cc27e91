package protocol

import "errors"

var (
	ErrMalformedPayload = errors.New("protocol: malformed payload")
	ErrMissingPageURL   = errors.New("protocol: missing page url")
)
