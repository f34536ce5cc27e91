package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Message is one untyped JSON object exchanged with the extension.
type Message map[string]any

// Response is the only shape the host ever sends back.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func OK(message string) Response {
	return Response{Status: StatusOK, Message: message}
}

func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// DecodeMessage parses payload as exactly one UTF-8 JSON object. Numbers are
// kept as json.Number so integer values survive a round trip unchanged.
func DecodeMessage(payload []byte) (Message, error) {
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: invalid utf-8", ErrMalformedPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var msg Message
	if err := dec.Decode(&msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: not a json object", ErrMalformedPayload)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after json object", ErrMalformedPayload)
	}
	return msg, nil
}

func EncodeMessage(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode message: %w", err)
	}
	return payload, nil
}
