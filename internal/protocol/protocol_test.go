package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/reeldl/internal/protocol/frame"
	"github.com/danmuck/reeldl/internal/testutil/testlog"
)

func TestChannelRoundTripSequentialMessages(t *testing.T) {
	testlog.Start(t)

	messages := []Message{
		{"action": "download", "pageUrl": "https://facebook.com/reel/123"},
		{"action": "ping", "n": json.Number("42"), "nested": map[string]any{"ok": true, "list": []any{"a", nil}}},
		{},
	}

	var wire bytes.Buffer
	writer := NewChannel(nil, &wire, frame.DefaultLimits())
	for _, m := range messages {
		if err := writer.SendMessage(m); err != nil {
			t.Fatalf("send message: %v", err)
		}
	}

	reader := NewChannel(&wire, nil, frame.DefaultLimits())
	for i, want := range messages {
		got, ok, err := reader.ReadMessage()
		if err != nil || !ok {
			t.Fatalf("read message %d: ok=%v err=%v", i, ok, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("message %d mismatch: got=%#v want=%#v", i, got, want)
		}
	}
	for i := 0; i < 2; i++ {
		_, ok, err := reader.ReadMessage()
		if ok || err != nil {
			t.Fatalf("expected end of stream, got ok=%v err=%v", ok, err)
		}
	}
}

func TestChannelSendMessageFlushesEachFrame(t *testing.T) {
	testlog.Start(t)

	var wire bytes.Buffer
	ch := NewChannel(nil, &wire, frame.DefaultLimits())
	if err := ch.SendMessage(Error("Unknown action received.")); err != nil {
		t.Fatalf("send message: %v", err)
	}
	want := []byte(`{"status":"error","message":"Unknown action received."}`)
	if wire.Len() != frame.PrefixLen+len(want) {
		t.Fatalf("expected frame flushed to writer, got %d bytes", wire.Len())
	}
	if frame.DecodePrefix(wire.Bytes()) != uint32(len(want)) {
		t.Fatalf("unexpected prefix: % x", wire.Bytes()[:frame.PrefixLen])
	}
	if !bytes.Equal(wire.Bytes()[frame.PrefixLen:], want) {
		t.Fatalf("unexpected payload: %s", wire.Bytes()[frame.PrefixLen:])
	}
}

func TestChannelZeroLengthFrameEndsStream(t *testing.T) {
	testlog.Start(t)

	ch := NewChannel(bytes.NewReader([]byte{0, 0, 0, 0}), nil, frame.DefaultLimits())
	msg, ok, err := ch.ReadMessage()
	if ok || err != nil || msg != nil {
		t.Fatalf("expected no message, got msg=%v ok=%v err=%v", msg, ok, err)
	}
}

func TestChannelMalformedFrameIsConsumed(t *testing.T) {
	testlog.Start(t)

	var wire bytes.Buffer
	if err := frame.WriteFrame(&wire, []byte(`{"action":`), frame.DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if err := frame.WriteFrame(&wire, []byte(`{"action":"ping"}`), frame.DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	ch := NewChannel(&wire, nil, frame.DefaultLimits())
	if _, _, err := ch.ReadMessage(); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	msg, ok, err := ch.ReadMessage()
	if err != nil || !ok {
		t.Fatalf("expected next frame readable, ok=%v err=%v", ok, err)
	}
	if msg["action"] != "ping" {
		t.Fatalf("unexpected message: %#v", msg)
	}
}

func TestDecodeMessageRejectsMalformedPayloads(t *testing.T) {
	testlog.Start(t)

	cases := map[string][]byte{
		"invalid utf-8": {'{', '"', 'a', '"', ':', '"', 0xff, '"', '}'},
		"invalid json":  []byte(`{"a":`),
		"array":         []byte(`[1,2]`),
		"string":        []byte(`"download"`),
		"null":          []byte(`null`),
		"trailing data": []byte(`{"a":1}{"b":2}`),
		"whitespace":    []byte("  "),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeMessage(payload); !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestDecodeMessageAllowsSurroundingWhitespace(t *testing.T) {
	testlog.Start(t)

	msg, err := DecodeMessage([]byte(" {\"action\":\"ping\"}\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg["action"] != "ping" {
		t.Fatalf("unexpected message: %#v", msg)
	}
}

func TestParseRequestVariants(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		name string
		msg  Message
		want Request
	}{
		{name: "download", msg: Message{"action": "download", "pageUrl": "https://x"}, want: DownloadRequest{PageURL: "https://x"}},
		{name: "download missing url", msg: Message{"action": "download"}, want: DownloadRequest{}},
		{name: "download non-string url", msg: Message{"action": "download", "pageUrl": json.Number("7")}, want: DownloadRequest{}},
		{name: "ping", msg: Message{"action": "ping"}, want: UnknownRequest{Name: "ping"}},
		{name: "missing action", msg: Message{"pageUrl": "https://x"}, want: UnknownRequest{}},
		{name: "null action", msg: Message{"action": nil}, want: UnknownRequest{}},
		{name: "case sensitive", msg: Message{"action": "Download"}, want: UnknownRequest{Name: "Download"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseRequest(tc.msg)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got=%#v want=%#v", got, tc.want)
			}
		})
	}
}

func TestDownloadRequestValidate(t *testing.T) {
	testlog.Start(t)

	for _, url := range []string{"", " ", "\t\n"} {
		if err := (DownloadRequest{PageURL: url}).Validate(); !errors.Is(err, ErrMissingPageURL) {
			t.Fatalf("url %q: expected ErrMissingPageURL, got %v", url, err)
		}
	}
	if err := (DownloadRequest{PageURL: "https://facebook.com/reel/123"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
