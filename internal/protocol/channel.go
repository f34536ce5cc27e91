package protocol

import (
	"bufio"
	"errors"
	"io"

	"github.com/danmuck/reeldl/internal/protocol/frame"
)

// Channel carries framed JSON messages over a byte stream pair. Each sent
// message is flushed before SendMessage returns.
type Channel struct {
	r      io.Reader
	w      *bufio.Writer
	limits frame.Limits
}

func NewChannel(r io.Reader, w io.Writer, limits frame.Limits) *Channel {
	return &Channel{
		r:      r,
		w:      bufio.NewWriter(w),
		limits: limits,
	}
}

// ReadMessage returns the next message. ok is false with a nil error once the
// stream has ended (see frame.ErrEndOfStream). A frame that does not hold a
// JSON object yields an error wrapping ErrMalformedPayload; the frame itself
// has been consumed, so the channel stays usable.
func (c *Channel) ReadMessage() (Message, bool, error) {
	payload, err := frame.ReadFrame(c.r, c.limits)
	if err != nil {
		if errors.Is(err, frame.ErrEndOfStream) {
			return nil, false, nil
		}
		return nil, false, err
	}
	msg, err := DecodeMessage(payload)
	if err != nil {
		return nil, false, err
	}
	return msg, true, nil
}

func (c *Channel) SendMessage(v any) error {
	payload, err := EncodeMessage(v)
	if err != nil {
		return err
	}
	if err := frame.WriteFrame(c.w, payload, c.limits); err != nil {
		return err
	}
	return c.w.Flush()
}
