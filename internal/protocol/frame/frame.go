package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// PrefixLen is the size of the little-endian length prefix ahead of every payload.
const PrefixLen = 4

var (
	// ErrEndOfStream reports that no further frame can be read: the stream
	// closed before a full prefix, the prefix was zero, or the payload was
	// cut short.
	ErrEndOfStream     = errors.New("frame: end of stream")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxInboundBytes  uint32
	MaxOutboundBytes uint32
}

// DefaultLimits mirrors the browser caps: 64 MiB toward the host, 1 MiB back.
func DefaultLimits() Limits {
	return Limits{
		MaxInboundBytes:  64 * 1024 * 1024,
		MaxOutboundBytes: 1024 * 1024,
	}
}

// ReadFrame reads one length-prefixed payload. Every truncation case and a
// zero-length prefix yield ErrEndOfStream; other reader faults pass through.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var prefix [PrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrEndOfStream
		}
		return nil, err
	}

	n := DecodePrefix(prefix[:])
	if n == 0 {
		return nil, ErrEndOfStream
	}
	if limits.MaxInboundBytes > 0 && n > limits.MaxInboundBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, limits.MaxInboundBytes)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrEndOfStream
		}
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes prefix and payload in a single Write call.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	n := uint64(len(payload))
	if n > uint64(^uint32(0)) || (limits.MaxOutboundBytes > 0 && n > uint64(limits.MaxOutboundBytes)) {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, limits.MaxOutboundBytes)
	}

	buf := make([]byte, PrefixLen+len(payload))
	copy(buf, EncodePrefix(uint32(n)))
	copy(buf[PrefixLen:], payload)
	_, err := w.Write(buf)
	return err
}

func EncodePrefix(n uint32) []byte {
	buf := make([]byte, PrefixLen)
	binary.LittleEndian.PutUint32(buf, n)
	return buf
}

func DecodePrefix(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[:PrefixLen])
}
