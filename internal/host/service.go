package host

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/danmuck/reeldl/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// State is the service loop phase.
type State int32

const (
	StateAwaitingRequest State = iota
	StateDispatching
	StateClosed
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateAwaitingRequest:
		return "awaiting_request"
	case StateDispatching:
		return "dispatching"
	case StateClosed:
		return "closed"
	case StateFatal:
		return "fatal"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Handler produces exactly one response per message.
type Handler interface {
	Handle(msg protocol.Message) protocol.Response
}

// Service runs the read -> dispatch -> write loop over one channel.
type Service struct {
	channel *protocol.Channel
	handler Handler
	state   atomic.Int32
	served  atomic.Uint64
}

func NewService(channel *protocol.Channel, handler Handler) *Service {
	return &Service{channel: channel, handler: handler}
}

func (s *Service) State() State {
	return State(s.state.Load())
}

// Served reports how many responses have been written.
func (s *Service) Served() uint64 {
	return s.served.Load()
}

// Run serves requests until the input stream ends (nil) or the transport
// fails (non-nil). A malformed frame is answered with an error response and
// does not stop the loop.
func (s *Service) Run() error {
	if st := s.State(); st == StateClosed || st == StateFatal {
		return fmt.Errorf("host: service already %s", st)
	}
	log.Debug().Msg("host.Service.Run awaiting requests")

	for {
		s.setState(StateAwaitingRequest)
		msg, ok, err := s.channel.ReadMessage()
		if err != nil && !errors.Is(err, protocol.ErrMalformedPayload) {
			s.setState(StateFatal)
			log.Error().Err(err).Msg("host.Service.Run read failed")
			return fmt.Errorf("host: read message: %w", err)
		}
		if err == nil && !ok {
			s.setState(StateClosed)
			log.Info().Uint64("served", s.Served()).Msg("host.Service.Run shutdown end_of_stream")
			return nil
		}

		s.setState(StateDispatching)
		if err := s.exchange(msg, err); err != nil {
			s.setState(StateFatal)
			log.Error().Err(err).Msg("host.Service.Run write failed")
			return fmt.Errorf("host: send message: %w", err)
		}
	}
}

func (s *Service) exchange(msg protocol.Message, readErr error) error {
	id := uuid.NewString()
	started := time.Now()

	var resp protocol.Response
	if readErr != nil {
		log.Warn().Str("exchange", id).Err(readErr).Msg("host.Service.exchange malformed message")
		resp = protocol.Error(MsgMalformedMessage)
	} else {
		resp = s.handler.Handle(msg)
	}

	if err := s.channel.SendMessage(resp); err != nil {
		return err
	}
	s.served.Add(1)
	log.Info().
		Str("exchange", id).
		Str("status", resp.Status).
		Dur("elapsed", time.Since(started)).
		Msg("host.Service.exchange complete")
	return nil
}

func (s *Service) setState(st State) {
	s.state.Store(int32(st))
}
