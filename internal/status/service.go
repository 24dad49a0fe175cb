package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/danmuck/mcwire/internal/observability"
	"github.com/danmuck/mcwire/internal/protocol/packets"
	"github.com/danmuck/mcwire/internal/protocol/schema"
	"github.com/danmuck/mcwire/internal/protocol/session"
)

var (
	ErrUnsupportedState = errors.New("status: handshake requested unsupported state")
	ErrUnexpectedPacket = errors.New("status: unexpected packet")
)

type Config struct {
	Node     string
	Document Document
	Session  session.Config
}

// Service runs one exchange per accepted connection, each on its own
// goroutine.
type Service struct {
	cfg       Config
	logger    zerolog.Logger
	handshake *schema.Catalog
	wg        sync.WaitGroup
}

func New(cfg Config, logger zerolog.Logger) *Service {
	if cfg.Node == "" {
		cfg.Node = "mcwire"
	}
	if cfg.Session.Observer == nil {
		cfg.Session.Observer = observability.FrameObserver{Node: cfg.Node}
	}
	return &Service{
		cfg:       cfg,
		logger:    logger.With().Str("node", cfg.Node).Logger(),
		handshake: packets.HandshakeServerbound,
	}
}

// Serve accepts on ln until ctx is done, then closes ln, waits for the
// in-flight exchanges and returns nil.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("status_listen")
	for {
		nc, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				s.logger.Info().Msg("status_stopped")
				return nil
			}
			return fmt.Errorf("status: accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, nc)
		}()
	}
}

func (s *Service) handle(ctx context.Context, nc net.Conn) {
	c := session.NewConn(nc, s.cfg.Session)
	stop := context.AfterFunc(ctx, func() { _ = c.Shutdown() })
	defer stop()
	defer c.Shutdown()

	err := s.exchange(c)
	outcome := "ok"
	event := s.logger.Debug()
	if err != nil {
		outcome = observability.Category(err)
		if errors.Is(err, ErrUnsupportedState) || errors.Is(err, ErrUnexpectedPacket) {
			outcome = "rejected"
		}
		event = s.logger.Warn().Err(err)
	}
	observability.RecordStatusSession(s.cfg.Node, outcome)
	event.Str("remote", c.Host).Str("outcome", outcome).Msg("status_session")
}

func (s *Service) exchange(c *session.Conn) error {
	p, err := c.ReadPacket(s.handshake)
	if err != nil {
		return err
	}
	hs, ok := p.(*packets.Handshake)
	if !ok {
		return fmt.Errorf("%w: %T before handshake", ErrUnexpectedPacket, p)
	}
	if hs.NextState != packets.StateStatus {
		return fmt.Errorf("%w: %s (%d)", ErrUnsupportedState, hs.NextState, int32(hs.NextState))
	}

	p, err = c.ReadPacket(packets.StatusServerbound)
	if err != nil {
		return err
	}
	if _, ok := p.(*packets.StatusRequest); !ok {
		return fmt.Errorf("%w: %T before status request", ErrUnexpectedPacket, p)
	}
	resp, err := s.cfg.Document.Response(hs.ProtocolVersion)
	if err != nil {
		return err
	}
	if err := c.SendPacket(resp); err != nil {
		return err
	}

	p, err = c.ReadPacket(packets.StatusServerbound)
	if err == io.EOF {
		// client skipped the ping
		return nil
	}
	if err != nil {
		return err
	}
	ping, ok := p.(*packets.PingRequest)
	if !ok {
		return fmt.Errorf("%w: %T after status response", ErrUnexpectedPacket, p)
	}
	return c.SendPacket(&packets.PongResponse{Payload: ping.Payload})
}
