package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kaiwa-dev/kaiwa/internal/domain"
	"github.com/kaiwa-dev/kaiwa/internal/protocol"
	"github.com/kaiwa-dev/kaiwa/internal/store"
)

// noticeSender is the client_id used on server-generated notices sent
// back to a message's own initiator when a send is refused.
const noticeSender = "server"

// session is the per-connection task pair. The read pump relays inbound
// chat frames to everyone else; the write pump drains this connection's
// outbound channel onto the socket. Whichever pump finishes first cancels
// its sibling, and joint termination triggers disconnect cleanup.
type session struct {
	id         domain.Identity
	conn       *websocket.Conn
	outbound   chan string
	membership *store.Membership
	dispatcher *store.Dispatcher
	limiter    *rateLimiter
	cfg        *Config
	log        zerolog.Logger
}

func newSession(adm *admitted, conn *websocket.Conn, m *store.Membership, d *store.Dispatcher, cfg *Config, log zerolog.Logger) *session {
	return &session{
		id:         adm.id,
		conn:       conn,
		outbound:   adm.outbound,
		membership: m,
		dispatcher: d,
		limiter:    newRateLimiter(cfg.RateLimitBurst, cfg.RateLimitRefill),
		cfg:        cfg,
		log:        log.With().Str("client_id", adm.id.String()).Logger(),
	}
}

// run blocks until both pumps have finished, then performs disconnect
// cleanup. Cancellation is cooperative and abrupt: events still queued on
// the outbound channel at that point are dropped.
func (s *session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Closing the connection is what unblocks a read pump parked in
	// ReadMessage, so the sibling's cancellation must reach the socket.
	go func() {
		<-ctx.Done()
		_ = s.conn.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		s.readPump()
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		s.writePump(ctx)
	}()
	wg.Wait()

	s.teardown()
}

// readPump is the inbound relay: it receives frames until the connection
// is lost or closed, decoding each text frame as a chat envelope and
// fanning it out to every other participant.
func (s *session) readPump() {
	s.conn.SetReadLimit(s.cfg.MaxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		msgType, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.logReadEnd(err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if !s.limiter.allow() {
			s.log.Warn().Msg("rate limit exceeded; discarding frame")
			continue
		}
		s.relay(protocol.DecodeChat(raw))
	}
}

// relay validates one inbound chat envelope, records it in the room
// history, and broadcasts it to everyone except the sender. A refused
// send is reported only to its own initiator and never ends the session.
func (s *session) relay(env protocol.Chat) {
	sender, err := domain.NewIdentity(env.ClientID)
	if err != nil {
		s.reject(err)
		return
	}
	content, err := domain.NewMessageContent(env.Content)
	if err != nil {
		s.reject(err)
		return
	}
	if err := s.membership.AddMessage(sender, content, domain.NewTimestamp(env.Timestamp)); err != nil {
		s.reject(err)
		return
	}

	payload, err := protocol.Encode(env)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode chat event")
		return
	}
	if err := s.dispatcher.Broadcast(payload, s.id); err != nil {
		s.log.Warn().Err(err).Msg("chat broadcast reached no targets")
	}
}

// reject notifies the initiator that its send was refused.
func (s *session) reject(cause error) {
	s.log.Warn().Err(cause).Msg("chat send refused")

	notice := protocol.NewChat(noticeSender, cause.Error(), domain.Now().Millis())
	payload, err := protocol.Encode(notice)
	if err != nil {
		return
	}
	if err := s.dispatcher.SendTo(s.id, payload); err != nil {
		s.log.Warn().Err(err).Msg("failed to deliver refusal notice")
	}
}

// writePump is the outbound delivery task: it moves queued events onto
// the socket in FIFO order and keeps the connection alive with pings.
func (s *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-s.outbound:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				s.log.Debug().Err(err).Msg("write failed; closing session")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown removes the participant from both membership views and then
// announces the departure to everyone still registered. The departing
// identity is already gone from the registry, so no exclusion is needed.
func (s *session) teardown() {
	if err := s.membership.RemoveParticipant(s.id); err != nil {
		if !errors.Is(err, store.ErrNotRegistered) {
			s.log.Error().Err(err).Msg("disconnect cleanup failed")
		}
		return
	}

	left := protocol.NewParticipantLeft(s.id.String(), domain.Now().Millis())
	payload, err := protocol.Encode(left)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode participant_left event")
		return
	}
	if err := s.dispatcher.Broadcast(payload, ""); err != nil {
		s.log.Warn().Err(err).Msg("participant_left broadcast reached no targets")
	}
	s.log.Info().Msg("session terminated")
}

// logReadEnd records why the inbound relay stopped, separating routine
// disconnects from unexpected transport errors.
func (s *session) logReadEnd(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		s.log.Warn().Int64("max_frame_size", s.cfg.MaxFrameSize).Msg("frame exceeded maximum size")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure),
		errors.Is(err, io.EOF):
		s.log.Info().Msg("connection closed")
	case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
		s.log.Warn().Err(err).Msg("unexpected close")
	default:
		s.log.Debug().Err(err).Msg("read loop ended")
	}
}
