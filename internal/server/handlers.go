package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/kaiwa-dev/kaiwa/internal/domain"
	"github.com/kaiwa-dev/kaiwa/internal/protocol"
	"github.com/kaiwa-dev/kaiwa/internal/store"
)

// Server owns the room's shared state and exposes the WebSocket endpoint
// plus the read-only HTTP projections. It is constructed once at startup
// and passed into every handler; there is no package-level state.
type Server struct {
	cfg        *Config
	log        zerolog.Logger
	membership *store.Membership
	dispatcher *store.Dispatcher
	admission  *admission
	upgrader   websocket.Upgrader

	baseCtx  context.Context
	cancel   context.CancelFunc
	sessions sync.WaitGroup
}

// New wires up the room, membership store, dispatcher, and admission gate.
func New(cfg *Config, log zerolog.Logger) *Server {
	room := domain.NewRoom(cfg.RoomCapacity, cfg.HistoryCapacity)
	membership := store.NewMembership(room, log)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:        cfg,
		log:        log,
		membership: membership,
		dispatcher: store.NewDispatcher(membership, log),
		admission:  newAdmission(membership, log),
		baseCtx:    ctx,
		cancel:     cancel,
	}

	origin := newOriginPolicy(cfg.AllowedOrigins, log)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     origin.check,
	}
	return s
}

// Membership exposes the store for tests and projections.
func (s *Server) Membership() *store.Membership {
	return s.membership
}

// HandleWebSocket admits the candidate identity carried in the client_id
// query parameter, upgrades the connection, greets the newcomer with the
// room snapshot, announces the join, and runs the session pump pair.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	adm, err := s.admission.admit(r.URL.Query().Get("client_id"))
	if err != nil {
		http.Error(w, err.Error(), admissionStatus(err))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Admission already registered the handle; roll it back so the
		// identity is free to retry.
		_ = s.membership.RemoveParticipant(adm.id)
		s.log.Warn().Str("client_id", adm.id.String()).Err(err).Msg("upgrade failed")
		return
	}

	s.greet(adm)
	s.announce(adm)

	sess := newSession(adm, conn, s.membership, s.dispatcher, s.cfg, s.log)
	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		sess.run(s.baseCtx)
	}()
}

// greet queues the RoomConnected snapshot for the new participant. The
// snapshot is one consistent read and includes the newcomer itself, since
// admission already added it.
func (s *Server) greet(adm *admitted) {
	snapshot := s.membership.Snapshot()
	participants := lo.Map(snapshot.Participants(), func(p domain.Participant, _ int) protocol.ParticipantInfo {
		return protocol.ParticipantInfo{ClientID: p.ID.String(), ConnectedAt: p.JoinedAt.Millis()}
	})

	payload, err := protocol.Encode(protocol.NewRoomConnected(participants))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode room_connected event")
		return
	}
	if err := s.dispatcher.SendTo(adm.id, payload); err != nil {
		s.log.Warn().Str("client_id", adm.id.String()).Err(err).Msg("failed to queue room_connected")
	}
}

// announce broadcasts ParticipantJoined to everyone except the newcomer.
func (s *Server) announce(adm *admitted) {
	joined := protocol.NewParticipantJoined(adm.id.String(), adm.connectedAt.Millis())
	payload, err := protocol.Encode(joined)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode participant_joined event")
		return
	}
	if err := s.dispatcher.Broadcast(payload, adm.id); err != nil {
		s.log.Warn().Err(err).Msg("participant_joined broadcast reached no targets")
	}
}

// Shutdown cancels every live session and waits for them to finish, up to
// the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Msg("all sessions terminated")
		return nil
	case <-ctx.Done():
		s.log.Warn().Msg("shutdown timeout reached; some sessions may still be running")
		return ctx.Err()
	}
}

// participantView and roomView are the read-only projections of the room
// aggregate. Timestamps are rendered in the fixed display zone.
type participantView struct {
	ClientID    string `json:"client_id"`
	ConnectedAt string `json:"connected_at"`
}

type roomView struct {
	ID           string            `json:"id"`
	CreatedAt    string            `json:"created_at"`
	Participants []participantView `json:"participants"`
}

func newRoomView(room *domain.Room) roomView {
	return roomView{
		ID:        room.ID(),
		CreatedAt: room.CreatedAt().RFC3339(),
		Participants: lo.Map(room.Participants(), func(p domain.Participant, _ int) participantView {
			return participantView{ClientID: p.ID.String(), ConnectedAt: p.JoinedAt.RFC3339()}
		}),
	}
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleRooms lists the rooms. There is exactly one.
func (s *Server) HandleRooms(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, []roomView{newRoomView(s.membership.Snapshot())})
}

// HandleRoomDetail returns the room matching the path identifier, or 404.
func (s *Server) HandleRoomDetail(w http.ResponseWriter, r *http.Request) {
	snapshot := s.membership.Snapshot()
	if r.PathValue("room_id") != snapshot.ID() {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, newRoomView(snapshot))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to write response")
	}
}
