// Package store keeps the two views of room membership consistent: the
// transport-level sender registry (identity → outbound channel) and the
// domain room aggregate. One mutex guards both, so every add, remove,
// message append, and broadcast executes as a single critical section
// and no reader can observe the views disagreeing.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kaiwa-dev/kaiwa/internal/domain"
)

var (
	// ErrDuplicateIdentity is returned when the identity already holds a
	// live connection.
	ErrDuplicateIdentity = errors.New("identity already connected")
	// ErrNotRegistered is returned when removing an identity that holds
	// no connection.
	ErrNotRegistered = errors.New("identity not connected")
)

// handle is one live connection's registry entry.
type handle struct {
	ch          chan<- string
	connectedAt domain.Timestamp
}

// Membership owns the room aggregate and the connection registry. All
// operations are whole-operation atomic from the caller's point of view.
type Membership struct {
	mu    sync.Mutex
	room  *domain.Room
	conns map[domain.Identity]handle
	log   zerolog.Logger
}

// NewMembership creates a membership store around the given room.
func NewMembership(room *domain.Room, log zerolog.Logger) *Membership {
	return &Membership{
		room:  room,
		conns: make(map[domain.Identity]handle),
		log:   log.With().Str("component", "membership").Logger(),
	}
}

// AddParticipant admits a connection. The duplicate check, the aggregate
// capacity check, and the registry insert happen under one lock; the
// aggregate is updated first so its capacity invariant gates registry
// growth, and a capacity failure leaves both views untouched.
func (m *Membership) AddParticipant(id domain.Identity, ch chan<- string, connectedAt domain.Timestamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateIdentity, id)
	}
	if err := m.room.AddParticipant(id, connectedAt); err != nil {
		return err
	}
	m.conns[id] = handle{ch: ch, connectedAt: connectedAt}

	m.log.Info().Str("client_id", id.String()).Int("connected", len(m.conns)).Msg("participant added")
	return nil
}

// RemoveParticipant drops a connection from both views. The registry
// entry goes first; once it is gone the identity is nobody's outbound
// channel and the aggregate removal is mirrored cleanup.
func (m *Membership) RemoveParticipant(id domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotRegistered, id)
	}
	delete(m.conns, id)
	m.room.RemoveParticipant(id)

	m.log.Info().Str("client_id", id.String()).Int("connected", len(m.conns)).Msg("participant removed")
	return nil
}

// AddMessage appends a chat record to the room history.
func (m *Membership) AddMessage(sender domain.Identity, content domain.MessageContent, at domain.Timestamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.room.AddMessage(sender, content, at)
}

// Snapshot returns an independent copy of the room for presentation.
func (m *Membership) Snapshot() *domain.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.room.Clone()
}

// Identities returns the identities currently holding a connection.
func (m *Membership) Identities() []domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]domain.Identity, 0, len(m.conns))
	for id := range m.conns {
		ids = append(ids, id)
	}
	return ids
}

// CountConnected returns the number of live connections.
func (m *Membership) CountConnected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}
