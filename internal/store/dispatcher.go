package store

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kaiwa-dev/kaiwa/internal/domain"
)

var (
	// ErrClientNotFound is returned when the target identity holds no
	// connection.
	ErrClientNotFound = errors.New("client not found")
	// ErrPushFailed is returned when delivery could not be completed:
	// for SendTo a single failed push, for Broadcast only when every
	// target failed.
	ErrPushFailed = errors.New("push failed")
)

// Dispatcher fans encoded events out to registered outbound channels. It
// runs every fan-out while holding the membership lock, so broadcasts
// from admission, relay, and disconnect are serialized against membership
// changes and all observers agree on one event order.
type Dispatcher struct {
	membership *Membership
	log        zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given membership store.
func NewDispatcher(m *Membership, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		membership: m,
		log:        log.With().Str("component", "dispatcher").Logger(),
	}
}

// SendTo queues an event for a single identity.
func (d *Dispatcher) SendTo(id domain.Identity, payload string) error {
	d.membership.mu.Lock()
	defer d.membership.mu.Unlock()

	h, ok := d.membership.conns[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrClientNotFound, id)
	}
	if !push(h.ch, payload) {
		return fmt.Errorf("%w: %q", ErrPushFailed, id)
	}
	return nil
}

// Broadcast queues an event for every registered identity except exclude.
// Each push attempt is independent: a closed or saturated channel is
// logged and skipped, never allowed to stall delivery to the rest. Only
// when every target fails does Broadcast report an error.
func (d *Dispatcher) Broadcast(payload string, exclude domain.Identity) error {
	d.membership.mu.Lock()
	defer d.membership.mu.Unlock()

	targets, failed := 0, 0
	for id, h := range d.membership.conns {
		if id == exclude {
			continue
		}
		targets++
		if !push(h.ch, payload) {
			failed++
			d.log.Warn().Str("client_id", id.String()).Msg("dropping event for unreachable client")
		}
	}
	if targets > 0 && failed == targets {
		return fmt.Errorf("%w: all %d targets", ErrPushFailed, targets)
	}
	return nil
}

// push attempts a non-blocking send. A full or closed channel counts as
// a failed delivery for this one recipient.
func push(ch chan<- string, payload string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case ch <- payload:
		return true
	default:
		return false
	}
}
