package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kaiwa-dev/kaiwa/internal/domain"
	"github.com/kaiwa-dev/kaiwa/internal/store"
)

// outboundQueueSize is the per-connection event buffer. Events queued
// beyond this while a peer stalls are dropped by the dispatcher.
const outboundQueueSize = 256

// admission gates new connections. It validates the candidate identity
// and registers the connection handle before the protocol handshake
// completes; the duplicate check and the insert are one critical section
// inside the membership store.
type admission struct {
	membership *store.Membership
	log        zerolog.Logger
}

// admitted is the state handed to the session once admission succeeds.
type admitted struct {
	id          domain.Identity
	outbound    chan string
	connectedAt domain.Timestamp
}

func newAdmission(m *store.Membership, log zerolog.Logger) *admission {
	return &admission{
		membership: m,
		log:        log.With().Str("component", "admission").Logger(),
	}
}

// admit validates the raw client_id and registers a fresh connection
// handle. On any error nothing has been registered.
func (a *admission) admit(rawID string) (*admitted, error) {
	id, err := domain.NewIdentity(rawID)
	if err != nil {
		return nil, err
	}

	adm := &admitted{
		id:          id,
		outbound:    make(chan string, outboundQueueSize),
		connectedAt: domain.Now(),
	}
	if err := a.membership.AddParticipant(id, adm.outbound, adm.connectedAt); err != nil {
		a.log.Warn().Str("client_id", rawID).Err(err).Msg("connection rejected")
		return nil, err
	}
	return adm, nil
}

// admissionStatus maps an admission failure to the HTTP status returned
// in place of the upgrade.
func admissionStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRoomFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrIdentityEmpty), errors.Is(err, domain.ErrIdentityTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
