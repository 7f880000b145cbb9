package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Participant is a member of the room for the lifetime of one connection.
type Participant struct {
	ID       Identity
	JoinedAt Timestamp
}

// ChatRecord is one relayed message kept in the room's bounded history.
// Records are append-only and never mutated.
type ChatRecord struct {
	Sender  Identity
	Content MessageContent
	At      Timestamp
}

// Room is the domain aggregate: the canonical participant list in join
// order and the bounded message history. Both lists are gated by fixed
// capacities; exceeding either is an error, never a silent truncation.
//
// Room has no locking of its own. Callers must serialize access.
type Room struct {
	id              string
	createdAt       Timestamp
	participants    []Participant
	messages        []ChatRecord
	maxParticipants int
	maxMessages     int
}

// NewRoom creates an empty room with a generated UUID identifier and the
// given capacity ceilings.
func NewRoom(maxParticipants, maxMessages int) *Room {
	return &Room{
		id:              uuid.NewString(),
		createdAt:       Now(),
		maxParticipants: maxParticipants,
		maxMessages:     maxMessages,
	}
}

// ID returns the room's UUID-formatted identifier.
func (r *Room) ID() string {
	return r.id
}

// CreatedAt returns the room's creation time.
func (r *Room) CreatedAt() Timestamp {
	return r.createdAt
}

// AddParticipant appends a participant, failing closed when the room is
// already at capacity.
func (r *Room) AddParticipant(id Identity, joinedAt Timestamp) error {
	if len(r.participants) >= r.maxParticipants {
		return fmt.Errorf("%w: %d participants (max %d)", ErrRoomFull, len(r.participants), r.maxParticipants)
	}
	r.participants = append(r.participants, Participant{ID: id, JoinedAt: joinedAt})
	return nil
}

// RemoveParticipant drops the participant with the given identity.
// Removing an absent identity is a no-op; removal is advisory cleanup,
// not an invariant check.
func (r *Room) RemoveParticipant(id Identity) {
	for i, p := range r.participants {
		if p.ID == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return
		}
	}
}

// AddMessage appends a chat record, failing closed when the history is
// already at capacity.
func (r *Room) AddMessage(sender Identity, content MessageContent, at Timestamp) error {
	if len(r.messages) >= r.maxMessages {
		return fmt.Errorf("%w: %d messages (max %d)", ErrHistoryFull, len(r.messages), r.maxMessages)
	}
	r.messages = append(r.messages, ChatRecord{Sender: sender, Content: content, At: at})
	return nil
}

// Participants returns a copy of the participant list in join order.
func (r *Room) Participants() []Participant {
	out := make([]Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// Messages returns a copy of the message history in append order.
func (r *Room) Messages() []ChatRecord {
	out := make([]ChatRecord, len(r.messages))
	copy(out, r.messages)
	return out
}

// Clone returns an independent deep copy of the room for presentation.
func (r *Room) Clone() *Room {
	return &Room{
		id:              r.id,
		createdAt:       r.createdAt,
		participants:    r.Participants(),
		messages:        r.Messages(),
		maxParticipants: r.maxParticipants,
		maxMessages:     r.maxMessages,
	}
}
