// Package protocol defines the JSON event envelopes exchanged over the
// WebSocket connection. Every envelope carries a "type" discriminant
// naming the event; inbound frames are decoded by reading that field
// once and dispatching, with a single raw-text fallback for anything
// that does not parse.
package protocol

import "encoding/json"

// Event type discriminants.
const (
	TypeRoomConnected     = "room_connected"
	TypeParticipantJoined = "participant_joined"
	TypeParticipantLeft   = "participant_left"
	TypeChat              = "chat"
)

// FallbackClientID is the sender recorded on frames that could not be
// parsed as a chat envelope.
const FallbackClientID = "unknown"

// ParticipantInfo describes one room member inside a RoomConnected event.
type ParticipantInfo struct {
	ClientID    string `json:"client_id"`
	ConnectedAt int64  `json:"connected_at"`
}

// RoomConnected is sent to a newly admitted connection and carries the
// full participant snapshot, including the recipient itself.
type RoomConnected struct {
	Type         string            `json:"type"`
	Participants []ParticipantInfo `json:"participants"`
}

// ParticipantJoined announces a new member to everyone else.
type ParticipantJoined struct {
	Type        string `json:"type"`
	ClientID    string `json:"client_id"`
	ConnectedAt int64  `json:"connected_at"`
}

// ParticipantLeft announces a departure to the remaining members.
type ParticipantLeft struct {
	Type           string `json:"type"`
	ClientID       string `json:"client_id"`
	DisconnectedAt int64  `json:"disconnected_at"`
}

// Chat is a relayed message. The same shape is used for client→server
// frames and for the fan-out to other participants.
type Chat struct {
	Type      string `json:"type"`
	ClientID  string `json:"client_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// NewRoomConnected builds a RoomConnected envelope.
func NewRoomConnected(participants []ParticipantInfo) RoomConnected {
	return RoomConnected{Type: TypeRoomConnected, Participants: participants}
}

// NewParticipantJoined builds a ParticipantJoined envelope.
func NewParticipantJoined(clientID string, connectedAt int64) ParticipantJoined {
	return ParticipantJoined{Type: TypeParticipantJoined, ClientID: clientID, ConnectedAt: connectedAt}
}

// NewParticipantLeft builds a ParticipantLeft envelope.
func NewParticipantLeft(clientID string, disconnectedAt int64) ParticipantLeft {
	return ParticipantLeft{Type: TypeParticipantLeft, ClientID: clientID, DisconnectedAt: disconnectedAt}
}

// NewChat builds a Chat envelope.
func NewChat(clientID, content string, timestamp int64) Chat {
	return Chat{Type: TypeChat, ClientID: clientID, Content: content, Timestamp: timestamp}
}

// Encode marshals an envelope to its wire string.
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeChat interprets an inbound text frame. Well-formed chat envelopes
// are returned with their type normalized; malformed JSON or an unknown
// discriminant is tolerated and wrapped as a best-effort chat carrying
// the raw text, client_id "unknown", and timestamp 0 rather than dropped.
func DecodeChat(raw []byte) Chat {
	var c Chat
	if err := json.Unmarshal(raw, &c); err != nil || c.Type != TypeChat {
		return NewChat(FallbackClientID, string(raw), 0)
	}
	c.Type = TypeChat
	return c
}
