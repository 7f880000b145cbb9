// Package domain holds the chat room's core concepts: validated value
// objects, the room aggregate with its capacity invariants, and the
// errors those invariants produce. Nothing in this package touches the
// network or knows about WebSockets.
package domain

import "fmt"

const (
	// MaxIdentityLength is the upper bound on identity strings in bytes.
	MaxIdentityLength = 100
	// MaxContentLength is the upper bound on message bodies in bytes.
	MaxContentLength = 10000
)

// Identity is the user-chosen string keying a connection. It is validated
// once on construction and immutable afterwards; two identities are equal
// when their strings are equal.
type Identity string

// NewIdentity validates a raw identity string.
func NewIdentity(s string) (Identity, error) {
	if s == "" {
		return "", ErrIdentityEmpty
	}
	if len(s) > MaxIdentityLength {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrIdentityTooLong, len(s), MaxIdentityLength)
	}
	return Identity(s), nil
}

func (id Identity) String() string {
	return string(id)
}

// MessageContent is a validated chat message body.
type MessageContent string

// NewMessageContent validates a raw message body.
func NewMessageContent(s string) (MessageContent, error) {
	if s == "" {
		return "", ErrContentEmpty
	}
	if len(s) > MaxContentLength {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrContentTooLong, len(s), MaxContentLength)
	}
	return MessageContent(s), nil
}

func (c MessageContent) String() string {
	return string(c)
}
