package domain

import "errors"

var (
	// ErrIdentityEmpty is returned when an identity string is empty.
	ErrIdentityEmpty = errors.New("identity cannot be empty")
	// ErrIdentityTooLong is returned when an identity exceeds MaxIdentityLength.
	ErrIdentityTooLong = errors.New("identity too long")
	// ErrContentEmpty is returned when a message body is empty.
	ErrContentEmpty = errors.New("message content cannot be empty")
	// ErrContentTooLong is returned when a message body exceeds MaxContentLength.
	ErrContentTooLong = errors.New("message content too long")
	// ErrRoomFull is returned when the participant ceiling has been reached.
	ErrRoomFull = errors.New("room capacity exceeded")
	// ErrHistoryFull is returned when the message history ceiling has been reached.
	ErrHistoryFull = errors.New("message history capacity exceeded")
)
