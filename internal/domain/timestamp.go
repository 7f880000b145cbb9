package domain

import "time"

// displayZone is the fixed offset applied when rendering timestamps.
// Stored values are plain epoch milliseconds and stay untouched.
var displayZone = time.FixedZone("UTC+9", 9*60*60)

// Timestamp is a Unix epoch value in milliseconds. Timestamps are opaque
// ordered values; the UTC+9 offset exists only at presentation time.
type Timestamp int64

// NewTimestamp wraps a raw epoch-millisecond value.
func NewTimestamp(millis int64) Timestamp {
	return Timestamp(millis)
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UnixMilli())
}

// Millis returns the raw epoch-millisecond value.
func (t Timestamp) Millis() int64 {
	return int64(t)
}

// RFC3339 renders the timestamp as an RFC 3339 string in the display zone.
func (t Timestamp) RFC3339() string {
	return time.UnixMilli(int64(t)).In(displayZone).Format(time.RFC3339)
}
