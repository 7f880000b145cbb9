package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "simple identity", raw: "alice"},
		{name: "exactly max length", raw: strings.Repeat("a", MaxIdentityLength)},
		{name: "empty", raw: "", wantErr: ErrIdentityEmpty},
		{name: "one over max length", raw: strings.Repeat("a", MaxIdentityLength+1), wantErr: ErrIdentityTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewIdentity(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, id.String())
		})
	}
}

func TestIdentityValueEquality(t *testing.T) {
	a1, err := NewIdentity("alice")
	require.NoError(t, err)
	a2, err := NewIdentity("alice")
	require.NoError(t, err)
	b, err := NewIdentity("bob")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}

func TestNewMessageContent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "simple content", raw: "Hello, world!"},
		{name: "exactly max length", raw: strings.Repeat("x", MaxContentLength)},
		{name: "empty", raw: "", wantErr: ErrContentEmpty},
		{name: "one over max length", raw: strings.Repeat("x", MaxContentLength+1), wantErr: ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := NewMessageContent(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, content.String())
		})
	}
}

func TestTimestampRendersInDisplayZone(t *testing.T) {
	// 2023-01-01T00:00:00Z is 09:00 in the UTC+9 display zone.
	ts := NewTimestamp(1672531200000)

	assert.Equal(t, int64(1672531200000), ts.Millis())
	assert.Equal(t, "2023-01-01T09:00:00+09:00", ts.RFC3339())
}

func TestTimestampOrdering(t *testing.T) {
	assert.Less(t, NewTimestamp(1000), NewTimestamp(2000))
}
