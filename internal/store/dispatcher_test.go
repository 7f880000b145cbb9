package store

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiwa-dev/kaiwa/internal/domain"
)

func TestSendToQueuesForTarget(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())
	ch := make(chan string, 4)
	require.NoError(t, m.AddParticipant("alice", ch, domain.Now()))

	require.NoError(t, d.SendTo("alice", "hello"))

	assert.Equal(t, "hello", <-ch)
}

func TestSendToUnknownIdentity(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())

	err := d.SendTo("ghost", "hello")

	require.ErrorIs(t, err, ErrClientNotFound)
}

func TestSendToSaturatedChannel(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())
	ch := make(chan string, 1)
	ch <- "already full"
	require.NoError(t, m.AddParticipant("alice", ch, domain.Now()))

	err := d.SendTo("alice", "dropped")

	require.ErrorIs(t, err, ErrPushFailed)
}

func TestBroadcastExcludesSender(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())
	alice := make(chan string, 4)
	bob := make(chan string, 4)
	require.NoError(t, m.AddParticipant("alice", alice, domain.Now()))
	require.NoError(t, m.AddParticipant("bob", bob, domain.Now()))

	require.NoError(t, d.Broadcast("from alice", "alice"))

	assert.Equal(t, "from alice", <-bob)
	assert.Empty(t, alice)
}

func TestBroadcastSurvivesOneDeadTarget(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())
	dead := make(chan string) // unbuffered, nobody reading
	bob := make(chan string, 4)
	carol := make(chan string, 4)
	require.NoError(t, m.AddParticipant("alice", dead, domain.Now()))
	require.NoError(t, m.AddParticipant("bob", bob, domain.Now()))
	require.NoError(t, m.AddParticipant("carol", carol, domain.Now()))

	require.NoError(t, d.Broadcast("news", ""))

	assert.Equal(t, "news", <-bob)
	assert.Equal(t, "news", <-carol)
}

func TestBroadcastSurvivesClosedChannel(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())
	closed := make(chan string, 1)
	close(closed)
	bob := make(chan string, 4)
	require.NoError(t, m.AddParticipant("alice", closed, domain.Now()))
	require.NoError(t, m.AddParticipant("bob", bob, domain.Now()))

	require.NoError(t, d.Broadcast("news", ""))

	assert.Equal(t, "news", <-bob)
}

func TestBroadcastAllTargetsFailed(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())
	dead := make(chan string)
	require.NoError(t, m.AddParticipant("alice", dead, domain.Now()))

	err := d.Broadcast("news", "")

	require.ErrorIs(t, err, ErrPushFailed)
}

func TestBroadcastWithNoTargetsIsNotAnError(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())

	require.NoError(t, d.Broadcast("news", ""))
}

func TestBroadcastDeliversFIFOPerRecipient(t *testing.T) {
	m := newTestMembership(10)
	d := NewDispatcher(m, zerolog.Nop())
	bob := make(chan string, 32)
	require.NoError(t, m.AddParticipant("bob", bob, domain.Now()))

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Broadcast(fmt.Sprintf("event-%d", i), ""))
	}

	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("event-%d", i), <-bob)
	}
}
