package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/kaiwa-dev/kaiwa/test/testhelpers"
)

func TestBroadcastReachesEveryOtherParticipant(t *testing.T) {
	srv, ts := testhelpers.StartServer(t, nil)

	const clients = 5
	conns := make([]*websocket.Conn, clients)
	for i := 0; i < clients; i++ {
		id := fmt.Sprintf("client-%d", i)
		conns[i] = testhelpers.Dial(t, ts, id)
		testhelpers.ExpectEvent(t, conns[i], "room_connected", eventWait)
		// Earlier arrivals observe this join.
		for j := 0; j < i; j++ {
			testhelpers.ExpectEvent(t, conns[j], "participant_joined", eventWait)
		}
	}
	testhelpers.WaitForConnected(t, srv, clients)

	testhelpers.SendChat(t, conns[0], "client-0", "hello room", 1)

	for i := 1; i < clients; i++ {
		chat := testhelpers.ExpectEvent(t, conns[i], "chat", eventWait)
		assert.Equal(t, "client-0", chat["client_id"])
		assert.Equal(t, "hello room", chat["content"])
	}
	testhelpers.ExpectNoEvent(t, conns[0], 300*time.Millisecond)
}

func TestEventsArriveInOrderPerRecipient(t *testing.T) {
	_, ts := testhelpers.StartServer(t, nil)

	alice := testhelpers.Dial(t, ts, "alice")
	testhelpers.ExpectEvent(t, alice, "room_connected", eventWait)
	bob := testhelpers.Dial(t, ts, "bob")
	testhelpers.ExpectEvent(t, bob, "room_connected", eventWait)
	testhelpers.ExpectEvent(t, alice, "participant_joined", eventWait)

	const messages = 20
	for i := 0; i < messages; i++ {
		testhelpers.SendChat(t, alice, "alice", fmt.Sprintf("message-%d", i), int64(i))
	}

	for i := 0; i < messages; i++ {
		chat := testhelpers.ExpectEvent(t, bob, "chat", eventWait)
		assert.Equal(t, fmt.Sprintf("message-%d", i), chat["content"])
	}
}

func TestDeadPeerDoesNotStallBroadcastToOthers(t *testing.T) {
	srv, ts := testhelpers.StartServer(t, nil)

	alice := testhelpers.Dial(t, ts, "alice")
	testhelpers.ExpectEvent(t, alice, "room_connected", eventWait)
	bob := testhelpers.Dial(t, ts, "bob")
	testhelpers.ExpectEvent(t, bob, "room_connected", eventWait)
	testhelpers.ExpectEvent(t, alice, "participant_joined", eventWait)
	carol := testhelpers.Dial(t, ts, "carol")
	testhelpers.ExpectEvent(t, carol, "room_connected", eventWait)
	testhelpers.ExpectEvent(t, alice, "participant_joined", eventWait)
	testhelpers.ExpectEvent(t, bob, "participant_joined", eventWait)

	// Kill bob's transport without a close handshake.
	_ = bob.UnderlyingConn().Close()
	testhelpers.WaitForConnected(t, srv, 2)
	testhelpers.ExpectEvent(t, alice, "participant_left", eventWait)
	testhelpers.ExpectEvent(t, carol, "participant_left", eventWait)

	testhelpers.SendChat(t, alice, "alice", "still here?", 1)
	chat := testhelpers.ExpectEvent(t, carol, "chat", eventWait)
	assert.Equal(t, "still here?", chat["content"])
}
