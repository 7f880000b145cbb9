package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaiwa-dev/kaiwa/test/testhelpers"
)

func TestShutdownTerminatesLiveSessions(t *testing.T) {
	srv, ts := testhelpers.StartServer(t, nil)

	alice := testhelpers.Dial(t, ts, "alice")
	testhelpers.ExpectEvent(t, alice, "room_connected", eventWait)
	bob := testhelpers.Dial(t, ts, "bob")
	testhelpers.ExpectEvent(t, bob, "room_connected", eventWait)
	testhelpers.WaitForConnected(t, srv, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}

func TestShutdownWithNoSessionsReturnsImmediately(t *testing.T) {
	srv, _ := testhelpers.StartServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}
