// Package testhelpers provides shared utilities for the integration
// tests: spinning up a chat server over httptest, dialing WebSocket
// clients, and reading protocol events with deadlines.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kaiwa-dev/kaiwa/internal/server"
)

// NewTestConfig returns a config suitable for fast tests.
func NewTestConfig() *server.Config {
	return &server.Config{
		Addr:            ":0",
		AllowedOrigins:  []string{"*"},
		MaxFrameSize:    65536,
		RoomCapacity:    100,
		HistoryCapacity: 1000,
		RateLimitBurst:  1000,
		RateLimitRefill: time.Second,
		WriteWait:       time.Second,
		PongWait:        10 * time.Second,
		PingInterval:    5 * time.Second,
		ShutdownTimeout: 2 * time.Second,
		LogLevel:        "error",
	}
}

// StartServer boots a chat server behind httptest and registers cleanup.
func StartServer(t *testing.T, cfg *server.Config) (*server.Server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = NewTestConfig()
	}
	srv := server.New(cfg, zerolog.Nop())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

// WebSocketURL converts an httptest base URL into the ws:// endpoint for
// the given client identity.
func WebSocketURL(ts *httptest.Server, clientID string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?client_id=" + clientID
}

// Dial opens a WebSocket connection for the given identity and fails the
// test if the upgrade is refused.
func Dial(t *testing.T, ts *httptest.Server, clientID string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(WebSocketURL(ts, clientID), nil)
	require.NoError(t, err, "dial as %q", clientID)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// DialExpectRefusal attempts a connection and returns the HTTP status of
// the refused handshake.
func DialExpectRefusal(t *testing.T, ts *httptest.Server, clientID string) int {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(WebSocketURL(ts, clientID), nil)
	require.Error(t, err, "expected handshake refusal for %q", clientID)
	if conn != nil {
		_ = conn.Close()
	}
	require.NotNil(t, resp)
	defer resp.Body.Close()
	return resp.StatusCode
}

// ReadEvent reads the next text frame and decodes it as a JSON object.
func ReadEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err, "reading next event")

	var event map[string]any
	require.NoError(t, json.Unmarshal(raw, &event), "decoding event %q", raw)
	return event
}

// ExpectEvent reads the next event and asserts its type discriminant.
func ExpectEvent(t *testing.T, conn *websocket.Conn, eventType string, timeout time.Duration) map[string]any {
	t.Helper()
	event := ReadEvent(t, conn, timeout)
	require.Equal(t, eventType, event["type"], "unexpected event: %v", event)
	return event
}

// ExpectNoEvent asserts that nothing arrives within the window.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(window)))
	_, raw, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no event, got %q", raw)
	}
	netErr, ok := err.(interface{ Timeout() bool })
	require.True(t, ok && netErr.Timeout(), "expected read timeout, got %v", err)
}

// SendChat writes a chat envelope on the connection.
func SendChat(t *testing.T, conn *websocket.Conn, clientID, content string, timestamp int64) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"type":      "chat",
		"client_id": clientID,
		"content":   content,
		"timestamp": timestamp,
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

// WaitForConnected polls until the server reports the expected number of
// live connections, or fails after two seconds.
func WaitForConnected(t *testing.T, srv *server.Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Membership().CountConnected() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("connected count never reached %d (now %d)", want, srv.Membership().CountConnected())
}

// GetJSON fetches a URL and decodes the JSON response body into out.
func GetJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}
