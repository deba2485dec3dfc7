package panel

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(srv.Close)

	return hub, srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) Snapshot {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	return snapshot
}

func TestHubSendsSnapshotOnConnect(t *testing.T) {
	_, srv := newTestHub(t)

	conn := dialHub(t, srv)

	snapshot := readSnapshot(t, conn)
	assert.Equal(t, "snapshot", snapshot.Type)
	assert.Empty(t, snapshot.Timers)
}

func TestHubSendsLastPublishedStateOnConnect(t *testing.T) {
	hub, srv := newTestHub(t)

	hub.Publish([]ActiveTimer{{
		Number:     "1001",
		Stage:      model.StageSeparation,
		PersonID:   7,
		PersonName: "Ana",
		StartedAt:  time.Now(),
	}}, time.Now())

	conn := dialHub(t, srv)

	snapshot := readSnapshot(t, conn)
	assert.Equal(t, "update", snapshot.Type)
	require.Len(t, snapshot.Timers, 1)
	assert.Equal(t, "1001", snapshot.Timers[0].Number)
	assert.Equal(t, "Ana", snapshot.Timers[0].PersonName)
}

func TestHubBroadcast(t *testing.T) {
	hub, srv := newTestHub(t)

	first := dialHub(t, srv)
	second := dialHub(t, srv)

	// Drain the connect-time snapshots.
	readSnapshot(t, first)
	readSnapshot(t, second)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	hub.Publish([]ActiveTimer{
		{Number: "1001", Stage: model.StageSeparation, PersonID: 1, PersonName: "Ana", StartedAt: time.Now()},
		{Number: "1002", Stage: model.StageConference, PersonID: 2, PersonName: "Carlos", StartedAt: time.Now()},
	}, time.Now())

	for _, conn := range []*websocket.Conn{first, second} {
		snapshot := readSnapshot(t, conn)
		assert.Equal(t, "update", snapshot.Type)
		assert.Len(t, snapshot.Timers, 2)
	}
}

// The server wraps every handler in the access-log response writer, so the
// upgrade must survive that wrapping too, not just a bare ResponseWriter.
func TestHubUpgradeThroughAccessLogWriter(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Handle(response.NewMetricsResponseWriter(w), r)
	}))
	t.Cleanup(srv.Close)

	conn := dialHub(t, srv)

	snapshot := readSnapshot(t, conn)
	assert.Equal(t, "snapshot", snapshot.Type)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub, srv := newTestHub(t)

	conn := dialHub(t, srv)
	readSnapshot(t, conn)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
