package spectate

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFrame struct {
	Phase string `json:"phase"`
	Tick  int    `json:"tick"`
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitViewers(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Viewers() == n }, 2*time.Second, 5*time.Millisecond)
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f testFrame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHubBroadcastsLatestFrame(t *testing.T) {
	h := NewHub(time.Hour, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	a := dial(t, srv.URL)
	b := dial(t, srv.URL)
	waitViewers(t, h, 2)

	// Only the latest frame survives between broadcasts.
	h.Publish(testFrame{Phase: "ready", Tick: 1})
	h.Publish(testFrame{Phase: "playing", Tick: 2})
	h.Broadcast()

	assert.Equal(t, testFrame{Phase: "playing", Tick: 2}, readFrame(t, a))
	assert.Equal(t, testFrame{Phase: "playing", Tick: 2}, readFrame(t, b))
}

func TestHubSkipsUnchangedFrame(t *testing.T) {
	h := NewHub(time.Hour, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitViewers(t, h, 1)

	h.Broadcast() // nothing published yet
	h.Publish(testFrame{Tick: 1})
	h.Broadcast()
	h.Broadcast() // same version again
	h.Publish(testFrame{Tick: 2})
	h.Broadcast()

	assert.Equal(t, 1, readFrame(t, conn).Tick)
	assert.Equal(t, 2, readFrame(t, conn).Tick)
}

func TestHubDropsClosedViewer(t *testing.T) {
	h := NewHub(time.Hour, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitViewers(t, h, 1)

	require.NoError(t, conn.Close())
	waitViewers(t, h, 0)

	// Broadcasting to nobody is fine.
	h.Publish(testFrame{Tick: 1})
	assert.NotPanics(t, h.Broadcast)
}

func TestHubEncodeError(t *testing.T) {
	h := NewHub(time.Hour, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	dial(t, srv.URL)
	waitViewers(t, h, 1)

	h.Publish(func() {})
	assert.NotPanics(t, h.Broadcast)
	assert.Equal(t, 1, h.Viewers())
}

func TestHubRunStopsWithContext(t *testing.T) {
	h := NewHub(5*time.Millisecond, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitViewers(t, h, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	h.Publish(testFrame{Tick: 7})
	assert.Equal(t, 7, readFrame(t, conn).Tick)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, 0, h.Viewers())
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := NewHub(5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Serve(ctx, ln, h) }()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	conn := dial(t, base+"/ws")
	h.Publish(testFrame{Phase: "ended"})
	assert.Equal(t, "ended", readFrame(t, conn).Phase)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestListenAndServeBadAddr(t *testing.T) {
	err := ListenAndServe(context.Background(), "bad-address", NewHub(0, nil))
	assert.Error(t, err)
}
