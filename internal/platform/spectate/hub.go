// Package spectate streams race frames to WebSocket viewers.
//
// The race publishes its latest frame every tick. A Hub keeps only the most
// recent one and broadcasts it to every connected viewer at a fixed interval,
// so slow viewers never hold up the game loop.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	DefaultInterval = 50 * time.Millisecond // Broadcast rate, 20 frames per second
	writeTimeout    = time.Second
)

// viewer is one WebSocket connection with a serialized writer.
type viewer struct {
	conn *websocket.Conn
	mu   sync.Mutex
	seen uint64 // Version of the last frame written
}

func (v *viewer) write(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	//nolint:errcheck // A failed deadline surfaces as a write error
	v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return v.conn.WriteMessage(websocket.TextMessage, data)
}

func (v *viewer) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conn.Close()
}

// Hub fans the latest published frame out to viewers.
type Hub struct {
	interval time.Duration
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	viewers map[*viewer]struct{}
	latest  any
	version uint64
}

// NewHub creates a hub. A non-positive interval uses DefaultInterval; a nil
// logger discards.
func NewHub(interval time.Duration, logger *log.Logger) *Hub {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		viewers: make(map[*viewer]struct{}),
	}
}

// Publish replaces the frame to broadcast. It never blocks on viewers; the
// value is encoded later by Run, so it must not be mutated afterwards.
func (h *Hub) Publish(frame any) {
	h.mu.Lock()
	h.latest = frame
	h.version++
	h.mu.Unlock()
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// ServeHTTP upgrades the request and keeps the viewer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	v := &viewer{conn: conn}
	h.mu.Lock()
	h.viewers[v] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("viewer connected", "remote", r.RemoteAddr)

	// Viewers only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(v)
	h.logger.Info("viewer disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) drop(v *viewer) {
	h.mu.Lock()
	_, ok := h.viewers[v]
	delete(h.viewers, v)
	h.mu.Unlock()
	if ok {
		v.close()
	}
}

// Run broadcasts until ctx is done, then disconnects every viewer.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.Broadcast()
		}
	}
}

// Broadcast sends the latest frame to every viewer that has not seen it.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	frame, version := h.latest, h.version
	targets := make([]*viewer, 0, len(h.viewers))
	for v := range h.viewers {
		if v.seen != version {
			v.seen = version
			targets = append(targets, v)
		}
	}
	h.mu.Unlock()

	if version == 0 || len(targets) == 0 {
		return
	}

	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("cannot encode frame", "err", err)
		return
	}

	for _, v := range targets {
		if err := v.write(data); err != nil {
			h.logger.Debug("dropping viewer", "err", err)
			h.drop(v)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	viewers := h.viewers
	h.viewers = make(map[*viewer]struct{})
	h.mu.Unlock()

	for v := range viewers {
		v.close()
	}
}

// ListenAndServe serves the hub on addr at /ws until ctx is done.
func ListenAndServe(ctx context.Context, addr string, h *Hub) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("spectate: cannot listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, h)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, ln net.Listener, h *Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go h.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		//nolint:errcheck // Best-effort shutdown
		srv.Shutdown(shutdownCtx)
	}()

	h.logger.Info("spectator stream listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("spectate: %w", err)
	}
	return nil
}
