// Package bridge exposes a loopback websocket that streams status snapshots
// to clients and accepts one-shot commands from them. slipbarctl's watch mode
// is the primary consumer; the file-based ipc package remains the fallback
// for anything that cannot hold a socket open.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/slipbar/slipbar/internal/diaglog"
	"github.com/slipbar/slipbar/internal/ipc"
)

// StreamPath is the websocket endpoint.
const StreamPath = "/v1/stream"

const writeTimeout = 5 * time.Second

// CommandRequest is the JSON frame a client sends to issue a command.
type CommandRequest struct {
	Command string `json:"command"`
}

// Server pushes every published StatusSnapshot to all connected clients.
type Server struct {
	broker    *broker[ipc.StatusSnapshot]
	onCommand func(ipc.Command)
	diag      *diaglog.Logger
	upgrader  websocket.Upgrader

	mu      sync.RWMutex
	last    ipc.StatusSnapshot
	hasLast bool

	httpSrv *http.Server
}

// NewServer builds a bridge server. onCommand receives validated commands
// from any client; it is invoked on the reader goroutine and must hand off
// to the UI context itself.
func NewServer(onCommand func(ipc.Command), diag *diaglog.Logger) *Server {
	if diag == nil {
		diag = diaglog.NewNoOp()
	}
	return &Server{
		broker:    newBroker[ipc.StatusSnapshot](),
		onCommand: onCommand,
		diag:      diag,
	}
}

// Publish records snap as the latest state and fans it out. New clients get
// the latest snapshot immediately on connect.
func (s *Server) Publish(snap ipc.StatusSnapshot) {
	s.mu.Lock()
	s.last = snap
	s.hasLast = true
	s.mu.Unlock()
	s.broker.publish(snap)
}

// Handler returns the HTTP handler serving the stream endpoint. Exposed so
// tests can mount it on a test server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(StreamPath, s.handleStream)
	return mux
}

// ListenAndServe binds addr and serves until Shutdown. The bind happens
// synchronously so a port conflict surfaces as the return value of the first
// call, not as a background log line.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge failed to bind %s: %w", addr, err)
	}
	s.httpSrv = &http.Server{Handler: s.Handler()}
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[bridge] serve error: %v", err)
		}
	}()
	return nil
}

// Shutdown closes the listener and every client connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broker.shutdown()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// ClientCount reports the number of connected stream clients.
func (s *Server) ClientCount() int {
	return s.broker.subscriberCount()
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	s.diag.Log(diaglog.LogEntry{
		Component: diaglog.ComponentBridge,
		Event:     diaglog.EventBridgeClient,
		Reason:    "connected",
		Payload:   map[string]interface{}{"client_id": clientID},
	})
	defer s.diag.Log(diaglog.LogEntry{
		Component: diaglog.ComponentBridge,
		Event:     diaglog.EventBridgeClient,
		Reason:    "disconnected",
		Payload:   map[string]interface{}{"client_id": clientID},
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	updates := s.broker.subscribe(ctx)

	// Reader: command frames from the client. Its exit tears the whole
	// connection down.
	go func() {
		defer cancel()
		for {
			var req CommandRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			cmd, ok := ipc.Parse(req.Command)
			if !ok {
				continue // tolerate unknown commands from newer CLIs
			}
			if s.onCommand != nil {
				s.onCommand(cmd)
			}
		}
	}()

	// Send the latest known state first so a client never starts blind.
	s.mu.RLock()
	last, hasLast := s.last, s.hasLast
	s.mu.RUnlock()
	if hasLast {
		if err := writeSnapshot(conn, last); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeTimeout))
				return
			}
			if err := writeSnapshot(conn, snap); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap ipc.StatusSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
