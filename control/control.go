// Package control implements the local control-channel IPC endpoint
// (spec.md §6): a websocket server exposing send_command (apply one
// reactor.Command) and subscribe (stream reactor/app/window-server events
// as they happen), grounded in DimaJoyti-AIOS's
// internal/mcp/enhanced.StreamingHandler connection-hub pattern, adapted
// from its MCP request/response vocabulary to riftwm's Command/Event pair.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rift/riftwm/actor/reactor"
	"github.com/rift/riftwm/layout"
	"github.com/rift/riftwm/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Message is the wire envelope for both directions: a client frame carries
// Command (type "command"), a server frame carries Event (type "event") or
// Result (the reply to a command the client sent).
type Message struct {
	Type    string       `json:"type"`
	Command *WireCommand `json:"command,omitempty"`
	Result  *WireResult  `json:"result,omitempty"`
	Event   *WireEvent   `json:"event,omitempty"`
}

// WireResult is reactor.CommandResult's JSON-safe shape: CommandResult.Err
// is an error interface, which marshals to "{}" for most concrete error
// types, so the wire form flattens it to a string.
type WireResult struct {
	OK    bool   `json:"ok"`
	Err   string `json:"err,omitempty"`
	Debug string `json:"debug,omitempty"`
}

func toWireResult(r reactor.CommandResult) WireResult {
	w := WireResult{OK: r.OK, Debug: r.Debug}
	if r.Err != nil {
		w.Err = r.Err.Error()
	}
	return w
}

// WireCommand is reactor.Command's JSON-safe shape: reactor.Command itself
// carries a non-serializable Reply channel, so the wire form omits it and
// the server attaches a fresh channel per request.
type WireCommand struct {
	Kind           reactor.CommandKind `json:"kind"`
	Space          uint64              `json:"space"`
	Window         WireWindowId        `json:"window"`
	OtherWindow    WireWindowId        `json:"other_window"`
	Direction      layout.Direction    `json:"direction"`
	ContainerKind  layout.ContainerKind `json:"container_kind"`
	LayoutKind     layout.Kind         `json:"layout_kind"`
	Fraction       float64             `json:"fraction"`
	WorkspaceIndex int                 `json:"workspace_index"`
	OuterGaps      layout.Gaps         `json:"outer_gaps"`
	InnerGaps      layout.Gaps         `json:"inner_gaps"`
	WorkspaceNames []string            `json:"workspace_names,omitempty"`
}

type WireWindowId struct {
	Pid   int32  `json:"pid"`
	Index uint32 `json:"index"`
}

func wireWindow(w WireWindowId) model.WindowId {
	return model.WindowId{Pid: model.Pid(w.Pid), Index: w.Index}
}

// WireEvent is a broadcastable notice derived from reactor/app/sys
// activity: the control channel's subscribers never see raw AX types, only
// this flattened shape.
type WireEvent struct {
	Kind string      `json:"kind"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data,omitempty"`
}

// Dispatcher is the subset of Reactor the server needs: submit a command
// and get the reply back. Kept as an interface so tests can fake it
// without constructing a real Reactor.
type Dispatcher interface {
	SubmitCommand(reactor.Command)
}

// Server owns the websocket upgrade, the set of subscribed connections, and
// the event fan-out.
type Server struct {
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
	log        *logrus.Entry

	mu    sync.RWMutex
	conns map[*conn]struct{}
}

func NewServer(dispatcher Dispatcher, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local Unix socket only
		},
		log:   log.WithField("component", "control"),
		conns: make(map[*conn]struct{}),
	}
}

// ListenUnix serves the control channel over a Unix domain socket at path,
// matching spec.md §6's "local-IPC endpoint" (no TCP exposure).
func (s *Server) ListenUnix(ctx context.Context, path string) error {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listening on control socket: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConnection)
	srv := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		srv.Close()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Error("control channel upgrade failed")
		return
	}

	c := &conn{id: uuid.New().String(), ws: wsConn, send: make(chan []byte, 64), server: s}
	s.register(c)
	s.log.WithField("conn", c.id).Debug("control channel connection opened")

	go c.writePump()
	go c.readPump()
}

func (s *Server) register(c *conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) unregister(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	close(c.send)
}

// Broadcast fans an event out to every subscribed connection, dropping it
// for any connection whose send buffer is full rather than blocking the
// whole server on one slow reader.
func (s *Server) Broadcast(ev WireEvent) {
	msg := Message{Type: "event", Event: &ev}
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.WithError(err).Warn("failed to marshal event for broadcast")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.conns {
		select {
		case c.send <- data:
		default:
			s.log.Warn("dropping event for slow control-channel subscriber")
		}
	}
}

type conn struct {
	id     string
	ws     *websocket.Conn
	send   chan []byte
	server *Server
}

func (c *conn) readPump() {
	defer func() {
		c.server.unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.WithError(err).Warn("control channel read error")
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *conn) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.server.log.WithError(err).Warn("invalid control channel frame")
		return
	}
	if msg.Type != "command" || msg.Command == nil {
		return
	}

	reply := make(chan reactor.CommandResult, 1)
	cmd := fromWire(*msg.Command, reply)
	c.server.dispatcher.SubmitCommand(cmd)

	go func() {
		result := toWireResult(<-reply)
		out := Message{Type: "result", Result: &result}
		data, err := json.Marshal(out)
		if err != nil {
			return
		}
		select {
		case c.send <- data:
		default:
			c.server.log.Warn("dropping command result for slow control-channel subscriber")
		}
	}()
}

func fromWire(w WireCommand, reply chan<- reactor.CommandResult) reactor.Command {
	return reactor.Command{
		Kind:           w.Kind,
		Space:          model.SpaceId(w.Space),
		Window:         wireWindow(w.Window),
		OtherWindow:    wireWindow(w.OtherWindow),
		Direction:      w.Direction,
		ContainerKind:  w.ContainerKind,
		LayoutKind:     w.LayoutKind,
		Fraction:       w.Fraction,
		WorkspaceIndex: w.WorkspaceIndex,
		OuterGaps:      w.OuterGaps,
		InnerGaps:      w.InnerGaps,
		WorkspaceNames: w.WorkspaceNames,
		Reply:          reply,
	}
}
