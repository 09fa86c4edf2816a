package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rift/riftwm/actor/reactor"
)

// Client is a thin synchronous wrapper over one websocket connection to a
// Server, used by the riftwm CLI's non-"run" subcommands (the same
// dial-then-request shape ryanthedev-the-grid's grid-cli client uses
// against GridServer, adapted from its RPC framing to this package's
// Message envelope).
type Client struct {
	ws *websocket.Conn
}

// DialUnix connects to a Server listening on a Unix domain socket at path.
func DialUnix(path string, timeout time.Duration) (*Client, error) {
	dialer := websocket.Dialer{
		NetDialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			d := net.Dialer{}
			return d.DialContext(ctx, "unix", path)
		},
		HandshakeTimeout: timeout,
	}

	ws, _, err := dialer.Dial("ws://unix/control", http.Header{})
	if err != nil {
		return nil, err
	}
	return &Client{ws: ws}, nil
}

func (c *Client) Close() error {
	return c.ws.Close()
}

// SendCommand writes cmd as a single "command" frame and blocks for the
// matching "result" frame, ignoring any "event" frames it sees meanwhile
// (a client that also wants the event stream should use Subscribe instead).
func (c *Client) SendCommand(cmd reactor.Command) (WireResult, error) {
	msg := Message{Type: "command", Command: toWireCommand(cmd)}
	if err := c.ws.WriteJSON(msg); err != nil {
		return WireResult{}, fmt.Errorf("writing command: %w", err)
	}

	for {
		var reply Message
		if err := c.ws.ReadJSON(&reply); err != nil {
			return WireResult{}, fmt.Errorf("reading result: %w", err)
		}
		if reply.Type == "result" && reply.Result != nil {
			return *reply.Result, nil
		}
	}
}

// Subscribe streams broadcast events until ctx is canceled.
func (c *Client) Subscribe(ctx context.Context) (<-chan WireEvent, error) {
	events := make(chan WireEvent, 32)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			var msg Message
			if err := c.ws.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "event" && msg.Event != nil {
				select {
				case events <- *msg.Event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

func toWireCommand(cmd reactor.Command) *WireCommand {
	return &WireCommand{
		Kind:           cmd.Kind,
		Space:          uint64(cmd.Space),
		Window:         WireWindowId{Pid: int32(cmd.Window.Pid), Index: cmd.Window.Index},
		OtherWindow:    WireWindowId{Pid: int32(cmd.OtherWindow.Pid), Index: cmd.OtherWindow.Index},
		Direction:      cmd.Direction,
		ContainerKind:  cmd.ContainerKind,
		LayoutKind:     cmd.LayoutKind,
		Fraction:       cmd.Fraction,
		WorkspaceIndex: cmd.WorkspaceIndex,
		OuterGaps:      cmd.OuterGaps,
		InnerGaps:      cmd.InnerGaps,
		WorkspaceNames: cmd.WorkspaceNames,
	}
}
