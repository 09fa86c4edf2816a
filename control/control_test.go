package control

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rift/riftwm/actor/reactor"
	"github.com/rift/riftwm/layout"
)

type fakeDispatcher struct {
	received chan reactor.Command
}

func (f *fakeDispatcher) SubmitCommand(cmd reactor.Command) {
	f.received <- cmd
	if cmd.Reply != nil {
		cmd.Reply <- reactor.CommandResult{OK: true}
	}
}

func TestFromWirePreservesLayoutFields(t *testing.T) {
	w := WireCommand{
		Kind:      reactor.CommandMoveFocus,
		Space:     7,
		Window:    WireWindowId{Pid: 42, Index: 3},
		Direction: layout.DirRight,
		Fraction:  0.25,
	}
	reply := make(chan reactor.CommandResult, 1)
	cmd := fromWire(w, reply)

	assert.Equal(t, reactor.CommandMoveFocus, cmd.Kind)
	assert.Equal(t, uint64(7), uint64(cmd.Space))
	assert.Equal(t, int32(42), int32(cmd.Window.Pid))
	assert.Equal(t, uint32(3), cmd.Window.Index)
	assert.Equal(t, layout.DirRight, cmd.Direction)
	assert.Equal(t, 0.25, cmd.Fraction)
}

func TestHandleMessageSubmitsCommandAndRepliesOnSend(t *testing.T) {
	disp := &fakeDispatcher{received: make(chan reactor.Command, 1)}
	s := NewServer(disp, nil)
	c := &conn{send: make(chan []byte, 4), server: s}

	msg := Message{Type: "command", Command: &WireCommand{Kind: reactor.CommandToggleFullscreen}}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	c.handleMessage(data)

	select {
	case cmd := <-disp.received:
		assert.Equal(t, reactor.CommandToggleFullscreen, cmd.Kind)
	case <-time.After(time.Second):
		t.Fatal("dispatcher never received the command")
	}

	select {
	case out := <-c.send:
		var reply Message
		require.NoError(t, json.Unmarshal(out, &reply))
		assert.Equal(t, "result", reply.Type)
		require.NotNil(t, reply.Result)
		assert.True(t, reply.Result.OK)
	case <-time.After(time.Second):
		t.Fatal("result never reached the send channel")
	}
}

func TestBroadcastFansOutToRegisteredConnections(t *testing.T) {
	s := NewServer(&fakeDispatcher{received: make(chan reactor.Command, 1)}, nil)
	c1 := &conn{send: make(chan []byte, 4), server: s}
	c2 := &conn{send: make(chan []byte, 4), server: s}
	s.register(c1)
	s.register(c2)

	s.Broadcast(WireEvent{Kind: "window_raised"})

	for _, c := range []*conn{c1, c2} {
		select {
		case data := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.Equal(t, "event", msg.Type)
			require.NotNil(t, msg.Event)
			assert.Equal(t, "window_raised", msg.Event.Kind)
		case <-time.After(time.Second):
			t.Fatal("connection never received the broadcast event")
		}
	}
}

func TestBroadcastDropsForSlowSubscriberInsteadOfBlocking(t *testing.T) {
	s := NewServer(&fakeDispatcher{received: make(chan reactor.Command, 1)}, nil)
	c := &conn{send: make(chan []byte), server: s} // unbuffered: every send would block
	s.register(c)

	done := make(chan struct{})
	go func() {
		s.Broadcast(WireEvent{Kind: "noop"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a slow subscriber instead of dropping")
	}
}
