package control

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rift/riftwm/actor/reactor"
)

func TestDialUnixSendCommandRoundTrips(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "control.sock")

	disp := &fakeDispatcher{received: make(chan reactor.Command, 1)}
	srv := NewServer(disp, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenUnix(ctx, sockPath) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(sockPath)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	client, err := DialUnix(sockPath, time.Second)
	require.NoError(t, err)
	defer client.Close()

	result, err := client.SendCommand(reactor.Command{Kind: reactor.CommandToggleFullscreen})
	require.NoError(t, err)
	assert.True(t, result.OK)

	select {
	case cmd := <-disp.received:
		assert.Equal(t, reactor.CommandToggleFullscreen, cmd.Kind)
	case <-time.After(time.Second):
		t.Fatal("dispatcher never received the command via the real socket")
	}
}
