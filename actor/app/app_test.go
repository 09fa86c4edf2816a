package app

import (
	"context"
	"testing"
	"time"

	"github.com/rift/riftwm/model"
	"github.com/rift/riftwm/sys"
	"github.com/rift/riftwm/txstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFrameRecordsTransactionBeforeCall(t *testing.T) {
	ax := sys.NewFakeAX(1, "com.example.app")
	tx := txstore.New()
	events := make(chan Event, 8)
	a := NewActor(1, ax, tx, events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	serverId := model.WindowServerId(42)
	frame := model.Rect{X: 1, Y: 2, W: 3, H: 4}
	done := make(chan error, 1)
	a.Send(Request{Kind: RequestSetFrame, Window: model.WindowId{Pid: 1, Index: 1}, ServerId: serverId, Frame: frame, Done: done})

	require.NoError(t, <-done)
	record := tx.Get(serverId)
	assert.True(t, record.HasTarget)
	assert.Equal(t, frame, record.Target)
}

func TestActivationHandshakeCompletesOnObservedEcho(t *testing.T) {
	ax := sys.NewFakeAX(1, "com.example.app")
	tx := txstore.New()
	a := NewActor(1, ax, tx, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	done := make(chan error, 1)
	a.Send(Request{Kind: RequestRaise, Window: model.WindowId{Pid: 1, Index: 1}, Done: done})

	require.Eventually(t, a.IsAwaitingActivation, time.Second, time.Millisecond)

	initiated := a.ObserveActivation(time.Now())
	assert.True(t, initiated)
	a.CompleteActivation()

	require.NoError(t, <-done)
	assert.False(t, a.IsAwaitingActivation())
}

func TestActivationHandshakeExpiresAfterDeadline(t *testing.T) {
	ax := sys.NewFakeAX(1, "com.example.app")
	tx := txstore.New()
	a := NewActor(1, ax, tx, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	done := make(chan error, 1)
	a.Send(Request{Kind: RequestRaise, Window: model.WindowId{Pid: 1, Index: 1}, Done: done})
	require.Eventually(t, a.IsAwaitingActivation, time.Second, time.Millisecond)

	future := time.Now().Add(2 * time.Second)
	assert.False(t, a.ObserveActivation(future))
	a.ExpireActivation(future)

	require.NoError(t, <-done)
	assert.False(t, a.IsAwaitingActivation())
}
