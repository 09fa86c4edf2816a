package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rift/riftwm/model"
	"github.com/rift/riftwm/sys"
)

func TestReactorSaveAndExitCallsHookAndReportsSuccess(t *testing.T) {
	r, _ := newTestReactor(t)

	var called bool
	r.SetPersistHooks(func() error { called = true; return nil }, nil)

	reply := make(chan CommandResult, 1)
	r.handleCommand(Command{Kind: CommandReactorSaveAndExit, Reply: reply})

	require.True(t, called)
	result := <-reply
	assert.True(t, result.OK)
	assert.NoError(t, result.Err)
}

func TestReactorSaveAndExitWithoutHookStillReplies(t *testing.T) {
	r, _ := newTestReactor(t)
	reply := make(chan CommandResult, 1)
	r.handleCommand(Command{Kind: CommandReactorSaveAndExit, Reply: reply})
	assert.True(t, (<-reply).OK)
}

func TestReactorDebugEchoesHookOutput(t *testing.T) {
	r, _ := newTestReactor(t)
	r.SetPersistHooks(nil, func() string { return "windows=3" })

	reply := make(chan CommandResult, 1)
	r.handleCommand(Command{Kind: CommandReactorDebug, Reply: reply})

	result := <-reply
	assert.True(t, result.OK)
	assert.Equal(t, "windows=3", result.Debug)
}

func TestEventSinkFiresOnWindowCreated(t *testing.T) {
	r, _ := newTestReactor(t)

	var gotKind string
	r.SetEventSink(func(kind string, data interface{}) { gotKind = kind })

	r.handleWindowCreated(sys.Notification{Kind: sys.NotifyWindowCreated, Pid: 1, ServerId: model.WindowServerId(99)})

	assert.Equal(t, "window_created", gotKind)
}
