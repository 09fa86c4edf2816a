package reactor

import (
	"github.com/rift/riftwm/layout"
	"github.com/rift/riftwm/model"
)

// CommandKind is the full vocabulary of external commands the reactor
// accepts: layout operations plus the live-reloadable settings from
// original_source/src/common/config.rs's ConfigCommand (spec.md's
// supplemented "config command" surface).
type CommandKind int

const (
	CommandMoveFocus CommandKind = iota
	CommandMoveNode
	CommandSplit
	CommandJoin
	CommandUnjoin
	CommandToggleFullscreen
	CommandResizeBy
	CommandSwitchWorkspace
	CommandMoveWindowToWorkspace
	CommandChangeLayoutKind

	// CommandRaise is an explicit user-issued raise (spec.md §6 hotkey
	// vocabulary), as opposed to the raises the reactor issues on its own
	// behalf as a side effect of a layout command.
	CommandRaise

	CommandSetAnimate
	CommandSetAnimationDuration
	CommandSetAnimationFps
	CommandSetAnimationEasing
	CommandSetMouseFollowsFocus
	CommandSetMouseHidesOnFocus
	CommandSetFocusFollowsMouse
	CommandSetStackOffset
	CommandSetOuterGaps
	CommandSetInnerGaps
	CommandSetWorkspaceNames
	CommandGetConfig
	CommandSaveConfig
	CommandReloadConfig

	// CommandReactorSaveAndExit and CommandReactorDebug are named directly
	// in spec.md §6's hotkey command vocabulary, alongside the layout
	// commands, rather than belonging to the config surface.
	CommandReactorSaveAndExit
	CommandReactorDebug
)

// Command is one dispatchable instruction. Only the fields relevant to
// Kind are populated; the rest are zero.
type Command struct {
	Kind CommandKind

	Space     model.SpaceId
	Window    model.WindowId
	OtherWindow model.WindowId
	Direction layout.Direction
	ContainerKind layout.ContainerKind
	LayoutKind layout.Kind
	Fraction  float64
	WorkspaceIndex int

	OuterGaps layout.Gaps
	InnerGaps layout.Gaps
	WorkspaceNames []string

	Reply chan<- CommandResult
}

type CommandResult struct {
	Response layout.Response
	OK       bool
	Err      error
	Debug    string
}

// SaveAndExitHook is called for CommandReactorSaveAndExit and its error is
// reported back as CommandResult.Err; the reactor keeps running after the
// hook returns and does not shut the daemon down itself. DebugHook is
// called for CommandReactorDebug and its return value
// is echoed back verbatim as CommandResult.Debug.
type SaveAndExitHook func() error
type DebugHook func() string

func (r *Reactor) SetPersistHooks(saveAndExit SaveAndExitHook, debug DebugHook) {
	r.saveAndExit = saveAndExit
	r.debugDump = debug
}

// ConfigHandler lets the reactor forward config-surface commands (the
// Set*/Get*/Save*/Reload* kinds) to whatever owns live settings, without
// the reactor depending on the config package directly.
type ConfigHandler interface {
	HandleCommand(Command) error
}

func (r *Reactor) SetConfigHandler(h ConfigHandler) { r.configHandler = h }

func (r *Reactor) handleCommand(cmd Command) {
	switch cmd.Kind {
	case CommandMoveFocus:
		r.replyAndApply(cmd, cmd.Space, r.engine.MoveFocus(cmd.Space, cmd.Direction))
	case CommandMoveNode:
		r.replyAndApply(cmd, cmd.Space, r.engine.MoveNode(cmd.Space, cmd.Direction))
	case CommandSplit:
		r.replyAndApply(cmd, cmd.Space, r.engine.Split(cmd.Space, cmd.ContainerKind))
	case CommandJoin:
		r.replyAndApply(cmd, cmd.Space, r.engine.Join(cmd.Space, cmd.Direction))
	case CommandUnjoin:
		r.replyAndApply(cmd, cmd.Space, r.engine.Unjoin(cmd.Space))
	case CommandToggleFullscreen:
		r.replyAndApply(cmd, cmd.Space, r.engine.ToggleFullscreen(cmd.Space))
	case CommandResizeBy:
		ok := r.engine.ResizeBy(cmd.Space, cmd.Direction, cmd.Fraction)
		r.replyOK(cmd, ok)
		if ok {
			r.applyLayout(cmd.Space)
		}
	case CommandSwitchWorkspace:
		r.handleSwitchWorkspace(cmd)
	case CommandMoveWindowToWorkspace:
		r.replyAndApply(cmd, cmd.Space, r.engine.MoveWindowToWorkspace(cmd.Window, cmd.WorkspaceIndex))
	case CommandChangeLayoutKind:
		r.engine.ChangeKind(cmd.Space, cmd.LayoutKind)
		r.reply(cmd, layout.Response{})
		r.applyLayout(cmd.Space)
	case CommandRaise:
		r.dispatchRaise(cmd.Window, false)
		r.reply(cmd, layout.Response{})
	case CommandReactorSaveAndExit:
		r.handleSaveAndExit(cmd)
	case CommandReactorDebug:
		r.handleDebug(cmd)
	default:
		r.dispatchConfigCommand(cmd)
	}
}

// replyAndApply replies with resp as before, then runs the layout-apply
// pass the reply alone used to skip: every layout command mutates the
// engine's model, and the frames/raises that mutation implies were
// otherwise never dispatched to any app actor.
func (r *Reactor) replyAndApply(cmd Command, space model.SpaceId, resp layout.Response) {
	r.reply(cmd, resp)
	r.applyResponse(space, resp)
}

// handleSwitchWorkspace implements the full workspace-switch algorithm
// (spec.md §4.1): hide the outgoing workspace's windows, raise the focus
// the incoming workspace selects, and recompute frames — not just flip the
// active index and leave the old workspace's windows sitting on top.
func (r *Reactor) handleSwitchWorkspace(cmd Command) {
	prevIdx := r.engine.Manager().ActiveIndex(cmd.Space)
	var prevVisible []model.WindowId
	if prevWs := r.workspaceBackend(cmd.Space, prevIdx); prevWs != nil {
		prevVisible = prevWs.Visible()
	}

	w, ok := r.engine.SwitchWorkspace(cmd.Space, cmd.WorkspaceIndex)
	resp := layout.Response{}
	if w != nil {
		resp.FocusWindow = w
	}
	r.reply(cmd, resp)
	if !ok {
		return
	}

	if prevIdx != cmd.WorkspaceIndex {
		for _, id := range prevVisible {
			r.hideWindow(id)
		}
	}
	r.dispatchRaises(resp)
	r.applyLayout(cmd.Space)
	r.emit("workspace_switched", cmd.WorkspaceIndex)
}

// workspaceBackend returns the backend for a specific workspace index
// within space, as opposed to Engine.backendFor which only ever looks at
// the currently active one.
func (r *Reactor) workspaceBackend(space model.SpaceId, idx int) layout.Backend {
	ws := r.engine.Manager().Workspaces(space)
	if idx < 0 || idx >= len(ws) {
		return nil
	}
	return ws[idx].Backend
}

func (r *Reactor) dispatchConfigCommand(cmd Command) {
	var err error
	if r.configHandler != nil {
		err = r.configHandler.HandleCommand(cmd)
	}
	if cmd.Reply != nil {
		cmd.Reply <- CommandResult{OK: err == nil, Err: err}
	}
}

func (r *Reactor) handleSaveAndExit(cmd Command) {
	var err error
	if r.saveAndExit != nil {
		err = r.saveAndExit()
	}
	if cmd.Reply != nil {
		cmd.Reply <- CommandResult{OK: err == nil, Err: err}
	}
}

func (r *Reactor) handleDebug(cmd Command) {
	var dump string
	if r.debugDump != nil {
		dump = r.debugDump()
	}
	if cmd.Reply != nil {
		cmd.Reply <- CommandResult{OK: true, Debug: dump}
	}
}

func (r *Reactor) reply(cmd Command, resp layout.Response) {
	if cmd.Reply != nil {
		cmd.Reply <- CommandResult{Response: resp, OK: true}
	}
}

func (r *Reactor) replyOK(cmd Command, ok bool) {
	if cmd.Reply != nil {
		cmd.Reply <- CommandResult{OK: ok}
	}
}
