package config

import (
	"fmt"

	"github.com/rift/riftwm/actor/reactor"
	"github.com/rift/riftwm/layout"
)

// ReactorBinding is the subset of layout.Engine the config handler needs to
// apply live settings changes to, kept narrow so tests can fake it.
type ReactorBinding interface {
	Manager() *layout.Manager
}

// Handler adapts Manager to reactor.ConfigHandler, applying the
// config-surface CommandKind values (spec.md's ConfigCommand vocabulary)
// against the live Manager and engine.
type Handler struct {
	mgr    *Manager
	engine ReactorBinding
}

func NewHandler(mgr *Manager, engine ReactorBinding) *Handler {
	return &Handler{mgr: mgr, engine: engine}
}

// HandleCommand implements reactor.ConfigHandler. Every mutation is
// validated via Config.Validate before being committed, so a bad command
// (e.g. a workspace count collision) leaves the prior settings untouched,
// same as a bad config-file reload (spec.md §9).
func (h *Handler) HandleCommand(cmd reactor.Command) error {
	cur := h.mgr.Current()
	next := cur

	switch cmd.Kind {
	case reactor.CommandSetAnimate:
		next.Animation.Animate = cmd.Fraction != 0
	case reactor.CommandSetAnimationDuration:
		next.Animation.Duration = cmd.Fraction
	case reactor.CommandSetAnimationFps:
		next.Animation.Fps = cmd.Fraction
	case reactor.CommandSetAnimationEasing:
		// reactor.Command has no dedicated easing field, so the easing name
		// travels in WorkspaceNames[0].
		if len(cmd.WorkspaceNames) > 0 {
			next.Animation.Easing = cmd.WorkspaceNames[0]
		}
	case reactor.CommandSetMouseFollowsFocus:
		next.Mouse.FollowsFocus = cmd.Fraction != 0
	case reactor.CommandSetMouseHidesOnFocus:
		next.Mouse.HidesOnFocus = cmd.Fraction != 0
	case reactor.CommandSetFocusFollowsMouse:
		next.Mouse.FocusFollowsMouse = cmd.Fraction != 0
	case reactor.CommandSetStackOffset:
		next.Layout.StackOffset = cmd.Fraction
	case reactor.CommandSetOuterGaps:
		next.Layout.OuterGaps = GapsConfig{
			Top: cmd.OuterGaps.OuterTop, Right: cmd.OuterGaps.OuterRight,
			Bottom: cmd.OuterGaps.OuterBottom, Left: cmd.OuterGaps.OuterLeft,
		}
	case reactor.CommandSetInnerGaps:
		next.Layout.InnerGaps = GapsConfig{Top: cmd.InnerGaps.InnerVertical, Left: cmd.InnerGaps.InnerHorizontal}
	case reactor.CommandSetWorkspaceNames:
		next.Workspace.WorkspaceNames = cmd.WorkspaceNames
	case reactor.CommandGetConfig:
		return nil // the control channel reads Manager.Current() directly
	case reactor.CommandSaveConfig:
		return h.mgr.Save()
	case reactor.CommandReloadConfig:
		_, err := h.mgr.Load()
		return err
	default:
		return fmt.Errorf("config: unhandled command kind %d", cmd.Kind)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	h.mgr.commit(next)
	if cmd.Kind == reactor.CommandSetWorkspaceNames {
		h.engine.Manager().UpdateSettings(next.WorkspaceSettings())
	}
	return nil
}
