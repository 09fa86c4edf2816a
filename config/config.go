// Package config loads and live-reloads riftwm's settings with viper and
// fsnotify, the way DimaJoyti-AIOS's pkg/config.Manager does, adapted from
// its generic microservice surface to the layout/animation/hotkey surface
// this reactor actually has.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rift/riftwm/animation"
	"github.com/rift/riftwm/layout"
)

// Config is the full settings surface, unmarshaled from YAML via
// mapstructure tags exactly as the teacher's Manager.Load does.
type Config struct {
	Layout    LayoutConfig    `mapstructure:"layout"`
	Animation AnimationConfig `mapstructure:"animation"`
	Mouse     MouseConfig     `mapstructure:"mouse"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type LayoutConfig struct {
	DefaultKind string  `mapstructure:"default_kind"`
	StackOffset float64 `mapstructure:"stack_offset"`
	OuterGaps   GapsConfig `mapstructure:"outer_gaps"`
	InnerGaps   GapsConfig `mapstructure:"inner_gaps"`
}

type GapsConfig struct {
	Top    float64 `mapstructure:"top"`
	Right  float64 `mapstructure:"right"`
	Bottom float64 `mapstructure:"bottom"`
	Left   float64 `mapstructure:"left"`
}

type AnimationConfig struct {
	Animate  bool    `mapstructure:"animate"`
	Duration float64 `mapstructure:"duration_seconds"`
	Fps      float64 `mapstructure:"fps"`
	Easing   string  `mapstructure:"easing"`
}

type MouseConfig struct {
	FollowsFocus   bool `mapstructure:"follows_focus"`
	HidesOnFocus   bool `mapstructure:"hides_on_focus"`
	FocusFollowsMouse bool `mapstructure:"focus_follows_mouse"`
}

type WorkspaceConfig struct {
	Enabled                   bool             `mapstructure:"enabled"`
	DefaultWorkspaceCount     int              `mapstructure:"default_workspace_count"`
	AutoAssignWindows         bool             `mapstructure:"auto_assign_windows"`
	PreserveFocusPerWorkspace bool             `mapstructure:"preserve_focus_per_workspace"`
	WorkspaceNames            []string         `mapstructure:"workspace_names"`
	DefaultWorkspace          int              `mapstructure:"default_workspace"`
	AppRules                  []AppRuleConfig  `mapstructure:"app_rules"`
}

type AppRuleConfig struct {
	AppId    string `mapstructure:"app_id"`
	AppName  string `mapstructure:"app_name"`
	Workspace int   `mapstructure:"workspace"`
	Floating bool   `mapstructure:"floating"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func defaults() Config {
	return Config{
		Layout: LayoutConfig{DefaultKind: "traditional", StackOffset: 24},
		Animation: AnimationConfig{
			Animate: true, Duration: 0.25, Fps: 60, Easing: "ease-out-cubic",
		},
		Workspace: WorkspaceConfig{
			Enabled: true, DefaultWorkspaceCount: 1, AutoAssignWindows: false,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// ParseLayoutKind maps a config string to a layout.Kind, defaulting to
// Traditional for anything unrecognized.
func ParseLayoutKind(s string) layout.Kind {
	switch strings.ToLower(s) {
	case "bsp":
		return layout.BSP
	case "master-stack", "masterstack":
		return layout.MasterStackKind
	case "scrolling":
		return layout.Scrolling
	default:
		return layout.Traditional
	}
}

// ParseEasing maps a config string to an animation.Easing, defaulting to
// Linear for anything unrecognized.
func ParseEasing(s string) animation.Easing {
	switch strings.ToLower(s) {
	case "ease-in-quad":
		return animation.EaseInQuad
	case "ease-out-quad":
		return animation.EaseOutQuad
	case "ease-in-out-quad":
		return animation.EaseInOutQuad
	case "ease-in-cubic":
		return animation.EaseInCubic
	case "ease-out-cubic":
		return animation.EaseOutCubic
	case "ease-in-out-cubic":
		return animation.EaseInOutCubic
	case "ease-out-bounce":
		return animation.EaseOutBounce
	default:
		return animation.Linear
	}
}

func (c Config) toLayoutGaps() layout.Gaps {
	return layout.Gaps{
		OuterTop: c.Layout.OuterGaps.Top, OuterRight: c.Layout.OuterGaps.Right,
		OuterBottom: c.Layout.OuterGaps.Bottom, OuterLeft: c.Layout.OuterGaps.Left,
		InnerHorizontal: c.Layout.InnerGaps.Left, InnerVertical: c.Layout.InnerGaps.Top,
	}
}

func (c Config) toWorkspaceSettings() layout.VirtualWorkspaceSettings {
	rules := make([]layout.AppRule, len(c.Workspace.AppRules))
	for i, r := range c.Workspace.AppRules {
		rules[i] = layout.AppRule{BundleId: r.AppId, AppName: r.AppName, Workspace: r.Workspace, Floating: r.Floating}
	}
	return layout.VirtualWorkspaceSettings{
		Enabled:                   c.Workspace.Enabled,
		DefaultWorkspaceCount:     c.Workspace.DefaultWorkspaceCount,
		AutoAssignWindows:         c.Workspace.AutoAssignWindows,
		PreserveFocusPerWorkspace: c.Workspace.PreserveFocusPerWorkspace,
		WorkspaceNames:            c.Workspace.WorkspaceNames,
		DefaultWorkspace:          c.Workspace.DefaultWorkspace,
		AppRules:                  rules,
	}
}

// Validate rejects a config that would produce an inconsistent
// VirtualWorkspaceSettings or an out-of-range animation fps.
func (c Config) Validate() error {
	if err := c.toWorkspaceSettings().Validate(); err != nil {
		return err
	}
	if c.Animation.Fps <= 0 || c.Animation.Fps > 240 {
		return fmt.Errorf("animation.fps out of range: %v", c.Animation.Fps)
	}
	return nil
}

// Manager owns the viper instance, the last-valid Config, and the
// fsnotify-driven reload (grounded in DimaJoyti-AIOS's pkg/config.Manager
// WatchConfig/OnConfigChange pattern).
type Manager struct {
	mu      sync.RWMutex
	v       *viper.Viper
	current Config
	log     *logrus.Entry

	onChange []func(Config)
}

func NewManager(configPath string, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("$HOME/.rift")

	v.AutomaticEnv()
	v.SetEnvPrefix("RIFTWM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	return &Manager{v: v, current: defaults(), log: log.WithField("component", "config")}
}

// Load reads the config file (if any), merging over defaults, and
// validates the result. A missing file is not an error: defaults stand.
func (m *Manager) Load() (Config, error) {
	cfg := defaults()
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		m.log.Info("no config file found, using defaults")
	} else if err := m.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	m.mu.Lock()
	m.current = cfg
	m.mu.Unlock()
	return cfg, nil
}

func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnChange registers a callback invoked with the newly validated config
// after every successful reload.
func (m *Manager) OnChange(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Watch starts watching the config file for changes, reloading and
// validating on every write. An invalid reload is logged and discarded:
// the prior valid config keeps running (spec.md §9 "reject and keep prior
// on invalid config").
func (m *Manager) Watch() {
	m.v.WatchConfig()
	m.v.OnConfigChange(func(e fsnotify.Event) {
		time.Sleep(50 * time.Millisecond) // debounce the editor's write+rename
		m.reload()
	})
}

// commit installs an already-validated config as current and fires the
// registered OnChange callbacks, the same path reload uses.
func (m *Manager) commit(cfg Config) {
	m.mu.Lock()
	m.current = cfg
	callbacks := append([]func(Config){}, m.onChange...)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

// Save persists the current config back to the file viper loaded it from,
// grounded in the same viper instance Load reads through.
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.current
	m.mu.RUnlock()

	m.v.Set("layout.default_kind", cfg.Layout.DefaultKind)
	m.v.Set("layout.stack_offset", cfg.Layout.StackOffset)
	m.v.Set("layout.outer_gaps", cfg.Layout.OuterGaps)
	m.v.Set("layout.inner_gaps", cfg.Layout.InnerGaps)
	m.v.Set("animation.animate", cfg.Animation.Animate)
	m.v.Set("animation.duration_seconds", cfg.Animation.Duration)
	m.v.Set("animation.fps", cfg.Animation.Fps)
	m.v.Set("animation.easing", cfg.Animation.Easing)
	m.v.Set("mouse.follows_focus", cfg.Mouse.FollowsFocus)
	m.v.Set("mouse.hides_on_focus", cfg.Mouse.HidesOnFocus)
	m.v.Set("mouse.focus_follows_mouse", cfg.Mouse.FocusFollowsMouse)
	m.v.Set("workspace.enabled", cfg.Workspace.Enabled)
	m.v.Set("workspace.default_workspace_count", cfg.Workspace.DefaultWorkspaceCount)
	m.v.Set("workspace.auto_assign_windows", cfg.Workspace.AutoAssignWindows)
	m.v.Set("workspace.preserve_focus_per_workspace", cfg.Workspace.PreserveFocusPerWorkspace)
	m.v.Set("workspace.workspace_names", cfg.Workspace.WorkspaceNames)
	m.v.Set("workspace.default_workspace", cfg.Workspace.DefaultWorkspace)
	m.v.Set("workspace.app_rules", cfg.Workspace.AppRules)
	m.v.Set("logging.level", cfg.Logging.Level)
	m.v.Set("logging.format", cfg.Logging.Format)

	if err := m.v.WriteConfig(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (m *Manager) reload() {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		m.log.WithError(err).Warn("config reload: unmarshal failed, keeping prior config")
		return
	}
	if err := cfg.Validate(); err != nil {
		m.log.WithError(err).Warn("config reload: validation failed, keeping prior config")
		return
	}

	m.mu.Lock()
	m.current = cfg
	callbacks := append([]func(Config){}, m.onChange...)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (c Config) LayoutGaps() layout.Gaps                         { return c.toLayoutGaps() }
func (c Config) WorkspaceSettings() layout.VirtualWorkspaceSettings { return c.toWorkspaceSettings() }
func (c Config) StackStyle() layout.StackStyle {
	return layout.StackStyle{PeekOffset: c.Layout.StackOffset, FocusedExpand: 0}
}
