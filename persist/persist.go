// Package persist handles the on-disk snapshot of layout/workspace state
// (spec.md §6 "Persisted state"), using the same atomic
// write-temp-then-rename discipline as cortile's store.Client.Write.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rift/riftwm/layout"
	"github.com/rift/riftwm/model"
)

// WorkspaceSnapshot is one workspace's persisted shape: enough to rebuild
// window membership and backend kind, not the full tree structure (tree
// shape is rebuilt by replaying AddWindow in Visible() order).
type WorkspaceSnapshot struct {
	Name    string             `json:"name"`
	Kind    layout.Kind        `json:"kind"`
	Windows []model.WindowId   `json:"windows"`
}

// SpaceSnapshot is one space's ordered workspace list plus its active index.
type SpaceSnapshot struct {
	Space       model.SpaceId        `json:"space"`
	Workspaces  []WorkspaceSnapshot  `json:"workspaces"`
	ActiveIndex int                  `json:"active_index"`
}

// Snapshot is the full persisted document written to the snapshot file.
type Snapshot struct {
	Version int             `json:"version"`
	Spaces  []SpaceSnapshot `json:"spaces"`
}

const currentVersion = 1

// AtomicWriteJSON marshals v as indented JSON and writes it to path via a
// temp-file-then-rename, so a reader never observes a partially written
// file (grounded in store.Client.Write's CreateTemp/Sync/Rename sequence).
func AtomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	closed := false
	cleanup := func() {
		if !closed {
			tmp.Close()
		}
		os.Remove(tmpName)
	}
	defer func() {
		if cleanup != nil {
			cleanup()
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing snapshot temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing snapshot temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot temp file: %w", err)
	}
	closed = true
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	cleanup = nil
	return nil
}

// ReadJSON loads and unmarshals the snapshot at path. A missing file
// returns ErrNotExist-wrapped, the caller's cue to start from empty state.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// BuildSnapshot walks every space a layout.Manager has seen and captures
// each one's workspace list.
func BuildSnapshot(mgr *layout.Manager) Snapshot {
	snap := Snapshot{Version: currentVersion}
	for _, space := range mgr.Spaces() {
		workspaces := mgr.Workspaces(space)
		ws := make([]WorkspaceSnapshot, len(workspaces))
		for i, w := range workspaces {
			ws[i] = WorkspaceSnapshot{Name: w.Name, Kind: w.Backend.Kind(), Windows: w.Backend.Visible()}
		}
		snap.Spaces = append(snap.Spaces, SpaceSnapshot{
			Space: space, Workspaces: ws, ActiveIndex: mgr.ActiveIndex(space),
		})
	}
	return snap
}
