// Package editor tracks the workspace's files, the open tab order and the
// active tab. Every mutation is persisted before it returns so a reload
// reconstructs the same tab layout.
package editor

import (
	"adaptive/internal/logging"
	"adaptive/internal/session"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNotOpen is returned when activating a path that has no tab.
	ErrNotOpen = errors.New("file is not open")
	// ErrNotActive is returned when editing a path that is not the active tab.
	ErrNotActive = errors.New("file is not the active tab")
	// ErrUnknownFile is returned when opening a path outside the workspace.
	ErrUnknownFile = errors.New("unknown file")
)

// ValidationError reports a caller mistake. State is left unchanged.
type ValidationError struct {
	Op   string
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// State is a copy of the registry's tab state.
type State struct {
	Tabs   []string `json:"tabs"`
	Active string   `json:"active,omitempty"`
}

// Registry owns file contents and the open tab set.
type Registry struct {
	mu       sync.RWMutex
	sessions *session.Store

	contents map[string]string
	known    []string

	tabs   []string
	active string
}

// New creates a registry over the given files and restores the persisted tab
// layout. Without a persisted layout defaultFile is opened and made active.
func New(sessions *session.Store, files map[string]string, defaultFile string) (*Registry, error) {
	r := &Registry{
		sessions: sessions,
		contents: make(map[string]string, len(files)),
	}
	for path, text := range files {
		r.contents[path] = text
		r.known = append(r.known, path)
	}
	sort.Strings(r.known)

	if err := r.restore(defaultFile); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) restore(defaultFile string) error {
	tabs, ok, err := r.sessions.OpenTabs()
	if err != nil {
		return fmt.Errorf("failed to read open tabs: %w", err)
	}
	if !ok {
		tabs = nil
		if _, known := r.contents[defaultFile]; known {
			tabs = []string{defaultFile}
		}
	}

	seen := make(map[string]bool, len(tabs))
	for _, p := range tabs {
		if _, known := r.contents[p]; !known {
			logging.EditorWarn("Dropping unknown restored tab %q", p)
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		r.tabs = append(r.tabs, p)
	}

	active, hasActive, err := r.sessions.ActiveTab()
	if err != nil {
		return fmt.Errorf("failed to read active tab: %w", err)
	}
	switch {
	case hasActive && seen[active]:
		r.active = active
	case !ok && seen[defaultFile]:
		r.active = defaultFile
	case len(r.tabs) > 0:
		r.active = r.tabs[len(r.tabs)-1]
	}

	logging.Editor("Restored %d tabs, active=%q", len(r.tabs), r.active)
	return nil
}

// persistLocked writes tabs and active path. Caller holds mu.
func (r *Registry) persistLocked() error {
	if err := r.sessions.SetOpenTabs(r.tabs); err != nil {
		return fmt.Errorf("failed to persist open tabs: %w", err)
	}
	if err := r.sessions.SetActiveTab(r.active); err != nil {
		return fmt.Errorf("failed to persist active tab: %w", err)
	}
	return nil
}

func (r *Registry) indexLocked(path string) int {
	for i, p := range r.tabs {
		if p == path {
			return i
		}
	}
	return -1
}

// Open appends path to the tab set if needed and makes it active.
func (r *Registry) Open(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, known := r.contents[path]; !known {
		return &ValidationError{Op: "open", Path: path, Err: ErrUnknownFile}
	}
	if r.indexLocked(path) < 0 {
		r.tabs = append(r.tabs, path)
	}
	r.active = path
	logging.EditorDebug("Opened %s (%d tabs)", path, len(r.tabs))
	return r.persistLocked()
}

// Select opens path from the file tree.
func (r *Registry) Select(path string) error {
	return r.Open(path)
}

// Close removes path from the tab set. Closing the active tab activates the
// last remaining tab, or none. Closing a path without a tab is a no-op.
func (r *Registry) Close(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(path)
	if i < 0 {
		return nil
	}
	r.tabs = append(r.tabs[:i:i], r.tabs[i+1:]...)
	if r.active == path {
		r.active = ""
		if n := len(r.tabs); n > 0 {
			r.active = r.tabs[n-1]
		}
	}
	logging.EditorDebug("Closed %s, active=%q", path, r.active)
	return r.persistLocked()
}

// Activate switches to an already open tab.
func (r *Registry) Activate(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(path) < 0 {
		return &ValidationError{Op: "activate", Path: path, Err: ErrNotOpen}
	}
	r.active = path
	return r.persistLocked()
}

// Edit replaces the text of the active file. Content is not persisted.
func (r *Registry) Edit(path, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == "" || path != r.active {
		return &ValidationError{Op: "edit", Path: path, Err: ErrNotActive}
	}
	r.contents[path] = text
	return nil
}

// Content returns the text of path; unknown paths are empty.
func (r *Registry) Content(path string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contents[path]
}

// ActiveContent returns the text of the active tab, or "".
func (r *Registry) ActiveContent() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == "" {
		return ""
	}
	return r.contents[r.active]
}

// OpenTabs returns the tab order.
func (r *Registry) OpenTabs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.tabs...)
}

// Active returns the active path, or "" when no tab is open.
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Files returns every known path in sorted order.
func (r *Registry) Files() []string {
	return append([]string(nil), r.known...)
}

// State returns a copy of the tab state.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return State{Tabs: append([]string(nil), r.tabs...), Active: r.active}
}
