// Package layout manages the workspace panel sizes and the switch between the
// split three-pane view and the tabbed compact view.
package layout

import (
	"adaptive/internal/logging"
	"adaptive/internal/session"
	"errors"
	"fmt"
	"sync"
)

// EditorMin is the smallest share the editor keeps between the side panels.
const EditorMin = 30.0

// Region is a resizable side panel. Sizes are percentages of the width.
type Region struct {
	Name    string  `json:"name"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// DefaultRegions are the docs panel on the left and the chat panel on the right.
var DefaultRegions = []Region{
	{Name: "left", Default: 25, Min: 20, Max: 40},
	{Name: "right", Default: 25, Min: 20, Max: 40},
}

// ErrUnknownRegion is returned by Resize for an undeclared region.
var ErrUnknownRegion = errors.New("unknown layout region")

// Mode is the presentation mode.
type Mode int

const (
	ModeSplit Mode = iota
	ModeTabbed
)

func (m Mode) String() string {
	if m == ModeTabbed {
		return "tabbed"
	}
	return "split"
}

// Panes in split mode, left to right.
const (
	PaneDocs   = "docs"
	PaneEditor = "editor"
	PaneChat   = "chat"
)

// Tabs in compact mode.
const (
	TabBrief     = "brief"
	TabEditor    = "editor"
	TabAssistant = "assistant"
)

var compactTabs = []string{TabBrief, TabEditor, TabAssistant}

// Manager holds the current sizes and presentation mode.
type Manager struct {
	mu       sync.Mutex
	sessions *session.Store
	regions  []Region
	sizes    map[string]float64

	compact bool
	tab     string
}

// New creates a manager for regions, or DefaultRegions when none are given.
// Sizes start at their defaults until Restore is called.
func New(sessions *session.Store, regions ...Region) *Manager {
	if len(regions) == 0 {
		regions = DefaultRegions
	}
	m := &Manager{
		sessions: sessions,
		regions:  append([]Region(nil), regions...),
		sizes:    make(map[string]float64, len(regions)),
		tab:      TabEditor,
	}
	for _, r := range m.regions {
		m.sizes[r.Name] = r.Default
	}
	return m
}

func (m *Manager) region(name string) (Region, bool) {
	for _, r := range m.regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// Restore loads persisted sizes. Absent, non-numeric and out-of-bounds values
// fall back to the region default. Sizes that together leave the editor less
// than EditorMin are shrunk to fit.
func (m *Manager) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.regions {
		size, ok, err := m.sessions.PanelSize(r.Name)
		if err != nil {
			return fmt.Errorf("failed to read %s panel size: %w", r.Name, err)
		}
		if !ok || size < r.Min || size > r.Max {
			if ok {
				logging.LayoutDebug("Panel %s size %.2f out of bounds, using default", r.Name, size)
			}
			size = r.Default
		}
		m.sizes[r.Name] = size
	}
	m.fitEditorLocked()
	logging.Layout("Restored panel sizes %v", m.sizes)
	return nil
}

// fitEditorLocked shrinks regions, last first, until the editor has EditorMin.
// Shrunk sizes are not persisted; the next Resize writes them.
func (m *Manager) fitEditorLocked() {
	total := 0.0
	for _, s := range m.sizes {
		total += s
	}
	excess := total - (100 - EditorMin)
	for i := len(m.regions) - 1; i >= 0 && excess > 0; i-- {
		r := m.regions[i]
		cut := m.sizes[r.Name] - r.Min
		if cut > excess {
			cut = excess
		}
		if cut > 0 {
			logging.LayoutDebug("Panel %s shrunk by %.2f to keep the editor at %.0f", r.Name, cut, EditorMin)
			m.sizes[r.Name] -= cut
			excess -= cut
		}
	}
	if excess > 0 {
		for _, r := range m.regions {
			m.sizes[r.Name] = r.Default
		}
	}
}

// Resize sets the size of region name, clamped to its bounds and to the space
// the editor must keep, persists it and returns the applied size.
func (m *Manager) Resize(name string, size float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.region(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}

	others := 0.0
	for n, s := range m.sizes {
		if n != name {
			others += s
		}
	}
	upper := r.Max
	if room := 100 - EditorMin - others; room < upper {
		upper = room
	}
	if size > upper {
		size = upper
	}
	if size < r.Min {
		size = r.Min
	}

	if err := m.sessions.SetPanelSize(name, size); err != nil {
		return 0, fmt.Errorf("failed to persist %s panel size: %w", name, err)
	}
	m.sizes[name] = size
	logging.LayoutDebug("Resized %s to %.2f", name, size)
	return size, nil
}

// Size returns the current size of region name.
func (m *Manager) Size(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sizes[name]
}

// Sizes returns a copy of every region size.
func (m *Manager) Sizes() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.sizes))
	for k, v := range m.sizes {
		out[k] = v
	}
	return out
}

// EditorSize is whatever the side panels leave.
func (m *Manager) EditorSize() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0.0
	for _, s := range m.sizes {
		total += s
	}
	return 100 - total
}

// SetCompact switches presentation. Entering compact mode shows the editor tab.
func (m *Manager) SetCompact(compact bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.compact == compact {
		return
	}
	m.compact = compact
	if compact {
		m.tab = TabEditor
	}
	logging.Layout("Presentation mode: %s", m.modeLocked())
}

func (m *Manager) modeLocked() Mode {
	if m.compact {
		return ModeTabbed
	}
	return ModeSplit
}

// Mode returns the current presentation mode.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modeLocked()
}

// Panes lists what is laid out: the three panes in split mode, the tab
// names in tabbed mode.
func (m *Manager) Panes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.compact {
		return append([]string(nil), compactTabs...)
	}
	return []string{PaneDocs, PaneEditor, PaneChat}
}

// SelectTab picks the visible tab in compact mode.
func (m *Manager) SelectTab(tab string) error {
	for _, t := range compactTabs {
		if t == tab {
			m.mu.Lock()
			m.tab = tab
			m.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("unknown tab: %s", tab)
}

// Tab returns the visible compact tab.
func (m *Manager) Tab() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tab
}
