package layout

import (
	"testing"

	"adaptive/internal/session"
	"adaptive/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore_Defaults(t *testing.T) {
	m := New(session.New(store.NewMemoryStore()))
	require.NoError(t, m.Restore())
	assert.Equal(t, map[string]float64{"left": 25, "right": 25}, m.Sizes())
	assert.Equal(t, 50.0, m.EditorSize())
}

func TestRestore_FallsBackOnBadValues(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(session.KeyLeftPanelSize, "wide"))
	require.NoError(t, kv.Set(session.KeyRightPanelSize, "75"))

	m := New(session.New(kv))
	require.NoError(t, m.Restore())
	assert.Equal(t, 25.0, m.Size("left"))
	assert.Equal(t, 25.0, m.Size("right"))
}

func TestRestore_KeepsEditorMinimum(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(session.KeyLeftPanelSize, "40"))
	require.NoError(t, kv.Set(session.KeyRightPanelSize, "40"))

	m := New(session.New(kv))
	require.NoError(t, m.Restore())
	assert.Equal(t, 40.0, m.Size("left"))
	assert.Equal(t, 30.0, m.Size("right"))
	assert.Equal(t, EditorMin, m.EditorSize())
}

func TestResize_PersistsAndRestores(t *testing.T) {
	kv := store.NewMemoryStore()
	m := New(session.New(kv))
	require.NoError(t, m.Restore())

	got, err := m.Resize("left", 32.5)
	require.NoError(t, err)
	assert.Equal(t, 32.5, got)

	raw, ok, err := kv.Get(session.KeyLeftPanelSize)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "32.5", raw)

	reloaded := New(session.New(kv))
	require.NoError(t, reloaded.Restore())
	assert.Equal(t, 32.5, reloaded.Size("left"))
}

func TestResize_Clamps(t *testing.T) {
	m := New(session.New(store.NewMemoryStore()))

	tests := []struct {
		name   string
		region string
		size   float64
		want   float64
	}{
		{"below min", "left", 5, 20},
		{"above max", "right", 90, 40},
		{"within", "left", 30, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Resize(tt.region, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResize_KeepsEditorMinimum(t *testing.T) {
	m := New(session.New(store.NewMemoryStore()))
	_, err := m.Resize("left", 40)
	require.NoError(t, err)

	got, err := m.Resize("right", 40)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got)
	assert.Equal(t, EditorMin, m.EditorSize())
}

func TestResize_UnknownRegion(t *testing.T) {
	m := New(session.New(store.NewMemoryStore()))
	_, err := m.Resize("bottom", 10)
	assert.ErrorIs(t, err, ErrUnknownRegion)
}

func TestCompactSwitch(t *testing.T) {
	m := New(session.New(store.NewMemoryStore()))
	assert.Equal(t, ModeSplit, m.Mode())
	assert.Equal(t, []string{PaneDocs, PaneEditor, PaneChat}, m.Panes())

	m.SetCompact(true)
	assert.Equal(t, ModeTabbed, m.Mode())
	assert.Equal(t, "tabbed", m.Mode().String())
	assert.Equal(t, []string{TabBrief, TabEditor, TabAssistant}, m.Panes())
	assert.Equal(t, TabEditor, m.Tab())

	require.NoError(t, m.SelectTab(TabAssistant))
	assert.Equal(t, TabAssistant, m.Tab())
	assert.Error(t, m.SelectTab("terminal"))

	before := m.Sizes()
	m.SetCompact(false)
	assert.Equal(t, before, m.Sizes())
}
