package editor

import (
	"math/rand"
	"testing"

	"adaptive/internal/session"
	"adaptive/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFiles = map[string]string{
	"a": "alpha",
	"b": "bravo",
	"c": "charlie",
}

func newRegistry(t *testing.T, kv store.KV, defaultFile string) (*Registry, *session.Store) {
	t.Helper()
	sessions := session.New(kv)
	r, err := New(sessions, testFiles, defaultFile)
	require.NoError(t, err)
	return r, sessions
}

func TestDefaultLayout(t *testing.T) {
	r, _ := newRegistry(t, store.NewMemoryStore(), "a")
	assert.Equal(t, []string{"a"}, r.OpenTabs())
	assert.Equal(t, "a", r.Active())
	assert.Equal(t, "alpha", r.ActiveContent())
	assert.Equal(t, []string{"a", "b", "c"}, r.Files())
}

func TestOpenCloseScenario(t *testing.T) {
	r, sessions := newRegistry(t, store.NewMemoryStore(), "")
	assert.Empty(t, r.OpenTabs())
	assert.Equal(t, "", r.Active())

	require.NoError(t, r.Open("a"))
	assert.Equal(t, State{Tabs: []string{"a"}, Active: "a"}, r.State())

	require.NoError(t, r.Open("b"))
	assert.Equal(t, State{Tabs: []string{"a", "b"}, Active: "b"}, r.State())

	require.NoError(t, r.Close("b"))
	assert.Equal(t, State{Tabs: []string{"a"}, Active: "a"}, r.State())

	tabs, ok, err := sessions.OpenTabs()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, tabs)
	active, _, _ := sessions.ActiveTab()
	assert.Equal(t, "a", active)

	require.NoError(t, r.Close("a"))
	assert.Equal(t, "", r.Active())
	_, hasActive, _ := sessions.ActiveTab()
	assert.False(t, hasActive)
}

func TestOpenExistingDoesNotDuplicate(t *testing.T) {
	r, _ := newRegistry(t, store.NewMemoryStore(), "a")
	require.NoError(t, r.Open("b"))
	require.NoError(t, r.Select("a"))
	assert.Equal(t, []string{"a", "b"}, r.OpenTabs())
	assert.Equal(t, "a", r.Active())
}

func TestCloseInactiveKeepsActive(t *testing.T) {
	r, _ := newRegistry(t, store.NewMemoryStore(), "a")
	require.NoError(t, r.Open("b"))
	require.NoError(t, r.Open("c"))
	require.NoError(t, r.Close("a"))
	assert.Equal(t, State{Tabs: []string{"b", "c"}, Active: "c"}, r.State())

	require.NoError(t, r.Close("missing"))
	assert.Equal(t, []string{"b", "c"}, r.OpenTabs())
}

func TestValidationErrorsLeaveStateUnchanged(t *testing.T) {
	r, _ := newRegistry(t, store.NewMemoryStore(), "a")
	require.NoError(t, r.Open("b"))
	before := r.State()

	err := r.Activate("c")
	assert.ErrorIs(t, err, ErrNotOpen)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "activate", verr.Op)

	assert.ErrorIs(t, r.Edit("a", "changed"), ErrNotActive)
	assert.Equal(t, "alpha", r.Content("a"))

	assert.ErrorIs(t, r.Open("nope.ts"), ErrUnknownFile)
	assert.Equal(t, before, r.State())
}

func TestEditActiveIsVisible(t *testing.T) {
	r, _ := newRegistry(t, store.NewMemoryStore(), "a")
	require.NoError(t, r.Edit("a", "const x = 1"))
	assert.Equal(t, "const x = 1", r.ActiveContent())
	assert.Equal(t, "", r.Content("unknown"))
}

func TestRestore(t *testing.T) {
	kv := store.NewMemoryStore()
	r, _ := newRegistry(t, kv, "a")
	require.NoError(t, r.Open("c"))
	require.NoError(t, r.Open("b"))
	require.NoError(t, r.Activate("c"))

	reloaded, _ := newRegistry(t, kv, "a")
	if diff := cmp.Diff(r.State(), reloaded.State()); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
}

func TestRestore_DropsUnknownAndFixesActive(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(session.KeyOpenTabs, `["a","gone.ts","b","a"]`))
	require.NoError(t, kv.Set(session.KeyActiveTab, "gone.ts"))

	r, _ := newRegistry(t, kv, "a")
	assert.Equal(t, State{Tabs: []string{"a", "b"}, Active: "b"}, r.State())
}

func TestRestore_CorruptTabsUsesDefault(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(session.KeyOpenTabs, "not json"))

	r, _ := newRegistry(t, kv, "b")
	assert.Equal(t, State{Tabs: []string{"b"}, Active: "b"}, r.State())
}

func TestRestore_EmptyTabsStayEmpty(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(session.KeyOpenTabs, "[]"))

	r, _ := newRegistry(t, kv, "a")
	assert.Empty(t, r.OpenTabs())
	assert.Equal(t, "", r.Active())
}

// Random open/close/activate sequences never break the active-tab invariant.
func TestActiveAlwaysMemberOfOpenSet(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	paths := []string{"a", "b", "c"}

	for run := 0; run < 50; run++ {
		r, _ := newRegistry(t, store.NewMemoryStore(), "")
		for step := 0; step < 40; step++ {
			p := paths[rng.Intn(len(paths))]
			before := r.State()

			switch rng.Intn(3) {
			case 0:
				require.NoError(t, r.Open(p))
			case 1:
				require.NoError(t, r.Close(p))
				if before.Active == p && len(r.OpenTabs()) > 0 {
					assert.Contains(t, before.Tabs, r.Active())
				}
			case 2:
				_ = r.Activate(p)
			}

			st := r.State()
			if len(st.Tabs) == 0 {
				assert.Equal(t, "", st.Active)
			} else {
				assert.Contains(t, st.Tabs, st.Active)
			}
			seen := map[string]bool{}
			for _, tab := range st.Tabs {
				assert.False(t, seen[tab], "duplicate tab %s", tab)
				seen[tab] = true
			}
		}
	}
}
