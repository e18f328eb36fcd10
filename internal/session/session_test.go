package session

import (
	"errors"
	"testing"
	"time"

	"adaptive/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	return New(kv), kv
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"you@example.com", true},
		{"a@b.co", true},
		{"no-at.example.com", false},
		{"two@@example.com", false},
		{"spaces in@example.com", false},
		{"missing@tld", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.email))
		})
	}
}

func TestBegin(t *testing.T) {
	s, kv := newStore(t)

	require.NoError(t, kv.Set(KeyTimerStart, "123"))
	require.NoError(t, kv.Set(KeyCompleted, "true"))
	require.NoError(t, kv.Set(KeyOpenTabs, `["x"]`))
	require.NoError(t, kv.Set(KeyActiveTab, "x"))
	require.NoError(t, kv.Set(KeyLeftPanelSize, "30"))

	require.NoError(t, s.Begin("  next@candidate.dev "))

	email, err := s.Email()
	require.NoError(t, err)
	assert.Equal(t, "next@candidate.dev", email)

	for _, key := range []string{KeyTimerStart, KeyCompleted, KeyOpenTabs, KeyActiveTab} {
		_, ok, _ := kv.Get(key)
		assert.False(t, ok, "%s should be cleared", key)
	}
	_, ok, _ := kv.Get(KeyLeftPanelSize)
	assert.True(t, ok, "panel sizes survive a new session")
}

func TestBegin_InvalidEmail(t *testing.T) {
	s, kv := newStore(t)

	err := s.Begin("nope")
	assert.True(t, errors.Is(err, ErrInvalidEmail))

	_, ok, _ := kv.Get(KeyEmail)
	assert.False(t, ok)
}

func TestStartedAt(t *testing.T) {
	s, kv := newStore(t)

	_, ok, err := s.StartedAt()
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.UnixMilli(1_700_000_000_123)
	require.NoError(t, s.SetStartedAt(at))
	raw, _, _ := kv.Get(KeyTimerStart)
	assert.Equal(t, "1700000000123", raw)

	got, ok, err := s.StartedAt()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(at))

	for _, corrupt := range []string{"soon", "-5", "0", ""} {
		require.NoError(t, kv.Set(KeyTimerStart, corrupt))
		_, ok, err = s.StartedAt()
		require.NoError(t, err)
		assert.False(t, ok, "corrupt value %q should read as absent", corrupt)
	}
}

func TestCompleted(t *testing.T) {
	s, _ := newStore(t)

	done, err := s.Completed()
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.MarkCompleted())
	done, err = s.Completed()
	require.NoError(t, err)
	assert.True(t, done)
}

func TestTabs(t *testing.T) {
	s, kv := newStore(t)

	tabs, ok, err := s.OpenTabs()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, tabs)

	require.NoError(t, s.SetOpenTabs([]string{"src/api/auth.ts", "src/pages/login.tsx"}))
	raw, _, _ := kv.Get(KeyOpenTabs)
	assert.Equal(t, `["src/api/auth.ts","src/pages/login.tsx"]`, raw)

	tabs, ok, err = s.OpenTabs()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"src/api/auth.ts", "src/pages/login.tsx"}, tabs)

	require.NoError(t, s.SetOpenTabs(nil))
	raw, _, _ = kv.Get(KeyOpenTabs)
	assert.Equal(t, `[]`, raw)

	require.NoError(t, kv.Set(KeyOpenTabs, "{broken"))
	_, ok, err = s.OpenTabs()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetActiveTab("src/api/auth.ts"))
	active, ok, err := s.ActiveTab()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "src/api/auth.ts", active)

	require.NoError(t, s.SetActiveTab(""))
	_, ok, _ = s.ActiveTab()
	assert.False(t, ok)
}

func TestPanelSize(t *testing.T) {
	s, kv := newStore(t)

	assert.Equal(t, KeyLeftPanelSize, PanelSizeKey("left"))
	assert.Equal(t, KeyRightPanelSize, PanelSizeKey("right"))

	_, ok, err := s.PanelSize("left")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetPanelSize("left", 31.5))
	raw, _, _ := kv.Get(KeyLeftPanelSize)
	assert.Equal(t, "31.5", raw)

	size, ok, err := s.PanelSize("left")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 31.5, size)

	require.NoError(t, kv.Set(KeyRightPanelSize, "wide"))
	_, ok, err = s.PanelSize("right")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotAndReset(t *testing.T) {
	s, kv := newStore(t)
	require.NoError(t, kv.Set("unrelated", "keep"))

	require.NoError(t, s.Begin("a@b.co"))
	at := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, s.SetStartedAt(at))
	require.NoError(t, s.SetOpenTabs([]string{"a"}))
	require.NoError(t, s.SetActiveTab("a"))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", snap.Email)
	require.NotNil(t, snap.StartedAt)
	assert.True(t, snap.StartedAt.Equal(at))
	assert.False(t, snap.Completed)
	assert.Equal(t, []string{"a"}, snap.OpenTabs)
	assert.Equal(t, "a", snap.ActiveTab)

	require.NoError(t, s.Reset())
	keys, _ := kv.Keys()
	assert.Equal(t, []string{"unrelated"}, keys)
}

func TestStage(t *testing.T) {
	s, _ := newStore(t)

	stage, err := s.Stage()
	require.NoError(t, err)
	assert.Equal(t, StageEmailGate, stage)

	require.NoError(t, s.Begin("a@b.co"))
	stage, _ = s.Stage()
	assert.Equal(t, StageInstructions, stage)

	require.NoError(t, s.SetStartedAt(time.Now()))
	stage, _ = s.Stage()
	assert.Equal(t, StageWorkspace, stage)
	assert.Equal(t, 3, stage.Step())

	require.NoError(t, s.MarkCompleted())
	stage, _ = s.Stage()
	assert.Equal(t, StageThanks, stage)
	assert.Equal(t, "thanks", stage.String())
}
