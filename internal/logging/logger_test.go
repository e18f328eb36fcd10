package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, enabled map[string]bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core), enabled)
	t.Cleanup(func() { Use(nil, nil) })
	return logs
}

func TestAllCategoriesLog(t *testing.T) {
	logs := observe(t, nil)

	categories := []Category{
		CategoryBoot,
		CategorySession,
		CategoryTimer,
		CategoryEditor,
		CategoryLayout,
		CategoryChat,
		CategoryRelay,
		CategoryAPI,
		CategoryStore,
	}

	for _, cat := range categories {
		require.True(t, IsCategoryEnabled(cat), "category %s should be enabled", cat)
		Get(cat).Info("info for %s", cat)
	}

	entries := logs.All()
	require.Len(t, entries, len(categories))
	for i, cat := range categories {
		assert.Equal(t, string(cat), entries[i].LoggerName)
		assert.Equal(t, "info for "+string(cat), entries[i].Message)
	}
}

func TestConvenienceHelpers(t *testing.T) {
	logs := observe(t, nil)

	Boot("boot %d", 1)
	SessionDebug("session debug")
	TimerDebug("tick")
	EditorWarn("bad path %q", "x")
	Layout("resized")
	ChatWarn("fallback")
	RelayError("upstream failed")
	APIDebug("request")
	StoreError("write failed")

	entries := logs.All()
	require.Len(t, entries, 9)
	assert.Equal(t, "boot 1", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	assert.Equal(t, "bad path \"x\"", entries[3].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[6].Level)
	assert.Equal(t, "relay", entries[6].LoggerName)
}

func TestDisabledCategoryIsNoop(t *testing.T) {
	logs := observe(t, map[string]bool{"timer": false, "chat": true})

	assert.False(t, IsCategoryEnabled(CategoryTimer))
	assert.True(t, IsCategoryEnabled(CategoryChat))
	assert.True(t, IsCategoryEnabled(CategoryRelay), "unlisted categories default to enabled")

	Timer("should be dropped")
	Chat("kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestWithContext(t *testing.T) {
	logs := observe(t, nil)

	Get(CategoryRelay).WithContext(map[string]interface{}{"request_id": "abc"}).Info("handled")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["request_id"])
}

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { Use(nil, nil) })

	t.Run("rejects unknown level", func(t *testing.T) {
		err := Initialize(Options{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("writes json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "adaptive.log")
		require.NoError(t, Initialize(Options{Level: "debug", Format: "json", OutputPath: path}))

		Store("opened %s", "db")
		Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), `"logger":"store"`), "got %s", data)
		assert.True(t, strings.Contains(string(data), `"msg":"opened db"`), "got %s", data)
	})
}

func TestTimer(t *testing.T) {
	logs := observe(t, nil)

	timer := StartTimer(CategoryStore, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	assert.Greater(t, elapsed, time.Duration(0))

	slow := StartTimer(CategoryAPI, "SlowOperation")
	time.Sleep(2 * time.Millisecond)
	slow.StopWithThreshold(time.Nanosecond)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
