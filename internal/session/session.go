// Package session provides typed accessors over the workspace key-value store.
// Each workspace component owns a disjoint set of keys.
package session

import (
	"adaptive/internal/logging"
	"adaptive/internal/store"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Persisted keys.
const (
	KeyEmail          = "adaptive_email"
	KeyCompleted      = "adaptive_completed"
	KeyTimerStart     = "adaptive_timer_start"
	KeyOpenTabs       = "adaptive_open_tabs"
	KeyActiveTab      = "adaptive_active_tab"
	KeyLeftPanelSize  = "adaptive_left_panel_size"
	KeyRightPanelSize = "adaptive_right_panel_size"
)

// ErrInvalidEmail is returned by Begin when the address fails the gate check.
var ErrInvalidEmail = errors.New("invalid email address")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address passes the email gate.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Session is a point-in-time view of the persisted session.
type Session struct {
	Email     string     `json:"email"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Completed bool       `json:"completed"`
	OpenTabs  []string   `json:"open_tabs,omitempty"`
	ActiveTab string     `json:"active_tab,omitempty"`
}

// Store wraps a KV with typed get/set per logical key.
type Store struct {
	kv store.KV
}

// New creates a session store over kv.
func New(kv store.KV) *Store {
	return &Store{kv: kv}
}

// KV exposes the underlying backend.
func (s *Store) KV() store.KV {
	return s.kv
}

// Begin starts a new session for email, overwriting the previous one.
func (s *Store) Begin(email string) error {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	for _, key := range []string{KeyTimerStart, KeyCompleted, KeyOpenTabs, KeyActiveTab} {
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	if err := s.kv.Set(KeyEmail, email); err != nil {
		return fmt.Errorf("failed to store email: %w", err)
	}

	logging.Session("Session started for %s", email)
	return nil
}

// Email returns the stored candidate email, or "" if none.
func (s *Store) Email() (string, error) {
	v, _, err := s.kv.Get(KeyEmail)
	return v, err
}

// StartedAt returns the persisted timer start. A missing or corrupt value
// reports ok=false.
func (s *Store) StartedAt() (time.Time, bool, error) {
	raw, ok, err := s.kv.Get(KeyTimerStart)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		logging.SessionWarn("Ignoring corrupt timer start %q", raw)
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// SetStartedAt stores the timer start as epoch milliseconds.
func (s *Store) SetStartedAt(t time.Time) error {
	return s.kv.Set(KeyTimerStart, strconv.FormatInt(t.UnixMilli(), 10))
}

// Completed reports whether the assessment was submitted.
func (s *Store) Completed() (bool, error) {
	v, _, err := s.kv.Get(KeyCompleted)
	return v == "true", err
}

// MarkCompleted sets the completion flag.
func (s *Store) MarkCompleted() error {
	return s.kv.Set(KeyCompleted, "true")
}

// OpenTabs returns the persisted tab order. Corrupt data reads as no tabs,
// reported with ok=false.
func (s *Store) OpenTabs() ([]string, bool, error) {
	raw, ok, err := s.kv.Get(KeyOpenTabs)
	if err != nil || !ok {
		return nil, false, err
	}
	var tabs []string
	if err := json.Unmarshal([]byte(raw), &tabs); err != nil {
		logging.SessionWarn("Ignoring corrupt open tabs %q: %v", raw, err)
		return nil, false, nil
	}
	return tabs, true, nil
}

// SetOpenTabs persists the tab order as a JSON array.
func (s *Store) SetOpenTabs(tabs []string) error {
	if tabs == nil {
		tabs = []string{}
	}
	data, err := json.Marshal(tabs)
	if err != nil {
		return fmt.Errorf("failed to encode tabs: %w", err)
	}
	return s.kv.Set(KeyOpenTabs, string(data))
}

// ActiveTab returns the persisted active path.
func (s *Store) ActiveTab() (string, bool, error) {
	v, ok, err := s.kv.Get(KeyActiveTab)
	if err != nil || !ok || v == "" {
		return "", false, err
	}
	return v, true, nil
}

// SetActiveTab persists the active path; "" clears it.
func (s *Store) SetActiveTab(path string) error {
	if path == "" {
		return s.kv.Delete(KeyActiveTab)
	}
	return s.kv.Set(KeyActiveTab, path)
}

// PanelSizeKey returns the storage key for a layout region.
func PanelSizeKey(region string) string {
	return "adaptive_" + region + "_panel_size"
}

// PanelSize returns the persisted size for region. Non-numeric values read as
// absent.
func (s *Store) PanelSize(region string) (float64, bool, error) {
	raw, ok, err := s.kv.Get(PanelSizeKey(region))
	if err != nil || !ok {
		return 0, false, err
	}
	size, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		logging.SessionWarn("Ignoring non-numeric panel size %s=%q", region, raw)
		return 0, false, nil
	}
	return size, true, nil
}

// SetPanelSize persists the size for region.
func (s *Store) SetPanelSize(region string, size float64) error {
	return s.kv.Set(PanelSizeKey(region), strconv.FormatFloat(size, 'f', -1, 64))
}

// Snapshot reads the whole session.
func (s *Store) Snapshot() (Session, error) {
	var sess Session
	var err error

	if sess.Email, err = s.Email(); err != nil {
		return sess, err
	}
	started, ok, err := s.StartedAt()
	if err != nil {
		return sess, err
	}
	if ok {
		sess.StartedAt = &started
	}
	if sess.Completed, err = s.Completed(); err != nil {
		return sess, err
	}
	if sess.OpenTabs, _, err = s.OpenTabs(); err != nil {
		return sess, err
	}
	if sess.ActiveTab, _, err = s.ActiveTab(); err != nil {
		return sess, err
	}
	return sess, nil
}

// Reset deletes every adaptive key.
func (s *Store) Reset() error {
	keys, err := s.kv.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, "adaptive_") {
			continue
		}
		if err := s.kv.Delete(k); err != nil {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	logging.Session("Session reset (%d keys scanned)", len(keys))
	return nil
}
