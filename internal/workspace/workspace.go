// Package workspace composes the session, timer, tab registry, layout and
// chat into the assessment workspace and owns the submission flow.
package workspace

import (
	"adaptive/internal/assessment"
	"adaptive/internal/chat"
	"adaptive/internal/editor"
	"adaptive/internal/layout"
	"adaptive/internal/logging"
	"adaptive/internal/session"
	"adaptive/internal/timer"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNoSession is returned by Mount before an email has been entered.
	ErrNoSession = errors.New("no active session")
	// ErrSubmitted is returned once the assessment has been submitted.
	ErrSubmitted = errors.New("assessment already submitted")
	// ErrNotConfirming is returned by ConfirmSubmit without a RequestSubmit.
	ErrNotConfirming = errors.New("no submission awaiting confirmation")
	// ErrNotMounted is returned by operations that need a mounted workspace.
	ErrNotMounted = errors.New("workspace not mounted")
)

// SubmitReason says how the assessment ended.
type SubmitReason string

const (
	SubmitManual SubmitReason = "manual"
	SubmitAuto   SubmitReason = "timer-expired"
)

// Options configures a Workspace.
type Options struct {
	Assessment *assessment.Assessment
	Relay      chat.Relay
	Duration   time.Duration
	Regions    []layout.Region
	// OnSubmit runs after the completion flag is stored.
	OnSubmit func(SubmitReason)
}

// Workspace is the three-pane assessment view.
type Workspace struct {
	sessions   *session.Store
	assessment *assessment.Assessment
	registry   *editor.Registry
	layout     *layout.Manager
	conv       *chat.Conversation
	countdown  *timer.Countdown
	onSubmit   func(SubmitReason)

	mu         sync.Mutex
	mounted    bool
	confirming bool
	preview    bool
	submitted  bool
	reason     SubmitReason
}

// New builds a workspace and restores tab and panel state.
func New(sessions *session.Store, opts Options) (*Workspace, error) {
	a := opts.Assessment
	if a == nil {
		a = assessment.Default()
	}
	if opts.Relay == nil {
		return nil, fmt.Errorf("workspace requires a chat relay")
	}

	registry, err := editor.New(sessions, a.StarterFiles, a.DefaultFile)
	if err != nil {
		return nil, err
	}
	lm := layout.New(sessions, opts.Regions...)
	if err := lm.Restore(); err != nil {
		return nil, err
	}

	w := &Workspace{
		sessions:   sessions,
		assessment: a,
		registry:   registry,
		layout:     lm,
		conv:       chat.NewConversation(opts.Relay),
		onSubmit:   opts.OnSubmit,
	}
	w.countdown = timer.New(sessions, opts.Duration, w.autoSubmit)
	return w, nil
}

// Mount starts or recovers the timer. An expired session is auto-submitted
// on the first Tick, not here.
func (w *Workspace) Mount(now timer.Clock) error {
	stage, err := w.sessions.Stage()
	if err != nil {
		return err
	}
	switch stage {
	case session.StageEmailGate:
		return ErrNoSession
	case session.StageThanks:
		return ErrSubmitted
	}

	if err := w.countdown.Start(now); err != nil {
		return err
	}
	w.mu.Lock()
	w.mounted = true
	w.mu.Unlock()
	logging.Session("Workspace mounted, %s remaining", timer.Format(w.countdown.Remaining()))
	return nil
}

// Tick re-derives the remaining seconds; it may trigger auto-submit.
func (w *Workspace) Tick() int {
	return w.countdown.Tick()
}

// Run ticks once per period until ctx ends or time runs out.
func (w *Workspace) Run(ctx context.Context, period time.Duration, onTick func(int)) error {
	if !w.isMounted() {
		return ErrNotMounted
	}
	return w.countdown.Run(ctx, period, onTick)
}

func (w *Workspace) isMounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mounted
}

// Send asks the assistant about the current code. The context is assembled
// from the registry at call time.
func (w *Workspace) Send(ctx context.Context, message string) (*chat.Exchange, error) {
	if w.Submitted() {
		return nil, ErrSubmitted
	}
	cx := chat.Assemble(w.registry, w.assessment.ProblemStatement)
	return w.conv.Send(ctx, message, cx)
}

// RequestSubmit opens the confirmation step.
func (w *Workspace) RequestSubmit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted {
		return ErrSubmitted
	}
	w.confirming = true
	return nil
}

// CancelSubmit closes the confirmation step.
func (w *Workspace) CancelSubmit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.confirming = false
}

// ConfirmSubmit submits after RequestSubmit.
func (w *Workspace) ConfirmSubmit() error {
	w.mu.Lock()
	if w.submitted {
		w.mu.Unlock()
		return ErrSubmitted
	}
	if !w.confirming {
		w.mu.Unlock()
		return ErrNotConfirming
	}
	w.mu.Unlock()
	return w.submit(SubmitManual)
}

// Confirming reports whether the confirmation step is open.
func (w *Workspace) Confirming() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.confirming
}

func (w *Workspace) autoSubmit() {
	if err := w.submit(SubmitAuto); err != nil && !errors.Is(err, ErrSubmitted) {
		logging.Get(logging.CategorySession).Error("Auto-submit failed: %v", err)
	}
}

func (w *Workspace) submit(reason SubmitReason) error {
	w.mu.Lock()
	if w.submitted {
		w.mu.Unlock()
		return ErrSubmitted
	}
	if err := w.sessions.MarkCompleted(); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to mark completed: %w", err)
	}
	w.submitted = true
	w.confirming = false
	w.reason = reason
	onSubmit := w.onSubmit
	w.mu.Unlock()

	w.conv.Close()
	logging.Session("Assessment submitted (%s)", reason)
	if onSubmit != nil {
		onSubmit(reason)
	}
	return nil
}

// Submitted reports whether the assessment has ended.
func (w *Workspace) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// SubmitReason returns how the assessment ended, or "".
func (w *Workspace) SubmitReason() SubmitReason {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reason
}

// SetCompact switches between split and tabbed presentation.
func (w *Workspace) SetCompact(compact bool) {
	w.layout.SetCompact(compact)
}

// ShowPreview shows the rendered preview over the editor.
func (w *Workspace) ShowPreview() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.preview = true
}

// HidePreview returns to the editor.
func (w *Workspace) HidePreview() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.preview = false
}

// PreviewVisible reports whether the preview is showing.
func (w *Workspace) PreviewVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.preview
}

// Close aborts any in-flight chat request.
func (w *Workspace) Close() {
	w.conv.Close()
}

func (w *Workspace) Editor() *editor.Registry { return w.registry }
func (w *Workspace) Layout() *layout.Manager { return w.layout }
func (w *Workspace) Conversation() *chat.Conversation { return w.conv }
func (w *Workspace) Countdown() *timer.Countdown { return w.countdown }
func (w *Workspace) Assessment() *assessment.Assessment { return w.assessment }
