package workspace

import (
	"adaptive/internal/session"
	"adaptive/internal/timer"
	"fmt"
)

// Status is a snapshot for rendering the workspace header and panes.
type Status struct {
	Stage      string             `json:"stage"`
	Step       string             `json:"step"`
	Email      string             `json:"email,omitempty"`
	Remaining  string             `json:"remaining"`
	Tabs       []string           `json:"tabs"`
	Active     string             `json:"active,omitempty"`
	Mode       string             `json:"mode"`
	Panes      []string           `json:"panes"`
	Sizes      map[string]float64 `json:"sizes"`
	Pending    bool               `json:"pending"`
	Confirming bool               `json:"confirming"`
	Preview    bool               `json:"preview"`
	Submitted  SubmitReason       `json:"submitted,omitempty"`
}

// StepLabel renders a stage as "Step n of 4".
func StepLabel(s session.Stage) string {
	return fmt.Sprintf("Step %d of %d", s.Step(), session.StageCount)
}

// Status collects the current state of every component.
func (w *Workspace) Status() (Status, error) {
	stage, err := w.sessions.Stage()
	if err != nil {
		return Status{}, err
	}
	email, err := w.sessions.Email()
	if err != nil {
		return Status{}, err
	}
	tabs := w.registry.State()

	w.mu.Lock()
	confirming, preview, reason := w.confirming, w.preview, w.reason
	w.mu.Unlock()

	return Status{
		Stage:      stage.String(),
		Step:       StepLabel(stage),
		Email:      email,
		Remaining:  timer.Format(w.countdown.Remaining()),
		Tabs:       tabs.Tabs,
		Active:     tabs.Active,
		Mode:       w.layout.Mode().String(),
		Panes:      w.layout.Panes(),
		Sizes:      w.layout.Sizes(),
		Pending:    w.conv.Pending(),
		Confirming: confirming,
		Preview:    preview,
		Submitted:  reason,
	}, nil
}
