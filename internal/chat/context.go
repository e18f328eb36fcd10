// Package chat implements the workspace assistant: context assembly, the
// in-memory transcript and the single-flight conversation that talks to the
// relay.
package chat

import "strings"

// Markers written in place of empty context fields.
const (
	NotProvided  = "Not provided"
	NotSpecified = "Not specified"
)

// Context is the snapshot of the workspace sent with every message.
type Context struct {
	ProblemStatement string   `json:"problemStatement,omitempty"`
	ActiveFile       string   `json:"activeFile,omitempty"`
	AvailableFiles   []string `json:"availableFiles,omitempty"`
	CurrentCode      string   `json:"currentCode,omitempty"`
}

// Source is the part of the tab registry the assembler reads.
type Source interface {
	Active() string
	ActiveContent() string
	Files() []string
}

// Assemble builds a fresh Context from src and the problem statement.
// Empty fields carry explicit markers.
func Assemble(src Source, problem string) Context {
	c := Context{
		ProblemStatement: problem,
		ActiveFile:       src.Active(),
		AvailableFiles:   src.Files(),
		CurrentCode:      src.ActiveContent(),
	}
	return c.WithMarkers()
}

// WithMarkers returns a copy with empty fields replaced by markers.
func (c Context) WithMarkers() Context {
	if strings.TrimSpace(c.ProblemStatement) == "" {
		c.ProblemStatement = NotProvided
	}
	if c.ActiveFile == "" {
		c.ActiveFile = NotSpecified
	}
	if len(c.AvailableFiles) == 0 {
		c.AvailableFiles = []string{NotProvided}
	} else {
		c.AvailableFiles = append([]string(nil), c.AvailableFiles...)
	}
	if c.CurrentCode == "" {
		c.CurrentCode = NotProvided
	}
	return c
}

// FilesLine joins the available files for display in a prompt.
func (c Context) FilesLine() string {
	if len(c.AvailableFiles) == 0 {
		return NotProvided
	}
	return strings.Join(c.AvailableFiles, ", ")
}
