package relay

import (
	"adaptive/internal/chat"
	"strings"
)

const promptPreamble = "You are an AI coding assistant for a technical assessment platform called Adaptive."

var guidelines = []string{
	"Provide specific, actionable code suggestions",
	"Reference the problem requirements when relevant",
	"Suggest best practices for the given tech stack (TypeScript, React, Next.js)",
	"Help debug errors and explain solutions clearly",
	"Be concise but comprehensive in your responses",
	"Focus on helping the candidate solve the assessment challenge",
	"If asked about implementation details, provide working code examples",
	"Always consider security, performance, and maintainability",
}

// BuildPrompt composes the single prompt sent upstream. A nil context leaves
// the context block empty; empty fields get their markers.
func BuildPrompt(message string, c *chat.Context) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nContext:\n")

	if c != nil {
		m := c.WithMarkers()
		b.WriteString("\n- Problem Statement: ")
		b.WriteString(m.ProblemStatement)
		b.WriteString("\n- Current File: ")
		b.WriteString(m.ActiveFile)
		b.WriteString("\n- Available Files: ")
		b.WriteString(m.FilesLine())
		b.WriteString("\n- Current Code: ")
		b.WriteString(m.CurrentCode)
		b.WriteString("\n")
	}

	b.WriteString("\n\nGuidelines:\n")
	for _, g := range guidelines {
		b.WriteString("- ")
		b.WriteString(g)
		b.WriteString("\n")
	}

	b.WriteString("\nUser Message: ")
	b.WriteString(message)
	return b.String()
}
