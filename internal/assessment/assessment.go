// Package assessment holds the static content of an assessment: the problem
// statement, the repository documentation, the starter files and the
// instructions shown before the workspace opens.
package assessment

import (
	"sort"
	"strings"
)

// Doc is one page of repository documentation.
type Doc struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Instructions is the content of the page shown before the workspace.
type Instructions struct {
	Summary   string
	Facts     []Fact
	Checklist []string
}

// Fact is a labelled line on the instructions page.
type Fact struct {
	Label string
	Value string
}

// Assessment is the fixed description of a challenge.
type Assessment struct {
	Name             string
	ProblemStatement string
	Docs             []Doc
	// StarterFiles maps every known file path to its initial text.
	StarterFiles map[string]string
	DefaultFile  string
	Instructions Instructions
}

// Paths returns the known file paths in sorted order.
func (a *Assessment) Paths() []string {
	paths := make([]string, 0, len(a.StarterFiles))
	for p := range a.StarterFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SearchDocs returns docs whose title contains query, case-insensitively.
// An empty query returns every doc.
func (a *Assessment) SearchDocs(query string) []Doc {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Doc
	for _, d := range a.Docs {
		if q == "" || strings.Contains(strings.ToLower(d.Title), q) {
			out = append(out, d)
		}
	}
	return out
}

// Doc returns the documentation page with the given id.
func (a *Assessment) Doc(id string) (Doc, bool) {
	for _, d := range a.Docs {
		if d.ID == id {
			return d, true
		}
	}
	return Doc{}, false
}

// Default returns the built-in authentication challenge.
func Default() *Assessment {
	files := make(map[string]string, len(starterFiles))
	for k, v := range starterFiles {
		files[k] = v
	}
	docs := make([]Doc, len(repoDocs))
	copy(docs, repoDocs)

	return &Assessment{
		Name:             "Build a User Authentication Feature",
		ProblemStatement: problemStatement,
		Docs:             docs,
		StarterFiles:     files,
		DefaultFile:      "src/api/auth.ts",
		Instructions: Instructions{
			Summary: "You'll be working on a real-world coding challenge that tests your ability to build features on top of an existing codebase.",
			Facts: []Fact{
				{Label: "Estimated time", Value: "60-90 minutes"},
				{Label: "Open-book", Value: "Use internal docs and AI assistant"},
				{Label: "Scoring", Value: "Based on code quality, completeness, and test results"},
			},
			Checklist: []string{
				"Ensure you have a stable internet connection",
				"Find a quiet environment to focus",
				"Read the problem statement carefully",
				"Explore the repository documentation",
				"Use the AI assistant when you need help",
			},
		},
	}
}
