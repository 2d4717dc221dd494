package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/melody-ding/go-clipset/internal/annotation"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Bold(true)
)

func row(label string, value any) string {
	return fmt.Sprintf("%s %v", labelStyle.Render(label), value)
}

// RenderIndexSummary shows how an annotation file turned into an index.
func RenderIndexSummary(ix *annotation.Index) string {
	st := ix.Stats()
	rows := []string{
		row("Records:", st.Records),
		row("Samples:", st.Kept),
		row("Missing frames:", st.MissingPath),
		row("No segment:", st.NoSegment),
		row("Other subset:", st.OtherSubset),
		row("Unlabeled:", st.Unlabeled),
		row("Classes:", formatClasses(ix.Vocabulary())),
	}
	return infoStyle.Render(strings.Join(rows, "\n"))
}

// RenderExportSummary shows where an export run wrote its shards.
func RenderExportSummary(runID string, samples int, shards, uploaded []string) string {
	rows := []string{
		row("Run:", runID),
		row("Samples:", samples),
		row("Shards:", len(shards)),
	}
	for _, s := range shards {
		rows = append(rows, "  "+s)
	}
	if len(uploaded) > 0 {
		rows = append(rows, row("Uploaded:", len(uploaded)))
		for _, u := range uploaded {
			rows = append(rows, "  "+u)
		}
	}
	return infoStyle.Render(strings.Join(rows, "\n"))
}

// formatClasses lists classes in id order as "0:run 1:walk".
func formatClasses(vocab map[string]int) string {
	names := make([]string, 0, len(vocab))
	for name := range vocab {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return vocab[names[i]] < vocab[names[j]] })

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%d:%s", vocab[name], name)
	}
	return strings.Join(parts, " ")
}
