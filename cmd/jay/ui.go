package main

import (
	"fmt"

	"github.com/jaycli/jay/internal/store"
	"github.com/jaycli/jay/internal/tool"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

func newTable(headers ...string) *table.Table {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")

	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(gray)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func renderToolTable(registry *tool.Registry) string {
	t := newTable("TOOL", "RISK", "DESCRIPTION")
	for _, d := range registry.Descriptors() {
		t.Row(d.Definition.Name, string(d.Metadata.Risk), d.Definition.Description)
	}
	return t.String()
}

func renderSessionTable(sessions []store.SessionMeta) string {
	t := newTable("SESSION", "MESSAGES", "UPDATED")
	for _, s := range sessions {
		t.Row(s.ID, fmt.Sprintf("%d", s.MessageCount), s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return t.String()
}
