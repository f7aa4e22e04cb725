package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Unfocused tables still highlight the cursor row; keep it plain.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string for CLI output.
// Column widths grow to fit the widest cell.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := make([]TableColumn, len(columns))
	copy(cols, columns)
	for _, row := range rows {
		for i, cell := range row {
			if i < len(cols) && lipgloss.Width(cell) > cols[i].Width {
				cols[i].Width = lipgloss.Width(cell)
			}
		}
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return NewTable(cols, tableRows).View()
}

// RenderKeyValue renders label/value pairs with the values aligned.
// Pairs with an empty value are skipped.
func RenderKeyValue(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if p[1] != "" && lipgloss.Width(p[0]) > width {
			width = lipgloss.Width(p[0])
		}
	}

	label := MutedStyle()
	var b strings.Builder
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		b.WriteString(label.Render(padRight(p[0], width)))
		b.WriteString("  ")
		b.WriteString(p[1])
		b.WriteString("\n")
	}
	return b.String()
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
