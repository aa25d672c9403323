package sheet

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/louisbranch/godlike/internal/services/godlike/character"
)

// healthLegend explains the wound box symbols.
const healthLegend = "**o** healthy **s** shock **x** killing"

// Render formats a category table as chat message content.
func Render(t character.Table) string {
	if t.Category == character.CategoryHealth {
		return renderHealth(t)
	}
	if len(t.Rows) == 1 {
		return "```\n" + renderVertical(t) + "\n```"
	}
	return "```\n" + renderHorizontal(t) + "\n```"
}

// renderVertical lists each column of a one-row table on its own line.
func renderVertical(t character.Table) string {
	w := newWriter()
	w.AppendHeader(table.Row{t.Category.String(), "Value"})
	row := t.Rows[0]
	for i, column := range t.Columns {
		var value string
		if i < len(row) {
			value = row[i]
		}
		w.AppendRow(table.Row{column, value})
	}
	return w.Render()
}

func renderHorizontal(t character.Table) string {
	w := newWriter()
	header := make(table.Row, len(t.Columns))
	for i, column := range t.Columns {
		header[i] = column
	}
	w.AppendHeader(header)
	for _, row := range t.Rows {
		out := make(table.Row, len(row))
		for i, value := range row {
			out[i] = value
		}
		w.AppendRow(out)
	}
	return w.Render()
}

func newWriter() table.Writer {
	w := table.NewWriter()
	w.SetStyle(table.StyleBold)
	w.Style().Format.Header = text.FormatDefault
	return w
}

func renderHealth(t character.Table) string {
	wounds, status, will := healthValues(t)
	if !strings.HasSuffix(wounds, "\n") {
		wounds += "\n"
	}
	return fmt.Sprintf(
		"Current wounds:\n%s\n```\n%s```\n*Current Will:* **%s**\n*Status:* **%s**",
		healthLegend, wounds, will, status,
	)
}

// healthValues extracts the health columns by name.
func healthValues(t character.Table) (wounds, status, will string) {
	if len(t.Rows) == 0 {
		return "", "", ""
	}
	row := t.Rows[0]
	for i, column := range t.Columns {
		if i >= len(row) {
			break
		}
		switch column {
		case "WoundSlot":
			wounds = row[i]
		case "HealthStatus":
			status = row[i]
		case "CurrentWill":
			will = row[i]
		}
	}
	return wounds, status, will
}

// Title is the heading of a sheet before any category is selected.
func Title(nickname string) string {
	return nickname + " Character Sheet"
}
