// Package formatter renders and tidies the markdown summary reports.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"datanorm/pkg/metadata"
)

// minColumnWidth is the narrowest column, matching a "---" separator.
const minColumnWidth = 3

// FormatMarkdown aligns every table in content and re-signs the document,
// keeping the validation flag and version of an existing metadata block.
func FormatMarkdown(content string) (string, error) {
	meta, cleanContent := metadata.Extract(content)

	formatted := AlignTables(cleanContent)

	isValid := false
	if meta != nil {
		isValid = meta.Validation
	}

	return metadata.Sign(formatted, isValid, meta), nil
}

// AlignTables pads the cells of each markdown table so the pipes line up,
// measuring display width so CJK and accented text align too.
func AlignTables(content string) string {
	lines := strings.Split(content, "\n")

	var (
		out   []string
		table []string
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			table = append(table, line)
			continue
		}

		if len(table) > 0 {
			out = append(out, alignTable(table)...)
			table = nil
		}

		out = append(out, line)
	}

	if len(table) > 0 {
		out = append(out, alignTable(table)...)
	}

	return strings.Join(out, "\n")
}

func alignTable(rows []string) []string {
	// A table needs at least a header and a separator.
	if len(rows) < 2 {
		return rows
	}

	cells := make([][]string, len(rows))
	colCount := 0

	for i, row := range rows {
		cells[i] = SplitCells(row)
		colCount = max(colCount, len(cells[i]))
	}

	separator := -1
	if isSeparatorRow(cells[1]) {
		separator = 1
	}

	widths := make([]int, colCount)
	for i := range widths {
		widths[i] = minColumnWidth
	}

	for r, row := range cells {
		if r == separator {
			continue
		}

		for c, cell := range row {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}

	result := make([]string, 0, len(cells))
	for r, row := range cells {
		result = append(result, renderRow(row, widths, r == separator))
	}

	return result
}

// SplitCells returns the trimmed cells of "| a | b |". An escaped pipe (\|)
// stays inside its cell, escape included.
func SplitCells(row string) []string {
	row = strings.TrimPrefix(strings.TrimSpace(row), "|")
	if strings.HasSuffix(row, "|") && !strings.HasSuffix(row, `\|`) {
		row = row[:len(row)-1]
	}

	var (
		cells   []string
		cell    strings.Builder
		escaped bool
	)

	for _, r := range row {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()

			continue
		}

		cell.WriteRune(r)
	}

	return append(cells, strings.TrimSpace(cell.String()))
}

// EscapeCell makes s safe to place inside a table cell.
func EscapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}

	for _, cell := range cells {
		if strings.Trim(cell, "-: ") != "" || !strings.Contains(cell, "-") {
			return false
		}
	}

	return true
}

func renderRow(row []string, widths []int, separator bool) string {
	var sb strings.Builder

	sb.WriteString("|")

	for c, width := range widths {
		sb.WriteString(" ")

		if separator {
			sb.WriteString(strings.Repeat("-", width))
		} else {
			content := ""
			if c < len(row) {
				content = row[c]
			}

			sb.WriteString(content)
			sb.WriteString(strings.Repeat(" ", width-runewidth.StringWidth(content)))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
