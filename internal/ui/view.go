package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

const (
	colName = iota
	colSize
	colSketch
	colAction
)

// tableLine maps a rendered table row back to its asset row. el is
// elemNone for the asset row itself, elemDelete or elemOpen for a menu entry.
type tableLine struct {
	row int
	el  element
}

// ---------- View ----------
func (m AssetList) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.t("AssetList.Title")))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(m.width, 40))))
	b.WriteString("\n\n")

	switch {
	case m.state.Loading:
		b.WriteString(m.spinner.View() + " " + m.t("AssetList.Loading"))
		b.WriteString("\n")
	case len(m.rows) == 0:
		b.WriteString(subtleStyle.Render(m.t("AssetList.NoUploadedAssets")))
		b.WriteString("\n")
	default:
		if m.height > 0 {
			b.WriteString(m.viewport.View())
		} else {
			b.WriteString(m.renderTable())
		}
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render(m.t("AssetList.TotalSize", humanize.Bytes(uint64(max(m.state.Assets.TotalSize, 0))))))
		b.WriteString("\n")
	}

	if line := m.statusLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if r := m.focusedRow(); r != nil && r.Focused() == elemToggle {
		b.WriteString(subtleStyle.Render(m.t("AssetList.ToggleOpenCloseARIA")))
		b.WriteString("\n")
	}
	if m.confirm != nil {
		b.WriteString(confirmBoxStyle.Render(m.confirm.prompt + "\n\n" + helpStyle.Render(m.t("Common.ConfirmHint"))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.t("AssetList.Help")))
	return b.String()
}

func (m AssetList) statusLine() string {
	switch m.statusKind {
	case statusOK:
		return okStyle.Render(m.status)
	case statusWarn:
		return warnStyle.Render(m.status)
	case statusError:
		return errorStyle.Render(m.status)
	}
	return m.status
}

func (m AssetList) headers() []string {
	return []string{
		m.t("AssetList.HeaderName"),
		m.t("AssetList.HeaderSize"),
		m.t("AssetList.HeaderSketch"),
		"",
	}
}

// tableLines lists the rendered rows: each asset followed by its menu
// entries while the menu is open.
func (m AssetList) tableLines() []tableLine {
	lines := make([]tableLine, 0, len(m.rows))
	for i := range m.rows {
		lines = append(lines, tableLine{row: i})
		if m.rows[i].OptionsOpen() {
			lines = append(lines, tableLine{row: i, el: elemDelete}, tableLine{row: i, el: elemOpen})
		}
	}
	return lines
}

func (m AssetList) renderTable() string {
	lines := m.tableLines()
	data := make([][]string, 0, len(lines))
	for _, ln := range lines {
		switch ln.el {
		case elemDelete:
			data = append(data, []string{"  " + m.t("AssetList.Delete"), "", "", ""})
		case elemOpen:
			data = append(data, []string{"  " + m.t("AssetList.OpenNewTab"), "", "", ""})
		default:
			data = append(data, m.rows[ln.row].Cells())
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(m.headers()...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(lines) {
				return cellStyle
			}
			return m.styleFor(lines[row], col)
		}).
		String()
}

func (m AssetList) styleFor(ln tableLine, col int) lipgloss.Style {
	r := &m.rows[ln.row]
	focusedHere := ln.row == m.cursor && r.IsFocused()

	if ln.el != elemNone {
		if focusedHere && r.Focused() == ln.el && col == colName {
			return focusCellStyle
		}
		return menuCellStyle
	}

	if focusedHere && focusColumn(r.Focused()) == col {
		return focusCellStyle
	}
	base := cellStyle
	if focusedHere {
		base = rowFocusStyle
	}
	if col == colSize {
		return base.Align(lipgloss.Right)
	}
	return base
}

func focusColumn(el element) int {
	switch el {
	case elemName:
		return colName
	case elemSketch:
		return colSketch
	case elemToggle:
		return colAction
	}
	return -1
}

// focusedLine is the viewport line of the focused element: two border
// lines and the header come before the first row.
func (m AssetList) focusedLine() int {
	r := m.focusedRow()
	if r == nil {
		return -1
	}
	el := elemNone
	if f := r.Focused(); f == elemDelete || f == elemOpen {
		el = f
	}
	for i, ln := range m.tableLines() {
		if ln.row == m.cursor && ln.el == el {
			return 3 + i
		}
	}
	return -1
}

func (m *AssetList) refreshViewport() {
	if m.height <= 0 || m.state.Loading || len(m.rows) == 0 {
		return
	}
	m.viewport.SetContent(m.renderTable())
	if line := m.focusedLine(); line >= 0 {
		m.ensureCursorInViewport(line)
	}
}

// PlainTable renders rows with the list's table look, for non-interactive output.
func PlainTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == colSize {
				return sizeCellStyle
			}
			return cellStyle
		}).
		String()
}
