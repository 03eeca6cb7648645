package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/portlist/nu_plugin_port_list/internal/output"
	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

const maxColumnWidth = 32

// rowsMsg and errMsg carry the generation of the refresh that produced them.
type rowsMsg struct {
	gen  uint64
	rows []*model.Record
}

type errMsg struct {
	gen uint64
	err error
}

func (m MainModel) refresh() tea.Cmd {
	list, flags, ctx, gen := m.list, m.flags, m.ctx, m.gen
	return func() tea.Msg {
		rows, err := list.Run(ctx, flags)
		if err != nil {
			return errMsg{gen: gen, err: err}
		}
		return rowsMsg{gen: gen, rows: rows}
	}
}

// updateTable rebuilds columns and rows from the current snapshot, sizing
// each column to its widest cell.
func (m *MainModel) updateTable() {
	names := output.Columns(m.rows)
	cells := make([][]string, 0, len(m.rows))
	widths := make([]int, len(names))
	for i, n := range names {
		widths[i] = len(n)
	}
	for _, r := range m.rows {
		c := output.Cells(r, names, maxColumnWidth)
		for i, cell := range c {
			if w := len([]rune(cell)); w > widths[i] {
				widths[i] = w
			}
		}
		cells = append(cells, c)
	}

	cols := make([]table.Column, len(names))
	for i, n := range names {
		cols[i] = table.Column{Title: n, Width: widths[i]}
	}
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}

	// Rows are cleared first so the cursor never points past the new columns.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}
