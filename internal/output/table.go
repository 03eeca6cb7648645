package output

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/truncate"

	"github.com/portlist/nu_plugin_port_list/internal/row"
	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// MaxCellWidth bounds long cells such as command lines.
const MaxCellWidth = 48

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	listenStyle = cellStyle.
			Foreground(lipgloss.Color("#22aa22")) // Green
)

// Columns returns the column set of rows: the base columns, plus the
// process columns if any row carries them.
func Columns(rows []*model.Record) []string {
	cols := append([]string{}, row.BaseColumns...)
	for _, r := range rows {
		if r.Has(row.ColProcessName) {
			// environments stay out of the table, they are only useful in JSON
			return append(cols, row.ProcessColumns[:len(row.ProcessColumns)-1]...)
		}
	}
	return cols
}

// Cell renders one value as table text.
func Cell(v model.Value) string {
	switch v.Kind() {
	case model.KindInt:
		return strconv.FormatInt(v.AsInt(), 10)
	case model.KindString:
		return v.AsString()
	case model.KindList:
		parts := make([]string, 0, len(v.AsList()))
		for _, item := range v.AsList() {
			parts = append(parts, Cell(item))
		}
		return strings.Join(parts, ",")
	case model.KindRecord:
		return "{record}"
	default:
		return ""
	}
}

// Cells renders the given columns of r, truncating to width.
func Cells(r *model.Record, cols []string, width uint) []string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		v, _ := r.Get(c)
		cells[i] = truncate.StringWithTail(Cell(v), width, "…")
	}
	return cells
}

// Table renders rows as a bordered table. With color disabled no escape
// sequences are emitted.
func Table(rows []*model.Record, colorEnabled bool) string {
	cols := Columns(rows)
	stateCol := -1
	for i, c := range cols {
		if c == row.ColState {
			stateCol = i
		}
	}

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, Cells(r, cols, MaxCellWidth))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(cols...).
		Rows(data...)
	if colorEnabled {
		t = t.
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#585858"))). // Dark Gray
			StyleFunc(func(r, c int) lipgloss.Style {
				switch {
				case r == table.HeaderRow:
					return headerStyle
				case c == stateCol && r >= 0 && r < len(data) && data[r][c] == "LISTEN":
					return listenStyle
				}
				return cellStyle
			})
	} else {
		t = t.StyleFunc(func(int, int) lipgloss.Style { return cellStyle })
	}
	return t.Render()
}
