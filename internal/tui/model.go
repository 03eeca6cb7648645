package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/portlist/nu_plugin_port_list/internal/pipeline"
	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	activeSwitchStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#22aa22")). // Green
				Padding(0, 1).
				Bold(true)

	inactiveSwitchStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#767676")). // Dimmed Gray
				Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)
)

// MainModel browses one port list snapshot at a time. A new snapshot is taken
// only on request.
type MainModel struct {
	ctx     context.Context
	list    *pipeline.PortList
	flags   pipeline.Flags
	version string
	// gen identifies the latest requested refresh. Results from older ones are dropped.
	gen uint64

	table     table.Model
	rows      []*model.Record
	statusMsg string
	loading   bool
	width     int
	height    int
	quitting  bool
}

func InitialModel(ctx context.Context, list *pipeline.PortList, flags pipeline.Flags, version string) MainModel {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = tableHeaderStyle
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#5f00d7")). // Purple
		Bold(false)
	t.SetStyles(s)

	return MainModel{
		ctx:     ctx,
		list:    list,
		flags:   flags,
		version: version,
		table:   t,
		loading: true,
	}
}

func Start(ctx context.Context, list *pipeline.PortList, flags pipeline.Flags, version string) error {
	p := tea.NewProgram(InitialModel(ctx, list, flags, version), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return m.refresh()
}
