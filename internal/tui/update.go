package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/portlist/nu_plugin_port_list/internal/pipeline"
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(max(msg.Width-4, 10))
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case rowsMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.statusMsg = ""
		m.rows = msg.rows
		m.updateTable()
		return m, nil

	case errMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.statusMsg = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.gen++
			m.loading = true
			return m, m.refresh()
		default:
			if sw, ok := switchForKey(key); ok {
				ref := m.flags.Ref(sw.Long)
				*ref = !*ref
				m.gen++
				m.loading = true
				return m, m.refresh()
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func switchForKey(key string) (pipeline.Switch, bool) {
	for _, sw := range pipeline.Switches {
		if key == string(sw.Short) {
			return sw, true
		}
	}
	return pipeline.Switch{}, false
}
