package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wbkit/waymark/pkg/wayback"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SnapshotListModel - Interactive capture selection
// =============================================================================

// SnapshotListModel is the bubbletea model for picking one capture out of
// the snapshot list.
type SnapshotListModel struct {
	Target    string
	Snapshots []wayback.Snapshot
	Cursor    int
	Selected  *wayback.Snapshot
	Height    int
	Offset    int
}

// NewSnapshotListModel creates a capture picker over snaps.
func NewSnapshotListModel(target string, snaps []wayback.Snapshot) SnapshotListModel {
	return SnapshotListModel{
		Target:    target,
		Snapshots: snaps,
		Height:    15,
	}
}

func (m SnapshotListModel) Init() tea.Cmd {
	return nil
}

func (m SnapshotListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Snapshots)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			snap := m.Snapshots[m.Cursor]
			m.Selected = &snap
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SnapshotListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Captures of " + m.Target))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ fetch  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Snapshots))

	for i := m.Offset; i < end; i++ {
		s := m.Snapshots[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := formatTimestamp(s.Timestamp) + "  " +
			formatStatus(s.StatusCode) + "  " + s.OriginalURL
		b.WriteString(cursor + style.Render(line) + "\n")
	}

	if len(m.Snapshots) > m.Height {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("…more captures above/below"))
		b.WriteString("\n")
	}

	return b.String()
}
