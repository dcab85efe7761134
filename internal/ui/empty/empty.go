// Package empty provides the view shown when no breathing exercises could be loaded.
package empty

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/breathe/internal/ui/styles"
)

const art = `   .-~~~-.
  /       \
 (  in…out )
  \       /
   '-...-'`

// Model holds the empty state view.
type Model struct {
	userDir string
	width   int
	height  int
}

// New creates the empty state view. userDir is where exercise files are read from.
func New(userDir string) Model {
	return Model{userDir: userDir}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the empty state.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	title := styles.TitleStyle.MarginTop(1)
	hint := styles.MutedStyle.Italic(true).MarginTop(2)

	dir := m.userDir
	if dir == "" {
		dir = "exercises.user_dir"
	}

	var b strings.Builder
	b.WriteString(styles.CountdownStyle.Render(art))
	b.WriteString("\n\n")
	b.WriteString(title.Render("No breathing exercises are available."))
	b.WriteString("\n\n")
	b.WriteString(styles.DescriptionStyle.Render("Built-in exercises could not be loaded and no user exercises were found."))
	b.WriteString("\n\n")
	b.WriteString(styles.DescriptionStyle.Render("  1. Add a YAML exercise file to " + dir))
	b.WriteString("\n")
	b.WriteString(styles.DescriptionStyle.Render("  2. Run 'breathe exercises' to see what was loaded"))
	b.WriteString("\n")
	b.WriteString(styles.DescriptionStyle.Render("  3. Check the log file for skipped files"))
	b.WriteString("\n\n")
	b.WriteString(hint.Render("Press q to quit"))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}
