// Package tui provides the interactive skill picker.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jingkaihe/aiskills/pkg/skills"
)

// item adapts a skill to the bubbles list
type item struct {
	skill *skills.Skill
}

func (i item) Title() string { return i.skill.Name }

func (i item) Description() string {
	if i.skill.Description == "" {
		return i.skill.Filename
	}
	return i.skill.Description + " · " + i.skill.Filename
}

func (i item) FilterValue() string {
	return strings.Join([]string{i.skill.Name, i.skill.Filename, i.skill.Description}, " ")
}

// Model is the picker state
type Model struct {
	list      list.Model
	choice    *skills.Skill
	cancelled bool
}

// NewModel creates a picker over the given skills
func NewModel(choices []*skills.Skill) Model {
	items := make([]list.Item, 0, len(choices))
	for _, s := range choices {
		items = append(items, item{skill: s})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(accentColor).
		BorderForeground(accentColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(mutedColor).
		BorderForeground(accentColor)

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select a skill"
	l.Styles.Title = titleStyle
	l.SetStatusBarItemName("skill", "skills")

	return Model{list: l}
}

// Choice returns the selected skill, nil when nothing was picked
func (m Model) Choice() *skills.Skill {
	return m.choice
}

// Cancelled reports whether the user dismissed the picker
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and resizes
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			return m, tea.Quit
		}

		// Keys belong to the filter input while typing
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.Type {
		case tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if selected, ok := m.list.SelectedItem().(item); ok {
				m.choice = selected.skill
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the picker
func (m Model) View() string {
	if m.choice != nil || m.cancelled {
		return ""
	}
	return docStyle.Render(m.list.View())
}
