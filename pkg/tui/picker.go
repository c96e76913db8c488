package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/jingkaihe/aiskills/pkg/skills"
)

// ErrNoSkills is returned when there is nothing to pick from
var ErrNoSkills = errors.New("no skills to pick from")

// Pick runs the picker full screen and returns the chosen skill. A
// dismissed picker returns nil without an error.
func Pick(ctx context.Context, choices []*skills.Skill) (*skills.Skill, error) {
	if len(choices) == 0 {
		return nil, ErrNoSkills
	}

	// Render on stderr so stdout stays clean for piped payloads
	p := tea.NewProgram(NewModel(choices),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	)

	result, err := p.Run()
	if err != nil {
		return nil, errors.Wrap(err, "error running picker")
	}

	model, ok := result.(Model)
	if !ok {
		return nil, errors.New("unexpected picker model")
	}
	return model.Choice(), nil
}
