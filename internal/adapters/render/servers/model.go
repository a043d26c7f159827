package servers

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// renderedMsg carries the finished view back into the program.
type renderedMsg string

type model struct {
	render func() string
	output string
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderedMsg(m.render())
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if rendered, ok := msg.(renderedMsg); ok {
		m.output = string(rendered)
		return m, tea.Quit
	}

	return m, nil
}

func (m model) View() string {
	return m.output
}

// Render lays out listing once and returns the styled text.
func Render(listing Listing, opts RenderOptions) (string, error) {
	s := newStyles()
	program := tea.NewProgram(
		model{render: func() string { return renderView(listing, opts, s) }},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	final, err := program.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := final.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
