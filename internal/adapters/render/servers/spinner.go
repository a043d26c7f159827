package servers

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type awaitDoneMsg[T any] struct {
	value T
	err   error
}

type awaitModel[T any] struct {
	spinner spinner.Model
	label   string
	work    tea.Cmd
	result  awaitDoneMsg[T]
	done    bool
}

func (m awaitModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m awaitModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case awaitDoneMsg[T]:
		m.result = msg
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m awaitModel[T]) View() string {
	if m.done {
		return ""
	}

	return m.spinner.View() + " " + m.label
}

// Await shows a spinner labelled label on output while fn runs, then clears
// it and returns what fn returned.
func Await[T any](ctx context.Context, output io.Writer, label string, fn func(context.Context) (T, error)) (T, error) {
	model := awaitModel[T]{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		label: label,
		work: func() tea.Msg {
			value, err := fn(ctx)
			return awaitDoneMsg[T]{value: value, err: err}
		},
	}

	final, err := tea.NewProgram(
		model,
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	).Run()

	var zero T
	if err != nil {
		return zero, err
	}

	result, ok := final.(awaitModel[T])
	if !ok {
		return zero, fmt.Errorf("unexpected final spinner model type %T", final)
	}

	return result.result.value, result.result.err
}
