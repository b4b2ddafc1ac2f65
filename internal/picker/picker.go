// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package picker lets the user choose one of several food names when a lookup
// misses and the session is interactive.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"golang.org/x/term"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc/q", "cancel"),
	),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f6be00"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea model of the chooser.
type Model struct {
	title   string
	choices []string
	cursor  int
	chosen  string
	done    bool
}

// New builds a chooser over choices, which are shown in the order given.
func New(title string, choices []string) Model {
	return Model{title: title, choices: choices}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(kmsg, keys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case key.Matches(kmsg, keys.Choose):
		if len(m.choices) > 0 {
			m.chosen = m.choices[m.cursor]
		}
		m.done = true
		return m, tea.Quit
	case key.Matches(kmsg, keys.Quit):
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, choice := range m.choices {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + choice))
		} else {
			b.WriteString("  " + choice)
		}
		b.WriteByte('\n')
	}

	var help []string
	for _, k := range []key.Binding{keys.Up, keys.Down, keys.Choose, keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n" + helpStyle.Render(strings.Join(help, " • ")) + "\n")

	return b.String()
}

// Chosen returns the selected name. It is false when the user cancelled.
func (m Model) Chosen() (string, bool) {
	return m.chosen, m.chosen != ""
}

// Interactive reports whether both ends of the session are terminals.
func Interactive(in, out *os.File) bool {
	return term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
}

// Run shows the chooser on out, reading keys from in, and returns the chosen
// name. Cancelling is not an error.
func Run(ctx context.Context, in io.Reader, out io.Writer, title string, choices []string) (string, bool, error) {
	if len(choices) == 0 {
		return "", false, nil
	}

	p := tea.NewProgram(New(title, choices),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, fmt.Errorf("running picker: %w", err)
	}

	name, ok := final.(Model).Chosen()
	return name, ok, nil
}
