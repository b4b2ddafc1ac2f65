// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package picker

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

var (
	up    = tea.KeyMsg{Type: tea.KeyUp}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	j     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	k     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	q     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func TestModel_Navigation(t *testing.T) {
	choices := []string{"Apple", "Äpple", "Äppelmos"}

	tests := []struct {
		name string
		keys []tea.KeyMsg
		want string
	}{
		{name: "first by default", keys: []tea.KeyMsg{enter}, want: "Apple"},
		{name: "down", keys: []tea.KeyMsg{down, enter}, want: "Äpple"},
		{name: "vim keys", keys: []tea.KeyMsg{j, j, k, enter}, want: "Äpple"},
		{name: "stops at the bottom", keys: []tea.KeyMsg{down, down, down, down, enter}, want: "Äppelmos"},
		{name: "stops at the top", keys: []tea.KeyMsg{up, up, enter}, want: "Apple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := press(t, New("Did you mean", choices), tt.keys...)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())

			got, ok := m.Chosen()
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModel_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{esc, q} {
		t.Run(msg.String(), func(t *testing.T) {
			m, cmd := press(t, New("Did you mean", []string{"Apple"}), down, msg)
			require.NotNil(t, cmd)

			_, ok := m.Chosen()
			assert.False(t, ok)
			assert.Empty(t, m.View())
		})
	}
}

func TestModel_IgnoresOtherMessages(t *testing.T) {
	m := New("Did you mean", []string{"Apple"})
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd)
	assert.Equal(t, m, next)
}

func TestModel_View(t *testing.T) {
	m, _ := press(t, New("Did you mean", []string{"Apple", "Äpple"}), down)
	view := m.View()

	assert.Contains(t, view, "Did you mean")
	assert.Contains(t, view, "  Apple\n")
	assert.Contains(t, view, "> Äpple")
	assert.Contains(t, view, "enter choose")
}

func TestRun_NoChoices(t *testing.T) {
	name, ok, err := Run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, "Did you mean", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestRun_Choose(t *testing.T) {
	// Down arrow then carriage return.
	in := strings.NewReader("\x1b[B\r")
	var out bytes.Buffer

	name, ok, err := Run(context.Background(), in, &out, "Did you mean", []string{"Apple", "Äpple"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Äpple", name)
}
