package empty

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
)

func TestEmpty_New(t *testing.T) {
	m := New("/tmp/exercises")

	assert.Equal(t, 0, m.width, "expected width to be 0")
	assert.Equal(t, 0, m.height, "expected height to be 0")
	assert.Nil(t, m.Init(), "expected Init to return nil")
}

func TestEmpty_SetSize(t *testing.T) {
	m := New("").SetSize(120, 40)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)

	m2 := m.SetSize(80, 24)
	assert.Equal(t, 80, m2.width)
	assert.Equal(t, 120, m.width, "expected original model width unchanged")
}

func TestEmpty_WindowSizeMsg(t *testing.T) {
	next, cmd := New("").Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	updated := next.(Model)
	assert.Equal(t, 80, updated.width)
	assert.Equal(t, 24, updated.height)
	assert.Nil(t, cmd)
}

func TestEmpty_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"q key", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := New("").SetSize(80, 24).Update(tt.key)
			if assert.NotNil(t, cmd, "expected quit command") {
				_, isQuit := cmd().(tea.QuitMsg)
				assert.True(t, isQuit, "expected tea.QuitMsg")
			}
		})
	}
}

func TestEmpty_OtherKeyMsg(t *testing.T) {
	_, cmd := New("").SetSize(80, 24).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)
}

func TestEmpty_EmptyDimensions(t *testing.T) {
	for _, size := range [][2]int{{0, 24}, {80, 0}, {0, 0}} {
		assert.Equal(t, "", New("").SetSize(size[0], size[1]).View())
	}
}

func TestEmpty_View(t *testing.T) {
	view := New("/home/me/.config/breathe/exercises").SetSize(100, 30).View()

	assert.Contains(t, view, "No breathing exercises are available.")
	assert.Contains(t, view, "/home/me/.config/breathe/exercises")
	assert.Contains(t, view, "Press q to quit")
	assert.Equal(t, view, New("/home/me/.config/breathe/exercises").SetSize(100, 30).View(), "expected stable output")
}

func TestEmpty_Program(t *testing.T) {
	tm := teatest.NewTestModel(t, New("/tmp/ex"), teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Press q to quit"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
