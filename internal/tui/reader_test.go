package tui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/fellowship/internal/content"
	"github.com/mrlokans/fellowship/internal/readaloud"
)

type silentSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (s *silentSpeaker) Speak(text string, opts readaloud.Options, cb readaloud.Callbacks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
}

func (s *silentSpeaker) Stop() {}

func newTestReader(t *testing.T, pos content.Position) (readerModel, *readaloud.Controller) {
	t.Helper()
	bible, err := content.DefaultBible()
	require.NoError(t, err)

	player := readaloud.NewController(&silentSpeaker{}, readaloud.Options{})
	m, err := newReaderModel(bible, player, pos)
	require.NoError(t, err)
	t.Cleanup(m.close)
	return m, player
}

func press(m readerModel, key string) (readerModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	return updated.(readerModel), cmd
}

func TestNewReaderModel(t *testing.T) {
	m, _ := newTestReader(t, content.Position{Book: 0, Chapter: 0})

	assert.Equal(t, "Genesis", m.book.Name)
	assert.Len(t, m.verses, 5)
	assert.Len(t, m.offsets, 5)
	assert.Contains(t, m.View(), "Genesis 1")
	assert.Contains(t, m.View(), "Stopped")
}

func TestNewReaderModel_InvalidPosition(t *testing.T) {
	bible, err := content.DefaultBible()
	require.NoError(t, err)

	player := readaloud.NewController(&silentSpeaker{}, readaloud.Options{})
	_, err = newReaderModel(bible, player, content.Position{Book: 0, Chapter: 9})
	assert.ErrorIs(t, err, content.ErrChapterNotFound)
}

func TestReader_PlayPauseResume(t *testing.T) {
	m, player := newTestReader(t, content.Position{Book: 0, Chapter: 0})

	m, _ = press(m, " ")
	assert.Equal(t, readaloud.Speaking, player.State().Status)
	assert.Contains(t, m.View(), "Reading verse 1 of 5")

	m, _ = press(m, "n")
	assert.Equal(t, 1, player.State().Index)

	m, _ = press(m, " ")
	assert.Equal(t, readaloud.Paused, player.State().Status)
	assert.Contains(t, m.View(), "Paused at verse 2 of 5")

	m, _ = press(m, " ")
	assert.Equal(t, readaloud.Speaking, player.State().Status)
	assert.Equal(t, 1, player.State().Index)

	m, _ = press(m, "p")
	m, _ = press(m, "p")
	assert.Equal(t, 0, player.State().Index)

	_, _ = press(m, "s")
	assert.Equal(t, readaloud.Idle, player.State().Status)
}

func TestReader_PlayerEvents(t *testing.T) {
	m, player := newTestReader(t, content.Position{Book: 0, Chapter: 0})

	player.Start(m.verses)
	msg := m.Init()()
	event, ok := msg.(playerEventMsg)
	require.True(t, ok)
	assert.Equal(t, 0, event.ScrollTo)

	updated, cmd := m.Update(msg)
	m = updated.(readerModel)
	assert.NotNil(t, cmd)
	assert.Equal(t, readaloud.Speaking, m.state.Status)
	assert.Equal(t, 0, m.state.Index)
}

func TestReader_ChapterChangeStopsPlayback(t *testing.T) {
	m, player := newTestReader(t, content.Position{Book: 0, Chapter: 1})

	m, _ = press(m, " ")
	require.Equal(t, readaloud.Speaking, player.State().Status)

	m, _ = press(m, "]")
	assert.Equal(t, readaloud.Idle, player.State().Status)
	assert.Equal(t, content.Position{Book: 1, Chapter: 0}, m.pos)
	assert.Contains(t, m.View(), "Psalms 1")

	m, _ = press(m, "[")
	assert.Equal(t, content.Position{Book: 0, Chapter: 1}, m.pos)

	m, _ = press(m, "[")
	m, _ = press(m, "[")
	assert.Equal(t, content.Position{Book: 0, Chapter: 0}, m.pos)
}

func TestReader_Quit(t *testing.T) {
	m, player := newTestReader(t, content.Position{Book: 2, Chapter: 0})

	m, _ = press(m, " ")
	require.Equal(t, readaloud.Speaking, player.State().Status)

	_, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, readaloud.Idle, player.State().Status)
}

func TestReader_WindowSize(t *testing.T) {
	m, _ := newTestReader(t, content.Position{Book: 0, Chapter: 0})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	m = updated.(readerModel)
	assert.Equal(t, 40, m.viewport.Width)
	assert.Equal(t, 8, m.viewport.Height)
	assert.Len(t, m.offsets, 5)
}

func TestRun(t *testing.T) {
	bible, err := content.DefaultBible()
	require.NoError(t, err)
	player := readaloud.NewController(&silentSpeaker{}, readaloud.Options{})

	origNew, origRun := teaNewProgram, runProgram
	t.Cleanup(func() {
		teaNewProgram, runProgram = origNew, origRun
	})
	teaNewProgram = func(m tea.Model, opts ...tea.ProgramOption) *tea.Program {
		return tea.NewProgram(m)
	}
	runProgram = func(program *tea.Program) (tea.Model, error) {
		return nil, nil
	}

	require.NoError(t, Run(bible, player, content.Position{}))
	assert.Equal(t, readaloud.Idle, player.State().Status)
}

func TestPlaybackLabel(t *testing.T) {
	assert.Equal(t, "Stopped", playbackLabel(readaloud.State{Status: readaloud.Idle, Index: -1}))
	assert.Equal(t, "Reading verse 3 of 4", playbackLabel(readaloud.State{Status: readaloud.Speaking, Index: 2, Total: 4}))
	assert.Equal(t, "Paused at verse 1 of 4", playbackLabel(readaloud.State{Status: readaloud.Paused, Index: 0, Total: 4}))
}

func TestReader_FollowsSpokenVerseWhenScrollIsMissed(t *testing.T) {
	m, player := newTestReader(t, content.Position{Book: 0, Chapter: 0})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m = updated.(readerModel)

	player.Start(m.verses)
	for i := 0; i < 4; i++ {
		player.Next()
	}
	require.Equal(t, 4, player.State().Index)

	// An event whose scroll target was lost with earlier dropped events.
	updated, _ = m.Update(playerEventMsg{State: player.State(), ScrollTo: -1})
	m = updated.(readerModel)

	assert.Equal(t, 4, m.state.Index)
	assert.Greater(t, m.viewport.YOffset, 0)
}
