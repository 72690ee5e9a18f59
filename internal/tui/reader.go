// Package tui is a terminal chapter reader with read-aloud controls.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrlokans/fellowship/internal/content"
	"github.com/mrlokans/fellowship/internal/readaloud"
)

const eventBuffer = 16

// Player is the read-aloud surface the reader drives.
type Player interface {
	Start(verses []string) bool
	Pause() bool
	Resume() bool
	Restart() bool
	Next() bool
	Previous() bool
	Reset()
	State() readaloud.State
	Subscribe(l readaloud.Listener) func()
}

type playerEventMsg readaloud.Event

type readerModel struct {
	bible  *content.Bible
	player Player
	events chan readaloud.Event
	cancel func()

	pos     content.Position
	book    content.BookInfo
	verses  []string
	offsets []int
	state   readaloud.State

	viewport viewport.Model
	width    int
	height   int
	status   string
}

var (
	teaNewProgram = tea.NewProgram
	runProgram    = func(program *tea.Program) (tea.Model, error) { return program.Run() }
)

// Run opens the reader at pos and blocks until the user quits.
// Playback is stopped on exit.
func Run(bible *content.Bible, player Player, pos content.Position) error {
	model, err := newReaderModel(bible, player, pos)
	if err != nil {
		return err
	}
	defer model.close()

	program := teaNewProgram(model, tea.WithAltScreen())
	_, err = runProgram(program)
	return err
}

func newReaderModel(bible *content.Bible, player Player, pos content.Position) (readerModel, error) {
	m := readerModel{
		bible:    bible,
		player:   player,
		events:   make(chan readaloud.Event, eventBuffer),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	events := m.events
	m.cancel = player.Subscribe(func(e readaloud.Event) {
		select {
		case events <- e:
		default:
			// Reader is behind; the next event carries fresh state.
		}
	})
	if err := m.load(pos); err != nil {
		m.cancel()
		return readerModel{}, err
	}
	return m, nil
}

func (m readerModel) close() {
	m.player.Reset()
	m.cancel()
}

func waitForEvent(events <-chan readaloud.Event) tea.Cmd {
	return func() tea.Msg {
		return playerEventMsg(<-events)
	}
}

func (m readerModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m readerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = clamp(msg.Height-4, 3, msg.Height)
		m.render()
		return m, nil
	case playerEventMsg:
		m.state = m.player.State()
		m.render()
		// Events may have been dropped, so follow the verse being spoken.
		target := msg.ScrollTo
		if m.state.Status == readaloud.Speaking {
			target = m.state.Index
		}
		if target >= 0 {
			m.scrollTo(target)
		}
		return m, waitForEvent(m.events)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m readerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.player.Reset()
		return m, tea.Quit
	case " ", "enter":
		switch m.player.State().Status {
		case readaloud.Speaking:
			m.player.Pause()
		case readaloud.Paused:
			m.player.Resume()
		default:
			m.player.Start(m.verses)
		}
	case "n", "right":
		m.player.Next()
	case "p", "left":
		m.player.Previous()
	case "r":
		m.player.Restart()
	case "s":
		m.player.Reset()
	case "]":
		if next, ok := m.bible.NextChapter(m.pos); ok {
			m.changeChapter(next)
		}
	case "[":
		if prev, ok := m.bible.PrevChapter(m.pos); ok {
			m.changeChapter(prev)
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	m.state = m.player.State()
	m.render()
	return m, nil
}

func (m *readerModel) changeChapter(pos content.Position) {
	m.player.Reset()
	if err := m.load(pos); err != nil {
		m.status = err.Error()
		return
	}
	m.viewport.GotoTop()
}

func (m *readerModel) load(pos content.Position) error {
	verses, err := m.bible.Chapter(pos)
	if err != nil {
		return err
	}
	book, err := m.bible.Book(pos.Book)
	if err != nil {
		return err
	}
	m.pos = pos
	m.book = book
	m.verses = verses
	m.state = m.player.State()
	m.status = ""
	m.render()
	return nil
}

// render lays the chapter out in the viewport and records the first line
// of each verse.
func (m *readerModel) render() {
	width := clamp(m.viewport.Width-2, 10, m.viewport.Width)
	numberStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	verseStyle := lipgloss.NewStyle().Width(width)
	currentStyle := verseStyle.Foreground(lipgloss.Color("205")).Bold(true)

	active := m.state.Status != readaloud.Idle
	blocks := make([]string, len(m.verses))
	m.offsets = make([]int, len(m.verses))
	line := 0
	for i, verse := range m.verses {
		style := verseStyle
		if active && i == m.state.Index {
			style = currentStyle
		}
		blocks[i] = style.Render(numberStyle.Render(fmt.Sprintf("%d ", i+1)) + verse)
		m.offsets[i] = line
		line += lipgloss.Height(blocks[i])
	}
	m.viewport.SetContent(strings.Join(blocks, "\n"))
}

func (m *readerModel) scrollTo(verse int) {
	if verse < 0 || verse >= len(m.offsets) {
		return
	}
	m.viewport.SetYOffset(m.offsets[verse])
}

func (m readerModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).
		Render(fmt.Sprintf("%s %d", m.book.Name, m.pos.Chapter+1))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		m.renderStatusBar(),
	)
}

func (m readerModel) renderStatusBar() string {
	style := lipgloss.NewStyle().Width(m.width).Foreground(lipgloss.Color("241"))
	status := m.status
	if status == "" {
		status = playbackLabel(m.state)
	}
	help := "space play/pause  n/p verse  r restart  s stop  [/] chapter  q quit"
	return style.Render(status + "\n" + help)
}

func playbackLabel(s readaloud.State) string {
	switch s.Status {
	case readaloud.Speaking:
		return fmt.Sprintf("Reading verse %d of %d", s.Index+1, s.Total)
	case readaloud.Paused:
		return fmt.Sprintf("Paused at verse %d of %d", s.Index+1, s.Total)
	default:
		return "Stopped"
	}
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
