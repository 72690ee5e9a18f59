// Package readaloud sequences speech over the verses of a chapter.
//
// A Controller speaks one verse at a time and advances when the speaker
// reports the utterance done. Each utterance carries a generation number;
// completions from an utterance that has since been stopped or replaced
// are discarded, so a late callback can never move playback.
package readaloud

import (
	"fmt"
	"log"
	"sync"

	"github.com/mrlokans/fellowship/internal/metrics"
)

// Status is the playback state of a Controller.
type Status int

const (
	Idle Status = iota
	Speaking
	Paused
)

func (s Status) String() string {
	switch s {
	case Speaking:
		return "speaking"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// MarshalText renders the status as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is a snapshot of the controller. Index is -1 while idle.
type State struct {
	Status Status `json:"status"`
	Index  int    `json:"current_index"`
	Total  int    `json:"total"`
}

// Event is delivered to listeners after every transition. ScrollTo is the
// verse the view should scroll to, or -1 when the transition did not start
// an utterance.
type Event struct {
	State    State
	ScrollTo int
}

// Listener observes controller transitions. Listeners run on the goroutine
// that caused the transition, after the controller lock is released.
type Listener func(Event)

// Utterance renders the text spoken for the verse at index i.
func Utterance(i int, text string) string {
	return fmt.Sprintf("Verse %d. %s", i+1, text)
}

// Controller drives a Speaker over an ordered list of verses.
type Controller struct {
	speaker Speaker
	opts    Options

	mu         sync.Mutex
	verses     []string
	status     Status
	index      int
	generation uint64
	nextID     int
	listeners  map[int]Listener
}

// NewController creates an idle controller.
func NewController(speaker Speaker, opts Options) *Controller {
	return &Controller{
		speaker:   speaker,
		opts:      opts,
		index:     -1,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Verses returns a copy of the loaded verses.
func (c *Controller) Verses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.verses...)
}

// Start loads verses and speaks the first one, stopping any current
// session. It does nothing when verses is empty.
func (c *Controller) Start(verses []string) bool {
	if len(verses) == 0 {
		return false
	}
	return c.transition(func() (Event, bool) {
		if c.status != Idle {
			c.speaker.Stop()
		}
		c.verses = append([]string(nil), verses...)
		return c.speakLocked(0), true
	})
}

// Pause stops the current utterance. Resume speaks the verse again from
// its beginning.
func (c *Controller) Pause() bool {
	return c.transition(func() (Event, bool) {
		if c.status != Speaking {
			return Event{}, false
		}
		c.generation++
		c.speaker.Stop()
		c.status = Paused
		return c.eventLocked(-1), true
	})
}

// Resume speaks the paused verse.
func (c *Controller) Resume() bool {
	return c.transition(func() (Event, bool) {
		if c.status != Paused {
			return Event{}, false
		}
		return c.speakLocked(c.index), true
	})
}

// Restart speaks the chapter again from the first verse.
func (c *Controller) Restart() bool {
	return c.jump(func(int) int { return 0 })
}

// Next moves to the following verse. At the last verse it speaks the last
// verse again.
func (c *Controller) Next() bool {
	return c.jump(func(i int) int { return i + 1 })
}

// Previous moves to the preceding verse. At the first verse it speaks the
// first verse again.
func (c *Controller) Previous() bool {
	return c.jump(func(i int) int { return i - 1 })
}

// Stop ends the session from any state.
func (c *Controller) Stop() {
	c.transition(func() (Event, bool) {
		c.stopLocked()
		return c.eventLocked(-1), true
	})
}

// Reset forces the controller idle because the chapter selection changed
// or the reading view was left.
func (c *Controller) Reset() {
	c.Stop()
}

func (c *Controller) jump(move func(int) int) bool {
	return c.transition(func() (Event, bool) {
		if c.status == Idle {
			return Event{}, false
		}
		c.speaker.Stop()
		return c.speakLocked(clamp(move(c.index), 0, len(c.verses)-1)), true
	})
}

func (c *Controller) onStart(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		log.Printf("Read-aloud: speaking verse %d of %d", c.index+1, len(c.verses))
	}
}

func (c *Controller) onDone(gen uint64) {
	c.transition(func() (Event, bool) {
		if gen != c.generation || c.status != Speaking {
			metrics.RecordStaleCallback()
			return Event{}, false
		}
		metrics.RecordUtterance("done")

		if c.index+1 < len(c.verses) {
			return c.speakLocked(c.index + 1), true
		}
		c.stopLocked()
		return c.eventLocked(-1), true
	})
}

func (c *Controller) onError(gen uint64, err error) {
	c.transition(func() (Event, bool) {
		if gen != c.generation || c.status != Speaking {
			metrics.RecordStaleCallback()
			return Event{}, false
		}
		metrics.RecordUtterance("error")
		log.Printf("Read-aloud: speech failed on verse %d, stopping: %v", c.index+1, err)

		c.stopLocked()
		return c.eventLocked(-1), true
	})
}

// transition runs fn under the lock and, when fn reports a change,
// notifies listeners after unlocking.
func (c *Controller) transition(fn func() (Event, bool)) bool {
	c.mu.Lock()
	event, changed := fn()
	var listeners []Listener
	if changed {
		listeners = make([]Listener, 0, len(c.listeners))
		for _, l := range c.listeners {
			listeners = append(listeners, l)
		}
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
	return changed
}

func (c *Controller) speakLocked(i int) Event {
	c.generation++
	gen := c.generation
	c.status = Speaking
	c.index = i

	c.speaker.Speak(Utterance(i, c.verses[i]), c.opts, Callbacks{
		OnStart: func() { c.onStart(gen) },
		OnDone:  func() { c.onDone(gen) },
		OnError: func(err error) { c.onError(gen, err) },
	})
	return c.eventLocked(i)
}

func (c *Controller) stopLocked() {
	c.generation++
	c.speaker.Stop()
	c.status = Idle
	c.index = -1
}

func (c *Controller) stateLocked() State {
	return State{Status: c.status, Index: c.index, Total: len(c.verses)}
}

func (c *Controller) eventLocked(scrollTo int) Event {
	return Event{State: c.stateLocked(), ScrollTo: scrollTo}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
