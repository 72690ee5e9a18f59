package speech

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/fellowship/internal/readaloud"
)

// SilentSpeaker produces no audio. Each utterance completes after the time
// it would take to read at the configured pace, so playback still advances
// on hosts without a speech engine.
type SilentSpeaker struct {
	wordsPerMinute int

	mu    sync.Mutex
	timer *time.Timer
}

// NewSilentSpeaker creates a speaker that paces utterances at the base
// reading rate.
func NewSilentSpeaker() *SilentSpeaker {
	return &SilentSpeaker{wordsPerMinute: baseWordsPerMinute}
}

func (s *SilentSpeaker) Speak(text string, opts readaloud.Options, cb readaloud.Callbacks) {
	rate := opts.Rate
	if rate <= 0 {
		rate = 1.0
	}
	words := len(strings.Fields(text))
	duration := time.Duration(float64(words) / (float64(s.wordsPerMinute) * rate) * float64(time.Minute))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}

	log.Printf("Speech: (silent) %s", text)
	var t *time.Timer
	t = time.AfterFunc(duration, func() {
		s.mu.Lock()
		current := s.timer == t
		if current {
			s.timer = nil
		}
		s.mu.Unlock()
		if !current {
			return
		}
		if cb.OnStart != nil {
			cb.OnStart()
		}
		if cb.OnDone != nil {
			cb.OnDone()
		}
	})
	s.timer = t
}

func (s *SilentSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// New returns a CommandSpeaker for cfg, or a SilentSpeaker when no speech
// program is available.
func New(cfg Config) readaloud.Speaker {
	speaker, err := NewCommandSpeaker(cfg)
	if err != nil {
		log.Printf("Speech: %v, reading silently", err)
		return NewSilentSpeaker()
	}
	log.Printf("Speech: using %s", speaker.command)
	return speaker
}
