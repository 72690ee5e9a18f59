// Package speech adapts platform text-to-speech programs to the
// readaloud.Speaker interface.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mrlokans/fellowship/internal/readaloud"
)

// ErrNoEngine indicates no speech program was configured or found on PATH.
var ErrNoEngine = errors.New("no text-to-speech program found")

// Engines probed, in order, when no command is configured.
var knownEngines = []string{"espeak-ng", "espeak", "say"}

const (
	baseWordsPerMinute = 175
	basePitch          = 50
)

// Config selects the speech program. Args may contain the placeholders
// {text}, {lang}, {rate}, {wpm} and {pitch}. Empty Args selects defaults
// for the known engines.
type Config struct {
	Command string
	Args    []string
}

// CommandSpeaker speaks each utterance by running an external program.
type CommandSpeaker struct {
	command string
	args    []string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommandSpeaker resolves the configured program, or the first known
// engine on PATH when none is configured.
func NewCommandSpeaker(cfg Config) (*CommandSpeaker, error) {
	command := cfg.Command
	if command == "" {
		for _, name := range knownEngines {
			if _, err := exec.LookPath(name); err == nil {
				command = name
				break
			}
		}
		if command == "" {
			return nil, ErrNoEngine
		}
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("speech command %q: %w", command, err)
	}

	args := cfg.Args
	if len(args) == 0 {
		args = DefaultArgs(command)
	}

	return &CommandSpeaker{command: path, args: args}, nil
}

// DefaultArgs returns the argument template for a known engine.
func DefaultArgs(command string) []string {
	switch filepath.Base(command) {
	case "say":
		return []string{"-r", "{wpm}", "{text}"}
	case "espeak", "espeak-ng":
		return []string{"-v", "{lang}", "-s", "{wpm}", "-p", "{pitch}", "{text}"}
	default:
		return []string{"{text}"}
	}
}

// Speak starts the program for text, cancelling any utterance in progress.
// Callbacks run on a separate goroutine and are skipped for cancelled
// utterances.
func (s *CommandSpeaker) Speak(text string, opts readaloud.Options, cb readaloud.Callbacks) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx, ExpandArgs(s.args, text, opts), cb)
}

// Stop cancels the utterance in progress without waiting for it to exit.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *CommandSpeaker) run(ctx context.Context, args []string, cb readaloud.Callbacks) {
	cmd := exec.CommandContext(ctx, s.command, args...)
	if err := cmd.Start(); err != nil {
		if ctx.Err() == nil && cb.OnError != nil {
			cb.OnError(fmt.Errorf("failed to start %s: %w", s.command, err))
		}
		return
	}
	if cb.OnStart != nil {
		cb.OnStart()
	}

	err := cmd.Wait()
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Printf("Speech: %s exited with error: %v", filepath.Base(s.command), err)
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return
	}
	if cb.OnDone != nil {
		cb.OnDone()
	}
}

// ExpandArgs substitutes utterance values into an argument template.
func ExpandArgs(template []string, text string, opts readaloud.Options) []string {
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	rate := opts.Rate
	if rate <= 0 {
		rate = 1.0
	}
	pitch := opts.Pitch
	if pitch <= 0 {
		pitch = 1.0
	}

	r := strings.NewReplacer(
		"{text}", text,
		"{lang}", lang,
		"{rate}", strconv.FormatFloat(rate, 'f', 2, 64),
		"{wpm}", strconv.Itoa(int(math.Round(baseWordsPerMinute*rate))),
		"{pitch}", strconv.Itoa(clampPitch(int(math.Round(basePitch*pitch)))),
	)

	args := make([]string, len(template))
	for i, arg := range template {
		args[i] = r.Replace(arg)
	}
	return args
}

func clampPitch(p int) int {
	return max(0, min(p, 99))
}
