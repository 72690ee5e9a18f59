package readaloud

// Options are passed to the speech engine with every utterance.
type Options struct {
	Language string
	Rate     float64
	Pitch    float64
}

// Callbacks report the outcome of one utterance. OnStart fires at most once,
// then exactly one of OnDone or OnError, unless the utterance is stopped, in
// which case neither terminal callback is guaranteed.
type Callbacks struct {
	OnStart func()
	OnDone  func()
	OnError func(err error)
}

// Speaker is a text-to-speech engine that speaks one utterance at a time.
//
// Implementations must not invoke callbacks synchronously from Speak or
// Stop; the controller holds its lock across both calls.
type Speaker interface {
	Speak(text string, opts Options, cb Callbacks)
	Stop()
}
