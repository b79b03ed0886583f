package channel

import "airadio/internal/radio/audio"

// Sink is the output path a Controller drives. Only the owning Controller
// talks to a sink.
//
// Start must report the end of playback through done from another
// goroutine, exactly once, and not at all after Halt.
type Sink interface {
	Bind(res audio.Resource) error
	Start(done func(err error))
	Halt()
	SetGain(g float64)
	Close() error
}
