package channel

import (
	"fmt"
	"math"
	"sync"
	"time"

	"airadio/internal/radio/audio"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

var (
	speakerOnce sync.Once
	speakerErr  error
	speakerRate beep.SampleRate
)

// InitSpeaker opens the audio device. The device is shared by every
// SpeakerSink in the process, so only the first rate wins.
func InitSpeaker(rate beep.SampleRate) error {
	speakerOnce.Do(func() {
		speakerRate = rate
		speakerErr = speaker.Init(rate, rate.N(time.Second/10))
	})
	return speakerErr
}

// SpeakerSink plays through the beep speaker mixer.
type SpeakerSink struct {
	name string

	mu     sync.Mutex
	stream beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	volume *effects.Volume
	gain   float64
	gen    uint64
}

func NewSpeakerSink(name string, rate beep.SampleRate) (*SpeakerSink, error) {
	if err := InitSpeaker(rate); err != nil {
		return nil, fmt.Errorf("failed to initialise speaker: %w", err)
	}
	return &SpeakerSink{name: name}, nil
}

func (s *SpeakerSink) Bind(res audio.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.haltLocked()
	stream, format, err := res.Open()
	if err != nil {
		return err
	}
	s.stream = stream
	s.format = format
	return nil
}

func (s *SpeakerSink) Start(done func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	stream := s.stream
	if stream == nil {
		go done(nil)
		return
	}

	var src beep.Streamer = stream
	if s.format.SampleRate != speakerRate {
		src = beep.Resample(4, s.format.SampleRate, speakerRate, stream)
	}
	s.volume = &effects.Volume{Streamer: src, Base: 2}
	applyGain(s.volume, s.gain)
	s.ctrl = &beep.Ctrl{Streamer: s.volume}

	// The callback runs inside the mixer with the speaker lock held.
	speaker.Play(beep.Seq(s.ctrl, beep.Callback(func() {
		go s.ended(gen, stream, done)
	})))
}

func (s *SpeakerSink) ended(gen uint64, stream beep.StreamSeekCloser, done func(error)) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	err := stream.Err()
	s.mu.Unlock()
	done(err)
}

func (s *SpeakerSink) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.haltLocked()
}

func (s *SpeakerSink) haltLocked() {
	s.gen++
	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Streamer = nil
		speaker.Unlock()
		s.ctrl = nil
		s.volume = nil
	}
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
}

func (s *SpeakerSink) SetGain(g float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gain = g
	if s.volume != nil {
		speaker.Lock()
		applyGain(s.volume, g)
		speaker.Unlock()
	}
}

func (s *SpeakerSink) Close() error {
	s.Halt()
	return nil
}

// applyGain maps a linear gain onto the base-2 exponent effects.Volume uses.
func applyGain(v *effects.Volume, g float64) {
	if g <= 0.001 {
		v.Silent = true
		return
	}
	v.Silent = false
	v.Volume = math.Log2(g)
}
