package channel

import (
	"errors"
	"sync"
	"time"

	"airadio/internal/radio/audio"
)

// VirtualSink plays nothing. A bound resource "plays" for its decoded length
// divided by speed, which makes it useful for dry runs and tests.
type VirtualSink struct {
	name  string
	speed float64

	mu     sync.Mutex
	res    audio.Resource
	length time.Duration
	timer  *time.Timer
	gen    uint64
	gain   float64
	gains  []float64
	binds  []string
	starts []string
}

func NewVirtualSink(name string, speed float64) *VirtualSink {
	if speed <= 0 {
		speed = 1
	}
	return &VirtualSink{name: name, speed: speed}
}

func (s *VirtualSink) Bind(res audio.Resource) error {
	d, err := audio.Duration(res)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.haltLocked()
	s.res = res
	s.length = time.Duration(float64(d) / s.speed)
	s.binds = append(s.binds, res.Name())
	return nil
}

func (s *VirtualSink) Start(done func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.res == nil {
		go done(errors.New("nothing bound"))
		return
	}
	s.starts = append(s.starts, s.res.Name())
	s.timer = time.AfterFunc(s.length, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		done(nil)
	})
}

func (s *VirtualSink) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.haltLocked()
}

func (s *VirtualSink) haltLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *VirtualSink) SetGain(g float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = g
	s.gains = append(s.gains, g)
}

func (s *VirtualSink) Close() error {
	s.Halt()
	return nil
}

// Gain is the effective gain last applied.
func (s *VirtualSink) Gain() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

// Gains returns every gain applied since creation, in order.
func (s *VirtualSink) Gains() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.gains...)
}

// Binds returns the names of all resources bound so far.
func (s *VirtualSink) Binds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.binds...)
}

// Starts returns the names of all resources started so far.
func (s *VirtualSink) Starts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.starts...)
}

func (s *VirtualSink) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
