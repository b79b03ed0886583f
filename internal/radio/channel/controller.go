package channel

import (
	"context"
	"errors"
	"sync"
	"time"

	"airadio/internal/radio/audio"

	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("channel closed")

// Outcome is how a Play call ended.
type Outcome int

const (
	Finished Outcome = iota
	Stopped
)

func (o Outcome) String() string {
	if o == Finished {
		return "finished"
	}
	return "stopped"
}

// CancelFunc cancels a fade, leaving the gain where it got to.
type CancelFunc func()

const (
	DefaultStep = 20 * time.Millisecond
	fadeGrace   = 250 * time.Millisecond
)

type Options struct {
	Step   time.Duration
	Curve  Curve
	Logger *logrus.Entry
}

type fade struct {
	stop chan struct{}
}

type result struct {
	outcome Outcome
	err     error
}

type playback struct {
	done chan result
	once sync.Once
}

func (p *playback) resolve(o Outcome, err error) {
	p.once.Do(func() {
		p.done <- result{outcome: o, err: err}
	})
}

// Controller owns one sink and its gain. The effective gain handed to the
// sink is the fade gain scaled by the base volume.
type Controller struct {
	name  string
	sink  Sink
	step  time.Duration
	curve Curve
	log   *logrus.Entry

	mu      sync.Mutex
	res     audio.Resource
	gain    float64
	base    float64
	fade    *fade
	current *playback
	fades   int
	closed  bool
	wg      sync.WaitGroup
}

func NewController(name string, sink Sink, opts Options) *Controller {
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	if opts.Curve == nil {
		opts.Curve = Linear
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Controller{
		name:  name,
		sink:  sink,
		step:  opts.Step,
		curve: opts.Curve,
		log:   opts.Logger.WithField("channel", name),
		base:  1,
	}
}

func (c *Controller) Name() string { return c.name }

// Load binds res to the sink, replacing and releasing whatever was there.
// Any running fade is cancelled and the gain starts again from silence.
func (c *Controller) Load(res audio.Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelFadeLocked()
	c.stopLocked()
	c.setGainLocked(0)

	err := ErrClosed
	if !c.closed {
		err = c.sink.Bind(res)
	}
	if err != nil {
		if rerr := res.Release(); rerr != nil {
			c.log.WithError(rerr).Warn("failed to release resource")
		}
		return &ResourceError{Channel: c.name, Resource: res.Name(), Err: err}
	}
	c.res = res
	return nil
}

// Play starts the loaded resource and blocks until it finishes, is stopped,
// or ctx is done. A PlaybackError comes back together with Stopped.
func (c *Controller) Play(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.res == nil || c.closed {
		c.mu.Unlock()
		return Stopped, nil
	}
	if c.current != nil {
		c.sink.Halt()
		c.current.resolve(Stopped, nil)
	}
	p := &playback{done: make(chan result, 1)}
	c.current = p
	name := c.res.Name()
	c.sink.Start(func(err error) { c.finish(p, name, err) })
	c.mu.Unlock()

	select {
	case r := <-p.done:
		return r.outcome, r.err
	case <-ctx.Done():
	}

	c.mu.Lock()
	if c.current == p {
		c.stopLocked()
	}
	c.mu.Unlock()

	r := <-p.done
	return r.outcome, r.err
}

func (c *Controller) finish(p *playback, name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != p {
		return
	}
	c.current = nil
	if err != nil {
		p.resolve(Stopped, &PlaybackError{Channel: c.name, Resource: name, Err: err})
		return
	}
	p.resolve(Finished, nil)
}

// Stop fades to silence over fadeOut (if positive and something is playing),
// then halts the sink and releases the resource. It always returns.
func (c *Controller) Stop(ctx context.Context, fadeOut time.Duration) {
	if fadeOut > 0 && c.Playing() {
		done := make(chan struct{})
		c.FadeTo(0, fadeOut, func() { close(done) })

		timer := time.NewTimer(fadeOut + fadeGrace)
		select {
		case <-done:
		case <-ctx.Done():
		case <-timer.C:
		}
		timer.Stop()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelFadeLocked()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	c.sink.Halt()
	if c.current != nil {
		c.current.resolve(Stopped, nil)
		c.current = nil
	}
	if c.res != nil {
		if err := c.res.Release(); err != nil {
			c.log.WithError(err).Warn("failed to release resource")
		}
		c.res = nil
	}
}

// FadeTo ramps the gain from its current value to target over d, replacing
// any fade already running. onComplete runs only if the fade reaches target.
func (c *Controller) FadeTo(target float64, d time.Duration, onComplete func()) CancelFunc {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelFadeLocked()
	target = clamp01(target)

	if c.closed {
		return func() {}
	}
	if d <= 0 {
		c.setGainLocked(target)
		if onComplete != nil {
			go onComplete()
		}
		return func() {}
	}

	f := &fade{stop: make(chan struct{})}
	c.fade = f
	c.fades++
	c.wg.Add(1)
	go c.runFade(f, c.gain, target, d, onComplete)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.fade == f {
			c.cancelFadeLocked()
		}
	}
}

func (c *Controller) runFade(f *fade, from, to float64, d time.Duration, onComplete func()) {
	defer func() {
		c.mu.Lock()
		c.fades--
		c.mu.Unlock()
		c.wg.Done()
	}()

	ticker := time.NewTicker(c.step)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-f.stop:
			return
		case now := <-ticker.C:
			t := float64(now.Sub(start)) / float64(d)
			if t > 1 {
				t = 1
			}

			c.mu.Lock()
			if c.fade != f {
				c.mu.Unlock()
				return
			}
			c.setGainLocked(from + (to-from)*c.curve(t))
			if t < 1 {
				c.mu.Unlock()
				continue
			}
			c.fade = nil
			c.mu.Unlock()

			if onComplete != nil {
				onComplete()
			}
			return
		}
	}
}

func (c *Controller) cancelFadeLocked() {
	if c.fade != nil {
		close(c.fade.stop)
		c.fade = nil
	}
}

func (c *Controller) setGainLocked(g float64) {
	c.gain = g
	c.sink.SetGain(g * c.base)
}

// SetBaseVolume sets the volume ceiling every fade is scaled by.
func (c *Controller) SetBaseVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = clamp01(v)
	c.sink.SetGain(c.gain * c.base)
}

func (c *Controller) BaseVolume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base
}

// Gain is the fade gain before the base volume is applied.
func (c *Controller) Gain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gain
}

func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Outstanding counts running fades plus an unresolved Play.
func (c *Controller) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.fades
	if c.current != nil {
		n++
	}
	return n
}

// Close stops the channel, waits for fade goroutines to exit and closes the sink.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	c.cancelFadeLocked()
	c.stopLocked()
	c.mu.Unlock()

	c.wg.Wait()
	return c.sink.Close()
}
