package channel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"airadio/internal/radio/audio"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFormat = beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}

func newTestController(t *testing.T) (*Controller, *VirtualSink) {
	t.Helper()
	sink := NewVirtualSink("test", 1)
	c := NewController("test", sink, Options{Step: 5 * time.Millisecond})
	t.Cleanup(func() { c.Close() })
	return c, sink
}

func clip(name string, d time.Duration) audio.Resource {
	return audio.Silence(name, testFormat, d)
}

type brokenResource struct{ released bool }

func (b *brokenResource) Name() string { return "broken" }
func (b *brokenResource) Open() (beep.StreamSeekCloser, beep.Format, error) {
	return nil, beep.Format{}, errors.New("corrupt header")
}
func (b *brokenResource) Release() error {
	b.released = true
	return nil
}

func TestPlayFinishes(t *testing.T) {
	c, sink := newTestController(t)
	require.NoError(t, c.Load(clip("a", 30*time.Millisecond)))

	outcome, err := c.Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Finished, outcome)
	assert.Equal(t, []string{"a"}, sink.Starts())
	assert.False(t, c.Playing())
}

func TestPlayWithoutResourceResolvesStopped(t *testing.T) {
	c, _ := newTestController(t)

	outcome, err := c.Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stopped, outcome)
}

func TestStopResolvesPendingPlay(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.Load(clip("long", time.Minute)))

	done := make(chan Outcome, 1)
	go func() {
		o, _ := c.Play(context.Background())
		done <- o
	}()
	require.Eventually(t, c.Playing, time.Second, time.Millisecond)

	c.Stop(context.Background(), 0)

	select {
	case o := <-done:
		assert.Equal(t, Stopped, o)
	case <-time.After(time.Second):
		t.Fatal("play did not resolve after stop")
	}
	assert.Equal(t, 0, c.Outstanding())
}

func TestPlayContextCancel(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.Load(clip("long", time.Minute)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	outcome, err := c.Play(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stopped, outcome)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLoadReplacesPendingPlay(t *testing.T) {
	c, sink := newTestController(t)
	require.NoError(t, c.Load(clip("first", time.Minute)))

	done := make(chan Outcome, 1)
	go func() {
		o, _ := c.Play(context.Background())
		done <- o
	}()
	require.Eventually(t, c.Playing, time.Second, time.Millisecond)

	require.NoError(t, c.Load(clip("second", time.Minute)))
	assert.Equal(t, Stopped, <-done)
	assert.Equal(t, []string{"first", "second"}, sink.Binds())
	assert.Equal(t, 0.0, c.Gain())
}

func TestLoadBrokenResource(t *testing.T) {
	c, sink := newTestController(t)
	res := &brokenResource{}

	err := c.Load(res)
	var rerr *ResourceError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "broken", rerr.Resource)
	assert.True(t, res.released)
	assert.Empty(t, sink.Binds())
}

type failingSink struct {
	*VirtualSink
}

func (f failingSink) Start(done func(error)) {
	go done(errors.New("device lost"))
}

func TestPlaybackError(t *testing.T) {
	c := NewController("music", failingSink{NewVirtualSink("music", 1)}, Options{})
	defer c.Close()
	require.NoError(t, c.Load(clip("song", time.Second)))

	outcome, err := c.Play(context.Background())
	assert.Equal(t, Stopped, outcome)
	var perr *PlaybackError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "song", perr.Resource)
}

func TestFadeIsMonotonic(t *testing.T) {
	c, sink := newTestController(t)

	done := make(chan struct{})
	c.FadeTo(1, 60*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fade did not complete")
	}

	gains := sink.Gains()
	require.NotEmpty(t, gains)
	for i := 1; i < len(gains); i++ {
		assert.GreaterOrEqual(t, gains[i], gains[i-1], "gain went down at step %d", i)
	}
	assert.InDelta(t, 1.0, gains[len(gains)-1], 1e-9)
}

func TestFadeSupersedes(t *testing.T) {
	c, sink := newTestController(t)
	c.FadeTo(1, 0, nil)

	var firstDone bool
	var mu sync.Mutex
	c.FadeTo(0, 200*time.Millisecond, func() {
		mu.Lock()
		firstDone = true
		mu.Unlock()
	})
	time.Sleep(30 * time.Millisecond)

	done := make(chan struct{})
	before := len(sink.Gains())
	c.FadeTo(1, 40*time.Millisecond, func() { close(done) })
	<-done
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	assert.False(t, firstDone)
	mu.Unlock()

	after := sink.Gains()[before:]
	for i := 1; i < len(after); i++ {
		assert.GreaterOrEqual(t, after[i], after[i-1])
	}
	assert.InDelta(t, 1.0, c.Gain(), 1e-9)
	assert.Equal(t, 0, c.Outstanding())
}

func TestFadeCancelLeavesGain(t *testing.T) {
	c, _ := newTestController(t)
	cancel := c.FadeTo(1, 500*time.Millisecond, func() { t.Error("cancelled fade completed") })
	time.Sleep(50 * time.Millisecond)
	cancel()

	g := c.Gain()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, g, c.Gain())
	assert.Less(t, g, 1.0)
	assert.Eventually(t, func() bool { return c.Outstanding() == 0 }, time.Second, time.Millisecond)
}

func TestBaseVolumeScalesGain(t *testing.T) {
	c, sink := newTestController(t)
	c.FadeTo(0.8, 0, nil)
	c.SetBaseVolume(0.5)
	assert.InDelta(t, 0.4, sink.Gain(), 1e-9)

	c.SetBaseVolume(0)
	assert.Equal(t, 0.0, sink.Gain())
	assert.InDelta(t, 0.8, c.Gain(), 1e-9)
}

func TestStopWithFadeOut(t *testing.T) {
	c, sink := newTestController(t)
	require.NoError(t, c.Load(clip("song", time.Minute)))
	c.FadeTo(1, 0, nil)

	go c.Play(context.Background())
	require.Eventually(t, c.Playing, time.Second, time.Millisecond)

	c.Stop(context.Background(), 40*time.Millisecond)
	assert.False(t, c.Playing())
	assert.Equal(t, 0.0, sink.Gain())
}

func TestStopIdleReturns(t *testing.T) {
	c, _ := newTestController(t)
	c.Stop(context.Background(), time.Second)
	assert.Equal(t, 0, c.Outstanding())
}

func TestClosedControllerRejectsLoad(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.Close())

	err := c.Load(clip("late", time.Second))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCurves(t *testing.T) {
	for _, curve := range []Curve{Linear, Smoothstep} {
		assert.Equal(t, 0.0, curve(0))
		assert.Equal(t, 1.0, curve(1))
		prev := 0.0
		for i := 1; i <= 100; i++ {
			v := curve(float64(i) / 100)
			assert.GreaterOrEqual(t, v, prev)
			prev = v
		}
	}
	assert.InDelta(t, 0.5, Smoothstep(0.5), 1e-9)
	assert.NotNil(t, CurveByName("nope"))
}
