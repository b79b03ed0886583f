package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"airadio/internal/domain/show"
	"airadio/internal/radio/audio"

	"github.com/sirupsen/logrus"
)

// skipGrace bounds how long a skip waits for its fade callback.
const skipGrace = 250 * time.Millisecond

// interject plays an interrupting line on the overlay channel. It returns
// immediately; the music is ducked while the line is heard. A newer line
// supersedes an older one.
func (e *Engine) interject(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	e.mu.Lock()
	if e.cursor.Closing {
		e.mu.Unlock()
		return
	}
	e.overlaySeq++
	seq := e.overlaySeq
	e.mu.Unlock()

	e.goAsync(func() {
		res, err := e.narrator.Synthesize(e.ctx, text, e.cfg.Voice)
		if err != nil {
			if e.ctx.Err() == nil {
				e.log.WithError(err).Warn("Reaction narration failed")
			}
			return
		}
		if err := e.loadOverlay(seq, res); err != nil {
			if err != errStaleOverlay {
				e.log.WithError(err).Warn("Reaction could not be loaded")
			}
			return
		}

		e.overlay.FadeTo(1, 0, nil)
		e.duck(seq)
		if _, err := e.overlay.Play(e.ctx); err != nil {
			e.log.WithError(err).Warn("Reaction playback failed")
		}
		e.unduck(seq)
	})
}

var errStaleOverlay = errors.New("reaction superseded")

// loadOverlay binds res to the overlay channel unless a newer line has been
// requested since seq. The check and the load happen under one lock so a
// stale line can never replace a newer one.
func (e *Engine) loadOverlay(seq uint64, res audio.Resource) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.overlaySeq || e.cursor.Closing {
		res.Release()
		return errStaleOverlay
	}
	return e.overlay.Load(res)
}

func (e *Engine) duck(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.skipping || e.cursor.Closing || e.cursor.Phase != PhasePlayingTrack {
		return
	}
	e.duckedBy = seq
	e.music.FadeTo(e.cfg.DuckLevel, e.cfg.DuckRamp, nil)
}

func (e *Engine) unduck(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.duckedBy != seq {
		return
	}
	e.duckedBy = 0
	if e.skipping || e.cursor.Closing || e.cursor.Phase != PhasePlayingTrack {
		return
	}
	e.music.FadeTo(1, e.cfg.DuckRamp, nil)
}

// Skip leaves the current track. While the music plays it is faded out
// first; during the commentary the item is abandoned straight away. Skip is
// also the dislike action. Outside a track it does nothing.
func (e *Engine) Skip() bool {
	e.mu.Lock()
	if e.cursor.Closing || e.cursor.Phase == PhaseEnded || e.skipping ||
		e.currentTrack == "" || e.itemCancel == nil {
		e.mu.Unlock()
		return false
	}
	e.skipping = true
	ref := e.currentTrack
	cancelItem := e.itemCancel
	playing := e.cursor.Phase == PhasePlayingTrack

	var faded chan struct{}
	if playing {
		faded = make(chan struct{})
		e.music.FadeTo(0, e.cfg.SkipFade, func() { close(faded) })
	}
	e.mu.Unlock()

	e.log.WithField("track", ref).Info("Skipping track")
	e.logAsync("dislike", ref, e.history.LogDislike)
	e.logAsync("skip", ref, e.history.LogSkip)
	if text, ok := e.show.Reaction(show.ReactionSkip); ok {
		e.interject(text)
	}

	if !playing {
		cancelItem()
		return true
	}

	started := e.goAsync(func() {
		timer := time.NewTimer(e.cfg.SkipFade + skipGrace)
		defer timer.Stop()
		select {
		case <-faded:
		case <-timer.C:
		case <-e.ctx.Done():
		}
		cancelItem()
	})
	if !started {
		cancelItem()
	}
	return true
}

// Favorite marks the current track as liked. A track is only ever
// favorited once per session.
func (e *Engine) Favorite() bool {
	e.mu.Lock()
	ref := e.currentTrack
	if e.cursor.Closing || e.cursor.Phase == PhaseEnded || ref == "" {
		e.mu.Unlock()
		return false
	}
	if _, ok := e.favorites[ref]; ok {
		e.mu.Unlock()
		return false
	}
	e.favorites[ref] = struct{}{}
	e.mu.Unlock()
	e.publish()

	e.log.WithField("track", ref).Info("Track favorited")
	e.logAsync("favorite", ref, e.history.LogFavorite)
	if text, ok := e.show.Reaction(show.ReactionFavorite); ok {
		e.interject(text)
	}
	return true
}

// SetVolume sets the session volume, clamped to [0, 1]. Any positive value
// also unmutes.
func (e *Engine) SetVolume(v float64) {
	v = min(max(v, 0), 1)

	e.mu.Lock()
	if e.cursor.Closing {
		e.mu.Unlock()
		return
	}
	e.volume = v
	if v > 0 {
		e.lastVolume = v
		e.muted = false
	}
	e.applyVolumeLocked()
	e.mu.Unlock()
	e.publish()
}

// ToggleMute mutes every channel, or restores the last audible volume.
// It returns whether the session is now muted.
func (e *Engine) ToggleMute() bool {
	e.mu.Lock()
	if e.cursor.Closing {
		muted := e.muted
		e.mu.Unlock()
		return muted
	}
	if e.muted {
		e.muted = false
		if e.lastVolume <= 0 {
			e.lastVolume = 0.5
		}
		e.volume = e.lastVolume
	} else {
		if e.volume > 0 {
			e.lastVolume = e.volume
		}
		e.muted = true
	}
	muted := e.muted
	e.applyVolumeLocked()
	e.mu.Unlock()
	e.publish()

	e.log.WithField("muted", muted).Info("Mute toggled")
	if !muted {
		if text, ok := e.show.Reaction(show.ReactionUnmute); ok {
			e.interject(text)
		}
	}
	return muted
}

// SetSleepTimer closes the session once d has passed. It replaces any timer
// already set; d <= 0 cancels it.
func (e *Engine) SetSleepTimer(d time.Duration) {
	e.mu.Lock()
	if e.cursor.Closing {
		e.mu.Unlock()
		return
	}
	if e.sleep != nil {
		e.sleep.Stop()
		e.sleep = nil
		e.sleepAt = time.Time{}
	}
	e.sleepSeq++
	if d > 0 {
		seq := e.sleepSeq
		e.sleep = time.AfterFunc(d, func() { e.sleepExpired(seq) })
		e.sleepAt = time.Now().Add(d)
	}
	e.mu.Unlock()
	e.publish()

	if d > 0 {
		e.log.WithField("after", d).Info("Sleep timer set")
		minutes := strconv.FormatFloat(d.Minutes(), 'f', -1, 64)
		e.interject(fmt.Sprintf(e.cfg.SleepSet, minutes))
		return
	}
	e.log.Info("Sleep timer cancelled")
	e.interject(e.cfg.SleepCancelled)
}

func (e *Engine) sleepExpired(seq uint64) {
	e.mu.Lock()
	current := e.sleepSeq == seq && e.sleep != nil
	if current {
		e.sleep = nil
		e.sleepAt = time.Time{}
	}
	e.mu.Unlock()

	if current {
		e.log.Info("Sleep timer expired")
		e.Close()
	}
}

// Close ends the session. Sound stops at once without a fade, the DJ's
// notes are saved in the background and Done is closed once everything
// the session started has finished. Close is safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.cursor.Closing = true
		if e.sleep != nil {
			e.sleep.Stop()
			e.sleep = nil
			e.sleepAt = time.Time{}
		}
		e.caption = fmt.Sprintf(e.cfg.ClosingCaption, e.cfg.DJ)
		started := e.started
		e.mu.Unlock()
		e.publish()

		e.log.Info("Closing session")
		e.cancel()
		for _, c := range e.channels() {
			c.Stop(context.Background(), 0)
		}

		go e.finishClose(started)
	})
}

func (e *Engine) finishClose(started bool) {
	if started {
		<-e.runDone
	}

	e.mu.Lock()
	played := append([]string(nil), e.played...)
	e.mu.Unlock()

	if e.diary != nil {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.SummaryTimeout)
		if err := e.diary.SaveSessionSummary(ctx, e.cfg.DJ, played); err != nil {
			e.log.WithError(err).Warn("Failed to save session summary")
		}
		cancel()
	}

	e.mu.Lock()
	e.draining = true
	e.mu.Unlock()
	e.bg.Wait()

	for _, c := range e.channels() {
		if err := c.Close(); err != nil {
			e.log.WithError(err).WithField("channel", c.Name()).Warn("Failed to close channel")
		}
	}

	e.mu.Lock()
	e.cursor.Phase = PhaseEnded
	e.mu.Unlock()
	e.publish()
	e.feed.Close()

	e.log.WithFields(logrus.Fields{"tracks": len(played)}).Info("Session closed")
	close(e.done)
}
