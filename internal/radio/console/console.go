package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"airadio/internal/cli/scheme/colours"
	"airadio/internal/radio/session"
	"airadio/internal/radio/status"
)

type Controls interface {
	Status() session.Status
	Skip() bool
	Favorite() bool
	ToggleMute() bool
	SetVolume(v float64)
	SetSleepTimer(d time.Duration)
	Close()
	Subscribe(buffer int) *status.Listener[session.Status]
	Unsubscribe(l *status.Listener[session.Status])
}

// Console drives a session from a terminal: one command per line in, the
// captions and track changes out.
type Console struct {
	controls Controls
	in       io.Reader
	out      io.Writer
}

func New(controls Controls, in io.Reader, out io.Writer) *Console {
	return &Console{controls: controls, in: in, out: out}
}

func (c *Console) ShowHelp() {
	fmt.Fprintln(c.out)
	colours.Info.Fprintln(c.out, "🎛️  Controls:")
	fmt.Fprintln(c.out, "  • f          - Favorite this track")
	fmt.Fprintln(c.out, "  • s / d      - Skip (dislike) this track")
	fmt.Fprintln(c.out, "  • m          - Mute / unmute")
	fmt.Fprintln(c.out, "  • + / -      - Volume up / down")
	fmt.Fprintln(c.out, "  • v <0-100>  - Set the volume")
	fmt.Fprintln(c.out, "  • t <min>    - Sleep timer ('t off' cancels)")
	fmt.Fprintln(c.out, "  • q          - Sign off")
	fmt.Fprintln(c.out)
}

// Run reads commands until the input ends, ctx is done or the listener
// quits. Quitting closes the session; running out of input does not.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case line := <-lines:
			cmd, err := Parse(line)
			if err != nil {
				if errors.Is(err, ErrUnknownCommand) {
					colours.Info.Fprintln(c.out, "ℹ️  Type 'h' for the list of controls")
				} else {
					colours.Error.Fprintf(c.out, "❌ %v\n", err)
				}
				continue
			}
			if !c.Apply(cmd) {
				return nil
			}
		}
	}
}

// Apply carries out one command. It returns false once the listener has quit.
func (c *Console) Apply(cmd Command) bool {
	switch cmd.Action {
	case ActionNone:
	case ActionHelp:
		c.ShowHelp()
	case ActionFavorite:
		if c.controls.Favorite() {
			colours.Success.Fprintln(c.out, "❤️  Favorited")
		} else {
			colours.Warning.Fprintln(c.out, "Nothing new to favorite")
		}
	case ActionSkip:
		if c.controls.Skip() {
			colours.Warning.Fprintln(c.out, "⏭️  Skipping")
		} else {
			colours.Warning.Fprintln(c.out, "Nothing to skip")
		}
	case ActionMute:
		if c.controls.ToggleMute() {
			colours.Muted.Fprintln(c.out, "🔇 Muted")
		} else {
			colours.Success.Fprintln(c.out, "🔊 Unmuted")
		}
	case ActionVolumeUp, ActionVolumeDown, ActionVolume:
		v := cmd.Volume
		switch cmd.Action {
		case ActionVolumeUp:
			v = c.controls.Status().Volume + VolumeStep
		case ActionVolumeDown:
			v = c.controls.Status().Volume - VolumeStep
		}
		c.controls.SetVolume(min(max(v, 0), 1))
		colours.Info.Fprintf(c.out, "🔉 Volume %.0f%%\n", c.controls.Status().Volume*100)
	case ActionSleep:
		c.controls.SetSleepTimer(cmd.Sleep)
		if cmd.Sleep > 0 {
			colours.Info.Fprintf(c.out, "😴 Signing off in %s\n", cmd.Sleep.Round(time.Second))
		} else {
			colours.Info.Fprintln(c.out, "⏰ Sleep timer off")
		}
	case ActionQuit:
		colours.Warning.Fprintln(c.out, "👋 Signing off...")
		c.controls.Close()
		return false
	}
	return true
}

// Watch prints captions and track changes until the session's feed closes
// or ctx is done.
func (c *Console) Watch(ctx context.Context) {
	l := c.controls.Subscribe(16)
	defer c.controls.Unsubscribe(l)

	var prev session.Status
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-l.C:
			if !ok {
				return
			}
			c.render(prev, st)
			prev = st
		}
	}
}

func (c *Console) render(prev, cur session.Status) {
	if cur.Title != "" && prev.Title == "" {
		colours.OnAir.Fprint(c.out, " ON AIR ")
		colours.Title.Fprintf(c.out, " 📻 %s\n", cur.Title)
	}
	if cur.Caption != "" && cur.Caption != prev.Caption {
		colours.Caption.Fprintf(c.out, "🎙️  %s\n", cur.Caption)
	}
	if cur.Phase == session.PhasePlayingTrack &&
		(prev.Phase != session.PhasePlayingTrack || prev.CurrentTrack != cur.CurrentTrack) {
		colours.Track.Fprintf(c.out, "🎵 Now playing: %s\n", cur.CurrentTrack)
	}
}
