package station

import (
	"context"
	"fmt"
	"time"

	"airadio/internal/cli/scheme/colours"
	"airadio/internal/domain/show"
	"airadio/internal/radio/console"
	"airadio/internal/radio/history"
	"airadio/internal/radio/remote"
	"airadio/internal/radio/session"

	"golang.org/x/sync/errgroup"
)

type PlayOptions struct {
	DJ          string
	Sleep       time.Duration
	Interactive bool
}

// Play runs one show to its end, or until ctx is done or the listener
// signs off.
func (s *Station) Play(ctx context.Context, showPath string, opts PlayOptions) error {
	sh, err := show.Load(showPath)
	if err != nil {
		return err
	}

	narrator, err := s.narrator()
	if err != nil {
		return err
	}

	lib, err := s.openLibrary()
	if err != nil {
		return err
	}

	store, closeStore, err := s.historyStore()
	if err != nil {
		return err
	}
	defer closeStore()

	chans, err := s.channels()
	if err != nil {
		return err
	}

	engine, err := session.New(sh, session.Deps{
		Narrator:  narrator,
		Tracks:    lib,
		Jokes:     s.jokeSource(),
		History:   history.NewRecorder(store),
		Diary:     s.openDiary(ctx),
		Narration: chans[0],
		Overlay:   chans[1],
		Music:     chans[2],
		Logger:    s.log.WithField("show", sh.Title),
	}, s.sessionConfig(sh, opts.DJ))
	if err != nil {
		for _, c := range chans {
			c.Close()
		}
		return err
	}

	con := console.New(engine, s.in, s.out)
	if opts.Interactive {
		con.ShowHelp()
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer stop()
		err := engine.Run(gctx)
		engine.Close()
		<-engine.Done()
		return err
	})
	g.Go(func() error {
		con.Watch(gctx)
		return nil
	})
	if opts.Interactive {
		g.Go(func() error {
			return con.Run(gctx)
		})
	}
	if addr := s.cfg.Remote.Listen; addr != "" {
		g.Go(func() error {
			srv := remote.NewServer(engine, s.log)
			if err := srv.ListenAndServe(gctx, addr); err != nil {
				return fmt.Errorf("remote control: %w", err)
			}
			return nil
		})
	}
	if opts.Sleep > 0 {
		engine.SetSleepTimer(opts.Sleep)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	colours.Success.Fprintln(s.out, "✨ Thanks for listening! ✨")
	return nil
}
