package station

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"airadio/internal/config"
	"airadio/internal/domain/library"
	"airadio/internal/domain/show"
	"airadio/internal/radio/channel"
	"airadio/internal/radio/diary"
	"airadio/internal/radio/history"
	"airadio/internal/radio/jokes"
	"airadio/internal/radio/llm"
	"airadio/internal/radio/session"
	"airadio/internal/radio/tts"

	"github.com/faiface/beep"
	"github.com/sirupsen/logrus"
)

const (
	BackendSpeaker = "speaker"
	BackendVirtual = "virtual"
)

// Station wires a session's collaborators together from configuration and
// hosts the CLI commands.
type Station struct {
	cfg config.Config
	in  io.Reader
	out io.Writer
	log *logrus.Entry
}

func New(cfg config.Config) *Station {
	return &Station{
		cfg: cfg,
		in:  os.Stdin,
		out: os.Stdout,
		log: logrus.WithField("component", "station"),
	}
}

// narrator builds the configured narration provider.
func (s *Station) narrator() (tts.Narrator, error) {
	n, err := tts.NewNarrator(tts.Config{
		Type:       s.cfg.TTS.Type,
		Speed:      s.cfg.TTS.Speed,
		Volume:     s.cfg.TTS.Volume,
		CachePath:  s.cfg.TTS.CachePath,
		SampleRate: s.cfg.Audio.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create narrator: %w", err)
	}
	return n, nil
}

func (s *Station) sink(name string) (channel.Sink, error) {
	switch s.cfg.Audio.Backend {
	case BackendVirtual:
		return channel.NewVirtualSink(name, s.cfg.Audio.VirtualSpeed), nil
	case BackendSpeaker, "":
		return channel.NewSpeakerSink(name, beep.SampleRate(s.cfg.Audio.SampleRate))
	}
	return nil, fmt.Errorf("unknown audio backend %q", s.cfg.Audio.Backend)
}

// channels opens the narration, overlay and music channels, in that order.
func (s *Station) channels() ([]*channel.Controller, error) {
	opts := channel.Options{
		Curve:  channel.CurveByName(s.cfg.Audio.FadeCurve),
		Logger: s.log,
	}
	var out []*channel.Controller
	for _, name := range []string{"narration", "overlay", "music"} {
		sink, err := s.sink(name)
		if err != nil {
			for _, c := range out {
				c.Close()
			}
			return nil, err
		}
		out = append(out, channel.NewController(name, sink, opts))
	}
	return out, nil
}

// historyStore opens the configured listening history. The returned func
// releases whatever the store holds open.
func (s *Station) historyStore() (history.Store, func(), error) {
	switch s.cfg.History.Backend {
	case "redis":
		rdb, err := history.Dial(s.cfg.History.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return history.NewRedisStore(rdb), func() { rdb.Close() }, nil
	case "file", "":
		return history.NewFileStore(s.cfg.History.Path), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown history backend %q", s.cfg.History.Backend)
}

// openDiary returns the DJ diary, with an LLM writing the entries when one
// answers.
func (s *Station) openDiary(ctx context.Context) *diary.FileDiary {
	var thinker diary.Thinker
	if s.cfg.LLM.URL != "" {
		client := llm.NewClient(s.cfg.LLM.URL, s.cfg.LLM.Model)
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if client.Available(checkCtx) {
			thinker = llm.NewDiarist(client)
			s.log.WithField("model", client.Model()).Info("Diary entries written by LLM")
		} else {
			s.log.Debug("LLM unavailable, diary entries use a template")
		}
		cancel()
	}
	return diary.NewFileDiary(s.cfg.Diary.Path, thinker)
}

func (s *Station) openLibrary() (*library.SessionStore, error) {
	lib := library.NewSessionStore()
	if s.cfg.Library.Dir == "" {
		return lib, nil
	}
	n, err := lib.ScanDir(s.cfg.Library.Dir)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"dir": s.cfg.Library.Dir, "tracks": n}).Info("Music library scanned")
	return lib, nil
}

// sessionConfig merges player settings with what the show asks for.
func (s *Station) sessionConfig(sh *show.Show, dj string) session.Config {
	p := s.cfg.Player
	cfg := session.Config{
		DJ:             p.DJ,
		Voice:          tts.Voice{LanguageTag: s.cfg.TTS.Language, Tier: tts.Tier(s.cfg.TTS.Tier)},
		Volume:         p.Volume,
		MusicRamp:      p.MusicRamp,
		SkipFade:       p.SkipFade,
		DuckLevel:      p.DuckLevel,
		DuckRamp:       p.DuckRamp,
		SummaryTimeout: p.SummaryTimeout,
		Apology:        p.Apology,
	}
	if sh.Host.Name != "" {
		cfg.DJ = sh.Host.Name
	}
	if sh.Host.Language != "" {
		cfg.Voice.LanguageTag = sh.Host.Language
	}
	// The show's voice engine names a tier of voices, not a provider.
	switch t := tts.Tier(sh.Host.Engine); t {
	case tts.TierStandard, tts.TierNeural, tts.TierGenerative:
		cfg.Voice.Tier = t
	}
	if dj != "" {
		cfg.DJ = dj
	}
	return cfg
}

// jokeSource is always available; a failed fetch just means no joke.
func (s *Station) jokeSource() *jokes.Client {
	return jokes.NewClient(s.cfg.Jokes.URL, "")
}
