package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"airadio/internal/domain/show"
	"airadio/internal/radio/audio"
	"airadio/internal/radio/channel"
	"airadio/internal/radio/status"
	"airadio/internal/radio/tts"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrAlreadyStarted = errors.New("session already started")

// Narrator synthesises narration lines.
type Narrator interface {
	Synthesize(ctx context.Context, text string, voice tts.Voice) (audio.Resource, error)
	Ready(ctx context.Context) error
}

// TrackResolver finds the audio for a track ref. It must not block on I/O
// beyond a local lookup.
type TrackResolver interface {
	Resolve(ref string) (audio.Resource, bool)
}

// JokeSource returns a joke line, or "" when there is nothing to tell.
type JokeSource interface {
	Fetch(ctx context.Context) (string, error)
}

type History interface {
	LogPlay(ctx context.Context, ref string) error
	LogFinish(ctx context.Context, ref string) error
	LogSkip(ctx context.Context, ref string) error
	LogFavorite(ctx context.Context, ref string) error
	LogDislike(ctx context.Context, ref string) error
}

type SummaryWriter interface {
	SaveSessionSummary(ctx context.Context, dj string, tracks []string) error
}

// Deps are the collaborators of an engine. The engine takes ownership of the
// three channels and closes them when the session closes. Jokes, History and
// Diary are optional.
type Deps struct {
	Narrator  Narrator
	Tracks    TrackResolver
	Jokes     JokeSource
	History   History
	Diary     SummaryWriter
	Narration *channel.Controller
	Overlay   *channel.Controller
	Music     *channel.Controller
	Logger    *logrus.Entry
}

// Engine plays one show from start to end. A single driver goroutine (Run)
// walks the playlist; user actions may be called from any goroutine.
type Engine struct {
	id   string
	show *show.Show
	cfg  Config
	log  *logrus.Entry

	narrator  Narrator
	tracks    TrackResolver
	jokes     JokeSource
	history   History
	diary     SummaryWriter
	narration *channel.Controller
	overlay   *channel.Controller
	music     *channel.Controller
	feed      *status.Broadcaster[Status]

	// session scope, cancelled on close
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	cursor       Cursor
	caption      string
	currentTrack string
	itemCancel   context.CancelFunc
	stepCancel   context.CancelFunc
	stepID       uint64
	skipping     bool
	favorites    map[string]struct{}
	played       []string
	volume       float64
	lastVolume   float64
	muted        bool
	sleep        *time.Timer
	sleepSeq     uint64
	sleepAt      time.Time
	overlaySeq   uint64
	duckedBy     uint64
	started      bool
	draining     bool
	pending      int

	bg        sync.WaitGroup
	runDone   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New(sh *show.Show, deps Deps, cfg Config) (*Engine, error) {
	switch {
	case sh == nil:
		return nil, errors.New("session: nil show")
	case deps.Narrator == nil:
		return nil, errors.New("session: no narrator")
	case deps.Tracks == nil:
		return nil, errors.New("session: no track resolver")
	case deps.Narration == nil || deps.Overlay == nil || deps.Music == nil:
		return nil, errors.New("session: narration, overlay and music channels are required")
	}

	cfg = cfg.withDefaults()
	id := uuid.NewString()
	log := deps.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	history := deps.History
	if history == nil {
		history = noHistory{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		id:         id,
		show:       sh,
		cfg:        cfg,
		log:        log.WithFields(logrus.Fields{"session": id, "dj": cfg.DJ}),
		narrator:   deps.Narrator,
		tracks:     deps.Tracks,
		jokes:      deps.Jokes,
		history:    history,
		diary:      deps.Diary,
		narration:  deps.Narration,
		overlay:    deps.Overlay,
		music:      deps.Music,
		feed:       status.NewBroadcaster[Status](),
		ctx:        ctx,
		cancel:     cancel,
		cursor:     Cursor{Position: -1, Phase: PhaseIdle},
		favorites:  make(map[string]struct{}),
		volume:     cfg.Volume,
		lastVolume: cfg.Volume,
		runDone:    make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

func (e *Engine) ID() string { return e.id }

// Run drives the show and returns once it has ended or the session closes.
// Cancelling ctx closes the session. The returned error is non-nil only when
// no narration engine could be reached at start.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	e.mu.Unlock()
	defer close(e.runDone)

	stop := context.AfterFunc(ctx, e.Close)
	defer stop()

	if e.ctx.Err() != nil {
		return nil
	}
	e.applyVolume()

	readyCtx, cancel := context.WithTimeout(e.ctx, e.cfg.ReadyTimeout)
	err := e.narrator.Ready(readyCtx)
	cancel()
	if err != nil {
		if e.ctx.Err() != nil {
			return nil
		}
		e.log.WithError(err).Error("No narration engine reachable")
		e.mu.Lock()
		e.cursor.Phase = PhaseEnded
		e.caption = e.cfg.FailureCaption
		e.mu.Unlock()
		e.publish()
		return fmt.Errorf("narration engine unavailable: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"title": e.show.Title,
		"items": e.show.Len(),
	}).Info("Session started")

	e.speak(e.ctx, e.show.Title)
	e.speak(e.ctx, e.show.IntroText)

	for {
		pos, ok := e.advance()
		if !ok {
			return nil
		}
		if pos == e.show.Len() {
			break
		}
		e.playItem(pos)
	}

	e.speak(e.ctx, e.show.OutroText)

	e.mu.Lock()
	if e.cursor.Closing {
		e.mu.Unlock()
		return nil
	}
	e.cursor.Phase = PhaseEnded
	e.caption = e.cfg.EndCaption
	e.mu.Unlock()
	e.publish()

	e.log.Info("Session ended")
	return nil
}

// advance moves the cursor forward, refusing once the session is closing.
func (e *Engine) advance() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor.Closing {
		return 0, false
	}
	if e.cursor.Position < e.show.Len() {
		e.cursor.Position++
	}
	return e.cursor.Position, true
}

func (e *Engine) playItem(pos int) {
	item := e.show.Item(pos)
	ctx, cancel := context.WithCancel(e.ctx)

	e.mu.Lock()
	e.itemCancel = cancel
	e.skipping = false
	e.currentTrack = ""
	if t, ok := item.(show.Track); ok {
		e.currentTrack = t.Ref
	}
	e.mu.Unlock()
	e.publish()

	defer func() {
		cancel()
		e.mu.Lock()
		e.itemCancel = nil
		e.currentTrack = ""
		e.skipping = false
		e.mu.Unlock()
	}()

	e.log.WithFields(logrus.Fields{"position": pos, "kind": item.Kind()}).Debug("Next item")

	switch it := item.(type) {
	case show.Track:
		e.playTrack(ctx, it)
	case show.AdBreak:
		for _, line := range it.Scripts {
			if ctx.Err() != nil {
				return
			}
			e.speak(ctx, line)
		}
	case show.Jingle:
		e.speak(ctx, it.Script)
	case show.Joke:
		e.tellJoke(ctx)
	default:
		e.log.WithField("kind", item.Kind()).Warn("Unknown playlist item")
	}
}

func (e *Engine) playTrack(ctx context.Context, t show.Track) {
	e.speak(ctx, t.Commentary)
	if ctx.Err() != nil {
		return
	}

	log := e.log.WithField("track", t.Ref)
	res, ok := e.tracks.Resolve(t.Ref)
	if !ok {
		log.Warn("Track unavailable, apologising instead")
		e.speak(ctx, e.cfg.Apology)
		return
	}
	if err := e.music.Load(res); err != nil {
		log.WithError(err).Warn("Track could not be loaded")
		e.speak(ctx, e.cfg.Apology)
		return
	}

	stepCtx, id, ok := e.beginStep(ctx)
	if !ok {
		e.music.Stop(context.Background(), 0)
		return
	}
	defer e.endStep(id)

	e.mu.Lock()
	e.played = append(e.played, t.Ref)
	e.mu.Unlock()
	e.setPhase(PhasePlayingTrack, "")
	e.logAsync("play", t.Ref, e.history.LogPlay)

	e.music.FadeTo(1, e.cfg.MusicRamp, nil)
	outcome, err := e.music.Play(stepCtx)
	e.trackOver()
	if err != nil {
		log.WithError(err).Warn("Track playback failed")
	}
	if outcome == channel.Finished {
		e.logAsync("finish", t.Ref, e.history.LogFinish)
	}
	e.music.Stop(context.Background(), 0)
}

// trackOver closes the window in which skip and favorite apply to the
// track that just stopped playing.
func (e *Engine) trackOver() {
	e.mu.Lock()
	e.currentTrack = ""
	if e.cursor.Closing || e.cursor.Phase == PhaseEnded {
		e.mu.Unlock()
		return
	}
	e.cursor.Phase = PhaseIdle
	e.mu.Unlock()
	e.publish()
}

func (e *Engine) tellJoke(ctx context.Context) {
	if e.jokes == nil {
		return
	}
	stepCtx, id, ok := e.beginStep(ctx)
	if !ok {
		return
	}
	e.setPhase(PhaseSpeaking, "")
	text, err := e.jokes.Fetch(stepCtx)
	e.endStep(id)

	if err != nil {
		if stepCtx.Err() == nil {
			e.log.WithError(err).Warn("Joke fetch failed")
		}
		return
	}
	e.speak(ctx, text)
}

// speak is blocking narration: the caller waits until the line has been
// heard, skipped or failed. Failures are logged and swallowed.
func (e *Engine) speak(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	stepCtx, id, ok := e.beginStep(ctx)
	if !ok {
		return
	}
	defer e.endStep(id)

	e.setPhase(PhaseSpeaking, text)
	defer e.clearCaption()

	res, err := e.narrator.Synthesize(stepCtx, text, e.cfg.Voice)
	if err != nil {
		if stepCtx.Err() == nil {
			e.log.WithError(err).Warn("Narration failed, line dropped")
		}
		return
	}
	if stepCtx.Err() != nil {
		res.Release()
		return
	}
	if err := e.narration.Load(res); err != nil {
		e.log.WithError(err).Warn("Narration could not be loaded")
		return
	}

	e.narration.FadeTo(1, 0, nil)
	if _, err := e.narration.Play(stepCtx); err != nil {
		e.log.WithError(fmt.Errorf("%w: %w", tts.ErrPlaybackRejected, err)).Warn("Narration playback failed")
	}
	e.narration.Stop(context.Background(), 0)
}

// beginStep opens the cancellable scope of one blocking step, cancelling
// the previous one if it is somehow still pending.
func (e *Engine) beginStep(parent context.Context) (context.Context, uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor.Closing || parent.Err() != nil {
		return nil, 0, false
	}
	if e.stepCancel != nil {
		e.stepCancel()
	}
	ctx, cancel := context.WithCancel(parent)
	e.stepID++
	e.stepCancel = cancel
	return ctx, e.stepID, true
}

func (e *Engine) endStep(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stepID == id && e.stepCancel != nil {
		e.stepCancel()
		e.stepCancel = nil
	}
}

func (e *Engine) setPhase(p Phase, caption string) {
	e.mu.Lock()
	if e.cursor.Closing || e.cursor.Phase == PhaseEnded {
		e.mu.Unlock()
		return
	}
	e.cursor.Phase = p
	e.caption = caption
	e.mu.Unlock()
	e.publish()
}

func (e *Engine) clearCaption() {
	e.mu.Lock()
	if e.cursor.Closing || e.cursor.Phase == PhaseEnded {
		e.mu.Unlock()
		return
	}
	e.caption = ""
	e.mu.Unlock()
	e.publish()
}

// logAsync sends a history event without making anyone wait for it.
func (e *Engine) logAsync(action, ref string, fn func(context.Context, string) error) {
	e.goAsync(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(e.ctx), e.cfg.LogTimeout)
		defer cancel()
		if err := fn(ctx, ref); err != nil {
			e.log.WithError(err).WithFields(logrus.Fields{
				"action": action,
				"track":  ref,
			}).Warn("Failed to record listening history")
		}
	})
}

// goAsync runs fn in the background, tracked so close can wait for it.
func (e *Engine) goAsync(fn func()) bool {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return false
	}
	e.pending++
	e.bg.Add(1)
	e.mu.Unlock()

	go func() {
		defer func() {
			e.mu.Lock()
			e.pending--
			e.mu.Unlock()
			e.bg.Done()
		}()
		fn()
	}()
	return true
}

func (e *Engine) channels() []*channel.Controller {
	return []*channel.Controller{e.narration, e.overlay, e.music}
}

func (e *Engine) applyVolume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyVolumeLocked()
}

func (e *Engine) applyVolumeLocked() {
	base := e.volume
	if e.muted {
		base = 0
	}
	for _, c := range e.channels() {
		c.SetBaseVolume(base)
	}
}

func (e *Engine) snapshotLocked() Status {
	_, fav := e.favorites[e.currentTrack]
	return Status{
		Session:      e.id,
		Title:        e.show.Title,
		Phase:        e.cursor.Phase,
		Caption:      e.caption,
		CurrentTrack: e.currentTrack,
		Position:     e.cursor.Position,
		Items:        e.show.Len(),
		Closing:      e.cursor.Closing,
		Volume:       e.volume,
		Muted:        e.muted,
		Favorited:    e.currentTrack != "" && fav,
		SleepAt:      e.sleepAt,
	}
}

func (e *Engine) publish() {
	e.mu.Lock()
	s := e.snapshotLocked()
	e.mu.Unlock()
	e.feed.Publish(s)
}

// Status returns the current snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) Cursor() Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Subscribe returns a feed of status snapshots. It is closed when the
// session has fully closed.
func (e *Engine) Subscribe(buffer int) *status.Listener[Status] {
	return e.feed.Subscribe(buffer)
}

func (e *Engine) Unsubscribe(l *status.Listener[Status]) {
	e.feed.Unsubscribe(l)
}

// Done is closed once Close has finished tearing the session down.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Outstanding counts live handles: pending steps, the current item scope,
// the sleep timer, background calls and channel fades or plays.
func (e *Engine) Outstanding() int {
	e.mu.Lock()
	n := e.pending
	if e.stepCancel != nil {
		n++
	}
	if e.itemCancel != nil {
		n++
	}
	if e.sleep != nil {
		n++
	}
	e.mu.Unlock()

	return n + e.narration.Outstanding() + e.overlay.Outstanding() + e.music.Outstanding()
}

type noHistory struct{}

func (noHistory) LogPlay(context.Context, string) error     { return nil }
func (noHistory) LogFinish(context.Context, string) error   { return nil }
func (noHistory) LogSkip(context.Context, string) error     { return nil }
func (noHistory) LogFavorite(context.Context, string) error { return nil }
func (noHistory) LogDislike(context.Context, string) error  { return nil }
