package station

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"airadio/internal/config"
	"airadio/internal/domain/show"
	"airadio/internal/radio/audio"
	"airadio/internal/radio/diary"
	"airadio/internal/radio/history"
	"airadio/internal/radio/tts"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

const testShow = `{
  "showTitle": "Late Night Test",
  "introCommentary": "Good evening",
  "outroCommentary": "Good night",
  "dj": {"name": "Nova", "voiceLanguage": "en-GB"},
  "userReactions": {"onFavorite": "Nice one"},
  "playlist": [
    {"type": "song", "track": "song", "commentary": "Here is a song"},
    {"type": "song", "track": "missing"},
    {"type": "joke"},
    {"type": "jingle", "script": "You are listening to test radio"}
  ]
}`

func writeWAV(t *testing.T, path string, d time.Duration) {
	t.Helper()
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	stream, _, err := audio.Silence("song", format, d).Open()
	require.NoError(t, err)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, wav.Encode(f, stream, format))
}

func newTestStation(t *testing.T) (*Station, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	music := filepath.Join(dir, "music")
	require.NoError(t, os.MkdirAll(music, 0755))
	writeWAV(t, filepath.Join(music, "song.wav"), time.Second)

	jokesSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"setup":"Why","punchline":"Because"}`))
	}))
	t.Cleanup(jokesSrv.Close)

	cfg := config.Config{
		TTS:   config.TTSConfig{Type: "mock", Speed: 10, Language: "en-US", Tier: "neural"},
		Audio: config.AudioConfig{Backend: BackendVirtual, SampleRate: 8000, VirtualSpeed: 50, FadeCurve: "linear"},
		Player: config.PlayerConfig{
			DJ:             "the DJ",
			Volume:         0.8,
			MusicRamp:      10 * time.Millisecond,
			SkipFade:       20 * time.Millisecond,
			DuckRamp:       10 * time.Millisecond,
			SummaryTimeout: time.Second,
		},
		Library: config.LibraryConfig{Dir: music},
		History: config.HistoryConfig{Backend: "file", Path: filepath.Join(dir, "history.json")},
		Diary:   config.DiaryConfig{Path: filepath.Join(dir, "diaries")},
		Jokes:   config.JokesConfig{URL: jokesSrv.URL},
		Log:     config.LogConfig{Level: "warn"},
	}

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	out := &bytes.Buffer{}
	return &Station{
		cfg: cfg,
		in:  strings.NewReader(""),
		out: out,
		log: logrus.NewEntry(log),
	}, out
}

func TestPlayRunsShowToTheEnd(t *testing.T) {
	s, out := newTestStation(t)
	showPath := filepath.Join(t.TempDir(), "show.json")
	require.NoError(t, os.WriteFile(showPath, []byte(testShow), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Play(ctx, showPath, PlayOptions{}))

	assert.Contains(t, out.String(), "Thanks for listening")

	stats, err := history.NewFileStore(s.cfg.History.Path).Stats(ctx)
	require.NoError(t, err)
	require.Contains(t, stats, "song")
	assert.Equal(t, int64(1), stats["song"].PlayCount)
	assert.Equal(t, int64(1), stats["song"].FinishCount)
	assert.NotContains(t, stats, "missing")

	entries, err := diary.NewFileDiary(s.cfg.Diary.Path, nil).Entries("Nova")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Short one tonight. Just song.", entries[0].Content)
}

func TestPlayStopsWhenContextEnds(t *testing.T) {
	s, _ := newTestStation(t)
	s.cfg.Audio.VirtualSpeed = 0.001
	showPath := filepath.Join(t.TempDir(), "show.json")
	require.NoError(t, os.WriteFile(showPath, []byte(testShow), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() { done <- s.Play(ctx, showPath, PlayOptions{}) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("play did not stop")
	}
}

func TestPlayMissingShow(t *testing.T) {
	s, _ := newTestStation(t)
	assert.Error(t, s.Play(context.Background(), filepath.Join(t.TempDir(), "nope.json"), PlayOptions{}))
}

func TestPlayRejectsUnknownBackend(t *testing.T) {
	s, _ := newTestStation(t)
	s.cfg.Audio.Backend = "cassette"
	showPath := filepath.Join(t.TempDir(), "show.json")
	require.NoError(t, os.WriteFile(showPath, []byte(testShow), 0644))

	assert.ErrorContains(t, s.Play(context.Background(), showPath, PlayOptions{}), "cassette")
}

func TestSessionConfigPrefersShowHost(t *testing.T) {
	s, _ := newTestStation(t)
	sh := show.New("t", "", "", nil, nil)
	sh.Host = show.Host{Name: "Nova", Language: "es-ES", Engine: "generative"}

	cfg := s.sessionConfig(sh, "")
	assert.Equal(t, "Nova", cfg.DJ)
	assert.Equal(t, "es-ES", cfg.Voice.LanguageTag)
	assert.Equal(t, tts.TierGenerative, cfg.Voice.Tier)

	sh.Host.Engine = "espeak"
	assert.Equal(t, tts.TierNeural, s.sessionConfig(sh, "").Voice.Tier, "unknown tiers keep the configured one")

	assert.Equal(t, "Override", s.sessionConfig(sh, "Override").DJ)
	assert.Equal(t, "the DJ", s.sessionConfig(show.New("t", "", "", nil, nil), "").DJ)
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().Int("limit", 0, "")
	cmd.SetContext(context.Background())
	return cmd
}

func TestCommands(t *testing.T) {
	s, out := newTestStation(t)
	store := history.NewFileStore(s.cfg.History.Path)
	require.NoError(t, store.Record(context.Background(), "tune", history.ActionPlay))
	require.NoError(t, diary.NewFileDiary(s.cfg.Diary.Path, nil).Add("Nova", "Fine night.", diary.KindThought))

	s.ShowHistory(testCommand(), nil)
	assert.Contains(t, out.String(), "tune")

	out.Reset()
	s.ShowDiary(testCommand(), []string{"Nova"})
	assert.Contains(t, out.String(), "Fine night.")

	out.Reset()
	s.ListLibrary(testCommand(), nil)
	assert.Contains(t, out.String(), "song.wav")
	assert.Contains(t, out.String(), "ID: song-")

	out.Reset()
	s.ListEngines(testCommand(), nil)
	assert.Contains(t, out.String(), "mock")

	out.Reset()
	s.ListVoices(testCommand(), nil)
	assert.Contains(t, out.String(), "voices")

	out.Reset()
	s.ShowCacheStatus(testCommand(), nil)
	assert.Contains(t, out.String(), "no cache")
}
