package tts

import (
	"context"
	"strings"
	"testing"
	"time"

	"airadio/internal/radio/audio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceDefaults(t *testing.T) {
	v := Voice{}.WithDefaults()
	assert.Equal(t, "en-US", v.LanguageTag)
	assert.Equal(t, TierNeural, v.Tier)

	v = Voice{LanguageTag: "es-ES", Tier: "bogus"}.WithDefaults()
	assert.Equal(t, "es-ES", v.LanguageTag)
	assert.Equal(t, TierNeural, v.Tier)

	v = Voice{Tier: TierGenerative}.WithDefaults()
	assert.Equal(t, TierGenerative, v.Tier)
}

func TestMockNarratorLength(t *testing.T) {
	m := NewMockNarrator(Config{Speed: 2, SampleRate: 8000})

	res, err := m.Synthesize(context.Background(), "one two three four five", Voice{})
	require.NoError(t, err)

	d, err := audio.Duration(res)
	require.NoError(t, err)
	// 150 wpm at double speed is 200ms per word
	assert.InDelta(t, float64(time.Second), float64(d), float64(time.Millisecond))
	assert.NoError(t, m.Ready(context.Background()))
}

func TestMockNarratorEmptyText(t *testing.T) {
	m := NewMockNarrator(Config{})
	_, err := m.Synthesize(context.Background(), "   ", Voice{})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestMockNarratorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockNarrator(Config{}).Synthesize(ctx, "hello", Voice{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewNarratorMock(t *testing.T) {
	n, err := NewNarrator(Config{Type: "mock"})
	require.NoError(t, err)
	assert.IsType(t, &MockNarrator{}, n)

	_, err = NewNarrator(Config{Type: "cassette"})
	assert.Error(t, err)
}

func TestAutoSelectionWithoutCredentials(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	assert.Equal(t, EngineTypeMock, bestEngine())
	assert.Equal(t, []EngineType{EngineTypeMock}, GetAvailableEngines())
}

func TestEspeakArgs(t *testing.T) {
	args := espeakArgs(Config{Speed: 1, Volume: 0.8}, Voice{LanguageTag: "es-ES"}, "/tmp/x.wav", "hola")
	assert.Equal(t, []string{"-v", "es", "-s", "175", "-a", "80", "-w", "/tmp/x.wav", "--", "hola"}, args)

	args = espeakArgs(Config{Speed: 2, Volume: 1}, Voice{}, "/tmp/y.wav", "hi")
	assert.Equal(t, []string{"-s", "350", "-a", "100", "-w", "/tmp/y.wav", "--", "hi"}, args)
}

func TestParseESpeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
`
	assert.Equal(t, []string{"Afrikaans", "English_(Great_Britain)"}, parseESpeakVoices(out))
}

func TestVoiceName(t *testing.T) {
	assert.Equal(t, "es-ES-Standard-A", voiceName(Voice{LanguageTag: "es-ES", Tier: TierStandard}))
	assert.Equal(t, "en-US-Neural2-A", voiceName(Voice{}))
	assert.Equal(t, "en-GB-Chirp3-HD-Charon", voiceName(Voice{LanguageTag: "en-GB", Tier: TierGenerative}))
}

func TestSplitIntoChunks(t *testing.T) {
	text := strings.Repeat("ñ", 10)
	chunks := splitIntoChunks(text, 4)
	assert.Equal(t, []string{"ññññ", "ññññ", "ññ"}, chunks)
	assert.Empty(t, splitIntoChunks("", 4))
}

func TestCachePathDependsOnVoice(t *testing.T) {
	g := &GoogleClassicNarrator{cacheRootDir: "/cache"}
	a := g.cachePath("hello", Voice{LanguageTag: "en-US", Tier: TierStandard})
	b := g.cachePath("hello", Voice{LanguageTag: "en-US", Tier: TierNeural})
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "/cache/en-us/"))
	assert.Equal(t, a, g.cachePath("hello", Voice{LanguageTag: "en-US", Tier: TierStandard}))
}

func TestSayArgs(t *testing.T) {
	args := sayArgs(Config{Speed: 1.2, SampleRate: 22050}, "/tmp/x.wav", "hello there")
	assert.Equal(t, []string{
		"-r", "210", "-o", "/tmp/x.wav", "--file-format=WAVE", "--data-format=LEI16@22050", "--", "hello there",
	}, args)
}

func TestParseSayVoices(t *testing.T) {
	out := `Alex                en_US    # Most people recognize me by my voice.
Bad News            en_US    # The light you see at the end of the tunnel is the headlamp of a fast approaching train.
Monica              es_ES    # Hola, me llamo Mónica.
`
	assert.Equal(t, []string{"Alex", "Bad News", "Monica"}, parseSayVoices(out))
}

func TestSAPIScriptQuotes(t *testing.T) {
	script := sapiScript(Config{Speed: 1.5, Volume: 2}, Voice{LanguageTag: "en-GB"}, `C:\tmp\x.wav`, "it's late")
	assert.Contains(t, script, "$synth.Rate = 5;")
	assert.Contains(t, script, "$synth.Volume = 100;")
	assert.Contains(t, script, "[System.Globalization.CultureInfo]'en-GB'")
	assert.Contains(t, script, "$synth.Speak('it''s late')")
}

func TestPlatformEngineRequiresItsOS(t *testing.T) {
	if platformEngine() != "" {
		t.Skip("a platform engine is available here")
	}
	_, err := NewNarrator(Config{Type: "avfoundation"})
	assert.Error(t, err)
	_, err = NewNarrator(Config{Type: "sapi"})
	assert.Error(t, err)
}
