package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"airadio/internal/radio/audio"

	"github.com/faiface/beep"
)

// MockNarrator produces a quiet tone as long as the text would take to read
// at 150 words per minute, scaled by speed.
type MockNarrator struct {
	format  beep.Format
	perWord time.Duration
}

func NewMockNarrator(c Config) *MockNarrator {
	speed := c.Speed
	if speed <= 0 {
		speed = 1
	}
	rate := c.SampleRate
	if rate <= 0 {
		rate = 22050
	}
	return &MockNarrator{
		format:  beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2},
		perWord: time.Duration(float64(time.Minute) / 150 / speed),
	}
}

func (m *MockNarrator) Synthesize(ctx context.Context, text string, voice Voice) (audio.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return nil, fmt.Errorf("%w: nothing to say", ErrGenerationFailed)
	}
	name := fmt.Sprintf("mock-%s-%d", voice.WithDefaults().LanguageTag, words)
	return audio.Tone(name, m.format, 330, time.Duration(words)*m.perWord), nil
}

func (m *MockNarrator) Ready(ctx context.Context) error {
	return nil
}

func (m *MockNarrator) Voices(ctx context.Context) ([]string, error) {
	return []string{"mock-voice"}, nil
}
