// internal/radio/tts/tts.go
package tts

import (
	"context"
	"errors"

	"airadio/internal/radio/audio"
)

var (
	// ErrGenerationFailed covers provider and network failures while synthesising.
	ErrGenerationFailed = errors.New("narration generation failed")
	// ErrPlaybackRejected means the synthesised audio could not be played.
	ErrPlaybackRejected = errors.New("narration playback rejected")
)

// Tier selects the quality/price band of a provider's voices.
type Tier string

const (
	TierStandard   Tier = "standard"
	TierNeural     Tier = "neural"
	TierGenerative Tier = "generative"
)

// Voice carries the parameters passed with every narration request.
type Voice struct {
	LanguageTag string `json:"language_tag"`
	Tier        Tier   `json:"tier"`
}

// WithDefaults fills in empty fields.
func (v Voice) WithDefaults() Voice {
	if v.LanguageTag == "" {
		v.LanguageTag = "en-US"
	}
	switch v.Tier {
	case TierStandard, TierNeural, TierGenerative:
	default:
		v.Tier = TierNeural
	}
	return v
}

type Config struct {
	Type       string
	Speed      float64
	Volume     float64
	CachePath  string
	SampleRate int
}

// Narrator turns a line of text into a playable resource.
type Narrator interface {
	Synthesize(ctx context.Context, text string, voice Voice) (audio.Resource, error)
	// Ready reports whether the provider can be reached at all.
	Ready(ctx context.Context) error
	Voices(ctx context.Context) ([]string, error)
}

// CacheableNarrator extends Narrator with cache management
type CacheableNarrator interface {
	Narrator
	CacheStats() (map[string]interface{}, error)
	ClearCache() error
}

// VoiceInfo provides detailed information about available voices
type VoiceInfo struct {
	Name         string `json:"name"`
	LanguageCode string `json:"language_code"`
	Gender       string `json:"gender"`
	Natural      bool   `json:"natural"`
	Description  string `json:"description"`
}

type VoiceDescriber interface {
	VoiceInfo(ctx context.Context) ([]VoiceInfo, error)
}
