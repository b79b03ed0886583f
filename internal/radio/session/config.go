package session

import (
	"time"

	"airadio/internal/radio/tts"
)

// Config holds the settings an engine is built with. Zero fields take the
// values from DefaultConfig.
type Config struct {
	DJ     string
	Voice  tts.Voice
	Volume float64

	MusicRamp time.Duration
	SkipFade  time.Duration
	DuckLevel float64
	DuckRamp  time.Duration

	ReadyTimeout   time.Duration
	SummaryTimeout time.Duration
	LogTimeout     time.Duration

	Apology        string
	ClosingCaption string // receives the DJ name
	EndCaption     string
	FailureCaption string
	SleepSet       string // receives the minutes
	SleepCancelled string
}

func DefaultConfig() Config {
	return Config{
		DJ:             "the DJ",
		Voice:          tts.Voice{}.WithDefaults(),
		Volume:         0.75,
		MusicRamp:      time.Second,
		SkipFade:       500 * time.Millisecond,
		DuckLevel:      0.3,
		DuckRamp:       300 * time.Millisecond,
		ReadyTimeout:   15 * time.Second,
		SummaryTimeout: 10 * time.Second,
		LogTimeout:     5 * time.Second,
		Apology:        "Sorry, I couldn't find that song this time. Let's keep going.",
		ClosingCaption: "Saving %s's notes about the session...",
		EndCaption:     "End of session.",
		FailureCaption: "Could not reach a narration engine. Please restart the session.",
		SleepSet:       "Sleep timer set for %s minutes.",
		SleepCancelled: "Sleep timer cancelled.",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DJ == "" {
		c.DJ = d.DJ
	}
	c.Voice = c.Voice.WithDefaults()
	if c.Volume < 0 || c.Volume > 1 {
		c.Volume = d.Volume
	}
	if c.MusicRamp <= 0 {
		c.MusicRamp = d.MusicRamp
	}
	if c.SkipFade <= 0 {
		c.SkipFade = d.SkipFade
	}
	if c.DuckLevel <= 0 || c.DuckLevel > 1 {
		c.DuckLevel = d.DuckLevel
	}
	if c.DuckRamp <= 0 {
		c.DuckRamp = d.DuckRamp
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = d.ReadyTimeout
	}
	if c.SummaryTimeout <= 0 {
		c.SummaryTimeout = d.SummaryTimeout
	}
	if c.LogTimeout <= 0 {
		c.LogTimeout = d.LogTimeout
	}
	if c.Apology == "" {
		c.Apology = d.Apology
	}
	if c.ClosingCaption == "" {
		c.ClosingCaption = d.ClosingCaption
	}
	if c.EndCaption == "" {
		c.EndCaption = d.EndCaption
	}
	if c.FailureCaption == "" {
		c.FailureCaption = d.FailureCaption
	}
	if c.SleepSet == "" {
		c.SleepSet = d.SleepSet
	}
	if c.SleepCancelled == "" {
		c.SleepCancelled = d.SleepCancelled
	}
	return c
}
