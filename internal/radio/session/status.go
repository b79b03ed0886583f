package session

import (
	"fmt"
	"time"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSpeaking
	PhasePlayingTrack
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSpeaking:
		return "speaking"
	case PhasePlayingTrack:
		return "playing"
	case PhaseEnded:
		return "ended"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for _, c := range []Phase{PhaseIdle, PhaseSpeaking, PhasePlayingTrack, PhaseEnded} {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Cursor is the engine's read position in the show.
type Cursor struct {
	// Position is -1 before the first item and Len() once every item is done.
	Position int
	Phase    Phase
	Closing  bool
}

// Status is what a UI gets to see. It carries no handles into the engine.
type Status struct {
	Session      string    `json:"session"`
	Title        string    `json:"title"`
	Phase        Phase     `json:"phase"`
	Caption      string    `json:"caption"`
	CurrentTrack string    `json:"current_track,omitempty"`
	Position     int       `json:"position"`
	Items        int       `json:"items"`
	Closing      bool      `json:"closing"`
	Volume       float64   `json:"volume"`
	Muted        bool      `json:"muted"`
	Favorited    bool      `json:"favorited"`
	SleepAt      time.Time `json:"sleep_at,omitzero"`
}
