package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Action int

const (
	ActionNone Action = iota
	ActionFavorite
	ActionSkip
	ActionMute
	ActionVolumeUp
	ActionVolumeDown
	ActionVolume
	ActionSleep
	ActionHelp
	ActionQuit
)

// VolumeStep is how much + and - move the volume.
const VolumeStep = 0.1

var ErrUnknownCommand = errors.New("unknown command")

type Command struct {
	Action Action
	Volume float64       // ActionVolume, 0..1
	Sleep  time.Duration // ActionSleep, 0 cancels
}

// Parse reads one line typed at the console.
func Parse(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{Action: ActionNone}, nil
	}

	switch fields[0] {
	case "f", "fav", "favorite", "favourite", "like":
		return Command{Action: ActionFavorite}, nil
	case "s", "skip", "d", "dislike", "n", "next":
		return Command{Action: ActionSkip}, nil
	case "m", "mute", "unmute":
		return Command{Action: ActionMute}, nil
	case "+", "up":
		return Command{Action: ActionVolumeUp}, nil
	case "-", "down":
		return Command{Action: ActionVolumeDown}, nil
	case "h", "?", "help":
		return Command{Action: ActionHelp}, nil
	case "q", "quit", "exit":
		return Command{Action: ActionQuit}, nil
	case "v", "vol", "volume":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("usage: v <0-100>")
		}
		n, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || n < 0 || n > 100 {
			return Command{}, fmt.Errorf("volume must be a number from 0 to 100")
		}
		return Command{Action: ActionVolume, Volume: n / 100}, nil
	case "t", "sleep", "timer":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("usage: t <minutes> | t off")
		}
		if fields[1] == "off" || fields[1] == "0" {
			return Command{Action: ActionSleep}, nil
		}
		n, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || n <= 0 {
			return Command{}, fmt.Errorf("sleep timer needs a positive number of minutes")
		}
		return Command{Action: ActionSleep, Sleep: time.Duration(n * float64(time.Minute))}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}
