package channel

import "fmt"

// ResourceError is returned by Load when a resource cannot be opened or decoded.
type ResourceError struct {
	Channel  string
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s channel: cannot load %s: %v", e.Channel, e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// PlaybackError reports a hard device or decoding failure during Play.
type PlaybackError struct {
	Channel  string
	Resource string
	Err      error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("%s channel: playback of %s failed: %v", e.Channel, e.Resource, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }
