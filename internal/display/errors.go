package display

import "fmt"

// MediaPlaybackError means an ad's media could not be loaded. The session logs it and keeps rotating.
type MediaPlaybackError struct {
	AdID string
	URL  string
	Err  error
}

func (e *MediaPlaybackError) Error() string {
	return fmt.Sprintf("media playback failed for ad %s (%s): %v", e.AdID, e.URL, e.Err)
}

func (e *MediaPlaybackError) Unwrap() error { return e.Err }
