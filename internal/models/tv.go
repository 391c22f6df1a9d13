package models

import "time"

// TV is one physical display. Its campaigns are reached through assignments.
type TV struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DisplayPath string    `json:"display_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayPathFor returns the public queue path a display polls for tvID.
func DisplayPathFor(tvID string) string {
	return "/display/tvs/" + tvID + "/queue"
}
