package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agro-ad/backend/internal/errs"
)

// MediaKind is the type of creative an ad shows.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaGIF   MediaKind = "gif"
	MediaVideo MediaKind = "video"
)

// Valid reports whether k is a known kind.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaImage, MediaGIF, MediaVideo:
		return true
	}
	return false
}

// MinNameLength applies to TV and campaign names.
const MinNameLength = 3

// Campaign is a named bundle of ads with its own window and a set of assigned TVs.
type Campaign struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Window        Interval  `json:"window"`
	Ads           []AdMedia `json:"ads"`
	AssignedTVIDs []string  `json:"assigned_tv_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsLive reports whether now falls inside the campaign window (closed on both ends).
func (c *Campaign) IsLive(now time.Time) bool {
	return c.Window.Includes(now)
}

// IsAssignedTo reports whether tvID is in AssignedTVIDs.
func (c *Campaign) IsAssignedTo(tvID string) bool {
	for _, id := range c.AssignedTVIDs {
		if id == tvID {
			return true
		}
	}
	return false
}

// ValidateName checks a TV or campaign name. Length is counted in characters, as the database does.
func ValidateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLength {
		return errs.Invalid("name", "must be at least %d characters", MinNameLength)
	}
	return nil
}

// ValidateCampaign checks name and window of a campaign about to be written.
func ValidateCampaign(name string, window Interval) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return window.Validate()
}

// AdMedia is one creative owned by a campaign.
type AdMedia struct {
	ID             string    `json:"id"`
	CampaignID     string    `json:"campaign_id"`
	Name           string    `json:"name"`
	Kind           MediaKind `json:"kind"`
	MediaURL       string    `json:"media_url"`
	MediaKey       string    `json:"media_key,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	DisplaySeconds *int      `json:"display_seconds,omitempty"`
	Window         *Interval `json:"window,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// EffectiveWindow is the ad's own window (or the campaign's) clamped to the campaign window.
func (a *AdMedia) EffectiveWindow(campaign Interval) Interval {
	if a.Window == nil {
		return campaign
	}
	return ClampTo(*a.Window, campaign)
}

// Validate checks the ad against its parent campaign window.
func (a *AdMedia) Validate(campaign Interval) error {
	if strings.TrimSpace(a.Name) == "" {
		return errs.Invalid("name", "is required")
	}
	if !a.Kind.Valid() {
		return errs.Invalid("kind", "must be one of image, gif, video")
	}
	if strings.TrimSpace(a.MediaURL) == "" {
		return errs.Invalid("media_url", "is required")
	}
	if a.Kind != MediaVideo {
		if a.DisplaySeconds == nil {
			return errs.Invalid("display_seconds", "is required for %s ads", a.Kind)
		}
		if *a.DisplaySeconds <= 0 {
			return errs.Invalid("display_seconds", "must be greater than zero")
		}
	}
	if a.Window != nil {
		if err := a.Window.Validate(); err != nil {
			return err
		}
		if !Contains(campaign, *a.Window) {
			return errs.Invalid("window", "must fall inside the campaign window")
		}
	}
	return nil
}

// ActiveAd is an ad eligible to play on a TV right now, tagged with its campaign name.
type ActiveAd struct {
	AdMedia
	CampaignName string `json:"campaign_name"`
}
