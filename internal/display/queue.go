package display

import (
	"time"

	"github.com/agro-ad/backend/internal/models"
)

// QueueItem is one ad as served to a display.
type QueueItem struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Kind           models.MediaKind `json:"kind"`
	MediaURL       string           `json:"media_url"`
	DisplaySeconds *int             `json:"display_seconds,omitempty"`
	CampaignName   string           `json:"campaign_name"`
}

// QueueResponse is the body of GET /display/tvs/:id/queue.
type QueueResponse struct {
	TVID       string      `json:"tv_id"`
	TVName     string      `json:"tv_name"`
	ResolvedAt time.Time   `json:"resolved_at"`
	Ads        []QueueItem `json:"ads"`
}

// ToQueueItems converts resolver output to the wire form, preserving order.
func ToQueueItems(ads []models.ActiveAd) []QueueItem {
	out := make([]QueueItem, 0, len(ads))
	for _, a := range ads {
		item := QueueItem{
			ID:           a.ID,
			Name:         a.Name,
			Kind:         a.Kind,
			MediaURL:     a.MediaURL,
			CampaignName: a.CampaignName,
		}
		if a.Kind != models.MediaVideo {
			item.DisplaySeconds = a.DisplaySeconds
		}
		out = append(out, item)
	}
	return out
}
