package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/agro-ad/backend/internal/models"
)

// ConflictError is a scheduling conflict: another campaign already holds the TV for an overlapping window.
type ConflictError struct {
	TVID        string
	CampaignID  string
	Conflicting models.Campaign
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("campaign %q conflicts with campaign %q on tv %q (%s - %s)",
		e.CampaignID, e.Conflicting.Name, e.TVID,
		e.Conflicting.Window.Start.Format(time.RFC3339), e.Conflicting.Window.End.Format(time.RFC3339))
}

// ConflictPayload is the operator-facing description of a conflict.
type ConflictPayload struct {
	TVID                    string          `json:"tv_id"`
	ConflictingCampaignID   string          `json:"conflicting_campaign_id"`
	ConflictingCampaignName string          `json:"conflicting_campaign_name"`
	ConflictingWindow       models.Interval `json:"conflicting_window"`
}

// Payload returns the JSON body for an HTTP 409.
func (e *ConflictError) Payload() ConflictPayload {
	return ConflictPayload{
		TVID:                    e.TVID,
		ConflictingCampaignID:   e.Conflicting.ID,
		ConflictingCampaignName: e.Conflicting.Name,
		ConflictingWindow:       e.Conflicting.Window,
	}
}

// AsConflict unwraps err to a *ConflictError.
func AsConflict(err error) (*ConflictError, bool) {
	var c *ConflictError
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}
