package schedule

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/agro-ad/backend/internal/models"
)

// Candidate is a campaign window about to occupy a TV.
type Candidate struct {
	CampaignID string
	Window     models.Interval
}

// Checker finds campaigns already assigned to a TV whose window overlaps a candidate.
type Checker struct {
	campaigns AssignedLister
}

// NewChecker creates a conflict checker.
func NewChecker(campaigns AssignedLister) *Checker {
	return &Checker{campaigns: campaigns}
}

// Check returns the first conflicting campaign on tvID (by campaign id), or nil.
func (c *Checker) Check(ctx context.Context, tvID string, cand Candidate) (*models.Campaign, error) {
	existing, err := c.campaigns.ListCampaignsAssignedTo(ctx, tvID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns for tv %s: %w", tvID, err)
	}
	return FindConflict(existing, cand), nil
}

// FindConflict ignores the candidate's own campaign and compares campaign-level windows only.
func FindConflict(existing []models.Campaign, cand Candidate) *models.Campaign {
	sorted := slices.Clone(existing)
	slices.SortFunc(sorted, func(a, b models.Campaign) int { return cmp.Compare(a.ID, b.ID) })
	for i := range sorted {
		if sorted[i].ID == cand.CampaignID {
			continue
		}
		if models.Overlaps(sorted[i].Window, cand.Window) {
			found := sorted[i]
			return &found
		}
	}
	return nil
}
