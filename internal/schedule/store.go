package schedule

import (
	"context"

	"github.com/agro-ad/backend/internal/models"
)

// AssignedLister lists campaigns assigned to a TV, with their ads and assigned TV ids populated.
type AssignedLister interface {
	ListCampaignsAssignedTo(ctx context.Context, tvID string) ([]models.Campaign, error)
}

// TVGetter loads a TV; a missing TV yields an error wrapping errs.ErrNotFound.
type TVGetter interface {
	GetTV(ctx context.Context, id string) (*models.TV, error)
}

// CampaignStore is the persistence the assignment workflow needs.
type CampaignStore interface {
	AssignedLister
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	UpdateCampaign(ctx context.Context, c *models.Campaign) error
	// CreateAssignment reports created=false when the edge already exists.
	CreateAssignment(ctx context.Context, campaignID, tvID string) (created bool, err error)
	// DeleteAssignment returns an error wrapping errs.ErrNotFound when the edge does not exist.
	DeleteAssignment(ctx context.Context, campaignID, tvID string) error
}
