package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/models"
)

// Assigner gates every campaign→TV edge write and every campaign window edit behind the conflict check.
// The (campaign_id, tv_id) primary key in the store backs up the check against concurrent requests.
type Assigner struct {
	campaigns CampaignStore
	tvs       TVGetter
	checker   *Checker
	logger    *zap.Logger
}

// NewAssigner creates the assignment workflow.
func NewAssigner(campaigns CampaignStore, tvs TVGetter, logger *zap.Logger) *Assigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assigner{campaigns: campaigns, tvs: tvs, checker: NewChecker(campaigns), logger: logger}
}

// Assign links campaignID to tvID. created is false when the edge already existed.
func (a *Assigner) Assign(ctx context.Context, campaignID, tvID string) (created bool, err error) {
	if _, err := a.tvs.GetTV(ctx, tvID); err != nil {
		return false, err
	}
	c, err := a.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return false, err
	}
	if err := a.ensureFree(ctx, tvID, c); err != nil {
		return false, err
	}
	created, err = a.campaigns.CreateAssignment(ctx, campaignID, tvID)
	if err != nil {
		return false, fmt.Errorf("create assignment: %w", err)
	}
	if created {
		a.logger.Info("campaign assigned", zap.String("campaign_id", campaignID), zap.String("tv_id", tvID))
	}
	return created, nil
}

// Unassign removes the edge; a missing edge is errs.ErrNotFound.
func (a *Assigner) Unassign(ctx context.Context, campaignID, tvID string) error {
	if err := a.campaigns.DeleteAssignment(ctx, campaignID, tvID); err != nil {
		return err
	}
	a.logger.Info("campaign unassigned", zap.String("campaign_id", campaignID), zap.String("tv_id", tvID))
	return nil
}

// SyncResult lists the edges written by SyncAssignments.
type SyncResult struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// SyncAssignments makes the campaign's TV set equal to tvIDs. Every addition is checked before
// any write; the first conflict aborts the whole operation.
func (a *Assigner) SyncAssignments(ctx context.Context, campaignID string, tvIDs []string) (*SyncResult, error) {
	c, err := a.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	want := dedupe(tvIDs)
	res := &SyncResult{Added: []string{}, Removed: []string{}}
	for _, tvID := range want {
		if !c.IsAssignedTo(tvID) {
			res.Added = append(res.Added, tvID)
		}
	}
	for _, tvID := range c.AssignedTVIDs {
		if !slices.Contains(want, tvID) {
			res.Removed = append(res.Removed, tvID)
		}
	}

	for _, tvID := range res.Added {
		if _, err := a.tvs.GetTV(ctx, tvID); err != nil {
			return nil, err
		}
		if err := a.ensureFree(ctx, tvID, c); err != nil {
			return nil, err
		}
	}
	for _, tvID := range res.Added {
		if _, err := a.campaigns.CreateAssignment(ctx, campaignID, tvID); err != nil {
			return nil, fmt.Errorf("create assignment %s: %w", tvID, err)
		}
	}
	for _, tvID := range res.Removed {
		if err := a.campaigns.DeleteAssignment(ctx, campaignID, tvID); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("delete assignment %s: %w", tvID, err)
		}
	}
	a.logger.Info("campaign assignments synced", zap.String("campaign_id", campaignID),
		zap.Strings("added", res.Added), zap.Strings("removed", res.Removed))
	return res, nil
}

// UpdateCampaign renames and/or moves a campaign window. The new window is checked against
// every TV the campaign already occupies and must still contain every ad sub-window.
func (a *Assigner) UpdateCampaign(ctx context.Context, campaignID, name string, window models.Interval) (*models.Campaign, error) {
	if err := models.ValidateCampaign(name, window); err != nil {
		return nil, err
	}
	c, err := a.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	for _, ad := range c.Ads {
		if ad.Window != nil && !models.Contains(window, *ad.Window) {
			return nil, errs.Invalid("window", "ad %q window falls outside the new campaign window", ad.Name)
		}
	}
	updated := *c
	updated.Name = name
	updated.Window = window
	for _, tvID := range c.AssignedTVIDs {
		if err := a.ensureFree(ctx, tvID, &updated); err != nil {
			return nil, err
		}
	}
	if err := a.campaigns.UpdateCampaign(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	return &updated, nil
}

func (a *Assigner) ensureFree(ctx context.Context, tvID string, c *models.Campaign) error {
	conflict, err := a.checker.Check(ctx, tvID, Candidate{CampaignID: c.ID, Window: c.Window})
	if err != nil {
		return err
	}
	if conflict != nil {
		a.logger.Info("scheduling conflict",
			zap.String("campaign_id", c.ID), zap.String("tv_id", tvID), zap.String("conflicting_campaign_id", conflict.ID))
		return &ConflictError{TVID: tvID, CampaignID: c.ID, Conflicting: *conflict}
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, errs.ErrNotFound)
}
