package schedule

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/agro-ad/backend/internal/models"
)

// Resolver computes the active-ad queue of a TV.
type Resolver struct {
	campaigns AssignedLister
	tvs       TVGetter
}

// NewResolver creates an active-ad resolver.
func NewResolver(campaigns AssignedLister, tvs TVGetter) *Resolver {
	return &Resolver{campaigns: campaigns, tvs: tvs}
}

// Resolve returns the TV and its ads eligible at now. A missing TV is errs.ErrNotFound;
// an empty queue is not an error.
func (r *Resolver) Resolve(ctx context.Context, tvID string, now time.Time) (*models.TV, []models.ActiveAd, error) {
	tv, err := r.tvs.GetTV(ctx, tvID)
	if err != nil {
		return nil, nil, err
	}
	campaigns, err := r.campaigns.ListCampaignsAssignedTo(ctx, tvID)
	if err != nil {
		return nil, nil, fmt.Errorf("list campaigns for tv %s: %w", tvID, err)
	}
	return tv, ActiveAds(campaigns, now), nil
}

// ActiveAds filters the campaigns assigned to one TV down to the ads playable at now,
// ordered by ad name (then id).
func ActiveAds(campaigns []models.Campaign, now time.Time) []models.ActiveAd {
	out := []models.ActiveAd{}
	for i := range campaigns {
		c := &campaigns[i]
		if !c.IsLive(now) {
			continue
		}
		for j := range c.Ads {
			ad := c.Ads[j]
			eff := ad.EffectiveWindow(c.Window)
			if eff.IsEmpty() || !eff.Includes(now) {
				continue
			}
			out = append(out, models.ActiveAd{AdMedia: ad, CampaignName: c.Name})
		}
	}
	slices.SortStableFunc(out, func(a, b models.ActiveAd) int {
		if n := cmp.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
