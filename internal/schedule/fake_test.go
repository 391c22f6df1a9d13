package schedule

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/models"
)

var day0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return day0.AddDate(0, 0, n) }

func window(from, to time.Time) models.Interval { return models.Interval{Start: from, End: to} }

// memStore is an in-memory CampaignStore + TVGetter.
type memStore struct {
	mu        sync.Mutex
	tvs       map[string]models.TV
	campaigns map[string]models.Campaign
	edges     map[string]map[string]bool // campaign -> tv
	writes    int
}

func newMemStore() *memStore {
	return &memStore{
		tvs:       map[string]models.TV{},
		campaigns: map[string]models.Campaign{},
		edges:     map[string]map[string]bool{},
	}
}

func (m *memStore) addTV(id string) {
	m.tvs[id] = models.TV{ID: id, Name: "tv-" + id, DisplayPath: models.DisplayPathFor(id)}
}

func (m *memStore) addCampaign(c models.Campaign) {
	m.campaigns[c.ID] = c
}

func (m *memStore) link(campaignID, tvID string) {
	if m.edges[campaignID] == nil {
		m.edges[campaignID] = map[string]bool{}
	}
	m.edges[campaignID][tvID] = true
}

func (m *memStore) hydrate(c models.Campaign) models.Campaign {
	c.AssignedTVIDs = []string{}
	for tv := range m.edges[c.ID] {
		c.AssignedTVIDs = append(c.AssignedTVIDs, tv)
	}
	sort.Strings(c.AssignedTVIDs)
	c.Ads = slices.Clone(c.Ads)
	return c
}

func (m *memStore) GetTV(_ context.Context, id string) (*models.TV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tv, ok := m.tvs[id]
	if !ok {
		return nil, errs.NotFound("tv", id)
	}
	return &tv, nil
}

func (m *memStore) ListCampaignsAssignedTo(_ context.Context, tvID string) ([]models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Campaign
	for id, c := range m.campaigns {
		if m.edges[id][tvID] {
			out = append(out, m.hydrate(c))
		}
	}
	return out, nil
}

func (m *memStore) GetCampaign(_ context.Context, id string) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, errs.NotFound("campaign", id)
	}
	h := m.hydrate(c)
	return &h, nil
}

func (m *memStore) UpdateCampaign(_ context.Context, c *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[c.ID]; !ok {
		return errs.NotFound("campaign", c.ID)
	}
	m.writes++
	m.campaigns[c.ID] = *c
	return nil
}

func (m *memStore) CreateAssignment(_ context.Context, campaignID, tvID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edges[campaignID][tvID] {
		return false, nil
	}
	m.writes++
	m.link(campaignID, tvID)
	return true, nil
}

func (m *memStore) DeleteAssignment(_ context.Context, campaignID, tvID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.edges[campaignID][tvID] {
		return errs.NotFound("assignment", campaignID+"/"+tvID)
	}
	m.writes++
	delete(m.edges[campaignID], tvID)
	return nil
}
