package campaigns

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agro-ad/backend/internal/httperr"
	"github.com/agro-ad/backend/internal/models"
	"github.com/agro-ad/backend/internal/schedule"
	"github.com/agro-ad/backend/pkg/response"
)

// Stats are the dashboard counters.
type Stats struct {
	TVs             int `json:"tvs"`
	Campaigns       int `json:"campaigns"`
	ActiveCampaigns int `json:"active_campaigns"`
}

// Store is the campaign persistence the handler needs.
type Store interface {
	schedule.CampaignStore
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	CreateCampaign(ctx context.Context, c *models.Campaign) error
	DeleteCampaign(ctx context.Context, id string) ([]models.AdMedia, error)
	CreateAd(ctx context.Context, a *models.AdMedia) error
	GetAd(ctx context.Context, campaignID, adID string) (*models.AdMedia, error)
	UpdateAd(ctx context.Context, a *models.AdMedia) error
	DeleteAd(ctx context.Context, campaignID, adID string) (*models.AdMedia, error)
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}

// MediaCleaner schedules removal of stored media objects.
type MediaCleaner interface {
	EnqueueMediaDelete(ctx context.Context, keys []string) error
}

// CampaignRequest is the body for POST /campaigns.
type CampaignRequest struct {
	Name   string          `json:"name" binding:"required"`
	Window models.Interval `json:"window"`
}

// CampaignPatch is the body for PATCH /campaigns/:id. Absent fields are left unchanged.
type CampaignPatch struct {
	Name   *string          `json:"name"`
	Window *models.Interval `json:"window"`
}

// AdRequest is the body for POST /campaigns/:id/ads.
type AdRequest struct {
	Name           string           `json:"name" binding:"required"`
	Kind           models.MediaKind `json:"kind" binding:"required"`
	MediaURL       string           `json:"media_url" binding:"required"`
	MediaKey       string           `json:"media_key"`
	FileName       string           `json:"file_name"`
	DisplaySeconds *int             `json:"display_seconds"`
	Window         *models.Interval `json:"window"`
}

// AdPatch is the body for PATCH /campaigns/:id/ads/:adId. ClearWindow makes the ad inherit the campaign window.
type AdPatch struct {
	Name           *string           `json:"name"`
	Kind           *models.MediaKind `json:"kind"`
	MediaURL       *string           `json:"media_url"`
	MediaKey       *string           `json:"media_key"`
	FileName       *string           `json:"file_name"`
	DisplaySeconds *int              `json:"display_seconds"`
	Window         *models.Interval  `json:"window"`
	ClearWindow    bool              `json:"clear_window"`
}

// AssignmentsRequest is the body for PUT /campaigns/:id/tvs.
type AssignmentsRequest struct {
	TVIDs []string `json:"tv_ids"`
}

// Handler handles campaign, ad, assignment and dashboard endpoints.
type Handler struct {
	store    Store
	assigner *schedule.Assigner
	cleaner  MediaCleaner
	now      func() time.Time
	logger   *zap.Logger
}

// NewHandler creates a campaign handler. cleaner may be nil, in which case stored media is left in place.
func NewHandler(store Store, assigner *schedule.Assigner, cleaner MediaCleaner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, assigner: assigner, cleaner: cleaner, now: time.Now, logger: logger}
}

// Dashboard handles GET /dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), h.now())
	if err != nil {
		httperr.Write(c, h.logger, "load dashboard", err)
		return
	}
	response.OK(c, stats)
}

// List handles GET /campaigns.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.ListCampaigns(c.Request.Context())
	if err != nil {
		httperr.Write(c, h.logger, "list campaigns", err)
		return
	}
	response.OK(c, list)
}

// Create handles POST /campaigns.
func (h *Handler) Create(c *gin.Context) {
	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := models.ValidateCampaign(name, req.Window); err != nil {
		httperr.Write(c, h.logger, "create campaign", err)
		return
	}
	campaign := &models.Campaign{Name: name, Window: req.Window}
	if err := h.store.CreateCampaign(c.Request.Context(), campaign); err != nil {
		httperr.Write(c, h.logger, "create campaign", err)
		return
	}
	h.logger.Info("campaign created", zap.String("campaign_id", campaign.ID))
	response.Created(c, campaign)
}

// Get handles GET /campaigns/:id.
func (h *Handler) Get(c *gin.Context) {
	campaign, err := h.store.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, h.logger, "get campaign", err)
		return
	}
	response.OK(c, campaign)
}

// Update handles PATCH /campaigns/:id. A new window is re-checked against every assigned TV.
func (h *Handler) Update(c *gin.Context) {
	var req CampaignPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	current, err := h.store.GetCampaign(ctx, c.Param("id"))
	if err != nil {
		httperr.Write(c, h.logger, "update campaign", err)
		return
	}
	name, window := current.Name, current.Window
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Window != nil {
		window = *req.Window
	}
	updated, err := h.assigner.UpdateCampaign(ctx, current.ID, name, window)
	if err != nil {
		httperr.Write(c, h.logger, "update campaign", err)
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /campaigns/:id. Ads and assignments are removed with it.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.store.DeleteCampaign(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, h.logger, "delete campaign", err)
		return
	}
	h.cleanup(c.Request.Context(), removed...)
	h.logger.Info("campaign deleted", zap.String("campaign_id", id), zap.Int("ads", len(removed)))
	response.NoContent(c)
}

// CreateAd handles POST /campaigns/:id/ads.
func (h *Handler) CreateAd(c *gin.Context) {
	var req AdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	campaign, err := h.store.GetCampaign(ctx, c.Param("id"))
	if err != nil {
		httperr.Write(c, h.logger, "create ad", err)
		return
	}
	ad := &models.AdMedia{
		CampaignID:     campaign.ID,
		Name:           strings.TrimSpace(req.Name),
		Kind:           req.Kind,
		MediaURL:       req.MediaURL,
		MediaKey:       req.MediaKey,
		FileName:       req.FileName,
		DisplaySeconds: req.DisplaySeconds,
		Window:         req.Window,
	}
	if ad.Kind == models.MediaVideo {
		ad.DisplaySeconds = nil
	}
	if err := ad.Validate(campaign.Window); err != nil {
		httperr.Write(c, h.logger, "create ad", err)
		return
	}
	if err := h.store.CreateAd(ctx, ad); err != nil {
		httperr.Write(c, h.logger, "create ad", err)
		return
	}
	response.Created(c, ad)
}

// UpdateAd handles PATCH /campaigns/:id/ads/:adId.
func (h *Handler) UpdateAd(c *gin.Context) {
	var req AdPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	campaign, err := h.store.GetCampaign(ctx, c.Param("id"))
	if err != nil {
		httperr.Write(c, h.logger, "update ad", err)
		return
	}
	ad, err := h.store.GetAd(ctx, campaign.ID, c.Param("adId"))
	if err != nil {
		httperr.Write(c, h.logger, "update ad", err)
		return
	}
	oldKey := ad.MediaKey
	applyAdPatch(ad, &req)
	if err := ad.Validate(campaign.Window); err != nil {
		httperr.Write(c, h.logger, "update ad", err)
		return
	}
	if err := h.store.UpdateAd(ctx, ad); err != nil {
		httperr.Write(c, h.logger, "update ad", err)
		return
	}
	if oldKey != "" && oldKey != ad.MediaKey {
		h.cleanup(ctx, models.AdMedia{MediaKey: oldKey})
	}
	response.OK(c, ad)
}

func applyAdPatch(ad *models.AdMedia, req *AdPatch) {
	if req.Name != nil {
		ad.Name = strings.TrimSpace(*req.Name)
	}
	if req.Kind != nil {
		ad.Kind = *req.Kind
	}
	if req.MediaURL != nil {
		ad.MediaURL = *req.MediaURL
	}
	if req.MediaKey != nil {
		ad.MediaKey = *req.MediaKey
	}
	if req.FileName != nil {
		ad.FileName = *req.FileName
	}
	if req.DisplaySeconds != nil {
		ad.DisplaySeconds = req.DisplaySeconds
	}
	if req.ClearWindow {
		ad.Window = nil
	} else if req.Window != nil {
		ad.Window = req.Window
	}
	if ad.Kind == models.MediaVideo {
		ad.DisplaySeconds = nil
	}
}

// DeleteAd handles DELETE /campaigns/:id/ads/:adId.
func (h *Handler) DeleteAd(c *gin.Context) {
	ad, err := h.store.DeleteAd(c.Request.Context(), c.Param("id"), c.Param("adId"))
	if err != nil {
		httperr.Write(c, h.logger, "delete ad", err)
		return
	}
	h.cleanup(c.Request.Context(), *ad)
	response.NoContent(c)
}

// Assign handles POST /campaigns/:id/tvs/:tvId. Re-assigning is a no-op success.
func (h *Handler) Assign(c *gin.Context) {
	campaignID, tvID := c.Param("id"), c.Param("tvId")
	created, err := h.assigner.Assign(c.Request.Context(), campaignID, tvID)
	if err != nil {
		httperr.Write(c, h.logger, "assign campaign", err)
		return
	}
	body := gin.H{"campaign_id": campaignID, "tv_id": tvID, "already_exists": !created}
	if created {
		response.Created(c, body)
		return
	}
	response.OK(c, body)
}

// Unassign handles DELETE /campaigns/:id/tvs/:tvId.
func (h *Handler) Unassign(c *gin.Context) {
	if err := h.assigner.Unassign(c.Request.Context(), c.Param("id"), c.Param("tvId")); err != nil {
		httperr.Write(c, h.logger, "unassign campaign", err)
		return
	}
	response.NoContent(c)
}

// SetAssignments handles PUT /campaigns/:id/tvs.
func (h *Handler) SetAssignments(c *gin.Context) {
	var req AssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.assigner.SyncAssignments(c.Request.Context(), c.Param("id"), req.TVIDs)
	if err != nil {
		httperr.Write(c, h.logger, "set assignments", err)
		return
	}
	response.OK(c, res)
}

func (h *Handler) cleanup(ctx context.Context, ads ...models.AdMedia) {
	if h.cleaner == nil {
		return
	}
	var keys []string
	for _, a := range ads {
		if a.MediaKey != "" {
			keys = append(keys, a.MediaKey)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := h.cleaner.EnqueueMediaDelete(ctx, keys); err != nil {
		h.logger.Warn("enqueue media delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
