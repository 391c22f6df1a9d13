package display

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/models"
	"github.com/agro-ad/backend/pkg/response"
)

// Resolver returns the ads playable on a TV at now.
type Resolver interface {
	Resolve(ctx context.Context, tvID string, now time.Time) (*models.TV, []models.ActiveAd, error)
}

// Handler serves the public display endpoint.
type Handler struct {
	resolver Resolver
	now      func() time.Time
	logger   *zap.Logger
}

// NewHandler creates a display handler.
func NewHandler(resolver Resolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{resolver: resolver, now: time.Now, logger: logger}
}

// Queue handles GET /display/tvs/:id/queue.
func (h *Handler) Queue(c *gin.Context) {
	tvID := c.Param("id")
	now := h.now()
	tv, ads, err := h.resolver.Resolve(c.Request.Context(), tvID, now)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.NotFound(c, "tv not found")
			return
		}
		h.logger.Error("resolve display queue", zap.String("tv_id", tvID), zap.Error(err))
		response.Internal(c, "failed to resolve queue")
		return
	}
	c.Header("Cache-Control", "no-store")
	response.OK(c, QueueResponse{
		TVID:       tv.ID,
		TVName:     tv.Name,
		ResolvedAt: now.UTC(),
		Ads:        ToQueueItems(ads),
	})
}
