package tvs

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agro-ad/backend/internal/httperr"
	"github.com/agro-ad/backend/internal/models"
	"github.com/agro-ad/backend/pkg/response"
)

// Store is the TV persistence the handler needs.
type Store interface {
	Create(ctx context.Context, tv *models.TV) error
	GetTV(ctx context.Context, id string) (*models.TV, error)
	List(ctx context.Context) ([]models.TV, error)
	Update(ctx context.Context, tv *models.TV) error
	Delete(ctx context.Context, id string) error
}

// CreateRequest is the body for POST /tvs.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateRequest is the body for PATCH /tvs/:id. Absent fields are left unchanged.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Handler handles TV HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a TV handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

func validateName(name string) error {
	return models.ValidateName(name)
}

// List handles GET /tvs.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		httperr.Write(c, h.logger, "list tvs", err)
		return
	}
	response.OK(c, list)
}

// Create handles POST /tvs.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := validateName(req.Name); err != nil {
		httperr.Write(c, h.logger, "create tv", err)
		return
	}
	tv := &models.TV{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.store.Create(c.Request.Context(), tv); err != nil {
		httperr.Write(c, h.logger, "create tv", err)
		return
	}
	h.logger.Info("tv created", zap.String("tv_id", tv.ID))
	response.Created(c, tv)
}

// Get handles GET /tvs/:id.
func (h *Handler) Get(c *gin.Context) {
	tv, err := h.store.GetTV(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, h.logger, "get tv", err)
		return
	}
	response.OK(c, tv)
}

// Update handles PATCH /tvs/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tv, err := h.store.GetTV(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, h.logger, "update tv", err)
		return
	}
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			httperr.Write(c, h.logger, "update tv", err)
			return
		}
		tv.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		tv.Description = *req.Description
	}
	if err := h.store.Update(c.Request.Context(), tv); err != nil {
		httperr.Write(c, h.logger, "update tv", err)
		return
	}
	response.OK(c, tv)
}

// Delete handles DELETE /tvs/:id.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httperr.Write(c, h.logger, "delete tv", err)
		return
	}
	h.logger.Info("tv deleted", zap.String("tv_id", id))
	response.NoContent(c)
}
