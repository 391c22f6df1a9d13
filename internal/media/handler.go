package media

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agro-ad/backend/pkg/response"
	"github.com/agro-ad/backend/pkg/storage"
)

// Store is the object storage the upload endpoints need.
type Store interface {
	UploadMedia(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) (string, error)
	GeneratePresignedUploadURL(ctx context.Context, key, contentType string) (string, error)
	MediaURL(key string) string
}

// UploadResult is returned by both upload endpoints. URL is what an ad stores as media_url.
type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Kind        string `json:"kind"`
	Size        int64  `json:"size"`
	UploadURL   string `json:"upload_url,omitempty"`
}

// UploadURLRequest is the body for POST /media/upload-url.
type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size" binding:"required,gt=0"`
}

// Handler handles media upload endpoints.
type Handler struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// NewHandler creates a media handler. store may be nil when S3 is not configured.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, now: time.Now, logger: logger}
}

// Upload handles POST /media/upload (multipart form field "file").
func (h *Handler) Upload(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "media storage not configured")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	ct, mt, err := storage.ValidateMedia(fh.Header.Get("Content-Type"), fh.Filename, fh.Size)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "unreadable file")
		return
	}
	defer f.Close()

	key := storage.MediaKey(h.now(), mt.Ext)
	url, err := h.store.UploadMedia(c.Request.Context(), key, ct, f, fh.Size)
	if err != nil {
		h.logger.Error("media upload failed", zap.String("key", key), zap.Error(err))
		response.Internal(c, "failed to upload media")
		return
	}
	response.Created(c, UploadResult{URL: url, Key: key, FileName: fh.Filename, ContentType: ct, Kind: mt.Kind, Size: fh.Size})
}

// UploadURL handles POST /media/upload-url: a presigned PUT for large files uploaded straight to S3.
func (h *Handler) UploadURL(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "media storage not configured")
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ct, mt, err := storage.ValidateMedia(req.ContentType, req.Filename, req.FileSize)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	key := storage.MediaKey(h.now(), mt.Ext)
	uploadURL, err := h.store.GeneratePresignedUploadURL(c.Request.Context(), key, ct)
	if err != nil {
		h.logger.Error("presign upload failed", zap.String("key", key), zap.Error(err))
		response.Internal(c, "failed to generate upload url")
		return
	}
	response.OK(c, UploadResult{
		URL: h.store.MediaURL(key), Key: key, FileName: req.Filename,
		ContentType: ct, Kind: mt.Kind, Size: req.FileSize, UploadURL: uploadURL,
	})
}
