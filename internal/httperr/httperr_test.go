package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/models"
	"github.com/agro-ad/backend/internal/schedule"
)

func TestWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	conflict := &schedule.ConflictError{
		TVID:        "tv1",
		CampaignID:  "c2",
		Conflicting: models.Campaign{ID: "c1", Name: "Winter", Window: models.Interval{Start: start, End: start.Add(time.Hour)}},
	}

	tests := []struct {
		name     string
		err      error
		status   int
		contains string
	}{
		{"validation", errs.Invalid("name", "too short"), http.StatusBadRequest, `"field":"name"`},
		{"conflict", fmt.Errorf("assign: %w", conflict), http.StatusConflict, `"conflicting_campaign_name":"Winter"`},
		{"not found", errs.NotFound("tv", "x"), http.StatusNotFound, "not found"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "failed to do it"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Write(c, zaptest.NewLogger(t), "do it", tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}
