package handlers

import (
	"errors"
	"net/http"

	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Upload Handler
// ============================================

// UploadHandler mirrors the standalone presign function: every failure is a
// 400 with a single {error} message.
type UploadHandler struct {
	uploadService service.UploadService
}

func uploadErrorMessage(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		if msg, ok := verr.Fields["fileName"]; ok {
			return "fileName " + msg
		}
		return "fileName is required"
	case errors.Is(err, service.ErrStorageUnavailable):
		return "storage is not configured"
	default:
		return "could not sign upload"
	}
}

// Presign
// POST /api/uploads/presign
func (h *UploadHandler) Presign(c *gin.Context) {
	var req models.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	url, err := h.uploadService.Presign(c.Request.Context(), req.FileName, req.ContentType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": uploadErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, models.PresignResponse{
		PresignedURL: url,
		ExpiresIn:    int(h.uploadService.Expiry().Seconds()),
	})
}
