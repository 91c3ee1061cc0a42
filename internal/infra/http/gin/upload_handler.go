package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	riderssvc "riderlink/internal/app/services/riders"
	sponsorssvc "riderlink/internal/app/services/sponsors"
	"riderlink/internal/domain/participant"
	"riderlink/internal/infra/storage/s3"
)

// maxAvatarBytes bounds avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

// UploadHTTP exposes media upload endpoints.
type UploadHTTP interface {
	Avatar(c *gin.Context)
}

// UploadHandler streams avatar images to object storage and records the
// resulting public URL on the caller's profile.
type UploadHandler struct {
	Uploader s3.Uploader
	Riders   *riderssvc.Service
	Sponsors *sponsorssvc.Service
	Logger   *slog.Logger
}

func (h UploadHandler) Avatar(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size > maxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 5MB"})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be an image"})
		return
	}
	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("avatars/%s/%s/%s%s",
		p.Participant.UserType, p.Participant.UserID, uuid.NewString(), filepath.Ext(header.Filename))
	url, err := h.Uploader.Upload(c.Request.Context(), key, src, contentType)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("avatar upload failed", "user_id", p.Participant.UserID, "error", err)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upload unavailable"})
		return
	}

	switch p.Participant.UserType {
	case participant.TypeRider:
		err = h.Riders.SetAvatar(c.Request.Context(), p.Participant.UserID, url)
	case participant.TypeSponsor:
		err = h.Sponsors.SetAvatar(c.Request.Context(), p.Participant.UserID, url)
	}
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

var _ UploadHTTP = (*UploadHandler)(nil)
