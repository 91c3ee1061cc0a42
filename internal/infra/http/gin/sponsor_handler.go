package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	sponsorssvc "riderlink/internal/app/services/sponsors"
	"riderlink/internal/domain/participant"
)

// SponsorHTTP exposes sponsor profile endpoints.
type SponsorHTTP interface {
	Get(c *gin.Context)
	UpdateProfile(c *gin.Context)
}

type SponsorHandler struct {
	Service *sponsorssvc.Service
	Logger  *slog.Logger
}

func (h SponsorHandler) Get(c *gin.Context) {
	id, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	card, err := h.Service.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

type updateSponsorProfileRequest struct {
	DisplayName string `json:"display_name"`
	ContactName string `json:"contact_name"`
	Website     string `json:"website"`
	Country     string `json:"country"`
	About       string `json:"about"`
}

func (h SponsorHandler) UpdateProfile(c *gin.Context) {
	p, ok := requireUserType(c, participant.TypeSponsor)
	if !ok {
		return
	}
	var req updateSponsorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	card, err := h.Service.UpdateProfile(c.Request.Context(), p.Participant.UserID, sponsorssvc.UpdateProfileParams{
		DisplayName: req.DisplayName,
		ContactName: req.ContactName,
		Website:     req.Website,
		Country:     req.Country,
		About:       req.About,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

var _ SponsorHTTP = (*SponsorHandler)(nil)
