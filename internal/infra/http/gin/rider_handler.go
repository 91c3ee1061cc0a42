package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"riderlink/internal/app/dto"
	riderssvc "riderlink/internal/app/services/riders"
	"riderlink/internal/domain/participant"
)

// RiderHTTP exposes rider discovery and self-service profile endpoints.
type RiderHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
	UpdateProfile(c *gin.Context)
}

type RiderHandler struct {
	Service *riderssvc.Service
	Logger  *slog.Logger
}

// Search runs the filtered rider search. Filters arrive as a JSON body so
// array filters and the age range stay structured.
func (h RiderHandler) Search(c *gin.Context) {
	var req dto.RiderSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.Service.Search(c.Request.Context(), req.Filters())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one public rider profile and counts the view.
func (h RiderHandler) Get(c *gin.Context) {
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

type updateRiderProfileRequest struct {
	DisplayName  string   `json:"display_name"`
	Bio          string   `json:"bio"`
	Sports       []string `json:"sports"`
	Languages    []string `json:"languages"`
	Availability *bool    `json:"availability"`
	ContractType string   `json:"contract_type"`
	Country      string   `json:"country"`
	Gender       string   `json:"gender"`
}

// UpdateProfile applies partial updates to the caller's own profile.
func (h RiderHandler) UpdateProfile(c *gin.Context) {
	p, ok := requireUserType(c, participant.TypeRider)
	if !ok {
		return
	}
	var req updateRiderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	card, err := h.Service.UpdateProfile(c.Request.Context(), p.Participant.UserID, riderssvc.UpdateProfileParams{
		DisplayName:  req.DisplayName,
		Bio:          req.Bio,
		Sports:       req.Sports,
		Languages:    req.Languages,
		Availability: req.Availability,
		ContractType: req.ContractType,
		Country:      req.Country,
		Gender:       req.Gender,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

var _ RiderHTTP = (*RiderHandler)(nil)
