package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	offerssvc "riderlink/internal/app/services/offers"
	"riderlink/internal/domain/offer"
	"riderlink/internal/domain/participant"
)

// OfferHTTP exposes sponsorship offers and rider applications.
type OfferHTTP interface {
	Publish(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Close(c *gin.Context)
	Apply(c *gin.Context)
	Applications(c *gin.Context)
	MyApplications(c *gin.Context)
	Decide(c *gin.Context)
}

type OfferHandler struct {
	Service *offerssvc.Service
	Logger  *slog.Logger
}

type publishOfferRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Sport        string `json:"sport"`
	ContractType string `json:"contract_type"`
	Country      string `json:"country"`
}

func (h OfferHandler) Publish(c *gin.Context) {
	p, ok := requireUserType(c, participant.TypeSponsor)
	if !ok {
		return
	}
	var req publishOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	card, err := h.Service.Publish(c.Request.Context(), offerssvc.PublishParams{
		SponsorID:    p.Participant.UserID,
		Title:        req.Title,
		Description:  req.Description,
		Sport:        req.Sport,
		ContractType: req.ContractType,
		Country:      req.Country,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h OfferHandler) Get(c *gin.Context) {
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

func (h OfferHandler) List(c *gin.Context) {
	page, limit, ok := pageQuery(c)
	if !ok {
		return
	}
	filter := offer.ListFilter{
		SponsorID:    strings.TrimSpace(c.Query("sponsor_id")),
		Sport:        strings.ToLower(strings.TrimSpace(c.Query("sport"))),
		ContractType: strings.ToLower(strings.TrimSpace(c.Query("contract_type"))),
		OnlyOpen:     c.Query("open") == "true",
	}
	list, err := h.Service.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h OfferHandler) Close(c *gin.Context) {
	p, ok := requireUserType(c, participant.TypeSponsor)
	if !ok {
		return
	}
	id, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	card, err := h.Service.Close(c.Request.Context(), p.Participant.UserID, id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

type applyRequest struct {
	Message string `json:"message"`
}

func (h OfferHandler) Apply(c *gin.Context) {
	p, ok := requireUserType(c, participant.TypeRider)
	if !ok {
		return
	}
	id, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	card, err := h.Service.Apply(c.Request.Context(), p.Participant.UserID, id, req.Message)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// Applications lists applications on an offer for its owning sponsor.
func (h OfferHandler) Applications(c *gin.Context) {
	p, ok := requireUserType(c, participant.TypeSponsor)
	if !ok {
		return
	}
	id, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	page, limit, ok := pageQuery(c)
	if !ok {
		return
	}
	list, err := h.Service.ApplicationsForOffer(c.Request.Context(), p.Participant.UserID, id, page, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MyApplications lists the calling rider's own applications.
func (h OfferHandler) MyApplications(c *gin.Context) {
	p, ok := requireUserType(c, participant.TypeRider)
	if !ok {
		return
	}
	page, limit, ok := pageQuery(c)
	if !ok {
		return
	}
	list, err := h.Service.ApplicationsForRider(c.Request.Context(), p.Participant.UserID, page, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type decideRequest struct {
	Accept bool `json:"accept"`
}

func (h OfferHandler) Decide(c *gin.Context) {
	p, ok := requireUserType(c, participant.TypeSponsor)
	if !ok {
		return
	}
	id, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	card, err := h.Service.Decide(c.Request.Context(), p.Participant.UserID, id, req.Accept)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

var _ OfferHTTP = (*OfferHandler)(nil)
