package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	articlessvc "riderlink/internal/app/services/articles"
	"riderlink/internal/domain/article"
	"riderlink/internal/domain/participant"
)

// ArticleHTTP exposes editorial content endpoints.
type ArticleHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Publish(c *gin.Context)
}

type ArticleHandler struct {
	Service *articlessvc.Service
	Logger  *slog.Logger
}

type createArticleRequest struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags"`
	Publish bool     `json:"publish"`
}

func (h ArticleHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	card, err := h.Service.Create(c.Request.Context(), articlessvc.CreateParams{
		Author:  p.Participant,
		Title:   req.Title,
		Body:    req.Body,
		Tags:    req.Tags,
		Publish: req.Publish,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h ArticleHandler) Get(c *gin.Context) {
	id, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	var viewer *participant.Participant
	if p, ok := currentPrincipal(c); ok {
		viewer = &p.Participant
	}
	card, err := h.Service.ByID(c.Request.Context(), id, viewer)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h ArticleHandler) List(c *gin.Context) {
	page, limit, ok := pageQuery(c)
	if !ok {
		return
	}
	filter := article.ListFilter{
		AuthorID: strings.TrimSpace(c.Query("author_id")),
		Tag:      strings.ToLower(strings.TrimSpace(c.Query("tag"))),
	}
	list, err := h.Service.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h ArticleHandler) Publish(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	card, err := h.Service.Publish(c.Request.Context(), p.Participant, id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

var _ ArticleHTTP = (*ArticleHandler)(nil)
