package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	authsvc "riderlink/internal/app/services/auth"
	chatsvc "riderlink/internal/app/services/chat"
	"riderlink/internal/domain/article"
	"riderlink/internal/domain/chat"
	"riderlink/internal/domain/offer"
	"riderlink/internal/domain/participant"
	"riderlink/internal/domain/rider"
	"riderlink/internal/domain/sponsor"
)

// respondError maps sentinel errors onto HTTP statuses. Anything unmapped is
// a 500 with the detail kept in the log, not the response body.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound),
		errors.Is(err, chat.ErrMessageNotFound),
		errors.Is(err, rider.ErrNotFound),
		errors.Is(err, sponsor.ErrNotFound),
		errors.Is(err, offer.ErrNotFound),
		errors.Is(err, offer.ErrApplicationMissing),
		errors.Is(err, article.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, chat.ErrNotParticipant),
		errors.Is(err, offer.ErrNotOwner),
		errors.Is(err, article.ErrNotAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, offer.ErrApplicationExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already applied"})
	case errors.Is(err, rider.ErrEmailAlreadyUsed),
		errors.Is(err, sponsor.ErrEmailAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": "email already used"})
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, authsvc.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "account is not active"})
	case errors.Is(err, chatsvc.ErrSelfConversation),
		errors.Is(err, chatsvc.ErrInvalidPagination),
		errors.Is(err, chat.ErrContentRequired),
		errors.Is(err, chat.ErrContentTooLong),
		errors.Is(err, chat.ErrConversationInactive),
		errors.Is(err, chat.ErrInvalidContextType),
		errors.Is(err, chat.ErrParticipantsRequired),
		errors.Is(err, participant.ErrIDRequired),
		errors.Is(err, participant.ErrInvalidID),
		errors.Is(err, participant.ErrInvalidType),
		errors.Is(err, authsvc.ErrPasswordTooShort),
		errors.Is(err, rider.ErrEmailRequired),
		errors.Is(err, rider.ErrUsernameRequired),
		errors.Is(err, sponsor.ErrEmailRequired),
		errors.Is(err, sponsor.ErrCompanyNameRequired),
		errors.Is(err, offer.ErrTitleRequired),
		errors.Is(err, offer.ErrOfferClosed),
		errors.Is(err, article.ErrTitleRequired),
		errors.Is(err, article.ErrBodyRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimSpace(err.Error())})
	default:
		if logger != nil {
			logger.Error("request failed", "path", c.FullPath(), "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// hexIDParam validates a path parameter as a document id before it reaches
// any query.
func hexIDParam(c *gin.Context, name string) (string, bool) {
	id := strings.TrimSpace(c.Param(name))
	if !participant.IsHexID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a valid id"})
		return "", false
	}
	return id, true
}

// pageQuery parses page/limit query parameters, leaving defaults to the
// services. A non-numeric value is reported instead of silently ignored.
func pageQuery(c *gin.Context) (page, limit int, ok bool) {
	page, ok = intQuery(c, "page", 1)
	if !ok {
		return 0, 0, false
	}
	limit, ok = intQuery(c, "limit", 0)
	if !ok {
		return 0, 0, false
	}
	return page, limit, true
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return value, true
}
