package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"riderlink/internal/app/services/auth"
	"riderlink/internal/domain/participant"
)

const principalContextKey = "riderlink.principal"

type principal struct {
	Participant participant.Participant
	Token       string
}

// AuthMiddleware resolves the session cookie (or a Bearer header as a
// fallback for API clients) into a principal. Unauthenticated requests pass
// through; the per-route guards decide what needs auth.
type AuthMiddleware struct {
	Service    *auth.Service
	CookieName string
	Logger     *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := m.extractToken(c)
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.Resolve(c.Request.Context(), token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("session validation failed", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{Participant: resolved, Token: token})
	c.Next()
}

func (m AuthMiddleware) extractToken(c *gin.Context) string {
	if m.CookieName != "" {
		if cookie, err := c.Cookie(m.CookieName); err == nil && cookie != "" {
			return cookie
		}
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requireUser aborts with 401 unless the request carries a valid session.
func requireUser(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

// requireUserType additionally restricts the endpoint to one account type.
func requireUserType(c *gin.Context, userType participant.UserType) (principal, bool) {
	p, ok := requireUser(c)
	if !ok {
		return principal{}, false
	}
	if p.Participant.UserType != userType {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
