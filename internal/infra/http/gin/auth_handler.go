package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	authsvc "riderlink/internal/app/services/auth"
	riderssvc "riderlink/internal/app/services/riders"
	sponsorssvc "riderlink/internal/app/services/sponsors"
	"riderlink/internal/domain/participant"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

// AuthHandler issues sessions as an HTTP-only cookie and mirrors the token in
// the response body for non-browser clients.
type AuthHandler struct {
	Service    *authsvc.Service
	Riders     *riderssvc.Service
	Sponsors   *sponsorssvc.Service
	CookieName string
	Logger     *slog.Logger
}

type registerRequest struct {
	UserType    string   `json:"user_type"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Username    string   `json:"username"`
	CompanyName string   `json:"company_name"`
	ContactName string   `json:"contact_name"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	BirthDate   string   `json:"birth_date"`
	Gender      string   `json:"gender"`
	Country     string   `json:"country"`
	Sports      []string `json:"sports"`
	Languages   []string `json:"languages"`
}

type loginRequest struct {
	UserType string `json:"user_type"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	userType, err := participant.ParseUserType(req.UserType)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	var birthDate time.Time
	if req.BirthDate != "" {
		birthDate, err = time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "birth_date must be YYYY-MM-DD"})
			return
		}
	}
	result, err := h.Service.Register(c.Request.Context(), authsvc.RegisterParams{
		UserType:    userType,
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		BirthDate:   birthDate,
		Gender:      req.Gender,
		Country:     req.Country,
		Sports:      req.Sports,
		Languages:   req.Languages,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.setSessionCookie(c, result)
	c.JSON(http.StatusCreated, sessionResponse(result))
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	userType, err := participant.ParseUserType(req.UserType)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	result, err := h.Service.Login(c.Request.Context(), userType, req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.setSessionCookie(c, result)
	c.JSON(http.StatusOK, sessionResponse(result))
}

func (h AuthHandler) Logout(c *gin.Context) {
	token := ""
	if p, ok := currentPrincipal(c); ok {
		token = p.Token
	}
	if err := h.Service.Logout(c.Request.Context(), token); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("logout failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	if h.CookieName != "" {
		c.SetCookie(h.CookieName, "", -1, "/", "", false, true)
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's own profile, shaped by account type.
func (h AuthHandler) Me(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	switch p.Participant.UserType {
	case participant.TypeRider:
		card, err := h.Riders.ByID(c.Request.Context(), p.Participant.UserID)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_type": string(participant.TypeRider), "profile": card})
	case participant.TypeSponsor:
		card, err := h.Sponsors.ByID(c.Request.Context(), p.Participant.UserID)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_type": string(participant.TypeSponsor), "profile": card})
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
	}
}

func (h AuthHandler) setSessionCookie(c *gin.Context, result *authsvc.AuthResult) {
	if h.CookieName == "" {
		return
	}
	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetCookie(h.CookieName, result.Token, maxAge, "/", "", false, true)
}

func sessionResponse(result *authsvc.AuthResult) gin.H {
	return gin.H{
		"user_id":    result.Participant.UserID,
		"user_type":  string(result.Participant.UserType),
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
	}
}

var _ AuthHTTP = (*AuthHandler)(nil)
