package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"riderlink/internal/infra/config"
	"riderlink/internal/infra/obs"
)

// Handlers bundles the HTTP surfaces wired into the router. Nil entries skip
// their routes, which keeps partial wiring (tests, demo mode) simple.
type Handlers struct {
	Auth           AuthHTTP
	Chat           ChatHTTP
	Rider          RiderHTTP
	Sponsor        SponsorHTTP
	Offer          OfferHTTP
	Article        ArticleHTTP
	Upload         UploadHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := NewRouter(obsMW, health, h)
	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

// NewRouter builds the engine without the server wrapper; handler tests mount
// it directly.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Chat != nil {
		api.POST("/conversations", h.Chat.Create)
		api.GET("/conversations", h.Chat.List)
		api.GET("/conversations/unread", h.Chat.Unread)
		api.GET("/conversations/:id/messages", h.Chat.ListMessages)
		api.POST("/conversations/:id/messages", h.Chat.Send)
		api.POST("/conversations/:id/read", h.Chat.MarkAllRead)
		api.DELETE("/conversations/:id", h.Chat.Delete)
		api.POST("/messages/read", h.Chat.MarkRead)
	}
	if h.Rider != nil {
		api.POST("/riders/search", h.Rider.Search)
		api.GET("/riders/:id", h.Rider.Get)
		api.PUT("/me/profile", h.Rider.UpdateProfile)
	}
	if h.Sponsor != nil {
		api.GET("/sponsors/:id", h.Sponsor.Get)
		api.PUT("/me/company", h.Sponsor.UpdateProfile)
	}
	if h.Offer != nil {
		api.GET("/offers", h.Offer.List)
		api.POST("/offers", h.Offer.Publish)
		api.GET("/offers/:id", h.Offer.Get)
		api.POST("/offers/:id/close", h.Offer.Close)
		api.POST("/offers/:id/apply", h.Offer.Apply)
		api.GET("/offers/:id/applications", h.Offer.Applications)
		api.GET("/me/applications", h.Offer.MyApplications)
		api.POST("/applications/:id/decide", h.Offer.Decide)
	}
	if h.Article != nil {
		api.GET("/articles", h.Article.List)
		api.POST("/articles", h.Article.Create)
		api.GET("/articles/:id", h.Article.Get)
		api.POST("/articles/:id/publish", h.Article.Publish)
	}
	if h.Upload != nil {
		api.POST("/me/avatar", h.Upload.Avatar)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
