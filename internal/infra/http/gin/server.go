package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rara/internal/infra/config"
	"rara/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Listing        ListingHTTP
	Review         ReviewHTTP
	Block          BlockHTTP
	Booking        BookingHTTP
	Host           HostHTTP
	Admin          AdminHTTP
	Chat           ChatHTTP
	Assistant      AssistantHTTP
	AuthMiddleware gin.HandlerFunc

	// RateLimit guards the credential and AI routes when set.
	RateLimit gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.Health, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine with every registered route group.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.Health, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if h.RateLimit == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{h.RateLimit, handler}
	}

	api := router.Group("/api")
	if h.Auth != nil {
		api.POST("/auth/signup", limited(h.Auth.Signup)...)
		api.POST("/auth/login", limited(h.Auth.Login)...)
		api.GET("/auth/me", h.Auth.Me)
		api.GET("/auth/google", h.Auth.Google)
		api.GET("/auth/google/callback", h.Auth.GoogleCallback)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.POST("/listings", h.Listing.Create)
		api.POST("/listings/images", h.Listing.UploadImage)
		api.GET("/listings/:id", h.Listing.Get)
		api.PUT("/listings/:id", h.Listing.Update)
		api.DELETE("/listings/:id", h.Listing.Delete)
		api.GET("/listings/:id/availability", h.Listing.Availability)
		api.GET("/listings/:id/quote", h.Listing.Quote)
	}
	if h.Review != nil {
		api.GET("/listings/:id/reviews", h.Review.List)
		api.POST("/listings/:id/reviews", h.Review.Submit)
	}
	if h.Block != nil {
		api.GET("/listings/:id/blocks", h.Block.List)
		api.POST("/listings/:id/blocks", h.Block.Add)
		api.DELETE("/listings/:id/blocks/:blockId", h.Block.Remove)
	}
	if h.Booking != nil {
		api.GET("/bookings", h.Booking.List)
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PUT("/bookings/:id", h.Booking.UpdateStatus)
		api.DELETE("/bookings/:id", h.Booking.Delete)
	}
	if h.Host != nil {
		hostGroup := api.Group("/host")
		hostGroup.GET("/listings", h.Host.Listings)
		hostGroup.GET("/listings/:id/occupancy", h.Host.Occupancy)
		hostGroup.GET("/listings/:id/earnings", h.Host.Earnings)
		if h.Booking != nil {
			hostGroup.GET("/bookings", h.Booking.HostList)
		}
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.GET("/listings", h.Admin.Listings)
		adminGroup.PATCH("/listings/:id/status", h.Admin.SetListingStatus)
		if h.Booking != nil {
			adminGroup.GET("/bookings", h.Booking.AdminList)
			adminGroup.PATCH("/bookings/:id/status", h.Booking.UpdateStatus)
		}
	}
	if h.Chat != nil {
		api.GET("/conversations", h.Chat.ListConversations)
		api.POST("/conversations", h.Chat.StartConversation)
		api.POST("/conversations/:id/messages", h.Chat.SendMessage)
	}
	if h.Assistant != nil {
		api.POST("/ai/listing-description", limited(h.Assistant.ListingDescription)...)
		api.POST("/ai/similar-listings", limited(h.Assistant.SimilarListings)...)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
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
