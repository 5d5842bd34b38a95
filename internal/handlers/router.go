package handlers

import (
	"time"

	"github.com/chachabrian/foodshare-backend/internal/middleware"
	"github.com/chachabrian/foodshare-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Router holds everything the HTTP layer serves.
type Router struct {
	DB        *gorm.DB
	Listings  *services.ListingService
	Claims    *services.ClaimService
	Directory *services.DirectoryService
	Reports   *services.ReportService
	Hub       *services.Hub
	Operator  Operator
	Gatherer  prometheus.Gatherer
	// LoginLimiter throttles /api/auth/login; defaults to 10 attempts then
	// one every 6 seconds per client IP.
	LoginLimiter *middleware.RateLimiter
}

// Engine builds the gin engine with every route registered.
func (rt *Router) Engine() *gin.Engine {
	RegisterValidators()
	if rt.LoginLimiter == nil {
		rt.LoginLimiter = middleware.NewRateLimiter(6*time.Second, 10)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	r.GET("/health", Health(rt.DB))
	if rt.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(rt.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := middleware.AuthMiddleware(rt.Operator.JWTSecret)

	api := r.Group("/api")
	{
		api.POST("/auth/login", rt.LoginLimiter.Middleware(), Login(rt.Operator))
		api.GET("/filters", GetFilters(rt.Reports))

		if rt.Hub != nil {
			api.GET("/ws", auth, WebSocketHandler(rt.Hub))
		}

		providers := api.Group("/providers")
		{
			providers.GET("", ListProviders(rt.Directory))
			providers.GET("/contacts", ProviderContacts(rt.Directory))
			providers.GET("/:id", GetProvider(rt.Directory))
			providers.POST("", auth, CreateProvider(rt.Directory))
			providers.DELETE("/:id", auth, DeleteProvider(rt.Directory))
		}

		receivers := api.Group("/receivers")
		{
			receivers.GET("", ListReceivers(rt.Directory))
			receivers.POST("", auth, CreateReceiver(rt.Directory))
			receivers.DELETE("/:id", auth, DeleteReceiver(rt.Directory))
		}

		listings := api.Group("/listings")
		{
			listings.GET("", ListListings(rt.Listings))
			listings.GET("/:id", GetListing(rt.Listings))
			listings.POST("", auth, CreateListing(rt.Listings))
			listings.PUT("/:id", auth, UpdateListing(rt.Listings))
			listings.DELETE("/:id", auth, DeleteListing(rt.Listings))
		}

		claims := api.Group("/claims")
		{
			claims.GET("", ListClaims(rt.Claims))
			claims.GET("/:id", GetClaim(rt.Claims))
			claims.POST("/:id/complete", auth, CompleteClaim(rt.Claims))
			claims.POST("/:id/cancel", auth, CancelClaim(rt.Claims))
		}

		reports := api.Group("/reports")
		{
			reports.GET("", ListReports())
			reports.GET("/kpi", GetKPI(rt.Reports))
			reports.GET("/:name", GetReport(rt.Reports))
		}
	}

	return r
}
