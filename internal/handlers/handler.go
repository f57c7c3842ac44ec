package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "acsim/docs"
	"acsim/internal/logger"
	"acsim/internal/metrics"
	"acsim/internal/models"
	"acsim/internal/service"
)

const (
	defaultMaxUploadBytes = 8 << 20
	defaultReplayBatch    = 168
)

// Config carries the HTTP-layer settings.
type Config struct {
	// DefaultWeather is used when a comparison request carries no weather.
	DefaultWeather       []models.WeatherSample
	DefaultWeatherSource string
	MaxUploadBytes       int64
	ReplayBatch          int
	Metrics              *metrics.Metrics
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	cfg      Config
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, cfg Config) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.ReplayBatch <= 0 {
		cfg.ReplayBatch = defaultReplayBatch
	}
	return &Handler{services: services, log: log.Named("http"), cfg: cfg}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.cfg.Metrics.Middleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(h.cfg.Metrics.Handler()))

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// browsers cannot set headers on the upgrade request, so the token may
	// also come from ?token=
	ws := router.Group("/ws", tokenFromQuery, h.userIdMiddleware)
	{
		ws.GET("/simulations/:id", h.wsReplay)
	}

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerSimulationRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerSimulationRoutes(api *gin.RouterGroup) {
	sims := api.Group("/simulations")
	{
		// JSON body or multipart form with an EPW file in "weather"
		sims.POST("", h.createSimulation)
		sims.GET("", h.listSimulations)
		sims.GET("/:id", h.getSimulation)
		sims.GET("/:id/hours", h.getSimulationHours)
		sims.GET("/:id/series", h.getSimulationSeries)
		sims.GET("/:id/export.csv", h.exportSimulation)
		sims.GET("/:id/events", h.getSimulationEvents)
		sims.POST("/:id/narrative", h.generateNarrative)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}

// @Summary  Health check
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
