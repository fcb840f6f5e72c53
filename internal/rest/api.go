package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaistout4/ImageGallerySPA/internal/middleware"
)

type Options struct {
	Verifier middleware.TokenVerifier
	// ProtectReads requires a bearer token on the GET image routes
	ProtectReads bool
	// ReadLatency delays the GET image routes; zero disables it
	ReadLatency time.Duration
	// UploadDir is served under UploadURLPrefix when both are set
	UploadDir       string
	UploadURLPrefix string
}

// NewRouter builds the gin engine with logging, panic recovery and all routes
func NewRouter(images *ImageHandler, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	NewApi(router, images, opts)

	if opts.UploadDir != "" && opts.UploadURLPrefix != "" {
		router.Static(opts.UploadURLPrefix, opts.UploadDir)
	}

	return router
}

func NewApi(router *gin.Engine, images *ImageHandler, opts Options) {
	read := middleware.Authenticate(opts.Verifier, opts.ProtectReads)
	write := middleware.Authenticate(opts.Verifier, true)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		images.RegisterRoutes(apiGroup,
			gin.HandlersChain{read, middleware.Latency(opts.ReadLatency)},
			gin.HandlersChain{write},
		)
	}
}
