// Package api exposes the tracker over HTTP for the web client.
package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/izikbr/calorific2-app/internal/service"
)

type Server struct {
	DB       *sql.DB
	Estimate service.EstimateConfig
	Products service.BarcodeConfig
	Log      logrus.FieldLogger
	// AllowOrigins lists CORS origins; empty allows any origin.
	AllowOrigins []string
	Version      string
}

// Router builds the gin engine with middleware and every /api/v1 route.
func (s *Server) Router() *gin.Engine {
	if s.Log == nil {
		s.Log = logrus.StandardLogger()
	}
	r := gin.New()
	r.MaxMultipartMemory = 12 << 20
	r.Use(requestID(), accessLog(s.Log), recovery(s.Log), s.corsMiddleware(), errorHandler(s.Log))

	v1 := r.Group("/api/v1")
	v1.GET("/healthcheck", s.healthcheck)
	v1.GET("/presets", s.listPresets)
	v1.POST("/estimate/text", s.estimateText)
	v1.POST("/estimate/image", s.estimateImage)
	v1.GET("/products/search", s.searchProducts)
	v1.GET("/products/barcode/:code", s.lookupBarcode)

	profiles := v1.Group("/profiles")
	profiles.GET("", s.listProfiles)
	profiles.POST("", s.createProfile)
	profiles.GET("/:id", s.getProfile)
	profiles.PATCH("/:id", s.updateProfile)
	profiles.DELETE("/:id", s.deleteProfile)
	profiles.GET("/:id/targets", s.profileTargets)
	profiles.GET("/:id/summary", s.daySummary)
	profiles.GET("/:id/trend", s.trend)
	profiles.GET("/:id/progress", s.progress)
	profiles.GET("/:id/foods", s.listFoods)
	profiles.POST("/:id/foods", s.appendFoods)
	profiles.PUT("/:id/foods/:itemID", s.updateFood)
	profiles.DELETE("/:id/foods/:itemID", s.deleteFood)
	profiles.GET("/:id/weights", s.listWeights)
	profiles.PUT("/:id/weights/:date", s.putWeight)
	profiles.DELETE("/:id/weights/:date", s.deleteWeight)
	return r
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AddAllowHeaders("Accept", requestIDHeader)
	cfg.AddExposeHeaders(requestIDHeader)
	if len(s.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.AllowOrigins
	}
	return cors.New(cfg)
}

func (s *Server) healthcheck(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := s.DB.PingContext(c.Request.Context()); err != nil {
		s.Log.WithError(err).Warn("healthcheck ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"version":   s.Version,
		"estimator": s.Estimate.Estimator != nil,
	})
}

func ok(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}
