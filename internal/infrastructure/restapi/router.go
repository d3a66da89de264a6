package restapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions controls the HTTP surface around the handlers.
type RouterOptions struct {
	AllowOrigins []string
	// ExposeMetrics mounts promhttp at /metrics.
	ExposeMetrics bool
}

// SetupRouter wires the wallet, DeFi, provider and chain handlers under /api/v1.
func SetupRouter(wallets *WalletHandler, defi *DefiHandler, providers *ProviderHandler, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowOrigins) == 0 || (len(opts.AllowOrigins) == 1 && opts.AllowOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(requestIDMiddleware())
	router.Use(zapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.ExposeMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/wallet/analyze", wallets.AnalyzeWalletHandler)
		v1.GET("/wallet/:address", wallets.GetWalletHandler)
		v1.GET("/chains", wallets.ListChainsHandler)
		v1.GET("/defi/:address", defi.AnalyzeDefiHandler)
		v1.POST("/ai-analysis", defi.SummarizeHandler)
		v1.GET("/providers/status", providers.StatusHandler)
		v1.GET("/providers/test", providers.TestHandler)
	}

	return router
}
