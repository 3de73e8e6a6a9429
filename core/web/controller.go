package web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/config"
	"github.com/tekrabyte/tekraswap/core/currency"
	"github.com/tekrabyte/tekraswap/core/web/handler"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

// corsMiddleware allows the configured browser origins. An empty list
// means same-origin only.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// recoverMiddleware logs the panicking stack and answers with the
// standard error envelope instead of a dropped connection.
func recoverMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Logrus.WithFields(logrus.Fields{
			"Path":     c.Request.URL.Path,
			"PanicMsg": recovered,
			"Stack":    handler.PrintStack(),
		}).Error("handler panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, &handler.Response{
			Code:    http.StatusInternalServerError,
			Message: "internal error, please retry",
		})
	})
}

// ServerRoute builds the engine with all API routes registered.
func ServerRoute(tokens handler.TokenService, swaps handler.SwapService, rates *currency.Service, visitLogFile string) *gin.Engine {
	router := gin.New()
	router.Use(MiddleLogger(visitLogFile, "/health"), recoverMiddleware())
	router.Use(corsMiddleware(config.GetWebConfig().AllowedOrigins))

	tokenHandler := handler.NewTokenHandler(tokens)
	swapHandler := handler.NewSwapHandler(swaps)
	currencyHandler := handler.NewCurrencyHandler(rates)

	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		api.GET("/token-list", tokenHandler.TokenList)
		api.GET("/token-metadata/:mint", tokenHandler.TokenMetadata)
		api.GET("/token-balance", tokenHandler.TokenBalance)
		api.POST("/token-balances", tokenHandler.TokenBalances)
		api.POST("/validate-token/:mint", tokenHandler.ValidateToken)
		api.GET("/wallet-portfolio", tokenHandler.WalletPortfolio)
		api.GET("/price-chart", tokenHandler.PriceChart)

		api.GET("/quote", swapHandler.Quote)
		api.POST("/swap", swapHandler.Execute)
		api.POST("/swap/confirm/:id", swapHandler.Confirm)
		api.GET("/swap-history", swapHandler.History)

		api.GET("/exchange-rate", currencyHandler.ExchangeRate)
	}

	return router
}

// Run serves the API until SIGINT/SIGTERM, then shuts down gracefully.
func Run(tokens handler.TokenService, swaps handler.SwapService, rates *currency.Service) {
	router := ServerRoute(tokens, swaps, rates, "./log/visit.log")

	listen := config.GetWebConfig().Listen
	server := &http.Server{
		Addr:         listen,
		Handler:      router,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Fatal("Server start failed")
		}
	}()

	logger.Logrus.WithFields(logrus.Fields{"Listen": listen}).Info("Server start success")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("Server forced to shutdown")
	}
}
