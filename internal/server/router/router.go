package router

import (
	"net/http"
	"regexp"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/server/handlers"
)

var validRequestID = regexp.MustCompile(`^[a-zA-Z0-9\-]{1,64}$`)

// Handlers groups the HTTP adapters mounted under /api.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Products  *handlers.ProductHandler
	Sales     *handlers.SaleHandler
	Expenses  *handlers.ExpenseHandler
	Dashboard *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(requestIDMiddleware())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("request_id", c.GetString(handlers.RequestIDKey)))
		handlers.WriteError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}))
	r.Use(zapLoggerMiddleware(logger))
	r.Use(corsMiddleware(allowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.GET("/check", h.Auth.Check)
	authGroup.POST("/setup", h.Auth.Setup)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/logout", h.Auth.Logout)

	protected := api.Group("")
	protected.Use(h.Auth.RequireAuth())

	protected.POST("/auth/create-admin", h.Auth.CreateAdmin)
	protected.PUT("/auth/password", h.Auth.ChangePassword)

	protected.GET("/products", h.Products.List)
	protected.POST("/products", h.Products.Create)
	protected.PUT("/products/:id", h.Products.Update)
	protected.DELETE("/products/:id", h.Products.Delete)

	protected.GET("/sales", h.Sales.List)
	protected.POST("/sales", h.Sales.Create)
	protected.GET("/sales/:id", h.Sales.Get)
	protected.PUT("/sales/:id", h.Sales.Update)
	protected.DELETE("/sales/:id", h.Sales.Delete)
	protected.GET("/sales/:id/receipt", h.Sales.Receipt)

	protected.GET("/expenses", h.Expenses.List)
	protected.POST("/expenses", h.Expenses.Create)
	protected.DELETE("/expenses/:id", h.Expenses.Delete)

	protected.GET("/dashboard", h.Dashboard.Get)
	protected.GET("/dashboard/trend", h.Dashboard.Trend)

	logger.Info("router initialized")

	return r
}

// requestIDMiddleware keeps a safe caller-supplied X-Request-ID or generates one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(handlers.RequestIDKey)))
	}
}

// corsMiddleware answers only for listed origins. Credentials are allowed so the
// browser sends the auth cookie.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && slices.Contains(allowedOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
