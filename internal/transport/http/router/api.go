package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	coreauth "conectar-users/internal/core/auth"
	"conectar-users/internal/service"
	"conectar-users/internal/transport/http/handler"
	mdw "conectar-users/internal/transport/http/middleware"
)

// NewAPIEngine assembles the public API: the protective middleware
// chain, the open auth routes and the credential-gated user routes.
func NewAPIEngine(l *zap.Logger, authH *handler.AuthHandler, userH *handler.UserHandler, jwter *coreauth.JWTer, authSvc *service.AuthService) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// open routes
	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.GET("/google", authH.GoogleRedirect)
	auth.GET("/google/callback", authH.GoogleCallback)

	// authenticated routes; identity is re-resolved on every request
	users := api.Group("/users")
	users.Use(mdw.Auth(jwter, authSvc))

	users.GET("/me", userH.Me)
	users.GET("/:id", userH.GetByID)
	users.PATCH("/:id", userH.Update)

	// admin-gated: the static capability check happens here, the
	// ownership-scoped ones inside the service
	users.POST("", mdw.Require(service.CapCreateUser), userH.Create)
	users.GET("", mdw.Require(service.CapListUsers), userH.List)
	users.DELETE("/:id", mdw.Require(service.CapDeleteUser), userH.Remove)
	users.GET("/inactive", mdw.Require(service.CapListInactive), userH.Inactive)

	return r
}
