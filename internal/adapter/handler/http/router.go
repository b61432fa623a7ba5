package http

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tmuthoni/chama_backend/internal/config"
	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	config *config.HTTP,
	tokenService ports.TokenService,
	userRepo ports.UserRepository,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	loanHandler *LoanHandler,
	paymentHandler *PaymentHandler,
	sharesHandler *SharesHandler,
) (*Router, error) {
	if config.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// CORS
	ginConfig := cors.DefaultConfig()
	allowedOrigins := config.AllowedOrigins
	originsList := strings.Split(allowedOrigins, ",")
	ginConfig.AllowOrigins = originsList

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors.New(ginConfig))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth endpoints carry no session; the token inside the link is
	// the credential for verify-email and reset-password.
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.GET("/verify-email/:token", authHandler.VerifyEmail)
		auth.POST("/login", authHandler.Login)
		auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	authenticated := AuthMiddleware(tokenService)
	anyRole := RequireRoles(userRepo)
	memberOnly := RequireRoles(userRepo, domain.Member)
	adminOnly := RequireRoles(userRepo, domain.Admin)

	router.GET("/me", authenticated, anyRole, userHandler.Me)
	router.GET("/member/profile", authenticated, memberOnly, userHandler.MemberProfile)

	users := router.Group("/users", authenticated, adminOnly)
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id/role", userHandler.AssignRole)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	admin := router.Group("/admin", authenticated, adminOnly)
	{
		admin.GET("/users", userHandler.AdminMembers)
		admin.GET("/shares", sharesHandler.ListShares)
		admin.POST("/shares", sharesHandler.CreateShares)
		admin.PUT("/shares/:memberId", sharesHandler.UpdateShares)
		admin.DELETE("/shares/:memberId", sharesHandler.DeleteShares)
	}

	loans := router.Group("/loans", authenticated)
	{
		loans.POST("/apply", memberOnly, loanHandler.Apply)
		loans.GET("/me", memberOnly, loanHandler.MyLoans)
		loans.GET("", adminOnly, loanHandler.AllLoans)
		loans.PUT("/:id", adminOnly, loanHandler.UpdateLoan)
		loans.DELETE("/:id", adminOnly, loanHandler.DeleteLoan)
	}

	payments := router.Group("/payments", authenticated)
	{
		payments.POST("", memberOnly, paymentHandler.MakePayment)
		payments.GET("/me", memberOnly, paymentHandler.MyPayments)
		payments.GET("/all", adminOnly, paymentHandler.AllPayments)
		payments.DELETE("/:id", adminOnly, paymentHandler.DeletePayment)
	}

	router.GET("/shares", authenticated, memberOnly, sharesHandler.MemberShares)

	return &Router{
		Engine: router,
	}, nil
}

// Starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
