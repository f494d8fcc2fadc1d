package routes

import (
	"net/http"
	"time"

	"storefront_back_end/internal/handlers/admin"
	"storefront_back_end/internal/handlers/payement"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/metrics"
	"storefront_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps contient tout ce que les routes doivent connaître, construit dans main
type Deps struct {
	Payments       *payement.Handler
	Orders         *user.OrderHandler
	Profiles       *user.ProfileHandler
	OrderSearch    *admin.OrderSearchHandler
	JWTSecret      string
	Redis          redis.Cmdable
	Metrics        *metrics.Collector
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Log            *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log), middleware.Metrics(d.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/stripe-config", d.Payments.StripeConfig)

	auth := api.Group("", middleware.AuthRequired(d.JWTSecret, d.Log))

	// Paiements (limités par IP)
	pay := auth.Group("", middleware.APIRateLimit(d.Redis, d.Log))
	pay.POST("/create-payment-intent", d.Payments.CreatePaymentIntent)
	pay.POST("/create-checkout-session", d.Payments.CreateCheckoutSession)
	pay.POST("/verify-payment", d.Payments.VerifyPayment)
	pay.POST("/process-payment-success", d.Payments.ProcessPaymentSuccess)

	// Commandes
	auth.GET("/orders", d.Orders.GetMyOrders)
	auth.GET("/orders/stats", d.Orders.GetOrderStats)
	auth.GET("/orders/:orderId", d.Orders.GetOrderByID)

	// Profil
	auth.POST("/update-user", d.Profiles.UpdateUser)
	auth.PUT("/update-user", d.Profiles.UpdateUser)

	// Admin
	adminGroup := auth.Group("/admin", middleware.RequireAdmin)
	adminGroup.GET("/orders/search", d.OrderSearch.SearchOrders)
}
