package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairprice/fairprice-backend/internal/config"
	"github.com/fairprice/fairprice-backend/internal/http/handlers"
	"github.com/fairprice/fairprice-backend/internal/http/middleware"
	"github.com/fairprice/fairprice-backend/internal/metrics"
	"github.com/fairprice/fairprice-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	orderHandler *handlers.OrderHandler,
	returnHandler *handlers.ReturnHandler,
	disputeHandler *handlers.DisputeHandler,
	negotiationHandler *handlers.NegotiationHandler,
	couponHandler *handlers.CouponHandler,
	notificationHandler *handlers.NotificationHandler,
	supportHandler *handlers.SupportHandler,
	catalogHandler *handlers.CatalogHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	seedHandler *handlers.SeedHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(metrics.GinMiddleware())

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	if seedHandler != nil && cfg.Env == "development" {
		api.POST("/seed", seedHandler.Seed)
		api.GET("/seed", seedHandler.Seed)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/products", catalogHandler.ListProducts)
	api.GET("/products/:id", middleware.UUIDValidator("id"), catalogHandler.GetProduct)
	api.GET("/sellers", catalogHandler.ListSellers)
	api.GET("/orders/track/:number", orderHandler.TrackByNumber)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		checkoutRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
		protected.POST("/orders", checkoutRateLimit, orderHandler.CreateOrders)
		protected.GET("/orders/my", orderHandler.ListMyOrders)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.GetOrder)
		protected.PUT("/orders/:id/status", middleware.UUIDValidator("id"), orderHandler.UpdateStatus)
		protected.PUT("/orders/:id/escrow", middleware.UUIDValidator("id"), orderHandler.UpdateEscrow)
		protected.POST("/orders/:id/confirm-delivery", middleware.UUIDValidator("id"), orderHandler.ConfirmDelivery)
		protected.POST("/orders/:id/tracking", middleware.UUIDValidator("id"), orderHandler.AppendTrackingStep)

		protected.POST("/returns", returnHandler.CreateReturn)
		protected.GET("/returns/my", returnHandler.ListMyReturns)
		protected.GET("/returns/:id", middleware.UUIDValidator("id"), returnHandler.GetReturn)
		protected.PUT("/returns/:id/status", middleware.UUIDValidator("id"), returnHandler.UpdateStatus)

		protected.POST("/disputes", disputeHandler.RaiseDispute)
		protected.GET("/disputes/my", disputeHandler.ListMyDisputes)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.GetDispute)
		protected.POST("/disputes/:id/close", middleware.UUIDValidator("id"), disputeHandler.Close)

		protected.POST("/negotiations", negotiationHandler.Propose)
		protected.GET("/negotiations/my", negotiationHandler.ListMyNegotiations)
		protected.GET("/negotiations/:id", middleware.UUIDValidator("id"), negotiationHandler.GetNegotiation)
		protected.POST("/negotiations/:id/counter", middleware.UUIDValidator("id"), negotiationHandler.Counter)
		protected.PUT("/negotiations/:id/status", middleware.UUIDValidator("id"), negotiationHandler.Decide)
		protected.POST("/negotiations/:id/messages", middleware.UUIDValidator("id"), negotiationHandler.AddMessage)

		protected.GET("/coupons/my", couponHandler.ListMyCoupons)
		protected.POST("/coupons/redeem", couponHandler.Redeem)
		protected.POST("/referrals", couponHandler.RegisterReferral)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread/count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

		protected.POST("/support", supportHandler.CreateMessage)

		protected.POST("/media/images", mediaHandler.UploadImage)

		// Маршруты продавца
		protected.GET("/seller/orders", orderHandler.ListSellerOrders)
		protected.GET("/seller/payouts", orderHandler.ListSellerPayouts)
		protected.GET("/seller/returns", returnHandler.ListSellerReturns)
		protected.GET("/seller/negotiations", negotiationHandler.ListSellerNegotiations)
		protected.POST("/seller/products", catalogHandler.CreateProduct)
		protected.POST("/seller/promotions", catalogHandler.CreatePromotion)
	}

	// Административные маршруты
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireAdmin())
	{
		admin.GET("/disputes", disputeHandler.ListOpenDisputes)
		admin.PUT("/disputes/:id/review", middleware.UUIDValidator("id"), disputeHandler.TakeUnderReview)
		admin.PUT("/disputes/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.Resolve)

		admin.POST("/coupons", couponHandler.Issue)
		admin.DELETE("/coupons/:id", middleware.UUIDValidator("id"), couponHandler.Revoke)

		admin.GET("/support", supportHandler.ListMessages)
		admin.PUT("/support/:id/close", middleware.UUIDValidator("id"), supportHandler.CloseMessage)
	}

	return r
}
