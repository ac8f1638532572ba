package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/kendall-kelly/cafe-pos-api/controllers"
	"github.com/kendall-kelly/cafe-pos-api/middleware"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/services"
	"gorm.io/gorm"
)

// Dependencies is everything the router needs; nothing is read from globals
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Images   services.ImageService
	UserInfo services.UserInfoProvider
	// Auth validates the bearer token; EnsureValidToken in production
	Auth gin.HandlerFunc
}

// NewRouter builds the gin engine with every API route registered
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware(deps.Config.CORSAllowedOrigins))

	Register(router, deps)
	return router
}

// Register mounts the /api/v1 routes on router
func Register(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	db := deps.DB

	resolver := services.NewIDResolver(db, cfg)
	settings := services.NewSettingsService(db)
	notifications := services.NewNotificationService(db, resolver)
	orders := services.NewOrderService(db, settings, notifications, resolver)
	invoices := services.NewInvoiceService(orders, settings)
	sales := services.NewSaleService(db, resolver)

	health := controllers.NewHealthController(db)
	users := controllers.NewUserController(db, deps.UserInfo)
	products := controllers.NewProductController(db, deps.Images)
	customers := controllers.NewCustomerController(db)
	orderController := controllers.NewOrderController(orders, invoices, resolver)
	saleController := controllers.NewSaleController(sales, resolver)
	notificationController := controllers.NewNotificationController(notifications, orders)
	settingsController := controllers.NewSettingsController(settings)
	uploads := controllers.NewUploadController(cfg.UploadDir)

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleCashier)
	admin := middleware.RequireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health.HealthCheck)
		v1.GET("/database/status", health.DatabaseStatus)
		v1.GET("/uploads/:filename", uploads.GetUploadedImage)

		// Menu browsing is public
		v1.GET("/products", products.ListProducts)
		v1.GET("/products/:id", products.GetProduct)
	}

	protected := v1.Group("")
	protected.Use(deps.Auth, middleware.LoadCurrentUser(db, cfg.DefaultAdminSubject))
	{
		protected.POST("/users", users.CreateUser)
		protected.GET("/users/me", users.GetMyProfile)
		protected.PUT("/users/me", users.UpdateMyProfile)
		protected.PATCH("/users/:id/role", admin, users.UpdateUserRole)

		protected.POST("/products", admin, products.CreateProduct)
		protected.PUT("/products/:id", admin, products.UpdateProduct)
		protected.DELETE("/products/:id", admin, products.DeleteProduct)
		protected.POST("/products/:id/restore", admin, products.RestoreProduct)
		protected.POST("/products/:id/image", admin, products.UploadProductImage)

		protected.GET("/customers", staff, customers.ListCustomers)
		protected.GET("/customers/:id", staff, customers.GetCustomer)
		protected.POST("/customers", staff, customers.CreateCustomer)
		protected.PUT("/customers/:id", staff, customers.UpdateCustomer)
		protected.DELETE("/customers/:id", admin, customers.DeleteCustomer)
		protected.POST("/customers/:id/restore", admin, customers.RestoreCustomer)

		protected.POST("/orders", staff, orderController.CreateOrder)
		protected.GET("/orders", staff, orderController.ListOrders)
		protected.GET("/orders/:id", staff, orderController.GetOrder)
		protected.PATCH("/orders/:id/status", staff, orderController.UpdateOrderStatus)
		protected.DELETE("/orders/:id", admin, orderController.DeleteOrder)
		protected.POST("/orders/:id/restore", admin, orderController.RestoreOrder)
		protected.GET("/orders/:id/invoice", staff, orderController.GetOrderInvoice)
		protected.GET("/orders/:id/qr", staff, orderController.GetOrderQRCode)

		protected.GET("/sales", staff, saleController.ListSales)
		protected.GET("/sales/summary", staff, saleController.GetSalesSummary)
		protected.GET("/sales/:id", staff, saleController.GetSale)

		protected.GET("/notifications", staff, notificationController.ListNotifications)
		protected.PATCH("/notifications/:id/read", staff, notificationController.MarkNotificationRead)
		protected.POST("/notifications/read-all", staff, notificationController.MarkAllNotificationsRead)
		protected.GET("/notifications/:id/related", staff, notificationController.GetRelatedOrder)

		protected.GET("/settings", staff, settingsController.GetSettings)
		protected.PUT("/settings", admin, settingsController.UpdateSettings)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	return cors.New(corsConfig)
}
