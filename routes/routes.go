package routes

import (
	"vape-shop-api/handlers"
	"vape-shop-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public storefront routes ───────────────────────────────────
	public := r.Group("/api")
	{
		// Catalog
		public.GET("/products", handlers.ListProducts)
		public.GET("/products/:id/image", handlers.GetProductImage)
		public.GET("/categories", handlers.ListCategories)

		// Customers
		public.POST("/users/telegram", handlers.UpsertTelegramUser)

		// Orders
		public.POST("/orders", handlers.PlaceOrder)
		public.GET("/orders/user/:telegramId", handlers.GetUserOrders)

		// Reviews
		public.GET("/reviews", handlers.ListReviews)
		public.POST("/reviews", handlers.CreateReview)

		// Admin login (issues the bearer token)
		public.POST("/admin/login", handlers.AdminLogin)
	}

	// ── Admin back-office routes ───────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminRequired())
	{
		// Orders
		admin.GET("/orders", handlers.AdminListOrders)
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus)

		// Products
		admin.GET("/products", handlers.AdminListProducts)
		admin.POST("/products", handlers.CreateProduct)
		admin.PUT("/products/:id", handlers.UpdateProduct)
		admin.DELETE("/products/:id", handlers.DeleteProduct)
		admin.POST("/products/:id/image", handlers.UploadProductImage)

		// Categories
		admin.POST("/categories", handlers.CreateCategory)

		// Reviews moderation
		admin.GET("/reviews", handlers.AdminListReviews)
		admin.PUT("/reviews/:id", handlers.ModerateReview)

		// Dashboard
		admin.GET("/stats", handlers.AdminStats)
	}
}
