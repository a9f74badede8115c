package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"moka_pos/internal/handlers"
	"moka_pos/internal/handlers/admin"
	"moka_pos/internal/handlers/caisse"
	"moka_pos/internal/handlers/compta"
	"moka_pos/internal/handlers/customer"
	"moka_pos/internal/handlers/product"
	"moka_pos/internal/middleware"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: false,
	}))

	// Écran client : aperçu de commande, sans authentification
	public := r.Group("/public")
	{
		public.GET("/order-preview", handlers.GetOrderPreview)
		public.POST("/order-preview", handlers.PublishOrderPreview)
		public.GET("/order-preview/stream", handlers.StreamOrderPreview)
	}

	// Auth
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", middleware.LoginRateLimit(), handlers.Login)
		auth.GET("/me", middleware.AuthRequired(), handlers.Me)
	}

	api := r.Group("/api", middleware.AuthRequired())

	// Caisse : panier de la caisse courante
	pos := api.Group("/pos")
	{
		pos.GET("/cart", caisse.GetCart)
		pos.POST("/cart/add", caisse.AddToCart)
		pos.PATCH("/cart/line/:lineId", caisse.UpdateCartLine)
		pos.DELETE("/cart/line/:lineId", caisse.RemoveCartLine)
		pos.DELETE("/cart", caisse.ClearCart)
		pos.PUT("/cart/customer", caisse.SelectCartCustomer)
		pos.DELETE("/cart/customer", caisse.UnselectCartCustomer)
		pos.POST("/checkout", caisse.Checkout)

		// Synchronisation temps réel entre les écrans d'une même caisse
		pos.GET("/ws", caisse.TillWebSocket)
	}

	// Catalogue
	products := api.Group("/products")
	{
		products.GET("", product.GetAllProducts)
		products.GET("/search", product.SearchProducts)
		products.GET("/low-stock", middleware.RequirePermission("inventory:read"), product.GetLowStock)
		products.GET("/:id", product.GetProduct)
		products.POST("", middleware.RequirePermission("catalog:write"), product.CreateProduct)
		products.PATCH("/:id", middleware.RequirePermission("catalog:write"), product.UpdateProduct)
		products.DELETE("/:id", middleware.RequirePermission("catalog:write"), product.DeleteProduct)
		products.POST("/:id/stock", middleware.RequirePermission("inventory:write"), product.UpdateStock)
		products.POST("/:id/image", middleware.RequirePermission("catalog:write"), product.UploadProductImage)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", product.GetAllCategories)
		categories.POST("", middleware.RequirePermission("catalog:write"), product.CreateCategory)
		categories.PATCH("/:id", middleware.RequirePermission("catalog:write"), product.UpdateCategory)
		categories.DELETE("/:id", middleware.RequirePermission("catalog:write"), product.DeleteCategory)
	}

	// Fidélité
	customers := api.Group("/customers")
	{
		customers.GET("", customer.GetAllCustomers)
		customers.POST("", customer.CreateCustomer)
		customers.GET("/:id", customer.GetCustomer)
		customers.PATCH("/:id", customer.UpdateCustomer)
		customers.DELETE("/:id", middleware.RequirePermission("customers:write"), customer.DeleteCustomer)
		customers.POST("/:id/points", middleware.RequirePermission("customers:write"), customer.AdjustPoints)
		customers.GET("/:id/card", customer.GetLoyaltyCard)
	}

	// Comptabilité
	comptaGroup := api.Group("/compta", middleware.RequirePermission("compta:read"))
	{
		comptaGroup.GET("/transactions", compta.GetTransactions)
		comptaGroup.POST("/transactions", middleware.RequirePermission("compta:write"), compta.CreateTransaction)
		comptaGroup.DELETE("/transactions/:id", middleware.RequirePermission("compta:write"), compta.DeleteTransaction)
		comptaGroup.GET("/summary", compta.GetSummary)
		comptaGroup.POST("/close-day", middleware.RequirePermission("compta:write"), compta.CloseDay)
	}

	// Administration
	adminGroup := api.Group("/admin")
	{
		adminGroup.GET("/permissions", admin.GetMyPermissions)

		adminGroup.Use(middleware.RequireAdmin())
		adminGroup.GET("/users", admin.GetAllUsers)
		adminGroup.POST("/users", admin.CreateUser)
		adminGroup.PATCH("/users/:id", admin.UpdateUser)
		adminGroup.DELETE("/users/:id", admin.DeactivateUser)
		adminGroup.GET("/roles", admin.GetAllRoles)
		adminGroup.POST("/roles", admin.CreateRole)
		adminGroup.PATCH("/roles/:id", admin.UpdateRole)
	}
}
