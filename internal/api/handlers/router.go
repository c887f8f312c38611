package handlers

import (
	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/gin-gonic/gin"
)

// Register mounts every API route on api. ws may be nil when the websocket
// hub is not running.
func (h *Handlers) Register(api *gin.RouterGroup, authService service.AuthService, ws gin.HandlerFunc) {
	// ============================================
	// Public routes (no auth required)
	// ============================================
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.SignUp)
		auth.POST("/signin", h.Auth.SignIn)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	// Presign mirrors the standalone function and is open like it.
	api.POST("/uploads/presign", h.Upload.Presign)

	if ws != nil {
		api.GET("/ws", ws)
	}

	// Catalog is browsable by guests; a token only widens what designers see.
	catalog := api.Group("")
	catalog.Use(middleware.OptionalAuthMiddleware(authService))
	{
		catalog.GET("/designs", h.Design.List)
		catalog.GET("/designs/:id", h.Design.Get)
		catalog.GET("/products", h.Product.List)
		catalog.GET("/products/:id", h.Product.Get)
		catalog.GET("/dashboard/feeds", h.Dashboard.Feeds)
		catalog.GET("/dashboard/feeds/:name", h.Dashboard.Feed)
	}

	// ============================================
	// Protected routes (require auth middleware)
	// ============================================
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", h.User.GetCurrentUser)
			users.PUT("/me", h.User.UpdateCurrentUser)
			users.GET("/search", h.User.SearchUsers)
		}

		leads := protected.Group("/leads")
		{
			leads.GET("", h.Lead.List)
			leads.POST("/consult", h.Lead.Consult)
			leads.GET("/:id", h.Lead.Get)
			leads.PATCH("/:id", h.Lead.Update)
			leads.POST("/:id/designs", h.Lead.AddDesign)
			leads.PATCH("/:id/status", h.Lead.UpdateStatus)
			leads.POST("/:id/convert", h.Lead.Convert)
			leads.POST("/:id/reject", h.Lead.Reject)
		}

		projects := protected.Group("/projects")
		{
			projects.GET("", h.Project.List)
			projects.GET("/:id", h.Project.Get)
			projects.PATCH("/:id", h.Project.Update)
			projects.POST("/:id/transition", h.Project.Transition)
			projects.POST("/:id/advance", h.Project.Advance)
			projects.POST("/:id/cancel", h.Project.Cancel)
			projects.PUT("/:id/status", h.Project.UpdateStatus)
			projects.PUT("/:id/tasks", h.Project.UpdateTasks)

			// Product curation
			projects.POST("/:id/designs/:designId/products", h.Project.AddProduct)
			projects.PATCH("/:id/designs/:designId/products/:productId", h.Project.UpdateProduct)
			projects.DELETE("/:id/designs/:designId/products/:productId", h.Project.RemoveProduct)

			// Quotations
			projects.POST("/:id/quotes", h.Quote.Create)
		}

		quotes := protected.Group("/quotes")
		{
			quotes.GET("", h.Quote.List)
			quotes.GET("/:id", h.Quote.Get)
		}

		designs := protected.Group("/designs")
		designs.Use(middleware.RequireRole(types.RoleDesigner, types.RoleAdmin))
		{
			designs.POST("", h.Design.Create)
			designs.PUT("/:id", h.Design.Update)
			designs.DELETE("/:id", h.Design.Delete)
			designs.POST("/:id/submit", h.Design.Submit)
			designs.POST("/:id/archive", h.Design.Archive)
		}

		chats := protected.Group("/chats")
		{
			chats.GET("/:chatId/messages", h.Chat.List)
			chats.POST("/:chatId/messages", h.Chat.Send)
			chats.POST("/:chatId/read", h.Chat.MarkRead)
		}
		protected.DELETE("/messages/:id", h.Chat.Delete)

		protected.GET("/dashboard/kpi", h.Dashboard.KPI)

		// ============================================
		// Admin routes
		// ============================================
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(types.RoleAdmin))
		{
			admin.GET("/users", h.User.List)
			admin.POST("/designers", h.User.CreateDesigner)
			admin.DELETE("/users/:id", h.User.Delete)

			admin.POST("/designs/:id/approve", h.Design.Approve)
			admin.POST("/designs/:id/reject", h.Design.Reject)

			admin.POST("/products", h.Product.Create)
			admin.PUT("/products/:id", h.Product.Update)
			admin.DELETE("/products/:id", h.Product.Delete)

			admin.POST("/quotes/:id/approve", h.Quote.Approve)
			admin.POST("/quotes/:id/reject", h.Quote.Reject)
		}
	}
}
