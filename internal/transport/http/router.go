package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/herbvita/shop_backend/internal/handlers"
	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/middleware/ratelimit"
)

type Deps struct {
	Gate *mw.Gate

	Auth         *handlers.AuthHandler
	Referral     *handlers.ReferralHandler
	Order        *handlers.OrderHandler
	AdminOrder   *handlers.AdminOrderHandler
	AdminUser    *handlers.AdminUserHandler
	Notification *handlers.NotificationHandler
	Product      *handlers.ProductHandler
	Cart         *handlers.CartHandler
	Review       *handlers.ReviewHandler
	BlogPost     *handlers.BlogPostHandler
	Subscription *handlers.SubscriptionHandler
	Distributor  *handlers.DistributorHandler
	Newsletter   *handlers.NewsletterHandler
	Contact      *handlers.ContactHandler
	Chatbot      *handlers.ChatbotHandler
	Search       *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	auth := api.Group("/auth", ratelimit.New(20, time.Minute))
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh-token", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.LogOut)
	auth.GET("/me", d.Auth.Me, d.Gate.RequireAuth)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/reset-password/:token", d.Auth.ResetPassword)

	// spelling kept for frontend compatibility
	referral := api.Group("/refferal", d.Gate.RequireAuth)
	referral.POST("/opt-in", d.Referral.OptIn)
	referral.GET("/stats", d.Referral.Stats)
	referral.POST("/withdraw", d.Referral.Withdraw)

	orders := api.Group("/user/orders", d.Gate.RequireAuth)
	orders.POST("", d.Order.CreateOrder)
	orders.GET("", d.Order.ListOrders)
	orders.GET("/:id", d.Order.GetOrder)
	orders.PATCH("/:id/cancel", d.Order.CancelOrder)

	products := api.Group("/products")
	products.GET("", d.Product.GetProducts)
	products.GET("/suggestions", d.Product.Suggestions)
	products.GET("/:id", d.Product.GetProduct)

	api.GET("/search", d.Search.Search)

	cart := api.Group("/cart", d.Gate.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("/:id", d.Cart.DeleteOneFromCart)

	saved := api.Group("/saved-products", d.Gate.RequireAuth)
	saved.POST("", d.Cart.SaveProduct)
	saved.GET("", d.Cart.GetSavedProducts)
	saved.DELETE("/:id", d.Cart.UnsaveProduct)

	reviews := api.Group("/reviews")
	reviews.GET("", d.Review.GetReviews)
	reviews.POST("", d.Review.CreateReview, d.Gate.RequireAuth)
	reviews.POST("/:id/like", d.Review.LikeReview, d.Gate.RequireAuth)
	reviews.PATCH("/:id/approve", d.Review.ApproveReview, d.Gate.RequireAuth, d.Gate.RequireAdmin)
	reviews.DELETE("/:id", d.Review.DeleteReview, d.Gate.RequireAuth)

	blog := api.Group("/blog-posts")
	blog.GET("", d.BlogPost.GetPosts)
	blog.GET("/:id", d.BlogPost.GetPost)
	blog.POST("", d.BlogPost.CreatePost, d.Gate.RequireAuth)
	blog.PUT("/:id", d.BlogPost.UpdatePost, d.Gate.RequireAuth, d.Gate.RequireAdmin)
	blog.DELETE("/:id", d.BlogPost.DeletePost, d.Gate.RequireAuth, d.Gate.RequireAdmin)
	blog.POST("/:id/comments", d.BlogPost.AddComment)
	blog.PATCH("/:id/comments/:commentId/approve", d.BlogPost.ApproveComment, d.Gate.RequireAuth, d.Gate.RequireAdmin)

	subs := api.Group("/subscriptions", d.Gate.RequireAuth)
	subs.POST("", d.Subscription.CreateSubscription)
	subs.GET("/user", d.Subscription.GetUserSubscriptions)
	subs.PUT("/:id", d.Subscription.UpdateSubscription)
	subs.PATCH("/:id/pause", d.Subscription.PauseSubscription)
	subs.PATCH("/:id/resume", d.Subscription.ResumeSubscription)
	subs.PATCH("/:id/cancel", d.Subscription.CancelSubscription)

	dist := api.Group("/distributors", d.Gate.RequireAuth)
	dist.POST("/apply", d.Distributor.Apply)
	dist.GET("", d.Distributor.ListDistributors)
	dist.GET("/:id", d.Distributor.GetDistributor)
	dist.PATCH("/:id/status", d.Distributor.UpdateStatus, d.Gate.RequireAdmin)
	dist.DELETE("/:id", d.Distributor.DeleteDistributor, d.Gate.RequireAdmin)

	notif := api.Group("/notifications", d.Gate.RequireAuth)
	notif.GET("", d.Notification.List)
	notif.PATCH("/read-all", d.Notification.MarkAllRead)
	notif.PATCH("/:id/read", d.Notification.MarkRead)

	api.POST("/newsletter", d.Newsletter.Subscribe)
	api.DELETE("/newsletter", d.Newsletter.Unsubscribe)
	api.POST("/contact", d.Contact.Submit, ratelimit.New(5, 10*time.Minute))
	api.POST("/chatbot", d.Chatbot.Chat)

	admin := api.Group("/admin", d.Gate.RequireAuth, d.Gate.RequireAdmin)
	admin.POST("/products", d.Product.CreateProduct)
	admin.PUT("/products/:id", d.Product.UpdateProduct)
	admin.DELETE("/products/:id", d.Product.DeleteProduct)
	admin.GET("/orders", d.AdminOrder.ListOrders)
	admin.GET("/orders/:id", d.AdminOrder.GetOrder)
	admin.GET("/orders/user/:userId", d.AdminOrder.ListUserOrders)
	admin.PATCH("/orders/:id/status", d.AdminOrder.UpdateStatus)
	admin.DELETE("/orders/:id", d.AdminOrder.DeleteOrder)
	admin.GET("/users", d.AdminUser.ListUsers)
	admin.PATCH("/users/:id/role", d.AdminUser.UpdateRole)
	admin.DELETE("/users/:id", d.AdminUser.DeleteUser)
	admin.GET("/trends/sales-trends", d.AdminOrder.SalesTrends)
	admin.GET("/trends/top-products", d.AdminOrder.TopProducts)
}
