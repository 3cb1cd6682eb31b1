package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/auth"
	"vnfurniture/internal/cache"
	"vnfurniture/internal/handlers"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/middleware"
	"vnfurniture/internal/storage"
	"vnfurniture/internal/web"
)

// Deps is everything the router wires together.
type Deps struct {
	Handler     *handlers.Handler
	Auth        *auth.Service
	Sessions    sessions.Store
	Cache       cache.Cache
	CORSOrigins []string

	// MemoryBucket is served under /objects when images live in-process.
	MemoryBucket *storage.Memory
	BucketName   string
}

// New builds the engine with every route registered.
func New(d Deps) (*gin.Engine, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	handlers.RegisterValidators()

	r := gin.New()
	r.ContextWithFallback = true
	r.HTMLRender = renderer
	r.Use(gin.Recovery(), logger.RequestLogger())

	RegisterRoutes(r, d)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := d.Handler

	r.GET("/healthz", handlers.Healthz)
	r.StaticFS("/static", web.Static())
	if d.MemoryBucket != nil {
		r.GET("/objects/"+d.BucketName+"/*path", handlers.ServeMemoryObject(d.MemoryBucket))
	}

	pages := r.Group("/", middleware.Session(d.Sessions, d.Auth))
	{
		pages.GET("/", h.Home)

		pages.GET("/login", h.LoginPage)
		pages.POST("/login", h.Login)
		pages.GET("/signup", h.SignupPage)
		pages.POST("/signup", middleware.RateLimit(d.Cache, "signup", middleware.SignupMaxAttempts, middleware.SignupWindow), h.Signup)
		pages.POST("/logout", h.Logout)

		pages.GET("/cart", h.Cart)
		pages.POST("/cart/items", middleware.RateLimit(d.Cache, "cart_add", middleware.CartMaxAdds, middleware.CartWindow), h.AddToCart)

		items := pages.Group("/cart/items/:id", middleware.RequireAuth)
		items.POST("/increment", h.IncrementItem())
		items.POST("/decrement", h.DecrementItem())
		items.POST("/remove", h.RemoveItem())

		profile := pages.Group("/profile", middleware.RequireAuth)
		profile.GET("", h.ProfilePage)
		profile.POST("", h.SaveProfile)

		admin := pages.Group("/admin", middleware.RequireAdmin)
		admin.GET("", h.AdminPage)
		admin.POST("/products", h.CreateProduct)
		admin.POST("/products/:id/delete", h.DeleteProduct)
	}

	api := r.Group("/api",
		middleware.CORS(d.CORSOrigins),
		apperror.Middleware(),
		middleware.Session(d.Sessions, d.Auth),
	)
	{
		api.POST("/uploads/image",
			middleware.RequireAdminAPI,
			middleware.RateLimit(d.Cache, "upload", middleware.UploadMaxRequests, middleware.UploadWindow),
			h.UploadImage,
		)
	}
}
