package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/recipehub/backend/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterOptions struct {
	CORSAllowedOrigins []string
	Pagination         service.PaginationPolicy
	Uploads            UploadConfig
	Logger             *slog.Logger
}

// NewRouter mounts the public auth routes, the token-protected recipe routes
// and the health and documentation endpoints.
func NewRouter(authSvc *service.AuthService, recipeSvc *service.RecipeService, store Pinger, opts RouterOptions) *gin.Engine {
	binding.EnableDecoderDisallowUnknownFields = true

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(recoverPanic(logger), RequestLogger(logger), CORSMiddleware(opts.CORSAllowedOrigins, false))

	router.GET("/", Root)
	router.GET("/ping", Ping)
	router.GET("/healthz", Healthz(store))
	router.GET("/openapi.json", OpenAPIDoc)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := AuthMiddleware(authSvc)

	authHandler := NewAuthHandler(authSvc)
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	recipeHandler := NewRecipeHandler(recipeSvc, opts.Pagination, opts.Uploads)
	recipes := router.Group("/api/recipes", requireAuth)
	{
		recipes.GET("/all-recipes", recipeHandler.ListAll)
		recipes.GET("/user-recipes", recipeHandler.ListMine)
		recipes.POST("/new", recipeHandler.Create)
		recipes.GET("/:id", recipeHandler.Get)
		recipes.PUT("/:id", recipeHandler.Update)
		recipes.DELETE("/:id", recipeHandler.Delete)
	}

	return router
}
