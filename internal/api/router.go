package api

import (
	"net/http" // HTTP handler adapters

	"todo_system/docs"                // Generated Swagger document
	"todo_system/internal/middleware" // Custom middleware
	"todo_system/internal/service"    // Business services

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus"          // Metrics registry
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics exposition
	"github.com/redis/go-redis/v9"                            // Redis client
	swaggerFiles "github.com/swaggo/files"                    // Swagger UI assets
	ginSwagger "github.com/swaggo/gin-swagger"                // Swagger UI handler
	"gorm.io/gorm"                                            // GORM ORM library
)

// BasePath prefixes every versioned route
const BasePath = "/api/v1"

// Deps holds everything the router wires into handlers
type Deps struct {
	DB          *gorm.DB             // Health checks
	Redis       *redis.Client        // Optional, nil when caching is off
	Auth        service.AuthService  // Registration, login and token checks
	Todos       service.TodoService  // Todo CRUD
	Registry    *prometheus.Registry // Metrics registry, a fresh one is created when nil
	CORSOrigins []string             // Allowed browser origins
	EnableDocs  bool                 // Serve Swagger UI
}

// SetupRouter builds the gin engine with all routes and middleware
func SetupRouter(deps Deps) *gin.Engine {
	registerValidation()

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(reg)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.CORS(deps.CORSOrigins),
		metrics.Handler(),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Route not found"})
	})

	r.GET("/health", HealthHandler(deps.DB, deps.Redis))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	if deps.EnableDocs {
		docs.SwaggerInfo.BasePath = BasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(BasePath)

	// Auth routes
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", RegisterHandler(deps.Auth))
	authGroup.POST("/login", LoginHandler(deps.Auth))
	authGroup.GET("/me", middleware.JWTAuthMiddleware(deps.Auth), ProfileHandler(deps.Auth))

	// Todo routes (protected by JWT)
	todoGroup := v1.Group("/todos")
	todoGroup.Use(middleware.JWTAuthMiddleware(deps.Auth))
	todoGroup.POST("", CreateTodoHandler(deps.Todos))
	todoGroup.GET("", ListTodosHandler(deps.Todos))
	todoGroup.GET("/:id", GetTodoHandler(deps.Todos))
	todoGroup.PATCH("/:id", UpdateTodoHandler(deps.Todos))
	todoGroup.DELETE("/:id", DeleteTodoHandler(deps.Todos))

	return r
}
