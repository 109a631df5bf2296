// api/router.go
package api

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/projecthub-backend/api/handlers"
	"github.com/Annany2002/projecthub-backend/api/middleware"
	"github.com/Annany2002/projecthub-backend/config"
	"github.com/Annany2002/projecthub-backend/internal/auth"
	"github.com/Annany2002/projecthub-backend/internal/core"
	"github.com/Annany2002/projecthub-backend/internal/domain"
	"github.com/Annany2002/projecthub-backend/internal/storage"
)

func init() {
	// Report binding failures with JSON field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// SetupRouter initializes the Gin router and sets up all routes. Every
// protected route declares its guard: credential check, then allowed roles.
func SetupRouter(store *storage.Store, cfg *config.Config) *gin.Engine {
	if err := validateSchemas(core.UserListSchema, core.ProjectListSchema); err != nil {
		panic(err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg)))
	// Runs after the chain below it and turns attached errors into responses.
	router.Use(middleware.ErrorHandler())
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	verifier := auth.NewVerifier(cfg.JWTSecret)
	guard := func(roles ...domain.Role) gin.HandlerFunc {
		return middleware.Guard(cfg.AuthHeader, verifier.Stage(), auth.RequireRoles(roles...))
	}
	adminOnly := guard(domain.RoleAdmin)
	anyMember := guard(domain.RoleAdmin, domain.RoleUser)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(store.Users, cfg)
	userHandler := handlers.NewUserHandler(store.Users, cfg)
	projectHandler := handlers.NewProjectHandler(store.Projects, cfg)

	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", middleware.RateLimitMiddleware(loginLimiter), authHandler.Login)
		authRoutes.GET("/me", guard(), authHandler.Me)
	}

	userRoutes := router.Group("/user")
	{
		userRoutes.POST("/register", adminOnly, userHandler.Register)
		userRoutes.POST("/edit", adminOnly, userHandler.Edit)
		userRoutes.POST("/delete", adminOnly, userHandler.Delete)
		userRoutes.GET("/view/:id", anyMember, userHandler.View)
		userRoutes.GET("/list", adminOnly, userHandler.List)
	}

	projectRoutes := router.Group("/project")
	{
		projectRoutes.POST("/register", anyMember, projectHandler.Register)
		projectRoutes.GET("/view/:id", anyMember, projectHandler.View)
		projectRoutes.GET("/list", anyMember, projectHandler.List)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, cfg.AuthHeader, "X-Request-ID")
	corsCfg.ExposeHeaders = []string{"X-Request-ID"}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}

// validateSchemas checks the listing allow-lists once, at router setup.
func validateSchemas(schemas ...core.ListSchema) error {
	for i, schema := range schemas {
		if err := schema.Validate(); err != nil {
			return fmt.Errorf("list schema %d: %w", i, err)
		}
	}
	return nil
}
