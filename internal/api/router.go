package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aciencia/catalog-system/internal/api/handler"
	"github.com/aciencia/catalog-system/internal/api/middleware"
	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/service"
	"github.com/aciencia/catalog-system/internal/infrastructure/config"
	mongostore "github.com/aciencia/catalog-system/internal/infrastructure/db/mongo"
	redisstore "github.com/aciencia/catalog-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("catalog"))

	// --- Dependencies ---
	tokenService, err := service.NewTokenService(
		cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ClientID, cfg.JWT.LifetimeSeconds)
	if err != nil {
		return nil, err
	}

	userRepo := mongostore.NewUserRepository(db)
	elementRepo := mongostore.NewElementRepository(db)
	relationRepo := mongostore.NewRelationRepository(db)
	throttle := redisstore.NewLoginThrottle(rdb)

	authService := service.NewAuthService(userRepo, tokenService, throttle, log)
	userService := service.NewUserService(userRepo, log)
	elementService := service.NewElementService(elementRepo, relationRepo, log)

	loginHandler := handler.NewLoginHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	elementHandler := handler.NewElementHandler(elementService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	auth := middleware.Auth(tokenService)
	reader := middleware.RequireScope(domain.RoleReader)
	writer := middleware.RequireScope(domain.RoleWriter)
	writerOnResource := middleware.RequireScopeOnResource(domain.RoleWriter)

	// --- Login ---
	e.POST("/access_token", loginHandler.Login)

	// --- Users ---
	// The username probe is deliberately unauthenticated: the signup form
	// calls it before an account exists.
	e.GET("/api/v1/users/username/:username", userHandler.Exists)

	// OPTIONS answers without credentials: verb discovery and CORS
	// preflight both happen before a token exists.
	e.OPTIONS("/api/v1/users", handler.Options)
	e.OPTIONS("/api/v1/users/:id", handler.Options)

	users := e.Group("/api/v1/users", auth)
	users.GET("", userHandler.List, reader)
	users.POST("", userHandler.Create, writer)
	users.GET("/:id", userHandler.Get, reader)
	users.HEAD("/:id", userHandler.Get, reader)
	users.PUT("/:id", userHandler.Update, writerOnResource)
	users.DELETE("/:id", userHandler.Delete, writerOnResource)

	// --- Catalog elements ---
	for _, kind := range []domain.ElementKind{domain.KindPerson, domain.KindEntity, domain.KindProduct} {
		e.OPTIONS("/api/v1/"+kind.Plural(), handler.Options)
		e.OPTIONS("/api/v1/"+kind.Plural()+"/:id", handler.Options)

		g := e.Group("/api/v1/"+kind.Plural(), auth)
		g.GET("", elementHandler.List(kind), reader)
		g.POST("", elementHandler.Create(kind), writer)
		g.GET("/:id", elementHandler.Get(kind), reader)
		g.HEAD("/:id", elementHandler.Get(kind), reader)
		g.PUT("/:id", elementHandler.Update(kind), writerOnResource)
		g.DELETE("/:id", elementHandler.Delete(kind), writerOnResource)

		g.GET("/:id/:other", elementHandler.Members(kind), reader)
		g.PUT("/:id/:other/add/:otherId", elementHandler.Link(kind), writerOnResource)
		g.PUT("/:id/:other/rem/:otherId", elementHandler.Unlink(kind), writerOnResource)
	}

	// --- Observability and health (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	return e, nil
}
