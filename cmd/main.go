package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "ptime/docs" // swagger docs

	"ptime/internal/caching"
	"ptime/internal/config"
	"ptime/internal/handlers"
	"ptime/internal/identity"
	"ptime/internal/jobs/background"
	"ptime/internal/middleware"
	"ptime/internal/models"
	"ptime/internal/repositories"
	"ptime/internal/services"
	"ptime/pkg/database"
)

const version = "1.0.0"

// @title PTime API
// @version 1.0
// @description Two-sided gig employment marketplace API with role-reconciled auth, business registry and job postings.
// @host localhost:8080
// @BasePath /v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Database
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.ClosePool(pool)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// JWT secret
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		if !cfg.IsDevelopment() {
			log.Fatal("JWT_SECRET is required outside development")
		}
		jwtSecret = random.String(32)
		log.Printf("WARNING: Using generated JWT secret for development")
	}

	// Cache
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Object storage
	storageSvc, err := services.NewMinioStorageService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(ctx, cfg.LogoBucket); err != nil {
		log.Fatalf("Failed to ensure logo bucket: %v", err)
	}

	// Identity provider
	provider, err := identity.NewHTTPProvider(ctx, identity.Config{
		AuthURL:      cfg.IdentityAuthURL,
		TokenURL:     cfg.IdentityTokenURL,
		JWKSURL:      cfg.IdentityJWKSURL,
		LogoutURL:    cfg.IdentityLogoutURL,
		ClientID:     cfg.IdentityClientID,
		ClientSecret: cfg.IdentityClientSecret,
		RedirectURL:  cfg.IdentityRedirectURL,
		Scopes:       cfg.IdentityScopes,
	})
	if err != nil {
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	// Repositories
	profileRepo := repositories.NewProfileRepository(pool)
	employerRepo := repositories.NewEmployerRepository(pool)
	businessRepo := repositories.NewBusinessRepository(pool)
	jobRepo := repositories.NewJobRepository(pool)

	// Services
	tokenSvc := services.NewTokenService(cacheSvc, profileRepo, jwtSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	intentSvc := services.NewIntentService(cacheSvc, jwtSecret, 10*time.Minute)
	reconcileSvc := services.NewReconcileService(pool, profileRepo, provider)
	businessSvc := services.NewBusinessService(businessRepo, employerRepo, profileRepo, storageSvc, cfg.LogoBucket)
	jobSvc := services.NewJobService(jobRepo, cacheSvc)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool)
	authHandlers := handlers.NewAuthHandlers(provider, intentSvc, reconcileSvc, tokenSvc, profileRepo)
	businessHandlers := handlers.NewBusinessHandlers(businessSvc)
	jobHandlers := handlers.NewJobHandlers(jobSvc)

	// Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// Auth routes (no session required)
	auth := v1.Group("/auth")
	auth.POST("/oauth/start", authHandlers.OAuthStart)
	auth.GET("/oauth/callback", authHandlers.OAuthCallback)
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/signin", authHandlers.Signin)
	auth.POST("/refresh", authHandlers.Refresh)

	// Session-gated routes
	jwtConfig := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.AuthClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}

	session := v1.Group("")
	session.Use(echojwt.WithConfig(jwtConfig))
	session.Use(middleware.ResolveProfile(profileRepo, tokenSvc))

	session.GET("/auth/profile", authHandlers.Profile)
	session.POST("/auth/signout", authHandlers.Signout)

	// Public job listing
	v1.GET("/jobs", jobHandlers.ListJobs)
	v1.GET("/jobs/:id", jobHandlers.GetJob)

	// Employer-only surface
	employer := session.Group("")
	employer.Use(middleware.RequireRole(models.RoleEmployer))

	employer.POST("/businesses", businessHandlers.CreateBusiness)
	employer.GET("/businesses", businessHandlers.ListBusinesses)
	employer.GET("/businesses/:id", businessHandlers.GetBusiness)
	employer.PUT("/businesses/:id", businessHandlers.UpdateBusiness)
	employer.DELETE("/businesses/:id", businessHandlers.DeleteBusiness)
	employer.POST("/businesses/:id/logo", businessHandlers.UploadLogo)
	employer.GET("/businesses/:id/logo", businessHandlers.GetLogoURL)

	employer.GET("/jobs/mine", jobHandlers.ListMyJobs)
	employer.POST("/jobs", jobHandlers.CreateJob)
	employer.PUT("/jobs/:id", jobHandlers.UpdateJob)
	employer.DELETE("/jobs/:id", jobHandlers.DeleteJob)

	// Background maintenance
	scheduler := background.NewMaintenanceScheduler(cacheSvc, jobRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}
	defer scheduler.Stop()

	log.Printf("PTime server v%s starting on port %s", version, cfg.Port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", cfg.Port)))
}
