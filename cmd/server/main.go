// @title           Entradas Photo Backend API
// @version         1.0.0
// @description     Backend API for the event photo-capture system. Front-desk staff upload attendee photos tagged with an entry tier; photos are stored on a configurable primary backend (local disk or SFTP share), mirrored best-effort to cloud object storage, and tracked in Postgres together with a price snapshot per upload.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"entradas-backend/docs"
	"entradas-backend/internal/config"
	"entradas-backend/internal/database"
	"entradas-backend/internal/events"
	"entradas-backend/internal/handlers"
	"entradas-backend/internal/imageproc"
	"entradas-backend/internal/middleware"
	"entradas-backend/internal/services"
	"entradas-backend/internal/storage"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	// Run migrations
	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()

	dbClient, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	// Exactly one primary backend per deployment, chosen at startup.
	var primary storage.Backend
	switch cfg.StorageBackend {
	case "sftp":
		primary, err = storage.NewSFTPBackend(storage.SFTPConfig{
			Host:      cfg.SFTPHost,
			Port:      cfg.SFTPPort,
			User:      cfg.SFTPUser,
			Password:  cfg.SFTPPassword,
			RemoteDir: cfg.SFTPRemoteDir,
			Timeout:   cfg.StorageTimeout,
		})
	default:
		primary, err = storage.NewLocalBackend(cfg.LocalStorageDir, cfg.LocalFallback)
	}
	if err != nil {
		log.Fatalf("Failed to initialize %s storage backend: %v", cfg.StorageBackend, err)
	}
	log.Printf("Primary storage backend: %s", primary.Name())

	// Optional cloud mirror; its absence or failure never blocks uploads.
	var mirror *storage.Mirror
	var publisher *events.Publisher
	if cfg.MirrorConfigured() {
		mirror, err = storage.NewMirror(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		if err != nil {
			log.Printf("Warning: failed to initialize mirror, continuing without: %v", err)
			mirror = nil
		}
		publisher, err = events.NewPublisher(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			log.Printf("Warning: failed to initialize event publisher, continuing without: %v", err)
			publisher = nil
		}
	} else {
		log.Println("Mirror storage not configured; uploads will have no secondary copy")
	}

	processor := imageproc.NewProcessor(cfg.MaxUploadBytes, cfg.MaxImageWidth, cfg.MaxImageHeight, cfg.JPEGQuality)

	// A typed-nil *storage.Mirror must not become a non-nil interface.
	var mirrorBackend services.MirrorBackend
	if mirror != nil {
		mirrorBackend = mirror
	}

	coordinator := services.NewCoordinator(
		dbClient, primary, mirrorBackend, processor, publisher,
		cfg.DeleteAllSecret, cfg.StorageTimeout,
	)

	uploadHandler := handlers.NewUploadHandler(coordinator)
	photosHandler := handlers.NewPhotosHandler(coordinator)
	imageHandler := handlers.NewImageHandler(coordinator)
	pricesHandler := handlers.NewPricesHandler(coordinator)
	statsHandler := handlers.NewStatsHandler(coordinator)
	healthHandler := handlers.NewHealthHandler(coordinator, dbClient)

	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")

	api.GET("/health", healthHandler.Get)
	api.POST("/upload", uploadHandler.Upload)
	api.GET("/photos", photosHandler.List)
	api.GET("/photos/:tier", photosHandler.ListByTier)
	api.GET("/image/:filename", imageHandler.Get)
	api.GET("/precios", pricesHandler.List)
	api.GET("/estadisticas", statsHandler.Get)

	// Admin mutations; JWT-guarded when ADMIN_JWT_SECRET is set.
	admin := router.Group("/api")
	admin.Use(middleware.AdminAuth(cfg))
	admin.PUT("/precios/:tier", pricesHandler.Update)
	admin.DELETE("/photos/:id", photosHandler.DeleteOne)
	admin.DELETE("/delete-all", photosHandler.DeleteAll)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
