package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"galleria/internal/caching"
	"galleria/internal/handlers"
	"galleria/internal/jobs/background"
	"galleria/internal/middleware"
	"galleria/internal/repositories"
	"galleria/internal/services"
	"galleria/pkg/database"
)

const version = "1.0.0"

const presignedURLExpiry = 15 * time.Minute

func main() {
	ctx := context.Background()

	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; tokens will not survive a restart")
	}
	tokenTTL := 24 * 60 * 60 // seconds
	if ttlStr := os.Getenv("TOKEN_TTL_SECONDS"); ttlStr != "" {
		if ttl, err := strconv.Atoi(ttlStr); err == nil && ttl > 0 {
			tokenTTL = ttl
		}
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storage, err := services.NewMinioStorage(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	resetRepo := repositories.NewPasswordResetRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	imageRepo := repositories.NewProductImageRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	contentRepo := repositories.NewContentRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	notifier := services.NewWebhookNotifier(os.Getenv("MAIL_WEBHOOK_URL"))
	imageSvc := services.NewImageService(productRepo, imageRepo, storage, cacheSvc, presignedURLExpiry)
	productSvc := services.NewProductService(productRepo, categoryRepo, imageSvc, cacheSvc)
	cartSvc := services.NewCartService(productRepo, imageSvc, cacheSvc)
	orderSvc := services.NewOrderService(orderRepo, productRepo, cartSvc, notifier)
	contentSvc := services.NewContentService(contentRepo, storage, cacheSvc, presignedURLExpiry)
	authSvc := services.NewAuthService(userRepo, resetRepo, cacheSvc, notifier, jwtSecret, tokenTTL)

	// Create handlers
	healthHandlers := handlers.NewHealthHandlers(pool)
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo)
	productHandlers := handlers.NewProductHandlers(productSvc)
	imageHandlers := handlers.NewImageHandlers(imageSvc)
	categoryHandlers := handlers.NewCategoryHandlers(categoryRepo)
	cartHandlers := handlers.NewCartHandlers(cartSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	contentHandlers := handlers.NewContentHandlers(contentSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(authSvc, cacheSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Version middleware
	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// Authentication routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/forgot-password", authHandlers.ForgotPassword)
	auth.POST("/reset-password", authHandlers.ResetPassword)

	// Public storefront routes
	v1.GET("/products", productHandlers.ListProducts)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.GET("/products/:id/images", imageHandlers.ListImages)
	v1.GET("/images/:id/url", imageHandlers.GetSignedURL)
	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.GET("/categories/:id", categoryHandlers.GetCategory)
	v1.GET("/content/:slug", contentHandlers.GetContent)

	// Cart and checkout
	v1.GET("/cart", cartHandlers.GetCart)
	v1.DELETE("/cart", cartHandlers.ClearCart)
	v1.POST("/cart/items", cartHandlers.AddItem)
	v1.PUT("/cart/items/:productId", cartHandlers.UpdateItem)
	v1.DELETE("/cart/items/:productId", cartHandlers.RemoveItem)
	v1.POST("/checkout", orderHandlers.Checkout)

	// Admin routes (require JWT with admin role)
	admin := v1.Group("/admin")
	admin.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))
	admin.Use(middleware.RequireAdmin())

	admin.GET("/me", authHandlers.Me)

	admin.GET("/products", productHandlers.ListAllProducts)
	admin.POST("/products", productHandlers.CreateProduct)
	admin.PUT("/products/:id", productHandlers.UpdateProduct)
	admin.DELETE("/products/:id", productHandlers.DeleteProduct)

	admin.POST("/products/:id/images", imageHandlers.UploadImages)
	admin.PUT("/products/:id/images/order", imageHandlers.ReorderImages)
	admin.DELETE("/images/:id", imageHandlers.DeleteImage)

	admin.POST("/categories", categoryHandlers.CreateCategory)
	admin.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	admin.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

	admin.GET("/orders", orderHandlers.ListOrders)
	admin.GET("/orders/:id", orderHandlers.GetOrder)
	admin.PATCH("/orders/:id/status", orderHandlers.UpdateOrderStatus)

	admin.GET("/content", contentHandlers.ListContent)
	admin.PUT("/content/:slug", contentHandlers.UpsertContent)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Galleria server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
