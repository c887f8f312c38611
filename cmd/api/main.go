// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/api/handlers"
	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/config"
	"github.com/Marga-Ghale/ora-interior-backend/internal/cron"
	"github.com/Marga-Ghale/ora-interior-backend/internal/db"
	"github.com/Marga-Ghale/ora-interior-backend/internal/email"
	"github.com/Marga-Ghale/ora-interior-backend/internal/events"
	"github.com/Marga-Ghale/ora-interior-backend/internal/mockdata"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/seed"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/Marga-Ghale/ora-interior-backend/internal/socket"
	"github.com/Marga-Ghale/ora-interior-backend/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Money fields go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	if err := db.RunMigrations(cfg.DatabaseURL, "./internal/db/migrations"); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Initialize PostgreSQL (pgxpool + sql.DB) and MongoDB
	// ============================================
	pg, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	mongoDB, err := db.NewMongoDB(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close()

	repos := repository.NewRepositories(pg.Pool, pg.SQL, mongoDB.Database)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var (
		redisDB *db.RedisDB
		locker  service.Locker
		cache   service.Cache
	)
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
		} else {
			defer redisDB.Close()
			locker, cache = redisDB, redisDB
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize Kafka producer (optional)
	// ============================================
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var publisher events.Publisher = events.NoopPublisher{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 256)
		producer.Start(ctx)
		publisher = producer
		log.Printf("📨 Kafka producer started (topic=%s)", cfg.KafkaTopic)
	} else {
		log.Println("⚠️  Kafka not configured (KAFKA_BROKERS not set)")
	}

	// ============================================
	// Initialize R2 storage (optional)
	// ============================================
	var presigner service.Presigner
	if cfg.R2Configured() {
		r2, err := storage.NewR2Client(ctx, storage.R2Config{
			Endpoint:        cfg.R2Endpoint,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2Bucket,
			PublicDomain:    cfg.R2PublicDomain,
		})
		if err != nil {
			log.Printf("⚠️ R2 storage unavailable: %v", err)
		} else {
			presigner = r2
			log.Println("🪣 R2 storage enabled")
		}
	}

	// ============================================
	// Dashboard feeds (optional)
	// ============================================
	var feeds service.FeedFetcher
	if len(cfg.MockEndpoints) > 0 {
		feeds = mockdata.NewClient(cfg.MockEndpoints, 10*time.Second)
		log.Printf("📊 %d dashboard feeds configured", len(cfg.MockEndpoints))
	}

	// ============================================
	// Initialize Email Queue (optional)
	// ============================================
	var (
		mailer     service.Mailer
		emailQueue *email.EmailQueue
	)
	if cfg.SMTPHost != "" {
		emailSvc := email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		emailQueue = email.NewEmailQueue(emailSvc, 2)
		mailer = emailQueue
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		log.Println("🌱 Seeding development data...")
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Locker:      locker,
		Cache:       cache,
		Mailer:      mailer,
		Publisher:   publisher,
		Presigner:   presigner,
		Feeds:       feeds,
		Broadcaster: broadcaster,
	})
	log.Println("✨ All services initialized")

	hub.SetRoomAuthorizer(func(ctx context.Context, userID, role, entityID string) bool {
		return services.Chat.CanJoin(ctx, service.Actor{ID: userID, Role: role}, entityID)
	})

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(services.Quote, services.Dashboard)
	cronScheduler.Start()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "apikey", "x-client-info"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      status(redisDB != nil),
			"storage":    status(presigner != nil),
			"events":     status(producer != nil),
			"email":      status(emailQueue != nil),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
		})
	})

	h := handlers.NewHandlers(services)
	h.Register(r.Group("/api"), services.Auth, wsHandler.HandleWebSocket)

	// ============================================
	// Start Server with graceful shutdown
	// ============================================
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	cronScheduler.Stop()
	hub.Stop()
	if emailQueue != nil {
		emailQueue.Stop()
	}
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}

	log.Println("👋 Server exited")
}

func status(enabled bool) string {
	if enabled {
		return "connected"
	}
	return "disabled"
}
