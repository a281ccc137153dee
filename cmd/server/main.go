package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quangdng/memedump/internal/config"
	"github.com/quangdng/memedump/internal/handler"
	"github.com/quangdng/memedump/internal/logging"
	"github.com/quangdng/memedump/internal/middleware"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/internal/service"
	"github.com/quangdng/memedump/migrations"
	"github.com/quangdng/memedump/pkg/auth"
	"github.com/quangdng/memedump/pkg/mailer"
	"github.com/quangdng/memedump/pkg/notification"
	"github.com/quangdng/memedump/pkg/storage"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting MemeDump API Server [env=%s]", cfg.App.Env)

	zapLogger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		// Fallback to AutoMigrate if migration files fail
		if err := db.AutoMigrate(
			&model.User{},
			&model.UserDevice{},
			&model.Meme{},
			&model.Dump{},
			&model.DumpMeme{},
			&model.DumpRecipient{},
			&model.Reaction{},
			&model.UserConnection{},
			&model.Group{},
			&model.GroupMember{},
			&model.Collection{},
			&model.CollectionMeme{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Email (SMTP / Mailpit) ====================
	mailClient := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	log.Printf("📧 SMTP configured: %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)

	// ==================== Initialize Layers ====================
	// JWT Manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	memeRepo := repository.NewMemeRepository(db)
	dumpRepo := repository.NewDumpRepository(db)
	recipientRepo := repository.NewRecipientRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Push Notifications (FCM)
	fcmService, err := notification.NewFCMService(cfg.Firebase.CredentialsFile, userRepo, zapLogger)
	if err != nil {
		log.Printf("⚠️  FCM not available: %v (push notifications disabled)", err)
	}
	if fcmService != nil {
		log.Println("✅ Firebase Cloud Messaging initialized")
	}

	// Services
	resolver := service.NewResolverService(groupRepo, connRepo)
	authService := service.NewAuthService(userRepo, jwtManager, rdb)
	dumpService := service.NewDumpService(
		dumpRepo, memeRepo, recipientRepo, connRepo, userRepo,
		resolver, fcmService, mailClient, cfg.App.PublicURL, zapLogger,
	)
	engagementService := service.NewEngagementService(recipientRepo, dumpRepo, userRepo)
	claimService := service.NewClaimService(db, recipientRepo, connRepo, userRepo, zapLogger)
	activityService := service.NewActivityService(activityRepo)
	connService := service.NewConnectionService(connRepo)
	groupService := service.NewGroupService(groupRepo)

	// MinIO Storage
	minioStorage, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Printf("⚠️  MinIO not available: %v (meme upload disabled)", err)
	}
	if minioStorage != nil {
		log.Println("✅ Connected to MinIO")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService, jwtManager)
	dumpHandler := handler.NewDumpHandler(dumpService, activityService)
	recipientHandler := handler.NewRecipientHandler(engagementService, claimService, dumpService)
	memeHandler := handler.NewMemeHandler(minioStorage, memeRepo)
	groupHandler := handler.NewGroupHandler(groupService, connService)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "memedump-api",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/device", authHandler.PairDevice)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, rdb))
		{
			// Auth
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.PATCH("/auth/profile", authHandler.UpdateProfile)
			protected.POST("/auth/email", authHandler.AttachEmail)
			protected.POST("/auth/devices", authHandler.RegisterDevice)

			// Memes
			protected.POST("/memes", memeHandler.Upload)
			protected.GET("/memes", memeHandler.List)

			// Dumps
			protected.POST("/dumps", dumpHandler.CreateDump)
			protected.GET("/dumps", dumpHandler.GetDumps)
			protected.GET("/dumps/:id", dumpHandler.GetDump)
			protected.PATCH("/dumps/:id", dumpHandler.UpdateDump)
			protected.POST("/dumps/:id/memes", dumpHandler.AppendMemes)
			protected.POST("/dumps/:id/collections", dumpHandler.AddCollection)
			protected.POST("/dumps/:id/send", dumpHandler.SendDump)
			protected.POST("/dumps/:id/share", dumpHandler.ShareDump)

			// Groups & connections
			protected.POST("/groups", groupHandler.CreateGroup)
			protected.GET("/groups", groupHandler.GetGroups)
			protected.POST("/groups/:id/members", groupHandler.AddGroupMember)
			protected.POST("/connections", groupHandler.CreateConnection)
			protected.GET("/connections", groupHandler.GetConnections)

			// Claim & activity
			protected.POST("/claim", recipientHandler.Claim)
			protected.GET("/activity", dumpHandler.GetActivity)
		}
	}

	// Recipient surface (capability tokens, no auth)
	router.GET("/r/:token", recipientHandler.ViewDump)
	router.POST("/r/:token/reactions", recipientHandler.React)
	router.PUT("/r/:token/note", recipientHandler.UpdateNote)

	// Public share preview
	router.GET("/s/:token", recipientHandler.SharePreview)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 MemeDump API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("🔗 Recipient links: %s/r/<token>", cfg.App.PublicURL)
	log.Printf("📧 Mailpit UI: http://localhost:8025")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited gracefully")
}
