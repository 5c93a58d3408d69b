package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gridstore/bridge/internal/config"
	"github.com/gridstore/bridge/internal/handlers"
	"github.com/gridstore/bridge/internal/middleware"
	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/services"
	"github.com/gridstore/bridge/internal/storage"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "bridged",
		Short: "GridStore bridge - storage network control plane",
		Long:  `The bridge tracks farmer contacts, user bandwidth, billing ledgers, frame staging and storage audits for the GridStore network.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.toml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.toml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("Warning: failed to load config from %s: %v", path, err)
		log.Println("Using default configuration")
		cfg = config.DefaultConfig()
	}
	return cfg
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			ctx := context.Background()
			db, err := storage.New(ctx, cfg.Database.DatabaseURL())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			migrationsPath, _ := cmd.Flags().GetString("path")
			if err := db.Migrate(cfg.Database.DatabaseURL(), migrationsPath); err != nil {
				return err
			}

			log.Println("Migrations applied")
			return nil
		},
	}

	cmd.Flags().String("path", "./migrations", "migrations directory")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bridge API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	workerKey := os.Getenv("WORKER_KEY")
	if workerKey == "" {
		return fmt.Errorf("WORKER_KEY must be set")
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.Migrate(cfg.Database.DatabaseURL(), migrationsPath); err != nil {
		log.Printf("Warning: migrations failed: %v", err)
	}

	// Initialize services
	limits := models.TransferLimits{
		HourBytes:  cfg.Limits.HourBytes,
		DayBytes:   cfg.Limits.DayBytes,
		MonthBytes: cfg.Limits.MonthBytes,
	}
	userService := services.NewUserService(db, limits)
	contactService := services.NewContactService(db)
	billingService := services.NewBillingService(db)
	frameService := services.NewFrameService(db, cfg.Shards.StrictIndex)
	auditService := services.NewAuditService(db, cfg.Audits.ClaimLimit)
	bucketService := services.NewBucketService(db)

	registry := services.NewAdapterRegistry(cfg.Processors.Default)
	registry.Add(services.ManualAdapter{})
	paymentService := services.NewPaymentService(db, registry)

	// Set up HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, jwtSecret)
	contactHandler := handlers.NewContactHandler(contactService)
	billingHandler := handlers.NewBillingHandler(billingService)
	frameHandler := handlers.NewFrameHandler(frameService)
	auditHandler := handlers.NewAuditHandler(auditService)
	bucketHandler := handlers.NewBucketHandler(bucketService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, billingService)
	transferHandler := handlers.NewTransferHandler(userService)

	jwtAuth := middleware.JWTMiddleware(jwtSecret)
	workerAuth := middleware.WorkerAuthMiddleware(workerKey)

	api := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/profile", jwtAuth, authHandler.Profile)
		}

		// Contact routes (reported by the data plane)
		contacts := api.Group("/contacts")
		contacts.Use(workerAuth)
		{
			contacts.POST("", contactHandler.Upsert)
			contacts.GET("", contactHandler.List)
			contacts.GET("/:nodeID", contactHandler.Get)
			contacts.POST("/:nodeID/points", contactHandler.RecordPoints)
			contacts.POST("/:nodeID/timeout", contactHandler.RecordTimeout)
			contacts.POST("/:nodeID/response-time", contactHandler.RecordResponseTime)
		}

		// Bucket and frame routes (protected)
		buckets := api.Group("/buckets")
		buckets.Use(jwtAuth)
		{
			buckets.POST("", bucketHandler.Create)
			buckets.GET("", bucketHandler.List)
			buckets.GET("/:bucketID", bucketHandler.Get)
			buckets.DELETE("/:bucketID", bucketHandler.Delete)
			buckets.POST("/:bucketID/files", bucketHandler.CreateEntry)
			buckets.GET("/:bucketID/files", bucketHandler.ListEntries)
		}

		frames := api.Group("/frames")
		frames.Use(jwtAuth)
		{
			frames.POST("", frameHandler.Create)
			frames.GET("", frameHandler.List)
			frames.GET("/:frameID", frameHandler.Get)
			frames.PUT("/:frameID/lock", frameHandler.SetLocked)
			frames.POST("/:frameID/shards", frameHandler.AddShard)
		}

		// Billing routes
		billing := api.Group("/billing")
		{
			billing.GET("/credits", jwtAuth, billingHandler.ListCredits)
			billing.GET("/debits", jwtAuth, billingHandler.ListDebits)
			billing.GET("/balance", jwtAuth, billingHandler.Balance)
			billing.POST("/credits", workerAuth, billingHandler.CreateCredit)
			billing.PUT("/credits/:creditID/paid", workerAuth, billingHandler.MarkCreditPaid)
			billing.POST("/debits", workerAuth, billingHandler.CreateDebit)
		}

		// Payment routes (protected)
		payments := api.Group("/payments")
		payments.Use(jwtAuth)
		{
			payments.POST("/register", paymentHandler.Register)
			payments.GET("/default", paymentHandler.Default)
			payments.POST("/methods", paymentHandler.AddMethod)
			payments.DELETE("/methods/:methodID", paymentHandler.RemoveMethod)
			payments.POST("/charge", paymentHandler.Charge)
		}

		// Audit routes (worker only)
		audits := api.Group("/audits")
		audits.Use(workerAuth)
		{
			audits.POST("/schedule", auditHandler.Schedule)
			audits.POST("/claim", auditHandler.Claim)
			audits.PUT("/:auditID/result", auditHandler.Result)
			audits.GET("/pending", auditHandler.Pending)
		}

		// User accounting routes (worker only)
		users := api.Group("/users")
		users.Use(workerAuth)
		{
			users.POST("/:email/transfer", transferHandler.Record)
			users.GET("/:email/rate-limited", transferHandler.RateLimited)
			users.PUT("/:email/activate", authHandler.Activate)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Bridge API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Println("Server exited")
	return nil
}
