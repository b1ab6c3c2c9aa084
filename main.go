package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"hms-server/internal/config"
	"hms-server/internal/database"
	"hms-server/internal/routes"
	"hms-server/internal/session"
	"hms-server/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.Open(ctx, cfg.Database, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	// Redis is optional; without it revocation and rate limits stay local.
	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, continuing without it: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}
	revoker := session.New(db, rdb)
	if dbRevoker, ok := revoker.(*session.DBRevoker); ok {
		if n, err := dbRevoker.Purge(ctx); err != nil {
			log.Printf("Failed to purge expired revoked tokens: %v", err)
		} else if n > 0 {
			log.Printf("Purged %d expired revoked tokens", n)
		}
	}

	files, err := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.URLPrefix)
	if err != nil {
		log.Fatalf("Error preparing upload storage: %v", err)
	}

	// Initialize Gin router
	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Deps{DB: db, Redis: rdb, Files: files, Revoker: revoker}, cfg)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Port),
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server exited gracefully")
}
