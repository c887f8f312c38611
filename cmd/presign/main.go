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

	"github.com/Marga-Ghale/ora-interior-backend/internal/config"
	"github.com/Marga-Ghale/ora-interior-backend/internal/presign"
	"github.com/Marga-Ghale/ora-interior-backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

// Standalone presigned-upload function. It needs only the R2 settings.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	h := &presign.Handler{
		Expiry:        time.Duration(cfg.PresignExpiry) * time.Second,
		NotConfigured: storage.ErrNotConfigured.Error(),
	}

	r2, err := storage.NewR2Client(context.Background(), storage.R2Config{
		Endpoint:        cfg.R2Endpoint,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		Bucket:          cfg.R2Bucket,
		PublicDomain:    cfg.R2PublicDomain,
	})
	if err != nil {
		log.Printf("⚠️ [Presign] %v", err)
	} else {
		h.Presigner = r2
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logger, middleware.Recoverer)
	h.Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.PresignPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 [Presign] Listening on port %s", cfg.PresignPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ [Presign] %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ [Presign] Forced shutdown: %v", err)
	}
}
