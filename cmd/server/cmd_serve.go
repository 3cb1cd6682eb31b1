package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vnfurniture/internal/auth"
	"vnfurniture/internal/handlers"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/mail"
	"vnfurniture/internal/middleware"
	"vnfurniture/internal/payment"
	"vnfurniture/internal/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	bucket, memBucket, err := openBucket(ctx, cfg)
	if err != nil {
		return err
	}

	c, closeCache := openCache(ctx, cfg)
	defer closeCache()

	svc := auth.NewService(backend.Users, c, auth.Options{
		Secret:      []byte(cfg.JWTSecret),
		AdminEmails: cfg.AdminEmails,
		Mailer:      mail.New(cfg),
	})

	qr, err := payment.NewUPI(cfg.UPIPayeeAddress, cfg.UPIPayeeName)
	if err != nil {
		return err
	}

	r, err := routes.New(routes.Deps{
		Handler:      handlers.New(backend, bucket, qr),
		Auth:         svc,
		Sessions:     middleware.NewCookieStore(cfg.SessionSecret, cfg.IsProduction()),
		Cache:        c,
		CORSOrigins:  cfg.CORSOrigins,
		MemoryBucket: memBucket,
		BucketName:   cfg.MinioBucket,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("🚀 VN Furniture listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("🛑 shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
