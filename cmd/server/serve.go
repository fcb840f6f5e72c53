package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kaistout4/ImageGallerySPA/gallery/application"
	"github.com/kaistout4/ImageGallerySPA/gallery/persistence"
	"github.com/kaistout4/ImageGallerySPA/internal/auth"
	"github.com/kaistout4/ImageGallerySPA/internal/rest"
	"github.com/kaistout4/ImageGallerySPA/internal/upload"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireSecret(); err != nil {
			return err
		}

		database, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close()

		store, err := upload.NewStore(upload.Config{
			Dir:          cfg.Upload.Dir,
			URLPrefix:    cfg.Upload.URLPrefix,
			MaxBytes:     cfg.Upload.MaxBytes,
			AllowedTypes: cfg.Upload.AllowedTypes,
		})
		if err != nil {
			return err
		}

		service := application.NewImageService(
			persistence.NewImageRepository(database.DB()),
			persistence.NewUserDirectory(database.DB()),
		)

		gin.SetMode(gin.ReleaseMode)
		router := rest.NewRouter(rest.NewImageHandler(service, store), rest.Options{
			Verifier:        auth.NewTokenVerifier(cfg.Auth.JWTSecret),
			ProtectReads:    cfg.Auth.ProtectReads,
			ReadLatency:     cfg.Server.SimulatedLatency,
			UploadDir:       store.Dir(),
			UploadURLPrefix: store.URLPrefix(),
		})

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}

		go func() {
			log.Info().Int("port", cfg.Server.Port).Str("db", database.Path()).Msg("Starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Failed to start server")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Info().Msg("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		log.Info().Msg("Server stopped")
		return nil
	},
}
