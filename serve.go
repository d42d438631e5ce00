package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/andrewpaige1/mindmap-api/auth"
	"github.com/andrewpaige1/mindmap-api/config"
	"github.com/andrewpaige1/mindmap-api/handlers"
	"github.com/andrewpaige1/mindmap-api/logger"
	"github.com/andrewpaige1/mindmap-api/middleware"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mind map HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.AppEnv)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	db, err := config.Connect(cfg)
	if err != nil {
		return err
	}

	p, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	authMiddleware, err := middleware.EnsureValidToken(cfg.Auth0Domain, cfg.Auth0Audience, log)
	if err != nil {
		return err
	}
	syncUser := middleware.SyncUserMiddleware(db, log)

	var share *auth.ShareSigner
	if cfg.JWTSecretKey != "" {
		if share, err = auth.NewShareSigner(cfg.JWTSecretKey, 0); err != nil {
			return err
		}
	} else {
		log.Warn("share links disabled", "env", "JWT_SECRET_KEY")
	}

	DBHandler := &handlers.DBHandler{
		DB:             db,
		Generator:      p.generator,
		Extractor:      p.extractor,
		Share:          share,
		Log:            log,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}
	mux := http.NewServeMux()

	// Generation
	mux.HandleFunc("POST /api/mindmap/generate", DBHandler.GenerateMindMap)
	mux.HandleFunc("POST /api/mindmap/upload", DBHandler.UploadMindMap)
	mux.HandleFunc("GET /api/mindmap/health", DBHandler.Health)
	mux.HandleFunc("GET /api/mindmap/status", DBHandler.Status)

	// Saved mind maps
	mux.HandleFunc("GET /api/mindmaps", syncUser(DBHandler.GetMindMapsForCurrentUser))
	mux.HandleFunc("GET /api/mindmaps/{mindMapID}", DBHandler.GetMindMapByID)
	mux.HandleFunc("PUT /api/mindmaps/{mindMapID}", syncUser(DBHandler.UpdateMindMapByID))
	mux.HandleFunc("DELETE /api/mindmaps/{mindMapID}", syncUser(DBHandler.DeleteMindMapByID))
	mux.HandleFunc("POST /api/mindmaps/{mindMapID}/share", syncUser(DBHandler.CreateShareLink))
	mux.HandleFunc("GET /api/shared/{token}", DBHandler.GetSharedMindMap)

	// Users
	mux.HandleFunc("GET /api/users/me", syncUser(DBHandler.GetCurrentUser))
	mux.HandleFunc("GET /api/users/{nickname}/mindmaps", DBHandler.GetMindMapsForUser)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		ExposedHeaders:   []string{handlers.SourceHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(mux))

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "env", cfg.AppEnv)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
