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

	"github.com/joho/godotenv"

	"github.com/abaanfida/unixora/internal/client"
	"github.com/abaanfida/unixora/internal/config"
	"github.com/abaanfida/unixora/internal/handler"
	authservice "github.com/abaanfida/unixora/internal/service/auth"
	"github.com/abaanfida/unixora/internal/service/conversation"
	"github.com/abaanfida/unixora/internal/service/history"
	matchservice "github.com/abaanfida/unixora/internal/service/match"
	"github.com/abaanfida/unixora/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.Auth.UsingFallbackSecret() {
		log.Println("warning: JWT_SECRET not set, using development fallback secret")
	}

	accounts, err := store.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		log.Fatalf("failed to open account store: %v", err)
	}
	defer accounts.Close()

	authSvc := authservice.NewService(accounts, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	histSvc := history.NewService(cfg.Chat.HistoryLimit)

	queryClient := client.NewQueryClient(cfg.Services.QueryBaseURL, cfg.Services.Timeout)
	convSvc := conversation.NewService(histSvc, queryClient, cfg.Services.TopK)

	matchClient := client.NewMatchClient(cfg.Services.MatchBaseURL, cfg.Services.Timeout)
	matchSvc := matchservice.NewService(matchClient)

	router := handler.NewRouter(authSvc, convSvc, histSvc, matchSvc, cfg.CORS.AllowedOrigins)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Unixora backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
