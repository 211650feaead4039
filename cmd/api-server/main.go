package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"vitehub/internal/admin"
	"vitehub/internal/audit"
	"vitehub/internal/frontend"
	"vitehub/internal/reload"
	"vitehub/internal/server"
	"vitehub/pkg/database"
	"vitehub/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// manifest problems stop the process here, before anything is routable
	f, err := frontend.New(ctx, cfg, log.Default())
	if err != nil {
		log.Fatalf("frontend setup failed: %v", err)
	}

	dbCfg := database.DefaultConfig()
	if cfg.AuditDB != "" {
		dbCfg.Path = cfg.AuditDB
	}
	db := database.MustOpen(dbCfg)
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}
	auditRepo := audit.NewRepo(db)

	authCfg := utils.LoadAuthConfig()
	if authCfg.PasswordHash == "" {
		log.Println("[admin] VITEHUB_ADMIN_PASSWORD_HASH not set; admin login disabled")
	}

	hub := reload.NewHub()
	server.ConnectReloads(f, hub, auditRepo)

	router := server.NewRouter(server.Deps{
		Config:   cfg,
		Frontend: f,
		Hub:      hub,
		DB:       db,
		Audit:    auditRepo,
		Tokens: admin.TokenService{
			Secret:   []byte(authCfg.JWTSecret),
			Issuer:   authCfg.JWTIssuer,
			Duration: authCfg.JWTDuration,
		},
		PasswordHash: authCfg.PasswordHash,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if f.Watching() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.Watch(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP server (%s mode, entry %s) listening on %s", cfg.Mode, cfg.Entry, cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received")
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}
	stop()

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("server stopped")
}
