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

	"github.com/chachabrian/foodshare-backend/internal/config"
	"github.com/chachabrian/foodshare-backend/internal/database"
	"github.com/chachabrian/foodshare-backend/internal/handlers"
	"github.com/chachabrian/foodshare-backend/internal/observability"
	"github.com/chachabrian/foodshare-backend/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	hub := services.NewHub()
	go hub.Run(ctx)

	notifiers := services.MultiNotifier{hub}

	var cache services.ReportCache = services.NewMemoryCache(cfg.ReportCacheTTL)
	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer client.Close()
		cache = services.NewRedisCache(client, cfg.ReportCacheTTL)
		notifiers = append(notifiers, services.NewRedisPublisher(client))
	} else {
		log.Println("REDIS_URL not set. Using in-process report cache.")
	}

	push, err := services.NewPushNotifier(ctx, cfg.FirebaseServiceAccountPath)
	if err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	} else {
		notifiers = append(notifiers, push)
	}

	deps := &services.Deps{
		DB:       db,
		Cache:    cache,
		Notifier: notifiers,
		Metrics:  metrics,
		Location: cfg.Location,
	}

	router := &handlers.Router{
		DB:        db,
		Listings:  services.NewListingService(deps),
		Claims:    services.NewClaimService(deps),
		Directory: services.NewDirectoryService(deps),
		Reports:   services.NewReportService(deps),
		Hub:       hub,
		Operator: handlers.Operator{
			Username:     cfg.OperatorUsername,
			PasswordHash: cfg.OperatorPasswordHash,
			JWTSecret:    cfg.JWTSecret,
			TokenTTL:     cfg.JWTTTL,
		},
		Gatherer: reg,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.Engine(),
	}

	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
