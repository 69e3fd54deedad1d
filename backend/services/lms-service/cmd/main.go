package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/app"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/config"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/services"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"
	_ "time/tzdata"
)

const shutdownTimeout = 15 * time.Second

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize lms-service:", err)
	}
	defer application.Close()

	// Repositories
	repos := app.NewRepositories(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(context.Background(), repos); err != nil {
			utils.Logger.Fatal("Failed to seed test data:", err)
		}
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Services
	checkout := services.NewStripeCheckout(stripe.NewClient(cfg.StripeSecretKey))
	mailer := services.NewMailer(cfg, m)
	svcs := app.NewServices(cfg, repos, checkout, mailer, m)

	// Cron job setup
	c := cron.New(cron.WithLocation(time.UTC))
	if err := svcs.Maintenance.Register(c); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule maintenance cron jobs")
	}
	c.Start()
	utils.Logger.Info("Scheduled maintenance cron jobs")

	router := app.NewRouter(cfg, svcs, application.DB, m, reg)
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.WithCORS(cfg, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("lms-service failed to start:", err)
		}
	}()

	<-ctx.Done()
	utils.Logger.Info("Shutdown signal received; draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Error("HTTP server shutdown did not complete cleanly")
	}
	<-c.Stop().Done()
	utils.Logger.Info("lms-service stopped")
}
