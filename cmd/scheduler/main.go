package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/installment-ledger/internal/config"
	"github.com/segyhp/installment-ledger/internal/service"
	"github.com/segyhp/installment-ledger/internal/storage"
)

func main() {
	log.Println("Starting ledger scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// the sweep only reads, so the summary cache is not needed here
	ledger := service.NewLedgerService(store.Repos, store.UoW, nil, service.LedgerConfig{
		MarkupRate:       cfg.GetMarkupRate(),
		DefaultTermWeeks: cfg.Business.DefaultLoanWeeks,
	})

	c := cron.New(
		cron.WithParser(config.CronParser),
		cron.WithLocation(cfg.GetSchedulerLocation()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	if err := setupCronJobs(c, cfg, ledger); err != nil {
		log.Fatalf("Error scheduling jobs: %v", err)
	}

	c.Start()
	log.Printf("Scheduler started (overdue sweep at %q, %s)", cfg.Scheduler.OverdueCron, cfg.Scheduler.Timezone)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, ledger service.Ledger) error {
	_, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		runOverdueSweep(ledger)
	})
	return err
}

func runOverdueSweep(ledger service.Ledger) {
	log.Println("Running overdue sweep...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	overdue, err := ledger.SweepOverdue(ctx)
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}
	log.Printf("Overdue sweep done: %d loans need follow-up", len(overdue))
}
