package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"tallybook/internal/calendar"
	"tallybook/internal/config"
	"tallybook/internal/database"
	"tallybook/internal/logger"
	"tallybook/internal/notify"
	"tallybook/internal/services"
)

// The reconciler reads notices for sales whose commit outcome was unknown,
// checks what actually reached storage and logs the result for an operator.
// It never compensates on its own.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Reconciler error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required")
	}

	clock, err := calendar.NewClock(cfg.ReportTimezone)
	if err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", cfg.ReportTimezone, err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	consumer, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer consumer.Close()

	db := dbManager.DB()
	saleService := services.NewSaleService(db, services.NewInventoryService(db), clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = consumer.Consume(ctx, func(_ context.Context, n *notify.Notice) error {
		return inspect(saleService, n)
	})
	if err == context.Canceled {
		logger.Named("reconciler").Info("Reconciler stopped")
		return nil
	}
	return err
}

func inspect(saleService services.SaleServicer, n *notify.Notice) error {
	log := logger.Named("reconciler")

	result, err := saleService.InspectSale(n.UserID, n.SaleID)
	if err != nil {
		return fmt.Errorf("inspect sale %s: %w", n.SaleID, err)
	}

	fields := []interface{}{
		"user_id", n.UserID,
		"sale_id", n.SaleID,
		"step", n.Step,
		"sale_exists", result.SaleExists,
		"item_count", result.ItemCount,
		"income_exists", result.IncomeExists,
	}
	switch {
	case result.Consistent && !result.SaleExists:
		log.Infow("sale was rolled back, nothing to do", fields...)
	case result.Consistent:
		log.Infow("sale committed in full", fields...)
	default:
		log.Errorw("sale is inconsistent, compensate through the operator API", fields...)
	}
	return nil
}
