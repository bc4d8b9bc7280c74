package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-payouts/internal/config"
	"go-payouts/internal/events"
	"go-payouts/internal/messaging/kafka/consumer"
	"go-payouts/internal/payroll"
	"go-payouts/internal/period"
	"go-payouts/internal/report"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer archives the payouts PDF of every successfully saved period
// into the storage directory until SIGINT or SIGTERM.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}

	// The archive only reads, so no journal, no save lock and no product sales.
	payrollService, err := newPayrollService(cfg, backend, nil, nil, nil)
	if err != nil {
		return err
	}

	archiver := report.NewArchiver(cfg.StorageDir, freshDocument(payrollService), report.PDFOptions{FontFile: cfg.PDFFontFile})

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.PayoutsPeriodSavedTopic,
		GroupID:        cfg.KafkaGroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumePayoutsSaved(ctx, reader, archiver, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}

// freshDocument reloads the period before rendering so the archive reflects
// the save that triggered it.
func freshDocument(svc payroll.Service) report.DocumentSource {
	return func(ctx context.Context, p period.Period) (report.Document, error) {
		if v := svc.Load(ctx, p); v.Error != "" {
			return report.Document{}, fmt.Errorf("load %s: %s", p, v.Error)
		}
		return svc.Document(ctx, p)
	}
}
