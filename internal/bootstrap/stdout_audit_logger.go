package bootstrap

import (
	"context"
	"time"

	"go-payouts/internal/shared/contextutil"

	"go.uber.org/zap"
)

type StdoutAuditLogger struct{}

func NewStdoutAuditLogger() *StdoutAuditLogger {
	return &StdoutAuditLogger{}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	zap.L().Named("audit").Info("audit event",
		append(contextutil.LogFields(ctx),
			zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
			zap.String("action", entry.Action),
			zap.String("message", entry.Message),
			zap.Any("meta", entry.Meta),
		)...,
	)
}
