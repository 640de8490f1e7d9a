package analytics

import (
	"context"

	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// AuditLog writes creation events to the structured log.
type AuditLog struct {
	logger *zap.Logger
}

// NewAuditLog creates a new audit log.
func NewAuditLog(logger *zap.Logger) *AuditLog {
	return &AuditLog{logger: logger}
}

func (a *AuditLog) HandleCreated(_ context.Context, event *shortener.CreatedEvent) error {
	a.logger.Info("entry created",
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("userAgent", event.UserAgent),
	)

	return nil
}
