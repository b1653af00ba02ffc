package http

import (
	"context"

	"biopsycli/internal/services"
	"biopsycli/pkg/contracts/domain"
)

// RecordServiceInterface defines the record operations used by handlers
type RecordServiceInterface interface {
	Search(ctx context.Context, query string) ([]domain.RecordSummary, error)
	Get(ctx context.Context, biopsyNo string) (*services.RecordDetail, error)
	GeneratePDF(ctx context.Context, biopsyNo string) (*services.Document, error)
	Reload(ctx context.Context) (int, error)
	StatisticsHTML(ctx context.Context) ([]byte, error)
}
