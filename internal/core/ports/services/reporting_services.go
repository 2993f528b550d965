package services

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// ReportingService defines the interface for admin dashboard reports
type ReportingService interface {
	// GetPlatformStats aggregates platform activity; the monthly series covers the last months months.
	GetPlatformStats(ctx context.Context, months int) (*domain.PlatformStats, error)
}
