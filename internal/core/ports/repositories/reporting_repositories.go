package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// ReportingRepository defines aggregate queries for the admin dashboard.
type ReportingRepository interface {
	// GetPlatformStats aggregates deals, users and funding; the monthly series starts at since.
	GetPlatformStats(ctx context.Context, since time.Time) (*domain.PlatformStats, error)
}
