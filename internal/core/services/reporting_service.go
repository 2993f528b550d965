package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	now           func() time.Time
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock overrides the clock used to anchor the monthly series.
func WithReportingClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.now = now
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
		now:           time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// seriesStart returns the first day of the month months-1 months before now, in UTC.
func seriesStart(now time.Time, months int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
}

// GetPlatformStats builds the admin dashboard figures
func (s *reportingService) GetPlatformStats(ctx context.Context, months int) (*domain.PlatformStats, error) {
	if months < 1 {
		return nil, fmt.Errorf("%w: months must be at least 1", apperrors.ErrValidation)
	}
	since := seriesStart(s.now(), months)

	stats, err := s.reportingRepo.GetPlatformStats(ctx, since)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve platform stats",
			slog.String("since", since.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve platform stats: %w", err)
	}
	stats.MonthlyFundedAmounts = fillMonths(stats.MonthlyFundedAmounts, since, months)

	s.LogInfo(ctx, "Platform stats generated successfully",
		slog.String("since", since.Format(time.RFC3339)),
		slog.Int("months", months))
	return stats, nil
}

// fillMonths returns one point per month starting at since, with zero for months without funding.
func fillMonths(points []domain.MonthlyAmount, since time.Time, months int) []domain.MonthlyAmount {
	byMonth := make(map[time.Time]domain.MonthlyAmount, len(points))
	for _, p := range points {
		byMonth[p.Month.UTC()] = p
	}
	series := make([]domain.MonthlyAmount, months)
	for i := range series {
		month := since.AddDate(0, i, 0)
		if p, ok := byMonth[month]; ok {
			series[i] = domain.MonthlyAmount{Month: month, Amount: p.Amount}
			continue
		}
		series[i] = domain.MonthlyAmount{Month: month}
	}
	return series
}
