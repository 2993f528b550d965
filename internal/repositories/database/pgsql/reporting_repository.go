package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// GetPlatformStats runs the dashboard aggregates in one round trip.
func (r *reportingRepository) GetPlatformStats(ctx context.Context, since time.Time) (*domain.PlatformStats, error) {
	batch := &pgx.Batch{}
	batch.Queue(`SELECT status, COUNT(*) FROM deals GROUP BY status;`)
	batch.Queue(`SELECT role, COUNT(*) FROM users WHERE deleted_at IS NULL GROUP BY role;`)
	batch.Queue(`
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'funds_released'), 0),
			COALESCE(SUM(platform_commission) FILTER (WHERE status = 'funds_released'), 0),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM funding_transactions;
	`)
	batch.Queue(`
		SELECT date_trunc('month', paid_at AT TIME ZONE 'UTC') AS month, SUM(amount)
		FROM funding_transactions
		WHERE status IN ('paid', 'funds_released') AND paid_at >= $1
		GROUP BY month
		ORDER BY month;
	`, since)

	br := r.Pool.SendBatch(ctx, batch)
	defer br.Close()

	stats := &domain.PlatformStats{
		DealsByStatus: map[domain.DealStatus]int{},
		UsersByRole:   map[domain.UserRole]int{},
	}

	rows, err := br.Query()
	if err != nil {
		return nil, fmt.Errorf("error querying deals by status: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning deals by status: %w", err)
		}
		stats.DealsByStatus[domain.DealStatus(status)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deals by status: %w", err)
	}

	rows, err = br.Query()
	if err != nil {
		return nil, fmt.Errorf("error querying users by role: %w", err)
	}
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning users by role: %w", err)
		}
		stats.UsersByRole[domain.UserRole(role)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users by role: %w", err)
	}

	if err := br.QueryRow().Scan(
		&stats.TotalPaid,
		&stats.TotalReleased,
		&stats.CommissionEarned,
		&stats.PendingTransactions,
	); err != nil {
		return nil, fmt.Errorf("error querying funding totals: %w", err)
	}

	rows, err = br.Query()
	if err != nil {
		return nil, fmt.Errorf("error querying monthly funding: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var month time.Time
		var amount decimal.Decimal
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, fmt.Errorf("error scanning monthly funding: %w", err)
		}
		stats.MonthlyFundedAmounts = append(stats.MonthlyFundedAmounts, domain.MonthlyAmount{
			Month:  time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC),
			Amount: amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly funding: %w", err)
	}

	return stats, nil
}
