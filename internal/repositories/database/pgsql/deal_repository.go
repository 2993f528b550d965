package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	"github.com/SscSPs/trustbridge_backend/internal/models"
	"github.com/SscSPs/trustbridge_backend/internal/utils/mapping"
	"github.com/SscSPs/trustbridge_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dealColumns = `deal_id, investor_id, entrepreneur_id, terms, base_terms, status, last_action_by,
	payment_status, closed_at, version, created_at, updated_at`

type PgxDealRepository struct {
	BaseRepository
}

func newPgxDealRepository(pool *pgxpool.Pool) portsrepo.DealRepositoryFacade {
	return &PgxDealRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxDealRepository implements portsrepo.DealRepositoryFacade
var _ portsrepo.DealRepositoryFacade = (*PgxDealRepository)(nil)

func scanDeal(row pgx.Row) (models.Deal, error) {
	var m models.Deal
	err := row.Scan(
		&m.DealID,
		&m.InvestorID,
		&m.EntrepreneurID,
		&m.Terms,
		&m.BaseTerms,
		&m.Status,
		&m.LastActionBy,
		&m.PaymentStatus,
		&m.ClosedAt,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

// SaveDeal inserts a new deal row. The deal starts without history.
func (r *PgxDealRepository) SaveDeal(ctx context.Context, deal domain.Deal) error {
	m := mapping.ToModelDeal(deal)
	query := `
		INSERT INTO deals (` + dealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.DealID,
		m.InvestorID,
		m.EntrepreneurID,
		m.Terms,
		m.BaseTerms,
		m.Status,
		m.LastActionBy,
		m.PaymentStatus,
		m.ClosedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: an open deal already exists between %s and %s", apperrors.ErrDuplicate, m.InvestorID, m.EntrepreneurID)
		}
		return apperrors.NewAppError(500, "failed to insert deal "+m.DealID, err)
	}
	return nil
}

// FindDealByID loads a deal and its negotiation history in position order.
func (r *PgxDealRepository) FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE deal_id = $1;`
	m, err := scanDeal(r.Pool.QueryRow(ctx, query, dealID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: deal %s", apperrors.ErrNotFound, dealID)
		}
		return nil, apperrors.NewAppError(500, "failed to find deal by ID "+dealID, err)
	}

	history, err := r.findHistory(ctx, dealID)
	if err != nil {
		return nil, err
	}

	deal := mapping.ToDomainDeal(m, history)
	return &deal, nil
}

func (r *PgxDealRepository) findHistory(ctx context.Context, dealID string) ([]models.NegotiationEntry, error) {
	query := `
		SELECT entry_id, deal_id, position, actor, note, proposed_terms, created_at
		FROM deal_negotiation_entries
		WHERE deal_id = $1
		ORDER BY position;
	`
	rows, err := r.Pool.Query(ctx, query, dealID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query negotiation history for deal "+dealID, err)
	}
	defer rows.Close()

	entries := []models.NegotiationEntry{}
	for rows.Next() {
		var e models.NegotiationEntry
		if err := rows.Scan(&e.EntryID, &e.DealID, &e.Position, &e.Actor, &e.Note, &e.ProposedTerms, &e.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan negotiation entry for deal "+dealID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating negotiation history for deal "+dealID, err)
	}
	return entries, nil
}

// UpdateDeal stores a transition if the row is still at expectedVersion and
// appends newEntries after the existing history in the same transaction.
func (r *PgxDealRepository) UpdateDeal(ctx context.Context, deal domain.Deal, expectedVersion int64, newEntries []domain.NegotiationEntry) error {
	m := mapping.ToModelDeal(deal)
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE deals
			SET terms = $1, status = $2, last_action_by = $3, payment_status = $4, closed_at = $5,
				version = $6, updated_at = $7
			WHERE deal_id = $8 AND version = $9;
		`
		cmdTag, err := tx.Exec(ctx, query,
			m.Terms,
			m.Status,
			m.LastActionBy,
			m.PaymentStatus,
			m.ClosedAt,
			m.Version,
			m.UpdatedAt,
			m.DealID,
			expectedVersion,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to update deal "+m.DealID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: deal %s is no longer at version %d", apperrors.ErrConflict, m.DealID, expectedVersion)
		}

		if len(newEntries) == 0 {
			return nil
		}

		// Entries are the tail of the in-memory history.
		start := len(deal.NegotiationHistory) - len(newEntries)
		if start < 0 {
			start = 0
		}
		batch := &pgx.Batch{}
		entryQuery := `
			INSERT INTO deal_negotiation_entries (entry_id, deal_id, position, actor, note, proposed_terms, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7);
		`
		for i, entry := range newEntries {
			e := mapping.ToModelNegotiationEntry(m.DealID, start+i, entry)
			batch.Queue(entryQuery, e.EntryID, e.DealID, e.Position, e.Actor, e.Note, e.ProposedTerms, e.CreatedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if _, ok := uniqueViolation(err); ok {
				return fmt.Errorf("%w: negotiation history of deal %s changed", apperrors.ErrConflict, m.DealID)
			}
			return apperrors.NewAppError(500, "failed to append negotiation history for deal "+m.DealID, err)
		}
		return nil
	})
}

// ListDeals returns deals newest first. The token is a keyset on (created_at, deal_id).
func (r *PgxDealRepository) ListDeals(ctx context.Context, filter portsrepo.DealFilter, limit int, nextToken *string) ([]domain.Deal, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	var userFilter, statusFilter *string
	if filter.UserID != "" {
		userFilter = &filter.UserID
	}
	if filter.Status != nil {
		status := string(*filter.Status)
		statusFilter = &status
	}

	var cursorAt *time.Time
	var cursorID *string
	if nextToken != nil && *nextToken != "" {
		at, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		cursorAt, cursorID = &at, &id
	}

	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE ($1::text IS NULL OR investor_id = $1 OR entrepreneur_id = $1)
			AND ($2::text IS NULL OR status = $2)
			AND ($3::timestamptz IS NULL OR (created_at, deal_id) < ($3, $4::text))
		ORDER BY created_at DESC, deal_id DESC
		LIMIT $5;
	`
	rows, err := r.Pool.Query(ctx, query, userFilter, statusFilter, cursorAt, cursorID, limit)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query deals", err)
	}
	defer rows.Close()

	deals := []domain.Deal{}
	for rows.Next() {
		m, err := scanDeal(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan deal row", err)
		}
		deals = append(deals, mapping.ToDomainDeal(m, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating deal rows", err)
	}

	next := pagination.NextToken(deals, limit, func(d domain.Deal) (time.Time, string) {
		return d.CreatedAt, d.DealID
	})
	return deals, next, nil
}
