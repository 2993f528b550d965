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

const (
	transactionColumns = `transaction_id, deal_id, investor_id, entrepreneur_id, amount, currency, stripe_fee,
	platform_commission, net_amount, payment_intent_id, status, is_additional_investment, created_at,
	paid_at, admin_action_date, released_by`

	openRoundConstraint = "funding_transactions_open_round_uq"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.DealID,
		&t.InvestorID,
		&t.EntrepreneurID,
		&t.Amount,
		&t.Currency,
		&t.StripeFee,
		&t.PlatformCommission,
		&t.NetAmount,
		&t.PaymentIntentID,
		&t.Status,
		&t.IsAdditionalInvestment,
		&t.CreatedAt,
		&t.PaidAt,
		&t.AdminActionDate,
		&t.ReleasedBy,
	)
	return t, err
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	txns := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}
	return txns, nil
}

func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	t := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO funding_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		t.TransactionID,
		t.DealID,
		t.InvestorID,
		t.EntrepreneurID,
		t.Amount,
		t.Currency,
		t.StripeFee,
		t.PlatformCommission,
		t.NetAmount,
		t.PaymentIntentID,
		t.Status,
		t.IsAdditionalInvestment,
		t.CreatedAt,
		t.PaidAt,
		t.AdminActionDate,
		t.ReleasedBy,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == openRoundConstraint {
				return fmt.Errorf("%w: deal %s has a funding round that is not settled", apperrors.ErrPaymentInProgress, t.DealID)
			}
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, t.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+t.TransactionID, err)
	}
	return nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM funding_transactions WHERE transaction_id = $1;`
	t, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}
	txn := mapping.ToDomainTransaction(t)
	return &txn, nil
}

func (r *PgxTransactionRepository) ListTransactionsByDeal(ctx context.Context, dealID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM funding_transactions
		WHERE deal_id = $1
		ORDER BY created_at, transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, dealID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for deal "+dealID, err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainTransactionSlice(txns), nil
}

func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	var userFilter, dealFilter, statusFilter *string
	if filter.UserID != "" {
		userFilter = &filter.UserID
	}
	if filter.DealID != "" {
		dealFilter = &filter.DealID
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
		SELECT ` + transactionColumns + `
		FROM funding_transactions
		WHERE ($1::text IS NULL OR investor_id = $1 OR entrepreneur_id = $1)
			AND ($2::text IS NULL OR deal_id = $2)
			AND ($3::text IS NULL OR status = $3)
			AND ($4::timestamptz IS NULL OR (created_at, transaction_id) < ($4, $5::text))
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $6;
	`
	rows, err := r.Pool.Query(ctx, query, userFilter, dealFilter, statusFilter, cursorAt, cursorID, limit)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	found, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	txns := mapping.ToDomainTransactionSlice(found)
	next := pagination.NextToken(txns, limit, func(t domain.Transaction) (time.Time, string) {
		return t.CreatedAt, t.TransactionID
	})
	return txns, next, nil
}

// ConfirmTransaction marks a pending transaction paid. The first round of a
// deal also moves the deal's payment status to paid.
func (r *PgxTransactionRepository) ConfirmTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE funding_transactions
			SET status = $1, paid_at = $2
			WHERE transaction_id = $3 AND status = $4;
		`, string(domain.TransactionPaid), txn.PaidAt, txn.TransactionID, string(domain.TransactionPending))
		if err != nil {
			return apperrors.NewAppError(500, "failed to confirm transaction "+txn.TransactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: transaction %s is no longer pending", apperrors.ErrConflict, txn.TransactionID)
		}

		if txn.IsAdditionalInvestment {
			return nil
		}
		return setDealPaymentStatus(ctx, tx, txn.DealID, domain.PaymentStatusPaid, *txn.PaidAt)
	})
}

// FailTransaction closes a pending transaction whose intent was declined,
// freeing the deal for a new funding round.
func (r *PgxTransactionRepository) FailTransaction(ctx context.Context, txn domain.Transaction) error {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE funding_transactions
		SET status = $1
		WHERE transaction_id = $2 AND status = $3;
	`, string(domain.TransactionFailed), txn.TransactionID, string(domain.TransactionPending))
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark transaction "+txn.TransactionID+" failed", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is no longer pending", apperrors.ErrConflict, txn.TransactionID)
	}
	return nil
}

// ReleaseTransaction marks a paid transaction released and settles its net amount.
func (r *PgxTransactionRepository) ReleaseTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE funding_transactions
			SET status = $1, net_amount = $2, admin_action_date = $3, released_by = $4
			WHERE transaction_id = $5 AND status = $6;
		`, string(domain.TransactionFundsReleased), txn.NetAmount, txn.AdminActionDate, txn.ReleasedBy,
			txn.TransactionID, string(domain.TransactionPaid))
		if err != nil {
			return apperrors.NewAppError(500, "failed to release transaction "+txn.TransactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: transaction %s is no longer paid", apperrors.ErrConflict, txn.TransactionID)
		}
		return setDealPaymentStatus(ctx, tx, txn.DealID, domain.PaymentStatusFundsReleased, *txn.AdminActionDate)
	})
}

func setDealPaymentStatus(ctx context.Context, tx pgx.Tx, dealID string, status domain.PaymentStatus, at time.Time) error {
	cmdTag, err := tx.Exec(ctx, `UPDATE deals SET payment_status = $1, updated_at = $2 WHERE deal_id = $3;`,
		string(status), at, dealID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update payment status of deal "+dealID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: deal %s", apperrors.ErrNotFound, dealID)
	}
	return nil
}
