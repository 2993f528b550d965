package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	"github.com/SscSPs/trustbridge_backend/internal/models"
	"github.com/SscSPs/trustbridge_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const collaborationColumns = `request_id, sender_id, receiver_id, message, status, created_at, responded_at`

type PgxCollaborationRepository struct {
	BaseRepository
}

func newPgxCollaborationRepository(pool *pgxpool.Pool) portsrepo.CollaborationRepositoryFacade {
	return &PgxCollaborationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCollaborationRepository implements portsrepo.CollaborationRepositoryFacade
var _ portsrepo.CollaborationRepositoryFacade = (*PgxCollaborationRepository)(nil)

func scanCollaborationRequest(row pgx.Row) (models.CollaborationRequest, error) {
	var m models.CollaborationRequest
	err := row.Scan(&m.RequestID, &m.SenderID, &m.ReceiverID, &m.Message, &m.Status, &m.CreatedAt, &m.RespondedAt)
	return m, err
}

func (r *PgxCollaborationRepository) SaveRequest(ctx context.Context, req domain.CollaborationRequest) error {
	m := mapping.ToModelCollaborationRequest(req)
	query := `
		INSERT INTO collaboration_requests (` + collaborationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query, m.RequestID, m.SenderID, m.ReceiverID, m.Message, m.Status, m.CreatedAt, m.RespondedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: a pending request to %s already exists", apperrors.ErrDuplicate, m.ReceiverID)
		}
		return apperrors.NewAppError(500, "failed to insert collaboration request", err)
	}
	return nil
}

func (r *PgxCollaborationRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.CollaborationRequest, error) {
	query := `SELECT ` + collaborationColumns + ` FROM collaboration_requests WHERE request_id = $1;`
	m, err := scanCollaborationRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: collaboration request %s", apperrors.ErrNotFound, requestID)
		}
		return nil, apperrors.NewAppError(500, "failed to find collaboration request "+requestID, err)
	}
	req := mapping.ToDomainCollaborationRequest(m)
	return &req, nil
}

func (r *PgxCollaborationRepository) ListRequests(ctx context.Context, userID string, incoming bool, status *domain.CollaborationStatus, limit, offset int) ([]domain.CollaborationRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	column := "sender_id"
	if incoming {
		column = "receiver_id"
	}
	var statusFilter *string
	if status != nil {
		value := string(*status)
		statusFilter = &value
	}

	query := `
		SELECT ` + collaborationColumns + `
		FROM collaboration_requests
		WHERE ` + column + ` = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC, request_id DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, userID, statusFilter, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query collaboration requests", err)
	}
	defer rows.Close()

	reqs := []domain.CollaborationRequest{}
	for rows.Next() {
		m, err := scanCollaborationRequest(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan collaboration request row", err)
		}
		reqs = append(reqs, mapping.ToDomainCollaborationRequest(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating collaboration request rows", err)
	}
	return reqs, nil
}

// UpdateRequestStatus only applies to requests that are still pending.
func (r *PgxCollaborationRepository) UpdateRequestStatus(ctx context.Context, req domain.CollaborationRequest) error {
	query := `
		UPDATE collaboration_requests
		SET status = $1, responded_at = $2
		WHERE request_id = $3 AND status = $4;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, string(req.Status), req.RespondedAt, req.RequestID, string(domain.CollaborationPending))
	if err != nil {
		return apperrors.NewAppError(500, "failed to update collaboration request "+req.RequestID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: collaboration request %s was already answered", apperrors.ErrConflict, req.RequestID)
	}
	return nil
}
