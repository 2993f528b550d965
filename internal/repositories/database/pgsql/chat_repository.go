package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

const chatColumns = `message_id, sender_id, receiver_id, body, sent_at, delivered_at`

type PgxChatRepository struct {
	BaseRepository
}

func newPgxChatRepository(pool *pgxpool.Pool) portsrepo.ChatRepositoryFacade {
	return &PgxChatRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxChatRepository implements portsrepo.ChatRepositoryFacade
var _ portsrepo.ChatRepositoryFacade = (*PgxChatRepository)(nil)

func collectChatMessages(rows pgx.Rows) ([]models.ChatMessage, error) {
	defer rows.Close()
	msgs := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.MessageID, &m.SenderID, &m.ReceiverID, &m.Body, &m.SentAt, &m.DeliveredAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan chat message row", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating chat message rows", err)
	}
	return msgs, nil
}

// SaveMessage inserts msg unless its id is already stored.
func (r *PgxChatRepository) SaveMessage(ctx context.Context, msg domain.ChatMessage) (bool, error) {
	m := mapping.ToModelChatMessage(msg)
	query := `
		INSERT INTO chat_messages (` + chatColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (message_id) DO NOTHING;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.MessageID, m.SenderID, m.ReceiverID, m.Body, m.SentAt, m.DeliveredAt)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to insert chat message "+m.MessageID, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

func (r *PgxChatRepository) FindMessageByID(ctx context.Context, messageID string) (*domain.ChatMessage, error) {
	query := `SELECT ` + chatColumns + ` FROM chat_messages WHERE message_id = $1;`
	var m models.ChatMessage
	err := r.Pool.QueryRow(ctx, query, messageID).Scan(&m.MessageID, &m.SenderID, &m.ReceiverID, &m.Body, &m.SentAt, &m.DeliveredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: message %s", apperrors.ErrNotFound, messageID)
		}
		return nil, apperrors.NewAppError(500, "failed to find chat message "+messageID, err)
	}
	msg := mapping.ToDomainChatMessage(m)
	return &msg, nil
}

// MarkDelivered is a no-op for messages that were already acknowledged.
func (r *PgxChatRepository) MarkDelivered(ctx context.Context, messageID, receiverID string, at time.Time) error {
	query := `
		UPDATE chat_messages
		SET delivered_at = $1
		WHERE message_id = $2 AND receiver_id = $3 AND delivered_at IS NULL;
	`
	if _, err := r.Pool.Exec(ctx, query, at, messageID, receiverID); err != nil {
		return apperrors.NewAppError(500, "failed to mark chat message delivered "+messageID, err)
	}
	return nil
}

func (r *PgxChatRepository) ListUndelivered(ctx context.Context, receiverID string, limit int) ([]domain.ChatMessage, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chat_messages
		WHERE receiver_id = $1 AND delivered_at IS NULL
		ORDER BY sent_at, message_id
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, receiverID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query undelivered messages for "+receiverID, err)
	}
	msgs, err := collectChatMessages(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainChatMessageSlice(msgs), nil
}

func (r *PgxChatRepository) ListConversation(ctx context.Context, userID, partnerID string, limit int, nextToken *string) ([]domain.ChatMessage, *string, error) {
	if limit <= 0 {
		limit = 50
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
		SELECT ` + chatColumns + `
		FROM chat_messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
			AND ($3::timestamptz IS NULL OR (sent_at, message_id) < ($3, $4::text))
		ORDER BY sent_at DESC, message_id DESC
		LIMIT $5;
	`
	rows, err := r.Pool.Query(ctx, query, userID, partnerID, cursorAt, cursorID, limit)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query conversation", err)
	}
	found, err := collectChatMessages(rows)
	if err != nil {
		return nil, nil, err
	}

	msgs := mapping.ToDomainChatMessageSlice(found)
	next := pagination.NextToken(msgs, limit, func(m domain.ChatMessage) (time.Time, string) {
		return m.SentAt, m.MessageID
	})
	return msgs, next, nil
}

// ListConversations returns the latest message per partner, most recent conversation first.
func (r *PgxChatRepository) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	query := `
		WITH mine AS (
			SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id, ` + chatColumns + `
			FROM chat_messages
			WHERE sender_id = $1 OR receiver_id = $1
		)
		SELECT DISTINCT ON (partner_id) partner_id, ` + chatColumns + `,
			(SELECT COUNT(*) FROM chat_messages u
			 WHERE u.sender_id = mine.partner_id AND u.receiver_id = $1 AND u.delivered_at IS NULL) AS undelivered
		FROM mine
		ORDER BY partner_id, sent_at DESC, message_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query conversations for "+userID, err)
	}
	defer rows.Close()

	convs := []domain.Conversation{}
	for rows.Next() {
		var partnerID string
		var undelivered int
		var m models.ChatMessage
		if err := rows.Scan(&partnerID, &m.MessageID, &m.SenderID, &m.ReceiverID, &m.Body, &m.SentAt, &m.DeliveredAt, &undelivered); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan conversation row", err)
		}
		convs = append(convs, domain.Conversation{
			PartnerID:   partnerID,
			LastMessage: mapping.ToDomainChatMessage(m),
			Undelivered: undelivered,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating conversation rows", err)
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessage.SentAt.After(convs[j].LastMessage.SentAt)
	})
	return convs, nil
}
