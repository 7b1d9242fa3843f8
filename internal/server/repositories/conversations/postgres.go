// Package conversations provides the PostgreSQL-backed conversation and
// message repository.
package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/dbx"
	"github.com/dmitrijs2005/aviato/internal/server/models"
)

const conversationColumns = `c.id, c.participant_a, c.participant_b,
		c.timer_started, c.timer_expired, c.rated, c.rating_type, c.rating_reason, c.created_at,
		(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var (
		c            models.Conversation
		timerStarted sql.NullInt64
		ratingType   sql.NullString
		ratingReason sql.NullString
	)
	err := row.Scan(&c.ID, &c.Participants[0], &c.Participants[1],
		&timerStarted, &c.TimerExpired, &c.Rated, &ratingType, &ratingReason, &c.CreatedAt,
		&c.MessageCount)
	if err != nil {
		return nil, err
	}
	if timerStarted.Valid {
		c.TimerStarted = &timerStarted.Int64
	}
	c.RatingType = ratingType.String
	c.RatingReason = ratingReason.String
	return &c, nil
}

func (r *PostgresRepository) FindBetween(ctx context.Context, a, b string) (*models.Conversation, error) {
	pair := models.OrderedPair(a, b)
	query := `SELECT ` + conversationColumns + ` FROM conversations c
		WHERE c.participant_a = $1 AND c.participant_b = $2`

	conv, err := scanConversation(r.db.QueryRowContext(ctx, query, pair[0], pair[1]))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return conv, nil
}

func (r *PostgresRepository) Create(ctx context.Context, conv *models.Conversation) error {
	pair := models.OrderedPair(conv.Participants[0], conv.Participants[1])
	query := `INSERT INTO conversations (id, participant_a, participant_b, timer_started)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_a, participant_b) DO NOTHING
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, conv.ID, pair[0], pair[1], conv.TimerStarted).Scan(&conv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorAlreadyExists
		}
		if dbx.IsInvalidInput(err) {
			return fmt.Errorf("%w: participant id is not a uuid", common.ErrorValidation)
		}
		return fmt.Errorf("db error: %w", err)
	}
	conv.Participants = pair
	return nil
}

func (r *PostgresRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	query := `INSERT INTO messages (id, conversation_id, sender_id, text, sent_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.ConversationID, msg.SenderID, msg.Text, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) exec1(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetTimer(ctx context.Context, conversationID string, startedAt int64) error {
	return r.exec1(ctx,
		`UPDATE conversations SET timer_started = $2, rated = FALSE, timer_expired = FALSE WHERE id = $1`,
		conversationID, startedAt)
}

// Rate marks the conversation rated; rating also ends its timer.
func (r *PostgresRepository) Rate(ctx context.Context, conversationID, ratingType, reason string) error {
	return r.exec1(ctx,
		`UPDATE conversations SET rated = TRUE, timer_expired = TRUE, rating_type = $2, rating_reason = $3 WHERE id = $1`,
		conversationID, ratingType, sql.NullString{String: reason, Valid: reason != ""})
}

// CountActive counts conversations of userID holding at least one message
// whose timer started strictly after since.
func (r *PostgresRepository) CountActive(ctx context.Context, userID string, since int64) (int, error) {
	query := `SELECT COUNT(*) FROM conversations c
		WHERE (c.participant_a = $1 OR c.participant_b = $1)
		  AND c.timer_started > $2
		  AND EXISTS (SELECT 1 FROM messages m WHERE m.conversation_id = c.id)`

	var n int
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations c
		WHERE c.participant_a = $1 OR c.participant_b = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Messages returns the messages of a conversation in send order.
func (r *PostgresRepository) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	query := `SELECT id, conversation_id, sender_id, text, sent_at FROM messages
		WHERE conversation_id = $1 ORDER BY sent_at, id`

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
