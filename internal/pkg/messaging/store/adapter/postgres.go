package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "pulsechat/internal/pkg/messaging/domain"
	port "pulsechat/internal/pkg/messaging/store/port"
)

// PgStore persists the messaging domain in PostgreSQL via pgx.
// Message IDs come from a BIGINT identity column, so they are monotonically
// increasing in insertion order as the domain requires.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

var _ port.Store = (*PgStore)(nil)

// InitSchema creates the messaging tables when they do not exist yet.
func (s *PgStore) InitSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errors.New("PgStore: nil pool")
	}
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			conv_type SMALLINT NOT NULL,
			last_message_id BIGINT NOT NULL DEFAULT 0,
			last_message_body TEXT,
			last_message_sender_id TEXT,
			last_message_type SMALLINT,
			last_message_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS participants (
			conversation_id UUID NOT NULL REFERENCES conversations(id),
			user_id TEXT NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_read_message_id BIGINT,
			PRIMARY KEY (conversation_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_participants_user
			ON participants (user_id, joined_at DESC);

		CREATE TABLE IF NOT EXISTS messages (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id),
			sender_id TEXT NOT NULL,
			body TEXT NOT NULL,
			msg_type SMALLINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages (conversation_id, id DESC);
	`)
	return err
}

func (s *PgStore) CreateConversation(ctx context.Context, c domain.Conversation) (string, error) {
	if s == nil || s.pool == nil {
		return "", errors.New("PgStore: nil pool")
	}
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO conversations (conv_type, last_message_at, created_at, updated_at)
		VALUES ($1, $2, $2, $2)
		RETURNING id::text
	`, c.ConvType, c.CreatedAt).Scan(&id)
	return id, err
}

func (s *PgStore) AddParticipant(ctx context.Context, p domain.Participant) error {
	if s == nil || s.pool == nil {
		return errors.New("PgStore: nil pool")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO participants (conversation_id, user_id, joined_at)
		VALUES ($1::uuid, $2, $3)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`, p.ConversationID, p.UserID, p.JoinedAt)
	return err
}

func (s *PgStore) GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	var c domain.Conversation
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, conv_type, last_message_id, last_message_body,
		       last_message_sender_id, last_message_type, last_message_at,
		       created_at, updated_at
		FROM conversations
		WHERE id = $1::uuid
	`, conversationID).Scan(
		&c.ID, &c.ConvType, &c.LastMessageID, &c.LastMessageBody,
		&c.LastMessageSenderID, &c.LastMessageType, &c.LastMessageAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PgStore) ListConversationsByIDs(ctx context.Context, ids []string) ([]domain.Conversation, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, conv_type, last_message_id, last_message_body,
		       last_message_sender_id, last_message_type, last_message_at,
		       created_at, updated_at
		FROM conversations
		WHERE id = ANY($1::uuid[])
		ORDER BY last_message_at DESC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(
			&c.ID, &c.ConvType, &c.LastMessageID, &c.LastMessageBody,
			&c.LastMessageSenderID, &c.LastMessageType, &c.LastMessageAt,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (s *PgStore) GetParticipant(ctx context.Context, conversationID, userID string) (*domain.Participant, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	var p domain.Participant
	err := s.pool.QueryRow(ctx, `
		SELECT conversation_id::text, user_id, joined_at, last_read_message_id
		FROM participants
		WHERE conversation_id = $1::uuid AND user_id = $2
	`, conversationID, userID).Scan(&p.ConversationID, &p.UserID, &p.JoinedAt, &p.LastReadMessageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PgStore) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	if s == nil || s.pool == nil {
		return false, errors.New("PgStore: nil pool")
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM participants
			WHERE conversation_id = $1::uuid AND user_id = $2
		)
	`, conversationID, userID).Scan(&exists)
	return exists, err
}

func (s *PgStore) ListParticipants(ctx context.Context, conversationID string) ([]domain.Participant, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT conversation_id::text, user_id, joined_at, last_read_message_id
		FROM participants
		WHERE conversation_id = $1::uuid
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParticipants(rows)
}

func (s *PgStore) ListUserParticipants(ctx context.Context, userID string) ([]domain.Participant, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT conversation_id::text, user_id, joined_at, last_read_message_id
		FROM participants
		WHERE user_id = $1
		ORDER BY joined_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParticipants(rows)
}

func (s *PgStore) SaveMessage(ctx context.Context, m domain.Message) (*domain.Message, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, body, msg_type)
		VALUES ($1::uuid, $2, $3, $4)
		RETURNING id, created_at
	`, m.ConversationID, m.SenderID, m.Body, m.MsgType).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PgStore) MessagesBefore(ctx context.Context, conversationID string, beforeID int64, limit int) ([]domain.Message, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id::text, sender_id, body, msg_type, created_at
		FROM messages
		WHERE conversation_id = $1::uuid
		  AND ($2::bigint <= 0 OR id < $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, conversationID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.MsgType, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *PgStore) UpdateConversationSummary(ctx context.Context, conversationID string, m domain.Message) (bool, error) {
	if s == nil || s.pool == nil {
		return false, errors.New("PgStore: nil pool")
	}
	ct, err := s.pool.Exec(ctx, `
		UPDATE conversations
		SET last_message_id = $2,
		    last_message_body = $3,
		    last_message_sender_id = $4,
		    last_message_type = $5,
		    last_message_at = $6,
		    updated_at = NOW()
		WHERE id = $1::uuid AND last_message_id < $2
	`, conversationID, m.ID, m.Body, m.SenderID, m.MsgType, m.CreatedAt)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (s *PgStore) AdvanceReadCursor(ctx context.Context, conversationID, userID string, messageID int64) (bool, error) {
	if s == nil || s.pool == nil {
		return false, errors.New("PgStore: nil pool")
	}
	ct, err := s.pool.Exec(ctx, `
		UPDATE participants
		SET last_read_message_id = $3
		WHERE conversation_id = $1::uuid AND user_id = $2
		  AND (last_read_message_id IS NULL OR last_read_message_id < $3)
	`, conversationID, userID, messageID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func scanParticipants(rows pgx.Rows) ([]domain.Participant, error) {
	var parts []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.JoinedAt, &p.LastReadMessageID); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}
