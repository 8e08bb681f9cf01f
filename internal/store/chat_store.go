package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tiendasur/internal/domain"
)

// ChatStore is append-only: entries are never updated or deleted here.
type ChatStore struct{ DB *sqlx.DB }

func NewChatStore(db *sqlx.DB) *ChatStore { return &ChatStore{DB: db} }

func (s *ChatStore) Append(message string) (domain.ChatMessage, error) {
	now := time.Now().UTC()
	m := domain.ChatMessage{
		ID:        fmt.Sprintf("%s-%s", now.Format(time.RFC3339Nano), uuid.NewString()[:8]),
		Message:   message,
		CreatedAt: now.Format(time.RFC3339),
	}
	_, err := s.DB.NamedExec(`INSERT INTO chat_log(id, message, created_at) VALUES(:id,:message,:created_at)`, m)
	return m, err
}

func (s *ChatStore) Recent(limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := s.DB.Select(&out, `SELECT id, message, created_at FROM chat_log ORDER BY id DESC LIMIT ?`, limit)
	return out, err
}
