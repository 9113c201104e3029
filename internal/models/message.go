package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ThreadMessage представляет сообщение в диалоге.
// Отправитель и получатель хранятся снимками на момент отправки, чтобы
// история переписки не зависела от актуальных данных пользователей.
// Содержимое хранится в зашифрованном виде.
type ThreadMessage struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ThreadID  int64              `json:"thread_id" bson:"thread_id"`
	FromUser  UserShort          `json:"from_user" bson:"from_user"`
	ToUser    UserShort          `json:"to_user" bson:"to_user"`
	Content   string             `json:"content" bson:"content"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// MessageMeta метаданные пагинации списка сообщений
type MessageMeta struct {
	TotalMessages int64 `json:"total_messages"`
	CurrentOffset int   `json:"current_offset"`
	CurrentLimit  int   `json:"current_limit"`
}

// ThreadPreview диалог в списке диалогов пользователя: последнее сообщение
// и количество непрочитанных
type ThreadPreview struct {
	ThreadID    int64          `json:"thread_id" bson:"thread_id"`
	UnreadCount int64          `json:"unread_count" bson:"unread_count"`
	LastMessage *ThreadMessage `json:"last_message" bson:"last_message"`
}
