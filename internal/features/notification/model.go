package notification

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
	NotificationTypeTask    NotificationType = "task"
)

type Notification struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"user_id" json:"user_id"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Type      NotificationType `bson:"type" json:"type"`
	Link      string           `bson:"link,omitempty" json:"link,omitempty"`
	LetterID  string           `bson:"letter_id,omitempty" json:"letter_id,omitempty"`
	IsRead    bool             `bson:"is_read" json:"is_read"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time       `bson:"read_at,omitempty" json:"read_at,omitempty"`
}

// LiveEvent is what websocket clients receive for every letter change.
type LiveEvent struct {
	Type      string `json:"type"`
	LetterID  string `json:"letter_id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}
