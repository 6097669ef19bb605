package models

import (
	"time"
)

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionApproval AuditAction = "APPROVAL"
	AuditActionTemplate AuditAction = "TEMPLATE"
	AuditActionRole     AuditAction = "ROLE"
	AuditActionExport   AuditAction = "EXPORT"
	AuditActionDelivery AuditAction = "DELIVERY"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        string            `bson:"_id" json:"id"`
	Action    AuditAction       `bson:"action" json:"action"`
	Module    string            `bson:"module" json:"module"`                       // The module/collection name
	RecordID  string            `bson:"record_id" json:"record_id"`                 // The ID of the record being modified
	ActorID   string            `bson:"actor_id" json:"actor_id"`                   // User ID who performed the action
	ActorName string            `bson:"actor_name,omitempty" json:"actor_name,omitempty"`
	Changes   map[string]Change `bson:"changes,omitempty" json:"changes,omitempty"` // For updates: field -> {old, new}
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
}

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	ID         string     `bson:"_id" json:"id"`
	Name       string     `bson:"name" json:"name"`
	Email      string     `bson:"email" json:"email"`
	Password   string     `bson:"password" json:"-"`
	Role       string     `bson:"role" json:"role"`
	Department string     `bson:"department,omitempty" json:"department,omitempty"`
	Title      string     `bson:"title,omitempty" json:"title,omitempty"`
	Status     string     `bson:"status" json:"status"` // active, inactive
	LastLogin  *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

// Log is a persisted application log line. Context fields are lifted from
// the zap fields of the same name.
type Log struct {
	Message      string    `bson:"message" json:"message"`
	Level        string    `bson:"level" json:"level"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	IpAddress    string    `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	LetterID     string    `bson:"letter_id,omitempty" json:"letter_id,omitempty"`
	ActorID      string    `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	Error        string    `bson:"error,omitempty" json:"error,omitempty"`
	AppId        string    `bson:"app_id" json:"app_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
