package domain

import (
	"time"

	"github.com/google/uuid"
)

// Celebrant is a recipient of a generated message together with the event being celebrated.
type Celebrant struct {
	UserId      UserId
	Username    Username
	FirstName   string
	LastName    string
	PhoneNumber string
	Label       Label
}

type MessagePreview struct {
	Username    Username  `json:"username"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	EventType   EventType `json:"event_type"`
	Label       Label     `json:"label,omitempty"`
	Message     MsgText   `json:"message"`
	HTML        string    `json:"html,omitempty"`
	Status      LogStatus `json:"status,omitempty"`
}

type CustomMessage struct {
	Username  Username
	EventType EventType
	Message   MsgText
}

type LogStatus string

const (
	LogDryRun LogStatus = "dry_run"
	LogSent   LogStatus = "sent"
	LogFailed LogStatus = "failed"
)

type MessageLog struct {
	Id          uuid.UUID `json:"id"`
	UserId      UserId    `json:"user_id"`
	Username    Username  `json:"username"`
	PhoneNumber string    `json:"phone_number"`
	EventType   EventType `json:"event_type"`
	Body        MsgText   `json:"body"`
	Status      LogStatus `json:"status"`
	ProviderId  string    `json:"provider_id,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedBy   UserId    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
