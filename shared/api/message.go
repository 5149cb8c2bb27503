package api

import "github.com/orangery/ams/shared/domain"

type WriteMessageRequest struct {
	EventType string `json:"event_type" validate:"required,oneof=birthday anniversary others"`
	Dispatch  bool   `json:"dispatch"`
}

// CustomMessageRequest targets one username or, without one, today's celebrants of EventType.
type CustomMessageRequest struct {
	Username  string `json:"username,omitempty"`
	EventType string `json:"event_type" validate:"required,oneof=birthday anniversary others"`
	Message   string `json:"message" validate:"required,max=1600"`
	Dispatch  bool   `json:"dispatch"`
}

type MessageLogsResponse struct {
	Logs []domain.MessageLog `json:"logs"`
}
