package pg

import (
	"context"
	"fmt"

	"github.com/orangery/ams/shared/domain"
)

func (s *Storage) SaveMessageLog(ctx context.Context, entry domain.MessageLog) error {
	ctx, cancel := scope(ctx)
	defer cancel()

	var userId, createdBy any
	if entry.UserId != 0 {
		userId = entry.UserId
	}
	if entry.CreatedBy != 0 {
		createdBy = entry.CreatedBy
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_logs(id, user_id, username, phone_number, event_type, body, status, provider_id, error, created_by, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.Id, userId, entry.Username, entry.PhoneNumber, string(entry.EventType), entry.Body,
		string(entry.Status), entry.ProviderId, entry.Error, createdBy, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message log: %w", err)
	}
	return nil
}

// MessageLogs returns the most recent log rows, newest first.
func (s *Storage) MessageLogs(ctx context.Context, limit int) ([]domain.MessageLog, error) {
	ctx, cancel := scope(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(user_id, 0), username, phone_number, event_type, body, status, provider_id, error,
		       COALESCE(created_by, 0), created_at
		FROM message_logs
		ORDER BY created_at DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query message logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.MessageLog
	for rows.Next() {
		var (
			l         domain.MessageLog
			eventType string
			status    string
		)
		if err := rows.Scan(&l.Id, &l.UserId, &l.Username, &l.PhoneNumber, &eventType, &l.Body, &status,
			&l.ProviderId, &l.Error, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message log: %w", err)
		}
		l.EventType = domain.EventType(eventType)
		l.Status = domain.LogStatus(status)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return logs, nil
}
