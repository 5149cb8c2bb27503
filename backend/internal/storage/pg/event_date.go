package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	sharedpg "github.com/orangery/ams/shared/storage/pg"
)

const foreignKeyViolation = "23503"

func (s *Storage) EventDates(ctx context.Context) ([]domain.EventDate, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	return queryEventDates(ctx, s.db, "SELECT id, user_id, label, date FROM other_dates ORDER BY user_id, id")
}

func (s *Storage) EventDatesForUser(ctx context.Context, userId domain.UserId) ([]domain.EventDate, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	return eventDatesForUser(ctx, s.db, userId)
}

// SaveEventDate attaches a date to an existing identity.
func (s *Storage) SaveEventDate(ctx context.Context, userId domain.UserId, data domain.EventDateCreationData) (domain.EventDateId, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	return saveEventDate(ctx, s.db, userId, data)
}

// BirthdayCelebrants returns identities whose date of birth falls on the given month and day.
func (s *Storage) BirthdayCelebrants(ctx context.Context, month time.Month, day int) ([]domain.Celebrant, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	return queryCelebrants(ctx, s.db, `
		SELECT id, username, first_name, last_name, phone_number, 'birthday'
		FROM user_info
		WHERE EXTRACT(MONTH FROM dob) = $1 AND EXTRACT(DAY FROM dob) = $2
		ORDER BY id`,
		int(month), day,
	)
}

// LabelledCelebrants returns owners of event dates on the given month and day. With include set
// only that label matches; otherwise every label not in exclude matches.
func (s *Storage) LabelledCelebrants(ctx context.Context, month time.Month, day int, include domain.Label, exclude []domain.Label) ([]domain.Celebrant, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	if exclude == nil {
		exclude = []domain.Label{}
	}
	return queryCelebrants(ctx, s.db, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.phone_number, d.label
		FROM other_dates d
		JOIN user_info u ON u.id = d.user_id
		WHERE EXTRACT(MONTH FROM d.date) = $1 AND EXTRACT(DAY FROM d.date) = $2
		  AND ($3 = '' OR lower(d.label) = lower($3))
		  AND NOT (lower(d.label) = ANY($4))
		ORDER BY d.id`,
		int(month), day, include, pq.Array(lowered(exclude)),
	)
}

func saveEventDate(ctx context.Context, q sharedpg.Querier, userId domain.UserId, data domain.EventDateCreationData) (domain.EventDateId, error) {
	var id domain.EventDateId
	err := q.QueryRowContext(ctx, "INSERT INTO other_dates(user_id, label, date) VALUES($1, $2, $3) RETURNING id",
		userId, data.Label, data.Date).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return 0, internal_errors.NotFound("User not found")
		}
		return 0, fmt.Errorf("failed to insert event date: %w", err)
	}
	return id, nil
}

func eventDatesForUser(ctx context.Context, q sharedpg.Querier, userId domain.UserId) ([]domain.EventDate, error) {
	return queryEventDates(ctx, q, "SELECT id, user_id, label, date FROM other_dates WHERE user_id = $1 ORDER BY id", userId)
}

// attachEventDates fills EventDates for a batch of identities with a single query.
func attachEventDates(ctx context.Context, q sharedpg.Querier, identities []domain.Identity) error {
	if len(identities) == 0 {
		return nil
	}
	ids := make([]int64, len(identities))
	pos := make(map[domain.UserId]int, len(identities))
	for i, identity := range identities {
		ids[i] = identity.Id
		pos[identity.Id] = i
	}
	dates, err := queryEventDates(ctx, q, "SELECT id, user_id, label, date FROM other_dates WHERE user_id = ANY($1) ORDER BY id", pq.Array(ids))
	if err != nil {
		return err
	}
	for _, d := range dates {
		i := pos[d.UserId]
		identities[i].EventDates = append(identities[i].EventDates, d)
	}
	return nil
}

func queryEventDates(ctx context.Context, q sharedpg.Querier, query string, args ...any) ([]domain.EventDate, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event dates: %w", err)
	}
	defer rows.Close()

	var dates []domain.EventDate
	for rows.Next() {
		var d domain.EventDate
		if err := rows.Scan(&d.Id, &d.UserId, &d.Label, &d.Date); err != nil {
			return nil, fmt.Errorf("failed to scan event date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return dates, nil
}

func queryCelebrants(ctx context.Context, q sharedpg.Querier, query string, args ...any) ([]domain.Celebrant, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query celebrants: %w", err)
	}
	defer rows.Close()

	var celebrants []domain.Celebrant
	for rows.Next() {
		var c domain.Celebrant
		if err := rows.Scan(&c.UserId, &c.Username, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.Label); err != nil {
			return nil, fmt.Errorf("failed to scan celebrant: %w", err)
		}
		celebrants = append(celebrants, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return celebrants, nil
}

func lowered(labels []domain.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = strings.ToLower(l)
	}
	return out
}
