package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	sharedpg "github.com/orangery/ams/shared/storage/pg"
)

// identityColumns never include the picture bytes, only whether one is stored.
const identityColumns = "id, first_name, last_name, phone_number, username, password_hash, dob, role, status, created_at, " +
	"(profile_pic IS NOT NULL AND length(profile_pic) > 0)"

// =========================================================================
// Public Methods (satisfy the service and auth storage interfaces)
// =========================================================================

// SaveIdentity inserts an identity together with its event dates in one transaction.
func (s *Storage) SaveIdentity(ctx context.Context, data domain.IdentityCreationData) (domain.UserId, error) {
	ctx, cancel := scope(ctx)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = saveIdentity(ctx, tx, data)
		if err != nil {
			return err
		}
		for _, d := range data.EventDates {
			if _, err := saveEventDate(ctx, tx, id, d); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

func (s *Storage) IdentityById(ctx context.Context, id domain.UserId) (domain.Identity, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	return identityWhere(ctx, s.db, "id = $1", id)
}

// IdentityByUsername matches usernames case-insensitively.
func (s *Storage) IdentityByUsername(ctx context.Context, username domain.Username) (domain.Identity, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	return identityWhere(ctx, s.db, "lower(username) = lower($1)", username)
}

// PrincipalByUsername is the per-request lookup behind bearer auth and login: a single
// row without event dates.
func (s *Storage) PrincipalByUsername(ctx context.Context, username domain.Username) (domain.Identity, error) {
	ctx, cancel := scope(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, "SELECT "+identityColumns+" FROM user_info WHERE lower(username) = lower($1)", username)
	identity, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, internal_errors.NotFound("User not found")
	}
	return identity, err
}

func (s *Storage) UsernameExists(ctx context.Context, username domain.Username) (bool, error) {
	ctx, cancel := scope(ctx)
	defer cancel()

	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM user_info WHERE lower(username) = lower($1))", username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// Identities lists identities matching the filter, oldest first, with their event dates.
func (s *Storage) Identities(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, error) {
	ctx, cancel := scope(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+identityColumns+`
		FROM user_info
		WHERE ($1 = '' OR role = $1) AND ($2 = '' OR status = $2)
		ORDER BY id`,
		string(filter.Role), string(filter.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var identities []domain.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if err := attachEventDates(ctx, s.db, identities); err != nil {
		return nil, err
	}
	return identities, nil
}

// Activate moves a pending identity to active.
func (s *Storage) Activate(ctx context.Context, id domain.UserId) error {
	ctx, cancel := scope(ctx)
	defer cancel()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE user_info SET status = 'active' WHERE id = $1 AND status = 'pending'", id)
		if err != nil {
			return fmt.Errorf("failed to activate identity: %w", err)
		}
		return requirePendingHit(ctx, tx, res, id)
	})
}

func (s *Storage) ActivateAllPending(ctx context.Context) (int64, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, "UPDATE user_info SET status = 'active' WHERE status = 'pending'")
	if err != nil {
		return 0, fmt.Errorf("failed to activate pending identities: %w", err)
	}
	return res.RowsAffected()
}

// DeletePending removes an identity only while it is still pending.
func (s *Storage) DeletePending(ctx context.Context, id domain.UserId) error {
	ctx, cancel := scope(ctx)
	defer cancel()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM user_info WHERE id = $1 AND status = 'pending'", id)
		if err != nil {
			return fmt.Errorf("failed to reject identity: %w", err)
		}
		return requirePendingHit(ctx, tx, res, id)
	})
}

func (s *Storage) DeleteAllPending(ctx context.Context) (int64, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_info WHERE status = 'pending'")
	if err != nil {
		return 0, fmt.Errorf("failed to reject pending identities: %w", err)
	}
	return res.RowsAffected()
}

func (s *Storage) UpdateRole(ctx context.Context, id domain.UserId, role domain.Role) error {
	ctx, cancel := scope(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, "UPDATE user_info SET role = $1 WHERE id = $2", string(role), id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return requireHit(res, "User not found")
}

// DeleteIdentity removes an identity; its event dates go with it through the cascade.
func (s *Storage) DeleteIdentity(ctx context.Context, id domain.UserId) error {
	ctx, cancel := scope(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_info WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return requireHit(res, "User not found")
}

// DeleteAllExcept removes every identity but the given one.
func (s *Storage) DeleteAllExcept(ctx context.Context, keep domain.UserId) (int64, error) {
	ctx, cancel := scope(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_info WHERE id <> $1", keep)
	if err != nil {
		return 0, fmt.Errorf("failed to delete identities: %w", err)
	}
	return res.RowsAffected()
}

func (s *Storage) ProfilePicture(ctx context.Context, id domain.UserId) ([]byte, error) {
	ctx, cancel := scope(ctx)
	defer cancel()

	var pic []byte
	err := s.db.QueryRowContext(ctx, "SELECT profile_pic FROM user_info WHERE id = $1", id).Scan(&pic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internal_errors.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile picture: %w", err)
	}
	if len(pic) == 0 {
		return nil, internal_errors.NotFound("Profile picture not found")
	}
	return pic, nil
}

// =========================================================================
// Internal Methods
// These accept a Querier and are transaction-agnostic.
// =========================================================================

func saveIdentity(ctx context.Context, q sharedpg.Querier, data domain.IdentityCreationData) (domain.UserId, error) {
	var dob sql.NullTime
	if !data.Dob.IsZero() {
		dob = sql.NullTime{Time: data.Dob, Valid: true}
	}
	var id domain.UserId
	err := q.QueryRowContext(ctx, `
		INSERT INTO user_info(first_name, last_name, phone_number, username, password_hash, dob, profile_pic, role, status)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		data.FirstName, data.LastName, data.PhoneNumber, data.Username, data.PassHash,
		dob, data.ProfilePic, string(data.Role), string(data.Status),
	).Scan(&id)
	if err != nil {
		if sharedpg.IsUniqueViolation(err) {
			return 0, internal_errors.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("failed to insert identity: %w", err)
	}
	return id, nil
}

func identityWhere(ctx context.Context, q sharedpg.Querier, cond string, arg any) (domain.Identity, error) {
	row := q.QueryRowContext(ctx, "SELECT "+identityColumns+" FROM user_info WHERE "+cond, arg)
	identity, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, internal_errors.NotFound("User not found")
	}
	if err != nil {
		return domain.Identity{}, err
	}

	dates, err := eventDatesForUser(ctx, q, identity.Id)
	if err != nil {
		return domain.Identity{}, err
	}
	identity.EventDates = dates
	return identity, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (domain.Identity, error) {
	var (
		identity domain.Identity
		dob      sql.NullTime
		role     string
		status   string
	)
	err := row.Scan(
		&identity.Id, &identity.FirstName, &identity.LastName, &identity.PhoneNumber,
		&identity.Username, &identity.PassHash, &dob, &role, &status, &identity.CreatedAt, &identity.HasPic,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, err
		}
		return domain.Identity{}, fmt.Errorf("failed to scan identity: %w", err)
	}
	if dob.Valid {
		identity.Dob = dob.Time
	}
	identity.Role = domain.Role(role)
	identity.Status = domain.Status(status)
	return identity, nil
}

func requireHit(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return internal_errors.NotFound(notFound)
	}
	return nil
}

// requirePendingHit tells "no such identity" apart from "identity is not pending" when a
// status-guarded statement touched nothing.
func requirePendingHit(ctx context.Context, q sharedpg.Querier, res sql.Result, id domain.UserId) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM user_info WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check identity: %w", err)
	}
	if !exists {
		return internal_errors.NotFound("User not found")
	}
	return internal_errors.ErrNotPending
}
