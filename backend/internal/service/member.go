package service

import (
	"context"

	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/logger"
)

type MemberService interface {
	Activate(ctx context.Context, sel domain.Selector) (domain.Identity, error)
	ActivateAll(ctx context.Context) ([]domain.Identity, error)
	Reject(ctx context.Context, sel domain.Selector) error
	RejectAll(ctx context.Context) (int64, error)
	Admins(ctx context.Context) ([]domain.Identity, error)
	Admin(ctx context.Context, sel domain.Selector) (domain.Identity, error)
	UpdateRole(ctx context.Context, sel domain.Selector, role string) (domain.Identity, error)
	Members(ctx context.Context) ([]domain.Identity, error)
	Member(ctx context.Context, sel domain.Selector) (domain.Identity, error)
	Pending(ctx context.Context) ([]domain.Identity, error)
	Delete(ctx context.Context, sel domain.Selector) error
	DeleteAll(ctx context.Context, caller domain.UserId) (int64, error)
	ProfilePicture(ctx context.Context, id domain.UserId) ([]byte, error)
}

type MemberStorage interface {
	IdentityById(ctx context.Context, id domain.UserId) (domain.Identity, error)
	IdentityByUsername(ctx context.Context, username domain.Username) (domain.Identity, error)
	Identities(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, error)
	Activate(ctx context.Context, id domain.UserId) error
	ActivateAllPending(ctx context.Context) (int64, error)
	DeletePending(ctx context.Context, id domain.UserId) error
	DeleteAllPending(ctx context.Context) (int64, error)
	UpdateRole(ctx context.Context, id domain.UserId, role domain.Role) error
	DeleteIdentity(ctx context.Context, id domain.UserId) error
	DeleteAllExcept(ctx context.Context, keep domain.UserId) (int64, error)
	ProfilePicture(ctx context.Context, id domain.UserId) ([]byte, error)
}

type Member struct {
	storage MemberStorage
}

func NewMember(storage MemberStorage) *Member {
	return &Member{storage: storage}
}

// resolve finds the identity a selector points at. The id wins when both are given.
func (m *Member) resolve(ctx context.Context, sel domain.Selector) (domain.Identity, error) {
	switch {
	case sel.UserId != 0:
		return m.storage.IdentityById(ctx, sel.UserId)
	case sel.Username != "":
		return m.storage.IdentityByUsername(ctx, sel.Username)
	default:
		return domain.Identity{}, internal_errors.BadRequest("Provide either user_id or username")
	}
}

func (m *Member) Activate(ctx context.Context, sel domain.Selector) (domain.Identity, error) {
	identity, err := m.resolve(ctx, sel)
	if err != nil {
		return domain.Identity{}, err
	}
	if !identity.IsPending() {
		return domain.Identity{}, internal_errors.ErrNotPending
	}
	if err := m.storage.Activate(ctx, identity.Id); err != nil {
		return domain.Identity{}, err
	}
	identity.Status = domain.StatusActive
	logger.Log.Info("member activated", "user_id", identity.Id)
	return identity, nil
}

func (m *Member) ActivateAll(ctx context.Context) ([]domain.Identity, error) {
	pending, err := m.storage.Identities(ctx, domain.IdentityFilter{Status: domain.StatusPending})
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, internal_errors.NotFound("No pending users found")
	}
	n, err := m.storage.ActivateAllPending(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pending {
		pending[i].Status = domain.StatusActive
	}
	logger.Log.Info("pending members activated", "count", n)
	return pending, nil
}

// Reject deletes an identity that has not been activated yet.
func (m *Member) Reject(ctx context.Context, sel domain.Selector) error {
	identity, err := m.resolve(ctx, sel)
	if err != nil {
		return err
	}
	if !identity.IsPending() {
		return internal_errors.ErrNotPending
	}
	if err := m.storage.DeletePending(ctx, identity.Id); err != nil {
		return err
	}
	logger.Log.Info("member rejected", "user_id", identity.Id)
	return nil
}

func (m *Member) RejectAll(ctx context.Context) (int64, error) {
	n, err := m.storage.DeleteAllPending(ctx)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, internal_errors.NotFound("No pending users found")
	}
	logger.Log.Info("pending members rejected", "count", n)
	return n, nil
}

func (m *Member) Admins(ctx context.Context) ([]domain.Identity, error) {
	return m.storage.Identities(ctx, domain.IdentityFilter{Role: domain.RoleAdmin})
}

func (m *Member) Admin(ctx context.Context, sel domain.Selector) (domain.Identity, error) {
	return m.resolve(ctx, sel)
}

func (m *Member) UpdateRole(ctx context.Context, sel domain.Selector, role string) (domain.Identity, error) {
	newRole, err := domain.ParseRole(role)
	if err != nil {
		return domain.Identity{}, internal_errors.BadRequest("Invalid role: must be 'admin' or 'user'")
	}
	identity, err := m.resolve(ctx, sel)
	if err != nil {
		return domain.Identity{}, err
	}
	if identity.IsPending() {
		return domain.Identity{}, internal_errors.BadRequest("User has to be active before being eligible to change roles")
	}
	if identity.Role == newRole {
		return domain.Identity{}, internal_errors.BadRequest("User already has this role")
	}
	if err := m.storage.UpdateRole(ctx, identity.Id, newRole); err != nil {
		return domain.Identity{}, err
	}
	logger.Log.Info("member role changed", "user_id", identity.Id, "from", identity.Role, "to", newRole)
	identity.Role = newRole
	return identity, nil
}

// Members lists active users. Admins and pending registrations are left out.
func (m *Member) Members(ctx context.Context) ([]domain.Identity, error) {
	return m.storage.Identities(ctx, domain.IdentityFilter{Role: domain.RoleUser, Status: domain.StatusActive})
}

func (m *Member) Member(ctx context.Context, sel domain.Selector) (domain.Identity, error) {
	identity, err := m.resolve(ctx, sel)
	if internal_errors.IsNotFound(err) || (err == nil && identity.IsPending()) {
		return domain.Identity{}, internal_errors.NotFound("User not found / User not activated")
	}
	if err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

func (m *Member) Pending(ctx context.Context) ([]domain.Identity, error) {
	pending, err := m.storage.Identities(ctx, domain.IdentityFilter{Status: domain.StatusPending})
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, internal_errors.NotFound("No pending users")
	}
	return pending, nil
}

func (m *Member) Delete(ctx context.Context, sel domain.Selector) error {
	identity, err := m.resolve(ctx, sel)
	if err != nil {
		return err
	}
	if err := m.storage.DeleteIdentity(ctx, identity.Id); err != nil {
		return err
	}
	logger.Log.Info("member deleted", "user_id", identity.Id)
	return nil
}

// DeleteAll removes every identity except the caller, so the service is never left without
// the admin who asked.
func (m *Member) DeleteAll(ctx context.Context, caller domain.UserId) (int64, error) {
	n, err := m.storage.DeleteAllExcept(ctx, caller)
	if err != nil {
		return 0, err
	}
	logger.Log.Warn("all members deleted", "count", n, "by", caller)
	return n, nil
}

func (m *Member) ProfilePicture(ctx context.Context, id domain.UserId) ([]byte, error) {
	return m.storage.ProfilePicture(ctx, id)
}
