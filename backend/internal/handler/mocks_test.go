package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orangery/ams/backend/internal/service"
	"github.com/orangery/ams/shared/config"
	"github.com/orangery/ams/shared/domain"
)

// --- Mocks ---

type MockAuthService struct {
	RegisterMemberFunc func(ctx context.Context, data service.SignUp) (string, error)
	RegisterAdminFunc  func(ctx context.Context, data service.SignUp) (string, error)
	LoginFunc          func(ctx context.Context, creds domain.Credentials) (domain.TokenPair, error)
	RefreshFunc        func(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}

func (m *MockAuthService) RegisterMember(ctx context.Context, data service.SignUp) (string, error) {
	if m.RegisterMemberFunc != nil {
		return m.RegisterMemberFunc(ctx, data)
	}
	return "access", nil
}

func (m *MockAuthService) RegisterAdmin(ctx context.Context, data service.SignUp) (string, error) {
	if m.RegisterAdminFunc != nil {
		return m.RegisterAdminFunc(ctx, data)
	}
	return "access", nil
}

func (m *MockAuthService) Login(ctx context.Context, creds domain.Credentials) (domain.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return domain.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 30}, nil
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return domain.TokenPair{AccessToken: "access2", RefreshToken: "refresh2", ExpiresIn: 30}, nil
}

type MockMemberService struct {
	ActivateFunc       func(ctx context.Context, sel domain.Selector) (domain.Identity, error)
	ActivateAllFunc    func(ctx context.Context) ([]domain.Identity, error)
	RejectFunc         func(ctx context.Context, sel domain.Selector) error
	RejectAllFunc      func(ctx context.Context) (int64, error)
	AdminsFunc         func(ctx context.Context) ([]domain.Identity, error)
	AdminFunc          func(ctx context.Context, sel domain.Selector) (domain.Identity, error)
	UpdateRoleFunc     func(ctx context.Context, sel domain.Selector, role string) (domain.Identity, error)
	MembersFunc        func(ctx context.Context) ([]domain.Identity, error)
	MemberFunc         func(ctx context.Context, sel domain.Selector) (domain.Identity, error)
	PendingFunc        func(ctx context.Context) ([]domain.Identity, error)
	DeleteFunc         func(ctx context.Context, sel domain.Selector) error
	DeleteAllFunc      func(ctx context.Context, caller domain.UserId) (int64, error)
	ProfilePictureFunc func(ctx context.Context, id domain.UserId) ([]byte, error)
}

func (m *MockMemberService) Activate(ctx context.Context, sel domain.Selector) (domain.Identity, error) {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, sel)
	}
	return domain.Identity{Id: sel.UserId, Username: sel.Username, Status: domain.StatusActive}, nil
}

func (m *MockMemberService) ActivateAll(ctx context.Context) ([]domain.Identity, error) {
	if m.ActivateAllFunc != nil {
		return m.ActivateAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockMemberService) Reject(ctx context.Context, sel domain.Selector) error {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, sel)
	}
	return nil
}

func (m *MockMemberService) RejectAll(ctx context.Context) (int64, error) {
	if m.RejectAllFunc != nil {
		return m.RejectAllFunc(ctx)
	}
	return 1, nil
}

func (m *MockMemberService) Admins(ctx context.Context) ([]domain.Identity, error) {
	if m.AdminsFunc != nil {
		return m.AdminsFunc(ctx)
	}
	return nil, nil
}

func (m *MockMemberService) Admin(ctx context.Context, sel domain.Selector) (domain.Identity, error) {
	if m.AdminFunc != nil {
		return m.AdminFunc(ctx, sel)
	}
	return domain.Identity{Id: sel.UserId, Username: sel.Username, Role: domain.RoleAdmin}, nil
}

func (m *MockMemberService) UpdateRole(ctx context.Context, sel domain.Selector, role string) (domain.Identity, error) {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, sel, role)
	}
	return domain.Identity{Id: sel.UserId, Role: domain.Role(role)}, nil
}

func (m *MockMemberService) Members(ctx context.Context) ([]domain.Identity, error) {
	if m.MembersFunc != nil {
		return m.MembersFunc(ctx)
	}
	return nil, nil
}

func (m *MockMemberService) Member(ctx context.Context, sel domain.Selector) (domain.Identity, error) {
	if m.MemberFunc != nil {
		return m.MemberFunc(ctx, sel)
	}
	return domain.Identity{Id: sel.UserId, Username: sel.Username}, nil
}

func (m *MockMemberService) Pending(ctx context.Context) ([]domain.Identity, error) {
	if m.PendingFunc != nil {
		return m.PendingFunc(ctx)
	}
	return nil, nil
}

func (m *MockMemberService) Delete(ctx context.Context, sel domain.Selector) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sel)
	}
	return nil
}

func (m *MockMemberService) DeleteAll(ctx context.Context, caller domain.UserId) (int64, error) {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx, caller)
	}
	return 0, nil
}

func (m *MockMemberService) ProfilePicture(ctx context.Context, id domain.UserId) ([]byte, error) {
	if m.ProfilePictureFunc != nil {
		return m.ProfilePictureFunc(ctx, id)
	}
	return nil, nil
}

type MockEventDateService struct {
	AllFunc     func(ctx context.Context) ([]domain.EventDate, error)
	ForUserFunc func(ctx context.Context, userId domain.UserId) ([]domain.EventDate, error)
	AddFunc     func(ctx context.Context, userId domain.UserId, data domain.EventDateCreationData) (domain.EventDate, error)
}

func (m *MockEventDateService) All(ctx context.Context) ([]domain.EventDate, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	return []domain.EventDate{}, nil
}

func (m *MockEventDateService) ForUser(ctx context.Context, userId domain.UserId) ([]domain.EventDate, error) {
	if m.ForUserFunc != nil {
		return m.ForUserFunc(ctx, userId)
	}
	return nil, nil
}

func (m *MockEventDateService) Add(ctx context.Context, userId domain.UserId, data domain.EventDateCreationData) (domain.EventDate, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, userId, data)
	}
	return domain.EventDate{Id: 1, UserId: userId, Label: data.Label, Date: data.Date}, nil
}

type MockMessageService struct {
	GenerateFunc func(ctx context.Context, eventType domain.EventType, dispatch bool, caller domain.UserId) ([]domain.MessagePreview, error)
	CustomFunc   func(ctx context.Context, msg domain.CustomMessage, dispatch bool, caller domain.UserId) ([]domain.MessagePreview, error)
	LogsFunc     func(ctx context.Context, limit int) ([]domain.MessageLog, error)
}

func (m *MockMessageService) Generate(ctx context.Context, eventType domain.EventType, dispatch bool, caller domain.UserId) ([]domain.MessagePreview, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, eventType, dispatch, caller)
	}
	return nil, nil
}

func (m *MockMessageService) Custom(ctx context.Context, msg domain.CustomMessage, dispatch bool, caller domain.UserId) ([]domain.MessagePreview, error) {
	if m.CustomFunc != nil {
		return m.CustomFunc(ctx, msg, dispatch, caller)
	}
	return nil, nil
}

func (m *MockMessageService) Logs(ctx context.Context, limit int) ([]domain.MessageLog, error) {
	if m.LogsFunc != nil {
		return m.LogsFunc(ctx, limit)
	}
	return []domain.MessageLog{}, nil
}

// --- Helpers ---

type mocks struct {
	auth    *MockAuthService
	member  *MockMemberService
	dates   *MockEventDateService
	message *MockMessageService
}

func newTestHandler() (*Handler, *mocks) {
	m := &mocks{
		auth:    &MockAuthService{},
		member:  &MockMemberService{},
		dates:   &MockEventDateService{},
		message: &MockMessageService{},
	}
	cfg := &config.Config{Public: config.Public{ProfilePicMaxMB: 1}}
	return New(m.auth, m.member, m.dates, m.message, &MockHealthChecker{}, cfg), m
}

func createRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
