package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
)

// --- Mocks ---

// MockStorage keeps identities in memory. Any *Func field that is set replaces the default behaviour.
type MockStorage struct {
	mu         sync.Mutex
	nextId     int64
	identities map[domain.UserId]domain.Identity
	pics       map[domain.UserId][]byte
	dates      []domain.EventDate
	logs       []domain.MessageLog

	SaveIdentityFunc       func(ctx context.Context, data domain.IdentityCreationData) (domain.UserId, error)
	UsernameExistsFunc     func(ctx context.Context, username domain.Username) (bool, error)
	IdentityByUsernameFunc func(ctx context.Context, username domain.Username) (domain.Identity, error)
	IdentitiesFunc         func(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, error)
	SaveMessageLogFunc     func(ctx context.Context, entry domain.MessageLog) error
	DeleteIdentityFunc     func(ctx context.Context, id domain.UserId) error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{identities: make(map[domain.UserId]domain.Identity), pics: make(map[domain.UserId][]byte)}
}

func notFound() error { return internal_errors.NotFound("User not found") }

func (m *MockStorage) SaveIdentity(ctx context.Context, data domain.IdentityCreationData) (domain.UserId, error) {
	if m.SaveIdentityFunc != nil {
		return m.SaveIdentityFunc(ctx, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if strings.EqualFold(identity.Username, data.Username) {
			return 0, internal_errors.ErrDuplicateUsername
		}
	}
	m.nextId++
	id := m.nextId
	m.identities[id] = domain.Identity{
		Id: id, FirstName: data.FirstName, LastName: data.LastName, PhoneNumber: data.PhoneNumber,
		Username: data.Username, PassHash: data.PassHash, Dob: data.Dob, HasPic: len(data.ProfilePic) > 0,
		Role: data.Role, Status: data.Status, CreatedAt: time.Now(),
	}
	if len(data.ProfilePic) > 0 {
		m.pics[id] = data.ProfilePic
	}
	for _, d := range data.EventDates {
		m.dates = append(m.dates, domain.EventDate{Id: int64(len(m.dates) + 1), UserId: id, Label: d.Label, Date: d.Date})
	}
	return id, nil
}

func (m *MockStorage) UsernameExists(ctx context.Context, username domain.Username) (bool, error) {
	if m.UsernameExistsFunc != nil {
		return m.UsernameExistsFunc(ctx, username)
	}
	_, err := m.IdentityByUsername(ctx, username)
	return err == nil, nil
}

func (m *MockStorage) IdentityById(ctx context.Context, id domain.UserId) (domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return domain.Identity{}, notFound()
	}
	return identity, nil
}

func (m *MockStorage) IdentityByUsername(ctx context.Context, username domain.Username) (domain.Identity, error) {
	if m.IdentityByUsernameFunc != nil {
		return m.IdentityByUsernameFunc(ctx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if strings.EqualFold(identity.Username, username) {
			return identity, nil
		}
	}
	return domain.Identity{}, notFound()
}

func (m *MockStorage) PrincipalByUsername(ctx context.Context, username domain.Username) (domain.Identity, error) {
	return m.IdentityByUsername(ctx, username)
}

func (m *MockStorage) Identities(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, error) {
	if m.IdentitiesFunc != nil {
		return m.IdentitiesFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Identity
	for _, identity := range m.identities {
		if filter.Role != "" && identity.Role != filter.Role {
			continue
		}
		if filter.Status != "" && identity.Status != filter.Status {
			continue
		}
		out = append(out, identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (m *MockStorage) Activate(ctx context.Context, id domain.UserId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return notFound()
	}
	if identity.Status != domain.StatusPending {
		return internal_errors.ErrNotPending
	}
	identity.Status = domain.StatusActive
	m.identities[id] = identity
	return nil
}

func (m *MockStorage) ActivateAllPending(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, identity := range m.identities {
		if identity.Status == domain.StatusPending {
			identity.Status = domain.StatusActive
			m.identities[id] = identity
			n++
		}
	}
	return n, nil
}

func (m *MockStorage) DeletePending(ctx context.Context, id domain.UserId) error {
	m.mu.Lock()
	identity, ok := m.identities[id]
	m.mu.Unlock()
	if !ok {
		return notFound()
	}
	if identity.Status != domain.StatusPending {
		return internal_errors.ErrNotPending
	}
	return m.DeleteIdentity(ctx, id)
}

func (m *MockStorage) DeleteAllPending(ctx context.Context) (int64, error) {
	pending, _ := m.Identities(ctx, domain.IdentityFilter{Status: domain.StatusPending})
	for _, identity := range pending {
		_ = m.DeleteIdentity(ctx, identity.Id)
	}
	return int64(len(pending)), nil
}

func (m *MockStorage) UpdateRole(ctx context.Context, id domain.UserId, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return notFound()
	}
	identity.Role = role
	m.identities[id] = identity
	return nil
}

// DeleteIdentity cascades to event dates like the real schema does.
func (m *MockStorage) DeleteIdentity(ctx context.Context, id domain.UserId) error {
	if m.DeleteIdentityFunc != nil {
		return m.DeleteIdentityFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id]; !ok {
		return notFound()
	}
	delete(m.identities, id)
	kept := m.dates[:0]
	for _, d := range m.dates {
		if d.UserId != id {
			kept = append(kept, d)
		}
	}
	m.dates = kept
	return nil
}

func (m *MockStorage) DeleteAllExcept(ctx context.Context, keep domain.UserId) (int64, error) {
	all, _ := m.Identities(ctx, domain.IdentityFilter{})
	var n int64
	for _, identity := range all {
		if identity.Id != keep {
			_ = m.DeleteIdentity(ctx, identity.Id)
			n++
		}
	}
	return n, nil
}

func (m *MockStorage) ProfilePicture(ctx context.Context, id domain.UserId) ([]byte, error) {
	if _, err := m.IdentityById(ctx, id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pic, ok := m.pics[id]
	if !ok {
		return nil, internal_errors.NotFound("Profile picture not found")
	}
	return pic, nil
}

func (m *MockStorage) EventDates(ctx context.Context) ([]domain.EventDate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.EventDate(nil), m.dates...), nil
}

func (m *MockStorage) EventDatesForUser(ctx context.Context, userId domain.UserId) ([]domain.EventDate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EventDate
	for _, d := range m.dates {
		if d.UserId == userId {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockStorage) SaveEventDate(ctx context.Context, userId domain.UserId, data domain.EventDateCreationData) (domain.EventDateId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[userId]; !ok {
		return 0, notFound()
	}
	id := int64(len(m.dates) + 1)
	m.dates = append(m.dates, domain.EventDate{Id: id, UserId: userId, Label: data.Label, Date: data.Date})
	return id, nil
}

func (m *MockStorage) BirthdayCelebrants(ctx context.Context, month time.Month, day int) ([]domain.Celebrant, error) {
	all, _ := m.Identities(ctx, domain.IdentityFilter{})
	var out []domain.Celebrant
	for _, identity := range all {
		if !identity.Dob.IsZero() && identity.Dob.Month() == month && identity.Dob.Day() == day {
			out = append(out, celebrantOf(identity, domain.LabelBirthday))
		}
	}
	return out, nil
}

func (m *MockStorage) LabelledCelebrants(ctx context.Context, month time.Month, day int, include domain.Label, exclude []domain.Label) ([]domain.Celebrant, error) {
	dates, _ := m.EventDates(ctx)
	var out []domain.Celebrant
	for _, d := range dates {
		if d.Date.Month() != month || d.Date.Day() != day {
			continue
		}
		if include != "" && !strings.EqualFold(d.Label, include) {
			continue
		}
		skip := false
		for _, e := range exclude {
			if strings.EqualFold(d.Label, e) {
				skip = true
			}
		}
		if skip {
			continue
		}
		identity, err := m.IdentityById(ctx, d.UserId)
		if err != nil {
			continue
		}
		out = append(out, celebrantOf(identity, d.Label))
	}
	return out, nil
}

func (m *MockStorage) SaveMessageLog(ctx context.Context, entry domain.MessageLog) error {
	if m.SaveMessageLogFunc != nil {
		return m.SaveMessageLogFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, entry)
	return nil
}

func (m *MockStorage) MessageLogs(ctx context.Context, limit int) ([]domain.MessageLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.MessageLog, 0, len(m.logs))
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.logs[i])
	}
	return out, nil
}

func celebrantOf(identity domain.Identity, label domain.Label) domain.Celebrant {
	return domain.Celebrant{
		UserId: identity.Id, Username: identity.Username, FirstName: identity.FirstName,
		LastName: identity.LastName, PhoneNumber: identity.PhoneNumber, Label: label,
	}
}

// MockSender records every message it is handed.
type MockSender struct {
	mu       sync.Mutex
	live     bool
	sent     []string
	SendFunc func(ctx context.Context, to, body string) (string, error)
}

func (s *MockSender) Send(ctx context.Context, to, body string) (string, error) {
	s.mu.Lock()
	s.sent = append(s.sent, to+": "+body)
	s.mu.Unlock()
	if s.SendFunc != nil {
		return s.SendFunc(ctx, to, body)
	}
	return "SM" + to, nil
}

func (s *MockSender) Live() bool { return s.live }

// MockPictures returns the input bytes unless NormalizeFunc is set.
type MockPictures struct {
	NormalizeFunc func(encoded string) ([]byte, error)
}

func (p *MockPictures) Normalize(encoded string) ([]byte, error) {
	if p.NormalizeFunc != nil {
		return p.NormalizeFunc(encoded)
	}
	return []byte("jpeg:" + encoded), nil
}
