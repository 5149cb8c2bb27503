package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orangery/ams/backend/internal/service/utils"
	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/logger"
	"github.com/orangery/ams/shared/middleware/metrics"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// statusPreview labels messages that were generated but not dispatched.
const statusPreview = "preview"

type MessageService interface {
	Generate(ctx context.Context, eventType domain.EventType, dispatch bool, caller domain.UserId) ([]domain.MessagePreview, error)
	Custom(ctx context.Context, msg domain.CustomMessage, dispatch bool, caller domain.UserId) ([]domain.MessagePreview, error)
	Logs(ctx context.Context, limit int) ([]domain.MessageLog, error)
}

type MessageStorage interface {
	BirthdayCelebrants(ctx context.Context, month time.Month, day int) ([]domain.Celebrant, error)
	LabelledCelebrants(ctx context.Context, month time.Month, day int, include domain.Label, exclude []domain.Label) ([]domain.Celebrant, error)
	IdentityByUsername(ctx context.Context, username domain.Username) (domain.Identity, error)
	SaveMessageLog(ctx context.Context, entry domain.MessageLog) error
	MessageLogs(ctx context.Context, limit int) ([]domain.MessageLog, error)
}

// Sender hands a message to the SMS provider once.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
	Live() bool
}

type Message struct {
	storage  MessageStorage
	renderer *utils.Renderer
	sender   Sender
	now      func() time.Time
}

func NewMessage(storage MessageStorage, renderer *utils.Renderer, sender Sender, now func() time.Time) *Message {
	if now == nil {
		now = time.Now
	}
	return &Message{storage: storage, renderer: renderer, sender: sender, now: now}
}

// Generate renders the template for eventType for everyone celebrating it today.
func (m *Message) Generate(ctx context.Context, eventType domain.EventType, dispatch bool, caller domain.UserId) ([]domain.MessagePreview, error) {
	if !eventType.IsValid() {
		return nil, internal_errors.BadRequest("Invalid event type, enter a valid event type (birthday, anniversary, others)")
	}
	celebrants, err := m.celebrants(ctx, eventType)
	if err != nil {
		return nil, err
	}
	if len(celebrants) == 0 {
		return nil, internal_errors.NotFound(noCelebrantsMessage(eventType))
	}

	previews := make([]domain.MessagePreview, 0, len(celebrants))
	for _, c := range celebrants {
		text, err := m.renderer.Render(eventType, c)
		if err != nil {
			return nil, err
		}
		previews = append(previews, m.preview(eventType, c, text))
	}
	return m.deliver(ctx, previews, celebrants, dispatch, caller), nil
}

// Custom sends an admin written message either to one named user or to today's celebrants.
func (m *Message) Custom(ctx context.Context, msg domain.CustomMessage, dispatch bool, caller domain.UserId) ([]domain.MessagePreview, error) {
	if !msg.EventType.IsValid() {
		return nil, internal_errors.BadRequest("Invalid event type, enter a valid event type (birthday, anniversary, others)")
	}
	if m.renderer.PlainText(msg.Message) == "" {
		return nil, internal_errors.BadRequest("Message is empty")
	}

	var recipients []domain.Celebrant
	if msg.Username != "" {
		identity, err := m.storage.IdentityByUsername(ctx, msg.Username)
		if err != nil {
			return nil, err
		}
		recipients = []domain.Celebrant{{
			UserId:      identity.Id,
			Username:    identity.Username,
			FirstName:   identity.FirstName,
			LastName:    identity.LastName,
			PhoneNumber: identity.PhoneNumber,
			Label:       string(msg.EventType),
		}}
	} else {
		var err error
		if recipients, err = m.celebrants(ctx, msg.EventType); err != nil {
			return nil, err
		}
	}
	if len(recipients) == 0 {
		return nil, internal_errors.NotFound("No recipients found")
	}

	previews := make([]domain.MessagePreview, 0, len(recipients))
	for _, c := range recipients {
		text, err := m.renderer.RenderCustom(msg.Message, c)
		if err != nil {
			return nil, err
		}
		previews = append(previews, m.preview(msg.EventType, c, text))
	}
	return m.deliver(ctx, previews, recipients, dispatch, caller), nil
}

func (m *Message) Logs(ctx context.Context, limit int) ([]domain.MessageLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}
	logs, err := m.storage.MessageLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.MessageLog{}
	}
	return logs, nil
}

func (m *Message) celebrants(ctx context.Context, eventType domain.EventType) ([]domain.Celebrant, error) {
	today := m.now()
	switch eventType {
	case domain.EventBirthday:
		return m.storage.BirthdayCelebrants(ctx, today.Month(), today.Day())
	case domain.EventAnniversary:
		return m.storage.LabelledCelebrants(ctx, today.Month(), today.Day(), domain.LabelAnniversary, nil)
	default:
		return m.storage.LabelledCelebrants(ctx, today.Month(), today.Day(), "", []domain.Label{domain.LabelBirthday, domain.LabelAnniversary})
	}
}

func (m *Message) preview(eventType domain.EventType, c domain.Celebrant, text domain.MsgText) domain.MessagePreview {
	return domain.MessagePreview{
		Username:    c.Username,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		EventType:   eventType,
		Label:       c.Label,
		Message:     text,
		HTML:        m.renderer.HTML(text),
	}
}

// deliver sends each preview once when dispatch is set and records the outcome. A failed send
// is logged and reported on the preview; it does not fail the batch.
func (m *Message) deliver(ctx context.Context, previews []domain.MessagePreview, recipients []domain.Celebrant, dispatch bool, caller domain.UserId) []domain.MessagePreview {
	for i := range previews {
		p := &previews[i]
		if !dispatch {
			metrics.ObserveMessage(string(p.EventType), statusPreview)
			continue
		}

		entry := domain.MessageLog{
			Id:          uuid.New(),
			UserId:      recipients[i].UserId,
			Username:    p.Username,
			PhoneNumber: p.PhoneNumber,
			EventType:   p.EventType,
			Body:        p.Message,
			CreatedBy:   caller,
		}
		providerId, err := m.sender.Send(ctx, p.PhoneNumber, p.Message)
		switch {
		case err != nil:
			entry.Status = domain.LogFailed
			entry.Error = err.Error()
		case !m.sender.Live():
			entry.Status = domain.LogDryRun
		default:
			entry.Status = domain.LogSent
			entry.ProviderId = providerId
		}
		entry.CreatedAt = m.now()
		p.Status = entry.Status
		metrics.ObserveMessage(string(p.EventType), string(entry.Status))

		if err := m.storage.SaveMessageLog(ctx, entry); err != nil {
			logger.Log.Error("failed to record message log", "user_id", entry.UserId, "status", entry.Status, "error", err)
		}
	}
	return previews
}

func noCelebrantsMessage(eventType domain.EventType) string {
	switch eventType {
	case domain.EventBirthday:
		return "No user has a birthday today"
	case domain.EventAnniversary:
		return "No user has an anniversary today"
	default:
		return "No user has an event today"
	}
}
