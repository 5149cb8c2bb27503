package notify

import (
	"context"
	"fmt"

	"github.com/orangery/ams/shared/config"
	"github.com/orangery/ams/shared/logger"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type Twilio struct {
	api  messageCreator
	from string
}

func NewTwilio(cfg config.Twilio) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSid,
		Password: cfg.AuthToken,
	})
	return &Twilio{api: client.Api, from: cfg.PhoneNumber}
}

func (t *Twilio) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		logger.Log.Error("failed to send sms", "to", to, "error", err)
		return "", fmt.Errorf("twilio: %w", err)
	}
	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	logger.Log.Info("sms sent", "to", to, "sid", sid)
	return sid, nil
}

func (t *Twilio) Live() bool { return true }
