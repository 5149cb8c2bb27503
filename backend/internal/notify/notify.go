// Package notify delivers celebration messages over SMS.
package notify

import (
	"context"

	"github.com/orangery/ams/shared/config"
)

// Sender hands one message to the provider. It does not retry.
type Sender interface {
	// Send returns the provider's message id.
	Send(ctx context.Context, to, body string) (string, error)
	// Live is false for senders that never reach a provider.
	Live() bool
}

// New picks the Twilio sender when SMS is enabled and the dry-run sender otherwise.
func New(cfg *config.Config) Sender {
	if !cfg.Public.Sms.Enabled {
		return NewDryRun()
	}
	return NewTwilio(cfg.Private.Twilio)
}
