package notify

import (
	"context"

	"github.com/orangery/ams/shared/logger"
)

// DryRun logs messages instead of sending them.
type DryRun struct{}

func NewDryRun() *DryRun { return &DryRun{} }

func (DryRun) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger.Log.Info("sms dry run", "to", to, "length", len(body))
	return "", nil
}

func (DryRun) Live() bool { return false }
