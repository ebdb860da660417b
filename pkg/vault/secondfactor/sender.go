package secondfactor

import (
	"context"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
)

// CodeSender delivers a one-time code to a recipient address. Delivery
// failures surface as errors so the caller can avoid burning the
// principal's challenge on a code nobody received.
type CodeSender interface {
	SendCode(ctx context.Context, recipient, code string) error
}

// LogSender writes codes to the server log instead of delivering them.
// It is the default in development deployments where no mail relay is
// configured.
type LogSender struct{}

func (LogSender) SendCode(ctx context.Context, recipient, code string) error {
	logger.InfoCtx(ctx, "Second-factor code (log delivery)",
		"recipient", recipient,
		"code", code)
	return nil
}
