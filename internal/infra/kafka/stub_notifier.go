package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
)

// StubNotifier logs code notifications instead of publishing them.
// Used when no brokers are configured (local development, tests).
type StubNotifier struct {
	logger *zap.Logger
}

// NewStubNotifier constructs a logging-only notifier.
func NewStubNotifier(log *zap.Logger) *StubNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &StubNotifier{logger: log}
}

// SendCode logs the delivery request and drops it.
func (s *StubNotifier) SendCode(_ context.Context, notification port.CodeNotification) error {
	s.logger.Info("stub notifier: dropping code notification",
		zap.String("channel", string(notification.Channel)),
		zap.String("purpose", notification.Purpose),
	)
	return nil
}
