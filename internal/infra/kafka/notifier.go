package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
)

const schemaVersion = "1.0"

const (
	topicEmailNotifications = "notifications.email"
	topicSMSNotifications   = "notifications.sms"
)

// Notifier implements port.Notifier by publishing code-delivery requests to
// Kafka, where the email/SMS collaborator services consume them.
type Notifier struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewNotifier constructs a Kafka-backed notifier.
func NewNotifier(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *Notifier {
	return &Notifier{producer: producer, appCfg: appCfg, logger: log}
}

type notificationEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   codePayload       `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type codePayload struct {
	Recipient string `json:"recipient"`
	Code      string `json:"code"`
	Purpose   string `json:"purpose"`
}

// SendCode publishes a delivery request for the given channel.
func (n *Notifier) SendCode(ctx context.Context, notification port.CodeNotification) error {
	topic := topicEmailNotifications
	if notification.Channel == port.ChannelSMS {
		topic = topicSMSNotifications
	}

	envelope := notificationEnvelope{
		EventID:   uuid.NewString(),
		EventType: topic,
		Timestamp: time.Now().UTC(),
		Version:   schemaVersion,
		Payload: codePayload{
			Recipient: notification.Recipient,
			Code:      notification.Code,
			Purpose:   notification.Purpose,
		},
		Metadata: map[string]string{
			"service":     n.appCfg.Name,
			"environment": n.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal notification envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: n.producer.TopicName(topic),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case n.producer.Input() <- message:
		n.logger.Debug("code notification queued",
			zap.String("topic", message.Topic),
			zap.String("purpose", notification.Purpose),
			zap.String("recipient", logger.MaskEmail(notification.Recipient)),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
