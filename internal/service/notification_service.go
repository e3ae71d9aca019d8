package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/citizen-feedback-service/internal/config"
	"github.com/spec-kit/citizen-feedback-service/internal/events"
	"github.com/spec-kit/citizen-feedback-service/internal/observability"
)

// NotificationService drains the firehose topic and forwards each event
// to the configured sinks. Delivery is best-effort like the bus itself.
type NotificationService struct {
	bus     events.Bus
	logger  *zap.Logger
	metrics *observability.Metrics
	cfg     config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(bus events.Bus, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		bus:     bus,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Run consumes the firehose until the context is cancelled.
func (n *NotificationService) Run(ctx context.Context) {
	if n.bus == nil {
		return
	}
	ch, cancel := n.bus.Subscribe(events.TopicFirehose)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			n.handle(ctx, event)
		}
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info("event",
		zap.String("type", string(event.Type)),
		zap.String("feedback_id", event.FeedbackID),
		zap.Any("payload", event.Payload),
	)
	switch event.Type {
	case events.EventFeedbackCreated, events.EventCommentAdded, events.EventResponseAdded:
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventFeedbackStatusChanged:
		n.sendWebhookNotificationStub(ctx, event)
	}
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("feedback_id", event.FeedbackID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("feedback_id", event.FeedbackID),
		zap.String("event_type", string(event.Type)))
}
