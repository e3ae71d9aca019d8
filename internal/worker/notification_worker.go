package worker

import (
	"context"

	"github.com/spec-kit/citizen-feedback-service/internal/service"
)

// StartNotificationWorker runs the notification consumer in a goroutine.
// It stops when the context is cancelled.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	go notificationService.Run(ctx)
}
