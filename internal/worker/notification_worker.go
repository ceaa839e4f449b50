package worker

import (
	"github.com/spec-kit/account-security/internal/service"
)

// StartNotificationWorker registers notification handlers. They run after
// each unit of work commits, on the publishing goroutine.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
