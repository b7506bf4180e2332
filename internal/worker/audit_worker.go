package worker

import (
	"github.com/spec-kit/booking-portal/internal/service"
)

// StartAuditWorker registers session audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
