package audit

import (
	"context"

	"github.com/sirupsen/logrus"
)

var _ Auditor = (*AuditLoggerSTDOUT)(nil)

// AuditLoggerSTDOUT writes audit events through the process logger.
type AuditLoggerSTDOUT struct {
	enabled bool
	runID   string
	logger  *logrus.Logger
}

func NewStdout(logger *logrus.Logger, enabled bool, runID string) *AuditLoggerSTDOUT {
	return &AuditLoggerSTDOUT{enabled: enabled, runID: runID, logger: logger}
}

func (a *AuditLoggerSTDOUT) Log(ctx context.Context, action string, actor string, resource string, details map[string]interface{}) {
	if !a.enabled || a.logger == nil {
		return
	}

	fields := logrus.Fields{
		"audit_action":   action,
		"audit_actor":    actor,
		"audit_resource": resource,
		"run_id":         a.runID,
	}

	// Range over nil map is safe in Go, so explicit nil check is not needed.
	for k, v := range details {
		fields["detail."+k] = v
	}

	// Log at INFO level with a specific prefix to make it easy to grep
	a.logger.WithContext(ctx).WithFields(fields).Info("AUDIT EVENT")
}
