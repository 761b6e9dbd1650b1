package logging

import (
	"strings"

	"github.com/go-logr/logr"
)

// Keys whose values must never reach the logs. App-setting values are
// filtered wholesale elsewhere; this guards the structured audit fields.
var sensitiveKeys = map[string]bool{
	"docker_registry_server_password": true,
	"registry_server_password":        true,
}

// LogAuditEvent logs a structured audit event for remote mutations
// against the management plane. Audit events are tagged "audit=true" for
// filtering in log aggregation systems. Values for credential-bearing
// keys are redacted before emission.
func LogAuditEvent(logger logr.Logger, operation string, fields map[string]string) {
	auditLogger := logger.WithValues("audit", "true", "operation", operation)
	for key, value := range fields {
		if sensitiveKeys[strings.ToLower(key)] {
			value = "[redacted]"
		}
		auditLogger = auditLogger.WithValues(key, value)
	}
	auditLogger.Info("Remote slot operation")
}
