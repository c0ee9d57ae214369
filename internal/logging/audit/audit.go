// Package audit records schema and data changes made by the bootstrap.
package audit

import "context"

// Auditor records a change.
// action: what happened (e.g. "collection.create", "seed.insert")
// actor: who did it (the configured database user)
// resource: what was affected (e.g. "users", "users/idx_email_unique")
type Auditor interface {
	Log(ctx context.Context, action string, actor string, resource string, details map[string]interface{})
}
