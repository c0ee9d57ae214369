// filepath: internal/logging/audit/mocks/auditor_mock.go
package mocks

import (
	"context"
	"streamdb/internal/logging/audit"

	"github.com/stretchr/testify/mock"
)

type MockAuditor struct {
	mock.Mock
}

var _ audit.Auditor = (*MockAuditor)(nil)

func (m *MockAuditor) Log(ctx context.Context, action string, actor string, resource string, details map[string]interface{}) {
	m.Called(ctx, action, actor, resource, details)
}
