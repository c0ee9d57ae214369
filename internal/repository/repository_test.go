package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"streamdb/internal/models"
	"streamdb/internal/repository"
	"streamdb/internal/repository/mocks"
	"streamdb/internal/shared"

	"github.com/stretchr/testify/assert"
)

func TestExists(t *testing.T) {
	ctx := context.Background()
	filter := models.Filter{"username": "admin"}

	tests := []struct {
		name    string
		doc     models.Document
		err     error
		want    bool
		wantErr bool
	}{
		{"found", models.Document{"_id": "1"}, nil, true, false},
		{"not found", nil, shared.ErrNotFound, false, false},
		{"wrapped not found", nil, fmt.Errorf("find users: %w", shared.ErrNotFound), false, false},
		{"engine error", nil, errors.New("connection reset"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			store.On("FindOne", ctx, "users", filter).Return(tt.doc, tt.err)

			got, err := repository.Exists(ctx, store, "users", filter)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestReplicaStatusHealthy(t *testing.T) {
	status := repository.ReplicaStatus{Members: []repository.ReplicaMember{
		{Name: "a:27017", Health: 1},
		{Name: "b:27017", Health: 0},
	}}
	assert.False(t, status.Healthy())

	status.Members = append(status.Members, repository.ReplicaMember{Name: "c:27017", Health: 1})
	assert.True(t, status.Healthy())
}
