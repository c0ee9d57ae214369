package schema

import (
	"errors"
	"streamdb/internal/shared"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsValid(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 4)

	names := []string{}
	indexCount := 0
	for _, c := range catalog {
		assert.NoError(t, c.Validate(), c.Name)
		names = append(names, c.Name)
		indexCount += len(c.Indexes)
	}
	assert.Equal(t, []string{Users, Videos, VideoViews, ReplicationTest}, names)
	assert.Equal(t, 16, indexCount)
}

func TestRequiredFields(t *testing.T) {
	assert.Equal(t, []string{"username", "email", "password"}, UsersCollection().Required())
	assert.Equal(t, []string{"title", "filename", "user_id"}, VideosCollection().Required())
	assert.Equal(t, []string{"video_id", "view_date"}, VideoViewsCollection().Required())
	assert.Empty(t, ReplicationTestCollection().Required())
}

func TestIndexKinds(t *testing.T) {
	kinds := map[string]IndexKind{}
	for _, c := range Catalog() {
		for _, idx := range c.Indexes {
			kinds[idx.Name] = idx.Kind()
		}
	}

	assert.Equal(t, IndexUnique, kinds["idx_username_unique"])
	assert.Equal(t, IndexSingle, kinds["idx_created_at"])
	assert.Equal(t, IndexText, kinds["idx_text_search"])
	assert.Equal(t, IndexCompound, kinds["idx_user_status"])
	assert.Equal(t, IndexCompound, kinds["idx_video_user_compound"])
}

func TestValidateRejectsMalformedDefinitions(t *testing.T) {
	tests := []struct {
		name string
		coll Collection
		want error
	}{
		{
			name: "unsafe collection name",
			coll: Collection{Name: "users; DROP"},
			want: shared.ErrInvalidName,
		},
		{
			name: "enum without values",
			coll: Collection{Name: "c", Fields: []Field{{Name: "status", Kind: KindEnum}}},
			want: shared.ErrInvalidDefinition,
		},
		{
			name: "bad pattern",
			coll: Collection{Name: "c", Fields: []Field{{Name: "email", Kind: KindString, Pattern: "(["}}},
			want: shared.ErrInvalidDefinition,
		},
		{
			name: "minimum on a string",
			coll: Collection{Name: "c", Fields: []Field{{Name: "title", Kind: KindString, Minimum: Min(1)}}},
			want: shared.ErrInvalidDefinition,
		},
		{
			name: "duplicate field",
			coll: Collection{Name: "c", Fields: []Field{{Name: "a", Kind: KindString}, {Name: "a", Kind: KindNumber}}},
			want: shared.ErrInvalidDefinition,
		},
		{
			name: "reserved id field",
			coll: Collection{Name: "c", Fields: []Field{{Name: "_id", Kind: KindString}}},
			want: shared.ErrInvalidName,
		},
		{
			name: "index on unknown field",
			coll: Collection{Name: "c", Fields: []Field{{Name: "a", Kind: KindString}}, Indexes: []Index{On("idx_b", "b")}},
			want: shared.ErrInvalidDefinition,
		},
		{
			name: "unique text index",
			coll: Collection{
				Name:    "c",
				Fields:  []Field{{Name: "a", Kind: KindString}},
				Indexes: []Index{{Name: "idx_a", Keys: []IndexKey{{Field: "a", Order: Text}}, Unique: true}},
			},
			want: shared.ErrInvalidDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coll.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
