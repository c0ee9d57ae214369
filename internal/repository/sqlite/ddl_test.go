package sqlite

import (
	"testing"

	"streamdb/internal/schema"

	"github.com/stretchr/testify/assert"
)

func TestColumnDefinition(t *testing.T) {
	tests := []struct {
		name  string
		field schema.Field
		want  string
	}{
		{
			name:  "required string with min length",
			field: schema.Field{Name: "title", Kind: schema.KindString, Required: true, MinLength: schema.MinLen(1)},
			want:  `"title" TEXT NOT NULL CHECK(typeof("title") = 'text' AND length("title") >= 1)`,
		},
		{
			name:  "optional number with minimum",
			field: schema.Field{Name: "view_count", Kind: schema.KindNumber, Minimum: schema.Min(0)},
			want:  `"view_count" NUMERIC CHECK("view_count" IS NULL OR (typeof("view_count") IN ('integer', 'real') AND "view_count" >= 0))`,
		},
		{
			name:  "bool",
			field: schema.Field{Name: "is_admin", Kind: schema.KindBool},
			want:  `"is_admin" INTEGER CHECK("is_admin" IS NULL OR ("is_admin" IN (0, 1)))`,
		},
		{
			name:  "enum",
			field: schema.Field{Name: "status", Kind: schema.KindEnum, Enum: []string{"active", "it's"}},
			want:  `"status" TEXT CHECK("status" IS NULL OR (typeof("status") = 'text' AND "status" IN ('active', 'it''s')))`,
		},
		{
			name:  "pattern",
			field: schema.Field{Name: "email", Kind: schema.KindString, Required: true, Pattern: "^.+@.+$"},
			want:  `"email" TEXT NOT NULL CHECK(typeof("email") = 'text' AND "email" REGEXP '^.+@.+$')`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, columnDefinition(tt.field))
		})
	}
}

func TestCreateIndexSQL(t *testing.T) {
	idx := schema.Index{Name: "idx_username_unique", Keys: []schema.IndexKey{{Field: "username", Order: schema.Asc}}, Unique: true}
	assert.Equal(t, `CREATE UNIQUE INDEX "users__idx_username_unique" ON "users" ("username" ASC);`, createIndexSQL("users", idx))

	text := schema.Index{Name: "idx_text_search", Keys: []schema.IndexKey{{Field: "title", Order: schema.Text}, {Field: "description", Order: schema.Text}}}
	assert.Equal(t, `CREATE INDEX "videos__idx_text_search" ON "videos" ("title" ASC, "description" ASC);`, createIndexSQL("videos", text))

	desc := schema.Index{Name: "idx_view_date", Keys: []schema.IndexKey{{Field: "view_date", Order: schema.Desc}}}
	assert.Contains(t, createIndexSQL("video_views", desc), `("view_date" DESC)`)
}
