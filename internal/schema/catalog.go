// filepath: internal/schema/catalog.go
package schema

// Collection names owned by the bootstrap.
const (
	Users           = "users"
	Videos          = "videos"
	VideoViews      = "video_views"
	ReplicationTest = "replication_test"
)

// ProbeType is the only value allowed in replication_test.type.
const ProbeType = "replication_test"

// VideoStatuses lists the values accepted by videos.status.
var VideoStatuses = []string{"active", "inactive", "processing", "error"}

// Catalog returns the canonical collections in creation order.
func Catalog() []Collection {
	return []Collection{UsersCollection(), VideosCollection(), VideoViewsCollection(), ReplicationTestCollection()}
}

func UsersCollection() Collection {
	return Collection{
		Name:  Users,
		Title: "User Account Schema",
		Fields: []Field{
			{Name: "username", Kind: KindString, Required: true, MinLength: MinLen(1), Description: "must be a non-empty string"},
			{Name: "email", Kind: KindString, Required: true, Pattern: "^.+@.+$", Description: "must be a string matching an email address"},
			{Name: "password", Kind: KindString, Required: true, MinLength: MinLen(8), Description: "must be a string of at least 8 characters"},
			{Name: "is_admin", Kind: KindBool, Description: "must be a boolean"},
			{Name: "created_at", Kind: KindTimestamp, Description: "must be a date"},
			{Name: "updated_at", Kind: KindTimestamp, Description: "must be a date"},
		},
		Indexes: []Index{
			{Name: "idx_username_unique", Keys: []IndexKey{{Field: "username", Order: Asc}}, Unique: true},
			{Name: "idx_email_unique", Keys: []IndexKey{{Field: "email", Order: Asc}}, Unique: true},
			{Name: "idx_created_at", Keys: []IndexKey{{Field: "created_at", Order: Desc}}},
			On("idx_is_admin", "is_admin"),
		},
	}
}

func VideosCollection() Collection {
	return Collection{
		Name:  Videos,
		Title: "Video Schema",
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true, MinLength: MinLen(1), Description: "must be a non-empty string"},
			{Name: "description", Kind: KindString, Description: "must be a string"},
			{Name: "filename", Kind: KindString, Required: true, MinLength: MinLen(1), Description: "must be a non-empty string"},
			{Name: "url", Kind: KindString, Description: "must be a string"},
			{Name: "duration", Kind: KindNumber, Minimum: Min(0), Description: "must be a number >= 0"},
			{Name: "file_size", Kind: KindNumber, Minimum: Min(0), Description: "must be a number >= 0"},
			{Name: "file_path", Kind: KindString, Description: "must be a string"},
			{Name: "thumbnail_path", Kind: KindString, Description: "must be a string"},
			{Name: "upload_date", Kind: KindTimestamp, Description: "must be a date"},
			{Name: "view_count", Kind: KindNumber, Minimum: Min(0), Description: "must be a number >= 0"},
			{Name: "status", Kind: KindEnum, Enum: VideoStatuses, Description: "must be one of the enum values"},
			{Name: "user_id", Kind: KindReference, Required: true, Description: "must reference a user"},
			{Name: "created_at", Kind: KindTimestamp, Description: "must be a date"},
			{Name: "updated_at", Kind: KindTimestamp, Description: "must be a date"},
		},
		Indexes: []Index{
			On("idx_user_id", "user_id"),
			On("idx_status", "status"),
			{Name: "idx_upload_date", Keys: []IndexKey{{Field: "upload_date", Order: Desc}}},
			{Name: "idx_view_count", Keys: []IndexKey{{Field: "view_count", Order: Desc}}},
			{Name: "idx_text_search", Keys: []IndexKey{{Field: "title", Order: Text}, {Field: "description", Order: Text}}},
			On("idx_user_status", "user_id", "status"),
		},
	}
}

func VideoViewsCollection() Collection {
	return Collection{
		Name:  VideoViews,
		Title: "Video View Schema",
		Fields: []Field{
			{Name: "video_id", Kind: KindReference, Required: true, Description: "must reference a video"},
			{Name: "user_id", Kind: KindReference, Description: "must reference a user"},
			{Name: "view_date", Kind: KindTimestamp, Required: true, Description: "must be a date"},
			{Name: "watch_duration", Kind: KindNumber, Minimum: Min(0), Description: "must be a number >= 0"},
			{Name: "ip_address", Kind: KindString, Description: "must be a string"},
		},
		Indexes: []Index{
			On("idx_video_id", "video_id"),
			On("idx_user_id_views", "user_id"),
			{Name: "idx_view_date", Keys: []IndexKey{{Field: "view_date", Order: Desc}}},
			On("idx_video_user_compound", "video_id", "user_id"),
		},
	}
}

func ReplicationTestCollection() Collection {
	return Collection{
		Name:  ReplicationTest,
		Title: "Replication Probe Schema",
		Fields: []Field{
			{Name: "test_time", Kind: KindTimestamp},
			{Name: "test_data", Kind: KindString},
			{Name: "type", Kind: KindEnum, Enum: []string{ProbeType}},
		},
		Indexes: []Index{
			On("idx_test_time", "test_time"),
			On("idx_test_type", "type"),
		},
	}
}
