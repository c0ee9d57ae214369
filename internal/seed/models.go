// filepath: internal/seed/models.go
package seed

// File is the root struct for parsing the TOML seed file.
type File struct {
	Users  []User  `toml:"user"`
	Videos []Video `toml:"video"`
}

// User represents a user entry in the seed file.
// The password is plaintext and is hashed before insertion.
type User struct {
	Name     string `toml:"name"`
	Email    string `toml:"email,omitempty"`
	Password string `toml:"password"`
	IsAdmin  bool   `toml:"is_admin"`
}

// Video represents a video entry in the seed file. Owner is the username of
// the owning user; FileSize accepts plain bytes or units ("15 MiB").
type Video struct {
	Title         string  `toml:"title"`
	Description   string  `toml:"description,omitempty"`
	Filename      string  `toml:"filename"`
	URL           string  `toml:"url,omitempty"`
	FilePath      string  `toml:"file_path,omitempty"`
	ThumbnailPath string  `toml:"thumbnail_path,omitempty"`
	Duration      float64 `toml:"duration"`
	FileSize      string  `toml:"file_size,omitempty"`
	Status        string  `toml:"status,omitempty"`
	Owner         string  `toml:"owner,omitempty"`
}

const DefaultOwner = "admin"

// Default is the seed set used when no seed file is configured: an admin,
// a regular user and one demo video owned by the admin.
func Default() File {
	return File{
		Users: []User{
			{Name: "admin", Email: "admin@example.com", Password: "admin", IsAdmin: true},
			{Name: "user1", Email: "user1@example.com", Password: "user1", IsAdmin: false},
		},
		Videos: []Video{{
			Title:         "Demo Video",
			Description:   "Demonstration video used to check the streaming setup.",
			Filename:      "sample_demo.mp4",
			URL:           "/stream/sample_demo.mp4",
			FilePath:      "/videos/sample_demo.mp4",
			ThumbnailPath: "thumb_sample_demo.mp4.jpg",
			Duration:      180,
			FileSize:      "15 MiB",
			Status:        "active",
			Owner:         DefaultOwner,
		}},
	}
}
