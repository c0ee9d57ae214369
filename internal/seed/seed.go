// Package seed describes the sample records inserted by the bootstrap and
// loads them from a TOML seed file.
package seed

import (
	"context"
	"fmt"
	"streamdb/internal/credentials"
	"streamdb/internal/models"
	"streamdb/internal/schema"
	"streamdb/internal/shared"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
)

// RecordBuilder builds the document to insert. refs holds the identifiers
// resolved for the seed's references, keyed by field name.
type RecordBuilder func(ctx context.Context, refs map[string]interface{}) (models.Document, error)

// Reference is a record that must exist before a seed can be built.
type Reference struct {
	Field      string
	Collection string
	Filter     models.Filter
}

// Seed is one guarded insert.
// A nil Lookup means "only when the collection is still empty".
type Seed struct {
	Name       string
	Collection string
	Requires   []Reference
	Lookup     models.Filter
	Build      RecordBuilder
}

// Load parses a seed file and applies defaults.
func Load(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, err
	}
	f.PostProcess()
	if err := f.Validate(); err != nil {
		return File{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return f, nil
}

// PostProcess fills the optional fields left empty in the file.
func (f *File) PostProcess() {
	for i := range f.Users {
		if f.Users[i].Email == "" {
			f.Users[i].Email = f.Users[i].Name + "@example.com"
		}
	}
	for i := range f.Videos {
		if f.Videos[i].Owner == "" {
			f.Videos[i].Owner = DefaultOwner
		}
		if f.Videos[i].Status == "" {
			f.Videos[i].Status = string(models.VideoActive)
		}
	}
}

// Validate checks the file before anything is written.
func (f File) Validate() error {
	users := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		if u.Name == "" {
			return fmt.Errorf("user with empty name: %w", shared.ErrInvalidDefinition)
		}
		if users[u.Name] {
			return fmt.Errorf("user %q listed twice: %w", u.Name, shared.ErrInvalidDefinition)
		}
		users[u.Name] = true
	}
	for _, v := range f.Videos {
		if v.Title == "" || v.Filename == "" {
			return fmt.Errorf("video %q: title and filename are required: %w", v.Title, shared.ErrInvalidDefinition)
		}
		if _, err := models.ParseVideoStatus(v.Status); err != nil {
			return fmt.Errorf("video %q: %v: %w", v.Title, err, shared.ErrInvalidDefinition)
		}
		if _, err := v.Bytes(); err != nil {
			return fmt.Errorf("video %q: %v: %w", v.Title, err, shared.ErrInvalidDefinition)
		}
		if v.Duration < 0 {
			return fmt.Errorf("video %q: negative duration: %w", v.Title, shared.ErrInvalidDefinition)
		}
	}
	return nil
}

// Bytes parses FileSize.
func (v Video) Bytes() (int64, error) {
	if strings.TrimSpace(v.FileSize) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(v.FileSize)
	if err != nil {
		return 0, fmt.Errorf("invalid file size %q", v.FileSize)
	}
	return int64(n), nil
}

// Seeds turns the file into guarded inserts, users first. Passwords are
// hashed only when a user is actually inserted.
//
// When guardVideos is set every video is seeded only while the videos
// collection is empty; otherwise each video is matched by title.
func (f File) Seeds(hasher credentials.Hasher, guardVideos bool) []Seed {
	var seeds []Seed
	for _, u := range f.Users {
		seeds = append(seeds, userSeed(u, hasher))
	}
	for _, v := range f.Videos {
		seeds = append(seeds, videoSeed(v, guardVideos))
	}
	return seeds
}

func userSeed(u User, hasher credentials.Hasher) Seed {
	return Seed{
		Name:       "user " + u.Name,
		Collection: schema.Users,
		Lookup:     models.Filter{"username": u.Name},
		Build: func(ctx context.Context, _ map[string]interface{}) (models.Document, error) {
			if u.Password == "" {
				return nil, fmt.Errorf("user %q has no password: %w", u.Name, shared.ErrInvalidDefinition)
			}
			hash, err := hasher.Hash(u.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password for %q: %w", u.Name, err)
			}
			now := time.Now().UTC()
			return models.User{
				Username:  u.Name,
				Email:     u.Email,
				Password:  hash,
				IsAdmin:   u.IsAdmin,
				CreatedAt: now,
				UpdatedAt: now,
			}.Document(), nil
		},
	}
}

func videoSeed(v Video, guard bool) Seed {
	s := Seed{
		Name:       "video " + v.Filename,
		Collection: schema.Videos,
		Requires: []Reference{
			{Field: "user_id", Collection: schema.Users, Filter: models.Filter{"username": v.Owner}},
		},
		Build: func(ctx context.Context, refs map[string]interface{}) (models.Document, error) {
			status, err := models.ParseVideoStatus(v.Status)
			if err != nil {
				return nil, err
			}
			size, err := v.Bytes()
			if err != nil {
				return nil, err
			}
			now := time.Now().UTC()
			return models.Video{
				Title:         v.Title,
				Description:   v.Description,
				Filename:      v.Filename,
				URL:           v.URL,
				Duration:      v.Duration,
				FileSize:      size,
				FilePath:      v.FilePath,
				ThumbnailPath: v.ThumbnailPath,
				UploadDate:    now,
				ViewCount:     0,
				Status:        status,
				UserID:        refs["user_id"],
				CreatedAt:     now,
				UpdatedAt:     now,
			}.Document(), nil
		},
	}
	if !guard {
		s.Lookup = models.Filter{"title": v.Title}
	}
	return s
}
