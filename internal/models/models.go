// filepath: internal/models/models.go
// Package models contains the records seeded and probed by the bootstrap.
package models

import (
	"fmt"
	"streamdb/internal/schema"
	"time"
)

// Document is a single record as exchanged with a store.
// The "_id" key holds the backend-specific identifier.
type Document map[string]interface{}

// ID returns the backend identifier of the document, or nil.
func (d Document) ID() interface{} {
	return d["_id"]
}

// String returns the string value of a field, or "" if absent or not a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Bool returns the boolean value of a field.
func (d Document) Bool(field string) bool {
	b, _ := d[field].(bool)
	return b
}

// Filter selects documents by field equality. A nil Filter matches everything.
type Filter map[string]interface{}

// VideoStatus is the lifecycle state of a video.
type VideoStatus string

const (
	VideoActive     VideoStatus = "active"
	VideoInactive   VideoStatus = "inactive"
	VideoProcessing VideoStatus = "processing"
	VideoError      VideoStatus = "error"
)

// ParseVideoStatus validates a raw status value. An empty value defaults to active.
func ParseVideoStatus(s string) (VideoStatus, error) {
	if s == "" {
		return VideoActive, nil
	}
	for _, v := range schema.VideoStatuses {
		if s == v {
			return VideoStatus(s), nil
		}
	}
	return "", fmt.Errorf("invalid video status %q", s)
}

// User is an account record.
type User struct {
	Username  string    `json:"username" bson:"username"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"` // hashed credential
	IsAdmin   bool      `json:"is_admin" bson:"is_admin"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (u User) Document() Document {
	return Document{
		"username":   u.Username,
		"email":      u.Email,
		"password":   u.Password,
		"is_admin":   u.IsAdmin,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Video is an uploaded video record. UserID holds the owner's "_id" as
// returned by the store, so its concrete type depends on the backend.
type Video struct {
	Title         string      `json:"title" bson:"title"`
	Description   string      `json:"description" bson:"description"`
	Filename      string      `json:"filename" bson:"filename"`
	URL           string      `json:"url" bson:"url"`
	Duration      float64     `json:"duration" bson:"duration"`
	FileSize      int64       `json:"file_size" bson:"file_size"`
	FilePath      string      `json:"file_path" bson:"file_path"`
	ThumbnailPath string      `json:"thumbnail_path" bson:"thumbnail_path"`
	UploadDate    time.Time   `json:"upload_date" bson:"upload_date"`
	ViewCount     int64       `json:"view_count" bson:"view_count"`
	Status        VideoStatus `json:"status" bson:"status"`
	UserID        interface{} `json:"user_id" bson:"user_id"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" bson:"updated_at"`
}

func (v Video) Document() Document {
	return Document{
		"title":          v.Title,
		"description":    v.Description,
		"filename":       v.Filename,
		"url":            v.URL,
		"duration":       v.Duration,
		"file_size":      v.FileSize,
		"file_path":      v.FilePath,
		"thumbnail_path": v.ThumbnailPath,
		"upload_date":    v.UploadDate,
		"view_count":     v.ViewCount,
		"status":         string(v.Status),
		"user_id":        v.UserID,
		"created_at":     v.CreatedAt,
		"updated_at":     v.UpdatedAt,
	}
}

// VideoView is an analytics record. It is never seeded.
type VideoView struct {
	VideoID       interface{} `json:"video_id" bson:"video_id"`
	UserID        interface{} `json:"user_id,omitempty" bson:"user_id,omitempty"`
	ViewDate      time.Time   `json:"view_date" bson:"view_date"`
	WatchDuration float64     `json:"watch_duration" bson:"watch_duration"`
	IPAddress     string      `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
}

func (v VideoView) Document() Document {
	doc := Document{
		"video_id":       v.VideoID,
		"view_date":      v.ViewDate,
		"watch_duration": v.WatchDuration,
	}
	if v.UserID != nil {
		doc["user_id"] = v.UserID
	}
	if v.IPAddress != "" {
		doc["ip_address"] = v.IPAddress
	}
	return doc
}

// ReplicationProbe is the transient document written by the write-path check.
type ReplicationProbe struct {
	TestTime time.Time `json:"test_time" bson:"test_time"`
	TestData string    `json:"test_data" bson:"test_data"`
}

func (p ReplicationProbe) Document() Document {
	return Document{
		"test_time": p.TestTime,
		"test_data": p.TestData,
		"type":      schema.ProbeType,
	}
}
