package repository

import "time"

// Stats are aggregate storage metrics of the target database.
// Sizes are in bytes.
type Stats struct {
	Database    string `json:"database"`
	Collections int64  `json:"collections"`
	Objects     int64  `json:"objects"`
	Indexes     int64  `json:"indexes"`
	DataSize    int64  `json:"data_size"`
	StorageSize int64  `json:"storage_size"`
	IndexSize   int64  `json:"index_size"`

	// Documents per collection.
	Counts map[string]int64 `json:"counts,omitempty"`
}

// ReplicaMember is one node of a replica set as seen by the primary.
type ReplicaMember struct {
	Name     string    `json:"name"`
	State    string    `json:"state"`
	Health   float64   `json:"health"`
	PingMs   int64     `json:"ping_ms"`
	IsSelf   bool      `json:"is_self"`
	Uptime   int64     `json:"uptime"`
	LastSeen time.Time `json:"last_heartbeat,omitempty"`
}

// ReplicaStatus summarises replSetGetStatus.
type ReplicaStatus struct {
	SetName string          `json:"set_name"`
	Primary string          `json:"primary"`
	Members []ReplicaMember `json:"members"`
}

// Healthy reports whether at least two members are up, which is what a
// primary/secondary/arbiter deployment needs to keep accepting writes.
func (r ReplicaStatus) Healthy() bool {
	up := 0
	for _, m := range r.Members {
		if m.Health == 1 {
			up++
		}
	}
	return up >= 2
}
