package mongo

import (
	"context"
	"streamdb/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Stats runs dbStats on the selected database.
func (s *Store) Stats(ctx context.Context) (repository.Stats, error) {
	var raw bson.M
	if err := s.DB.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&raw); err != nil {
		return repository.Stats{Database: s.DB.Name()}, mapError("dbStats", err)
	}
	stats := statsFromReply(raw)
	if stats.Database == "" {
		stats.Database = s.DB.Name()
	}

	names, err := s.DB.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return stats, mapError("list collections", err)
	}
	stats.Counts = make(map[string]int64, len(names))
	for _, name := range names {
		n, err := s.CountDocuments(ctx, name, nil)
		if err != nil {
			return stats, err
		}
		stats.Counts[name] = n
	}
	return stats, nil
}

func statsFromReply(raw bson.M) repository.Stats {
	db, _ := raw["db"].(string)
	return repository.Stats{
		Database:    db,
		Collections: toInt64(raw["collections"]),
		Objects:     toInt64(raw["objects"]),
		Indexes:     toInt64(raw["indexes"]),
		DataSize:    toInt64(raw["dataSize"]),
		StorageSize: toInt64(raw["storageSize"]),
		IndexSize:   toInt64(raw["indexSize"]),
	}
}

type replSetStatus struct {
	Set     string `bson:"set"`
	Members []struct {
		Name          string    `bson:"name"`
		StateStr      string    `bson:"stateStr"`
		Health        float64   `bson:"health"`
		PingMs        int64     `bson:"pingMs"`
		Self          bool      `bson:"self"`
		Uptime        int64     `bson:"uptime"`
		LastHeartbeat time.Time `bson:"lastHeartbeat"`
	} `bson:"members"`
}

// ReplicaStatus runs replSetGetStatus against the admin database.
// Standalone servers report shared.ErrUnsupported.
func (s *Store) ReplicaStatus(ctx context.Context) (repository.ReplicaStatus, error) {
	var raw replSetStatus
	err := s.Client.Database("admin").RunCommand(ctx, bson.D{{Key: "replSetGetStatus", Value: 1}}).Decode(&raw)
	if err != nil {
		return repository.ReplicaStatus{}, mapError("replSetGetStatus", err)
	}
	return raw.status(), nil
}

func (r replSetStatus) status() repository.ReplicaStatus {
	status := repository.ReplicaStatus{SetName: r.Set}
	for _, m := range r.Members {
		status.Members = append(status.Members, repository.ReplicaMember{
			Name:     m.Name,
			State:    m.StateStr,
			Health:   m.Health,
			PingMs:   m.PingMs,
			IsSelf:   m.Self,
			Uptime:   m.Uptime,
			LastSeen: m.LastHeartbeat,
		})
		if m.StateStr == "PRIMARY" {
			status.Primary = m.Name
		}
	}
	return status
}
