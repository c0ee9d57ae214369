package sqlite

import (
	"context"
	"fmt"
	"streamdb/internal/repository"
)

// Stats aggregates the recorded collections. Sizes come from the dbstat
// virtual table; when it is unavailable the data size falls back to the
// file size and index size is reported as zero.
func (s *Store) Stats(ctx context.Context) (repository.Stats, error) {
	stats := repository.Stats{Database: s.name, Counts: map[string]int64{}}

	names, err := s.collections(ctx)
	if err != nil {
		return stats, fmt.Errorf("stats: %w", err)
	}
	stats.Collections = int64(len(names))

	var pageCount, pageSize int64
	if err := s.DB.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return stats, fmt.Errorf("stats: %w", err)
	}
	if err := s.DB.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return stats, fmt.Errorf("stats: %w", err)
	}
	stats.StorageSize = pageCount * pageSize

	dbstat := true
	for _, name := range names {
		n, err := s.CountDocuments(ctx, name, nil)
		if err != nil {
			return stats, fmt.Errorf("stats: %w", err)
		}
		stats.Objects += n
		stats.Counts[name] = n

		indexes, err := s.indexNames(ctx, name)
		if err != nil {
			return stats, fmt.Errorf("stats: %w", err)
		}
		stats.Indexes += int64(len(indexes))

		if !dbstat {
			continue
		}
		size, err := s.objectSize(ctx, name)
		if err != nil {
			s.Logger.Debugf("Stats: dbstat unavailable, using file size: %v", err)
			dbstat = false
			continue
		}
		stats.DataSize += size
		for _, idx := range indexes {
			size, err := s.objectSize(ctx, idx)
			if err != nil {
				dbstat = false
				break
			}
			stats.IndexSize += size
		}
	}

	if !dbstat {
		stats.DataSize = stats.StorageSize
		stats.IndexSize = 0
	}
	return stats, nil
}

// indexNames returns every index on a table, including the implicit
// primary key index.
func (s *Store) indexNames(ctx context.Context, table string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ?", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) objectSize(ctx context.Context, name string) (int64, error) {
	var size int64
	err := s.DB.QueryRowContext(ctx, "SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?", name).Scan(&size)
	return size, err
}
