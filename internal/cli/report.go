// filepath: internal/cli/report.go
package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"streamdb/internal/bootstrap"
	"streamdb/internal/repository"

	"github.com/dustin/go-humanize"
)

const megabyte = 1024 * 1024

func printStats(w io.Writer, s *repository.Stats) {
	fmt.Fprintf(w, "Database statistics (%s):\n", s.Database)
	fmt.Fprintf(w, "  Collections: %d\n", s.Collections)
	fmt.Fprintf(w, "  Documents:   %d\n", s.Objects)
	fmt.Fprintf(w, "  Indexes:     %d\n", s.Indexes)
	fmt.Fprintf(w, "  Data size:   %.2f MB (%s)\n", float64(s.DataSize)/megabyte, humanize.IBytes(uint64(s.DataSize)))
	fmt.Fprintf(w, "  Storage:     %.2f MB (%s)\n", float64(s.StorageSize)/megabyte, humanize.IBytes(uint64(s.StorageSize)))
	fmt.Fprintf(w, "  Index size:  %.2f MB (%s)\n", float64(s.IndexSize)/megabyte, humanize.IBytes(uint64(s.IndexSize)))

	names := make([]string, 0, len(s.Counts))
	for name := range s.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s document(s)\n", name, humanize.Comma(s.Counts[name]))
	}
}

// printReport writes the summary block and the final banner.
func printReport(w io.Writer, r *bootstrap.Report) {
	fmt.Fprintf(w, "Run %s on %s finished in %s\n", r.RunID, r.Database, r.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(w, "  created=%d already_satisfied=%d succeeded=%d skipped=%d failed=%d\n",
		r.Count(bootstrap.Created), r.Count(bootstrap.AlreadySatisfied), r.Count(bootstrap.Succeeded),
		r.Count(bootstrap.Skipped), r.Count(bootstrap.Failed))

	for _, f := range r.Failures() {
		marker := "warning"
		if f.Fatal {
			marker = "FATAL"
		}
		fmt.Fprintf(w, "  [%s] %s\n", marker, f.String())
	}

	if r.Stats != nil {
		printStats(w, r.Stats)
	}
	if r.Replica != nil {
		printReplica(w, r.Replica)
	}
	if r.Replication != nil {
		printReplication(w, r.Replication)
	}

	if r.Fatal() {
		n := 0
		for _, f := range r.Failures() {
			if f.Fatal {
				n++
			}
		}
		fmt.Fprintf(w, "Database initialization completed with %d failure(s)\n", n)
		return
	}
	fmt.Fprintln(w, "Database initialization complete. Streaming database is ready.")
}
