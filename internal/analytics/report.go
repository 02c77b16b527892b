// Package analytics produces the build's human-readable summary and,
// optionally, records one row of it to a ClickHouse sink for longitudinal
// tracking across builds of the same corpus family.
package analytics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// Report is the set of figures spec.md §6 requires in the plain-text
// analytics output.
type Report struct {
	NumDocs          int
	UniqueTokens     int
	IndexSizeBytes   int64
	ExactDupsRemoved int
	NearDupsRemoved  int
}

// WriteText renders report as the plain-text index_analytics.txt contract:
// one labeled figure per line, sizes in human-readable units.
func WriteText(report Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating analytics directory: %w", err)
	}

	kb := float64(report.IndexSizeBytes) / 1024

	body := fmt.Sprintf(
		"Indexed documents: %d\n"+
			"Unique tokens: %d\n"+
			"Index size on disk: %.2f KB (%s)\n"+
			"Exact duplicates removed: %d\n"+
			"Near duplicates removed: %d\n",
		report.NumDocs,
		report.UniqueTokens,
		kb,
		humanize.IBytes(uint64(report.IndexSizeBytes)),
		report.ExactDupsRemoved,
		report.NearDupsRemoved,
	)

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing analytics report %s: %w", path, err)
	}
	return nil
}

// DirSizeBytes sums the size of every regular file directly under dir,
// the figure WriteText reports as the on-disk index size.
func DirSizeBytes(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return 0, fmt.Errorf("stat %s/%s: %w", dir, e.Name(), err)
		}
		total += info.Size()
	}
	return total, nil
}
