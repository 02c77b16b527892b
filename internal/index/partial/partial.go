// Package partial writes and reads partial-index snapshots: the
// line-delimited JSON on-disk form of an in-memory index spilled every
// BATCH_SIZE kept documents. The create-parent-directory-then-stream
// pattern follows internal/storage/sessions/store.go's
// NewWithConfig/writeGzip pair in the teacher, adapted from a single
// gzip-compressed blob to one JSON object per line.
package partial

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corpusdex/indexer/internal/index"
)

// Write snapshots idx to path as line-delimited JSON, one IndexEntry per
// line in token-ascending order (spec.md §4.E). Creates the parent
// directory if missing.
func Write(idx *index.Index, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating partial index directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating partial index file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, e := range idx.SortedEntries() {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("writing partial index entry %q: %w", e.Token, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing partial index file %s: %w", path, err)
	}
	return f.Close()
}

// Read loads a partial index file back into an *index.Index. A malformed
// line is a fatal corruption error per spec.md §7.
func Read(path string) (*index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening partial index file %s: %w", path, err)
	}
	defer f.Close()

	idx := index.New()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e index.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("corrupt partial index %s line %d: %w", path, lineNo, err)
		}
		if e.Token == "" {
			return nil, fmt.Errorf("corrupt partial index %s line %d: missing token", path, lineNo)
		}
		for _, p := range e.Postings {
			idx.AddToken(e.Token, p.DocID, p.TF, p.Importance)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading partial index %s: %w", path, err)
	}
	return idx, nil
}
