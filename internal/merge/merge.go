// Package merge performs the disk-based k-way merge of partial indexes
// into letter-sharded final index files. The min-heap-of-open-readers
// shape is the natural external-merge pattern (spec.md §9); container/heap
// is the stdlib primitive for it — no example repo in the pack ships a
// generic k-way merge heap, so this one is hand-written rather than
// adapted from a teacher file (see DESIGN.md).
package merge

import (
	"bufio"
	"container/heap"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corpusdex/indexer/internal/index"
)

// reader wraps one open partial-index file, buffering line-at-a-time reads
// so the merger can pull "the next entry from this file" on demand.
type reader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
}

func openReader(path string) (*reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening partial index %s: %w", path, err)
	}
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &reader{path: path, file: f, scanner: s}, nil
}

// next reads and decodes the next entry from this file, or returns
// (nil, nil) at EOF. A malformed line is fatal corruption.
func (r *reader) next() (*index.Entry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading partial index %s: %w", r.path, err)
		}
		return nil, nil
	}
	line := r.scanner.Bytes()
	var e index.Entry
	if err := json.Unmarshal(line, &e); err != nil {
		return nil, fmt.Errorf("corrupt partial index %s: %w", r.path, err)
	}
	return &e, nil
}

func (r *reader) close() error {
	return r.file.Close()
}

// heapItem is one pending (token, entry, reader) triple. The heap
// compares only on token; ties are drained together by the merge loop, not
// by heap ordering.
type heapItem struct {
	token string
	entry *index.Entry
	r     *reader
}

type entryHeap []*heapItem

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].token < h[j].token }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(*heapItem)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// shardWriter manages the single currently-open output shard file,
// switching shards when the leading character of the next token differs
// from the one currently open.
type shardWriter struct {
	dir     string
	letter  string
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
}

func newShardWriter(dir string) *shardWriter {
	return &shardWriter{dir: dir}
}

func (sw *shardWriter) writeEntry(e *index.Entry) error {
	letter := shardLetter(e.Token)
	if sw.file == nil || letter != sw.letter {
		if err := sw.closeCurrent(); err != nil {
			return err
		}
		f, err := os.Create(filepath.Join(sw.dir, letter+".jsonl"))
		if err != nil {
			return fmt.Errorf("creating shard %s.jsonl: %w", letter, err)
		}
		sw.file = f
		sw.letter = letter
		sw.writer = bufio.NewWriter(f)
		sw.encoder = json.NewEncoder(sw.writer)
	}

	finalized := finalShardEntry{Token: e.Token, Postings: e.Postings, DF: e.DF()}
	if err := sw.encoder.Encode(finalized); err != nil {
		return fmt.Errorf("writing shard entry %q: %w", e.Token, err)
	}
	return nil
}

func (sw *shardWriter) closeCurrent() error {
	if sw.file == nil {
		return nil
	}
	if err := sw.writer.Flush(); err != nil {
		sw.file.Close()
		return fmt.Errorf("flushing shard %s.jsonl: %w", sw.letter, err)
	}
	err := sw.file.Close()
	sw.file = nil
	sw.writer = nil
	sw.encoder = nil
	if err != nil {
		return fmt.Errorf("closing shard %s.jsonl: %w", sw.letter, err)
	}
	return nil
}

// finalShardEntry is the on-disk shape of a merged entry, carrying the
// recomputed df field spec.md §6 requires for final shards.
type finalShardEntry struct {
	Token    string          `json:"token"`
	Postings []index.Posting `json:"postings"`
	DF       int             `json:"df"`
}

// shardLetter returns the shard filename's leading character for a token.
func shardLetter(token string) string {
	if token == "" {
		return "_"
	}
	return string(token[0])
}

// Merge performs the k-way external merge of partialPaths into finalDir,
// one shard file per distinct leading token character. Every file handle
// is released on every exit path, including mid-merge failures.
func Merge(partialPaths []string, finalDir string) error {
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return fmt.Errorf("creating final index directory: %w", err)
	}

	readers := make([]*reader, 0, len(partialPaths))
	defer func() {
		for _, r := range readers {
			r.close()
		}
	}()

	for _, p := range partialPaths {
		r, err := openReader(p)
		if err != nil {
			return err
		}
		readers = append(readers, r)
	}

	h := &entryHeap{}
	heap.Init(h)
	for _, r := range readers {
		if err := pushNext(h, r); err != nil {
			return err
		}
	}

	sw := newShardWriter(finalDir)
	defer sw.closeCurrent()

	for h.Len() > 0 {
		top := heap.Pop(h).(*heapItem)
		token := top.token
		merged := top.entry
		if err := pushNext(h, top.r); err != nil {
			return err
		}

		for h.Len() > 0 && (*h)[0].token == token {
			next := heap.Pop(h).(*heapItem)
			merged.Merge(next.entry)
			if err := pushNext(h, next.r); err != nil {
				return err
			}
		}

		if err := sw.writeEntry(merged); err != nil {
			return err
		}
	}

	return sw.closeCurrent()
}

// pushNext reads the next entry from r and, if present, pushes it onto the
// heap. EOF leaves r simply absent from further iterations.
func pushNext(h *entryHeap, r *reader) error {
	e, err := r.next()
	if err != nil {
		return err
	}
	if e == nil {
		return nil
	}
	heap.Push(h, &heapItem{token: e.Token, entry: e, r: r})
	return nil
}
