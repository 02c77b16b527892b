package merge

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corpusdex/indexer/internal/index"
	"github.com/corpusdex/indexer/internal/index/partial"
)

func writePartial(t *testing.T, dir, name string, idx *index.Index) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := partial.Write(idx, path); err != nil {
		t.Fatalf("partial.Write(%s): %v", name, err)
	}
	return path
}

func readShardLines(t *testing.T, path string) []finalShardEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening shard %s: %v", path, err)
	}
	defer f.Close()

	var out []finalShardEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e finalShardEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("decoding shard line: %v", err)
		}
		out = append(out, e)
	}
	return out
}

func TestMerge_ShardingAndOrdering(t *testing.T) {
	dir := t.TempDir()

	idx1 := index.New()
	idx1.AddToken("apple", 0, 1, index.Normal)
	idx1.AddToken("banana", 0, 2, index.Normal)
	idx1.AddToken("zebra", 0, 1, index.Normal)

	idx2 := index.New()
	idx2.AddToken("apple", 1, 3, index.Title)
	idx2.AddToken("mango", 1, 1, index.Normal)

	p1 := writePartial(t, dir, "p1.jsonl", idx1)
	p2 := writePartial(t, dir, "p2.jsonl", idx2)

	finalDir := filepath.Join(dir, "final")
	if err := Merge([]string{p1, p2}, finalDir); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	entries, err := os.ReadDir(finalDir)
	if err != nil {
		t.Fatalf("reading final dir: %v", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	for _, want := range []string{"a.jsonl", "b.jsonl", "m.jsonl", "z.jsonl"} {
		if !names[want] {
			t.Errorf("expected shard %s, got %v", want, names)
		}
	}

	aEntries := readShardLines(t, filepath.Join(finalDir, "a.jsonl"))
	if len(aEntries) != 1 || aEntries[0].Token != "apple" {
		t.Fatalf("a.jsonl entries = %+v", aEntries)
	}
	if len(aEntries[0].Postings) != 2 {
		t.Fatalf("apple should have merged postings from both partials, got %+v", aEntries[0].Postings)
	}
	if aEntries[0].DF != 2 {
		t.Fatalf("apple df = %d, want 2", aEntries[0].DF)
	}

	for _, name := range []string{"a.jsonl", "b.jsonl", "m.jsonl", "z.jsonl"} {
		for _, e := range readShardLines(t, filepath.Join(finalDir, name)) {
			if !strings.HasPrefix(e.Token, string(name[0])) {
				t.Errorf("shard %s contains token %q with mismatched leading char", name, e.Token)
			}
		}
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	finalDir := filepath.Join(t.TempDir(), "final")
	if err := Merge(nil, finalDir); err != nil {
		t.Fatalf("Merge(nil) error: %v", err)
	}
	entries, err := os.ReadDir(finalDir)
	if err != nil {
		t.Fatalf("reading final dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no shards for empty input, got %v", entries)
	}
}
