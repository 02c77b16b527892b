package query

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/corpusdex/indexer/internal/docmap"
	sqlitedocstore "github.com/corpusdex/indexer/internal/docstore/sqlite"
	"github.com/corpusdex/indexer/internal/index"
)

func writeShard(t *testing.T, dir, letter string, entries []shardEntry) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, letter+".jsonl"))
	if err != nil {
		t.Fatalf("creating shard: %v", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			t.Fatalf("encoding shard entry: %v", err)
		}
	}
}

func setupIndex(t *testing.T) (finalDir, docMapPath string) {
	t.Helper()
	dir := t.TempDir()
	finalDir = filepath.Join(dir, "final")
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		t.Fatalf("mkdir final: %v", err)
	}

	writeShard(t, finalDir, "a", []shardEntry{
		{Token: "alpha", Postings: []index.Posting{
			{DocID: 0, TF: 2, Importance: index.Normal},
			{DocID: 1, TF: 1, Importance: index.Title},
		}, DF: 2},
	})
	writeShard(t, finalDir, "b", []shardEntry{
		{Token: "beta", Postings: []index.Posting{
			{DocID: 1, TF: 3, Importance: index.Normal},
			{DocID: 2, TF: 1, Importance: index.Normal},
		}, DF: 2},
	})

	m := docmap.New()
	m.Set(0, "https://example.com/0")
	m.Set(1, "https://example.com/1")
	m.Set(2, "https://example.com/2")
	docMapPath = filepath.Join(dir, "doc_mapping.json")
	if err := m.Write(docMapPath); err != nil {
		t.Fatalf("writing doc mapping: %v", err)
	}
	return finalDir, docMapPath
}

func TestRun_AND(t *testing.T) {
	finalDir, docMapPath := setupIndex(t)

	results, err := Run("alpha beta", AND, finalDir, docMapPath, "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(results) != 1 || results[0].DocID != 1 {
		t.Fatalf("AND results = %+v, want only doc_id 1", results)
	}
	want := 1.0 + 0.5*float64(index.Title) + 3.0
	if results[0].Score != want {
		t.Errorf("score = %v, want %v", results[0].Score, want)
	}
}

func TestRun_OR(t *testing.T) {
	finalDir, docMapPath := setupIndex(t)

	results, err := Run("alpha beta", OR, finalDir, docMapPath, "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("OR results len = %d, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("results not sorted by score descending: %+v", results)
		}
		if results[i-1].Score == results[i].Score && results[i-1].DocID > results[i].DocID {
			t.Fatalf("tie not broken by doc_id ascending: %+v", results)
		}
	}
}

func TestRun_ANDWithMissingTokenIsEmpty(t *testing.T) {
	finalDir, docMapPath := setupIndex(t)

	results, err := Run("alpha zzz", AND, finalDir, docMapPath, "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty AND result when a token is absent, got %+v", results)
	}
}

func TestRun_ORSkipsMissingToken(t *testing.T) {
	finalDir, docMapPath := setupIndex(t)

	results, err := Run("alpha zzz", OR, finalDir, docMapPath, "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected OR to skip the missing token, got %+v", results)
	}
}

func TestRun_EmptyQuery(t *testing.T) {
	finalDir, docMapPath := setupIndex(t)

	results, err := Run("   ", AND, finalDir, docMapPath, "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results for empty query, got %+v", results)
	}
}

func TestRun_MissingDocMappingEntryIsFatal(t *testing.T) {
	finalDir, _ := setupIndex(t)
	emptyMap := docmap.New()
	path := filepath.Join(t.TempDir(), "doc_mapping.json")
	if err := emptyMap.Write(path); err != nil {
		t.Fatalf("writing doc mapping: %v", err)
	}

	if _, err := Run("alpha", OR, finalDir, path, "", ""); err == nil {
		t.Fatalf("expected error when doc_id is missing from doc mapping")
	}
}

func TestRun_SQLiteDocMappingBackend(t *testing.T) {
	finalDir, _ := setupIndex(t)

	sqlitePath := filepath.Join(t.TempDir(), "doc_mapping.sqlite")
	store, err := sqlitedocstore.Open(sqlitePath)
	if err != nil {
		t.Fatalf("opening sqlite doc mapping: %v", err)
	}
	if err := store.WriteAll(map[int]string{
		0: "https://example.com/0",
		1: "https://example.com/1",
		2: "https://example.com/2",
	}); err != nil {
		t.Fatalf("writing sqlite doc mapping: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("closing sqlite doc mapping: %v", err)
	}

	results, err := Run("alpha beta", AND, finalDir, "", "sqlite", sqlitePath)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(results) != 1 || results[0].DocID != 1 || results[0].URL != "https://example.com/1" {
		t.Fatalf("sqlite-backed results = %+v, want one hit for doc_id 1", results)
	}
}
