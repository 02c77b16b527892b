package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_NormalizesAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "a.json"), `{"url": "https://example.com/page#section", "content": "<p>hi</p>"}`)
	writeDoc(t, filepath.Join(dir, "b.json"), `{"url": "  ", "content": "<p>no url</p>"}`)
	writeDoc(t, filepath.Join(dir, "c.json"), `{"content": "<p>missing url field</p>"}`)
	writeDoc(t, filepath.Join(dir, "d.json"), `not valid json`)
	writeDoc(t, filepath.Join(dir, "ignored.txt"), `irrelevant`)

	docs, skips, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("docs = %+v, want 1", docs)
	}
	if docs[0].URL != "https://example.com/page" {
		t.Errorf("URL = %q, want fragment stripped", docs[0].URL)
	}

	if len(skips) != 3 {
		t.Fatalf("skips = %+v, want 3 (2 missing url + 1 malformed file)", skips)
	}
}

func TestLoad_RecursesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "sub", "nested.json"), `{"url": "https://example.com/nested", "content": "n"}`)

	docs, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(docs) != 1 || docs[0].URL != "https://example.com/nested" {
		t.Fatalf("docs = %+v, want one nested document", docs)
	}
}

func TestLoad_EmptyDirectory(t *testing.T) {
	docs, skips, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(docs) != 0 || len(skips) != 0 {
		t.Fatalf("expected no docs or skips, got docs=%+v skips=%+v", docs, skips)
	}
}

func TestLoad_DeterministicFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "z.json"), `{"url": "https://example.com/z", "content": "z"}`)
	writeDoc(t, filepath.Join(dir, "a.json"), `{"url": "https://example.com/a", "content": "a"}`)

	docs, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(docs) != 2 || docs[0].URL != "https://example.com/a" || docs[1].URL != "https://example.com/z" {
		t.Fatalf("docs = %+v, want a-file before z-file", docs)
	}
}
