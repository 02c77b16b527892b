package analytics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteText_ContainsAllFigures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "index_analytics.txt")
	report := Report{
		NumDocs:          42,
		UniqueTokens:     1000,
		IndexSizeBytes:   2048,
		ExactDupsRemoved: 3,
		NearDupsRemoved:  7,
	}

	if err := WriteText(report, path); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	body := string(data)

	for _, want := range []string{"42", "1000", "3", "7", "KiB"} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing expected figure %q:\n%s", want, body)
		}
	}
}

func TestDirSizeBytes_SumsRegularFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jsonl"), make([]byte, 100), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.jsonl"), make([]byte, 50), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	size, err := DirSizeBytes(dir)
	if err != nil {
		t.Fatalf("DirSizeBytes() error: %v", err)
	}
	if size != 150 {
		t.Errorf("size = %d, want 150", size)
	}
}
