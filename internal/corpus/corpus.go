// Package corpus is the concrete realization of the "external collaborator"
// that feeds (url, html) pairs into the builder: a directory tree of JSON
// files, each holding exactly one {url, content} document object, matching
// spec.md §6 ("each document is a single UTF-8 JSON object") and the
// original crawl layout (one file per page). Malformed or incomplete
// documents are skipped, not fatal, matching spec.md §7's non-fatal
// per-document failure policy.
package corpus

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is one corpus record after URL normalization.
type Document struct {
	URL     string
	Content string
}

// rawDocument is the on-disk shape of one corpus file.
type rawDocument struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SkipReason enumerates why a raw corpus record was dropped.
type SkipReason string

const (
	SkipMissingURL SkipReason = "missing_url"
	SkipMalformed  SkipReason = "malformed_json"
	SkipUnreadable SkipReason = "unreadable_file"
)

// Skip records one dropped document for diagnostics.
type Skip struct {
	Path   string
	Reason SkipReason
}

// Load walks every `*.json` file under dir, recursively, in sorted-path
// order for reproducible doc-id assignment across runs, parsing each as a
// single corpus document, normalizing its URL, and reporting any it
// dropped. A document missing `url` is skipped (spec.md §6); an unreadable
// or non-JSON file is skipped, not fatal (spec.md §7).
func Load(dir string) ([]Document, []Skip, error) {
	paths, err := jsonFilePaths(dir)
	if err != nil {
		return nil, nil, err
	}

	var docs []Document
	var skips []Skip
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			skips = append(skips, Skip{Path: path, Reason: SkipUnreadable})
			continue
		}

		var raw rawDocument
		if err := json.Unmarshal(data, &raw); err != nil {
			skips = append(skips, Skip{Path: path, Reason: SkipMalformed})
			continue
		}

		normalized, ok := normalizeURL(raw.URL)
		if !ok {
			skips = append(skips, Skip{Path: path, Reason: SkipMissingURL})
			continue
		}
		docs = append(docs, Document{URL: normalized, Content: raw.Content})
	}

	return docs, skips, nil
}

// jsonFilePaths returns every `*.json` file under dir, recursively, sorted
// for deterministic ingestion order.
func jsonFilePaths(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking dataset directory %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// normalizeURL strips the fragment and surrounding whitespace from raw, per
// spec.md §6. A blank or unparseable URL is rejected.
func normalizeURL(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	parsed.Fragment = ""
	return parsed.String(), true
}
