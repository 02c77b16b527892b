// Package main is the index-builder entry point: it loads a corpus
// directory, detects duplicates, accumulates kept documents into an
// in-memory index that is spilled as a partial index every batch_size kept
// documents, and performs a disk-based k-way merge into the sharded final
// index (spec.md §2). The corpus itself is read into memory in full by
// corpus.Load before indexing starts; it is not streamed. Logging follows
// cmd/server/main.go's plain log.Printf/log.Fatalf style in the teacher.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/corpusdex/indexer/internal/analytics"
	"github.com/corpusdex/indexer/internal/buildconfig"
	"github.com/corpusdex/indexer/internal/corpus"
	"github.com/corpusdex/indexer/internal/dedup"
	"github.com/corpusdex/indexer/internal/docmap"
	sqlitedocstore "github.com/corpusdex/indexer/internal/docstore/sqlite"
	"github.com/corpusdex/indexer/internal/extract"
	"github.com/corpusdex/indexer/internal/index"
	"github.com/corpusdex/indexer/internal/index/partial"
	"github.com/corpusdex/indexer/internal/merge"
	"github.com/corpusdex/indexer/internal/tokenize"
)

func main() {
	log.Println("Starting corpus index builder...")

	cfg, err := buildconfig.Load(envOrDefault("CDX_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	startedAt := time.Now()
	report, err := build(cfg)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}

	log.Printf("Indexed %d documents, %d unique tokens, %d exact dups, %d near dups removed",
		report.NumDocs, report.UniqueTokens, report.ExactDupsRemoved, report.NearDupsRemoved)

	if err := analytics.WriteText(report, cfg.AnalyticsPath); err != nil {
		log.Fatalf("writing analytics report: %v", err)
	}
	log.Printf("Analytics report written to %s", cfg.AnalyticsPath)

	if cfg.AnalyticsBackend == "clickhouse" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := recordClickHouseRun(ctx, cfg, startedAt, report); err != nil {
			log.Fatalf("recording analytics to clickhouse: %v", err)
		}
		log.Println("Build run recorded to ClickHouse")
	}

	log.Println("Build complete")
}

// build runs the full pipeline: load corpus -> extract -> tokenize ->
// dedup -> accumulate -> spill -> merge -> write doc mapping.
func build(cfg buildconfig.Config) (analytics.Report, error) {
	docs, skips, err := corpus.Load(cfg.DatasetDir)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("loading corpus: %w", err)
	}
	for _, s := range skips {
		log.Printf("skipping %s: %s", s.Path, s.Reason)
	}

	detector := dedup.New()
	current := index.New()
	mapping := docmap.New()
	var partialPaths []string
	nextDocID := 0
	exactDups, nearDups := 0, 0

	spill := func() error {
		if current.Len() == 0 {
			return nil
		}
		path := filepath.Join(cfg.PartialIndexDir, fmt.Sprintf("partial_%d.json", len(partialPaths)))
		if err := partial.Write(current, path); err != nil {
			return fmt.Errorf("writing partial index %s: %w", path, err)
		}
		log.Printf("wrote partial index %s (%d unique tokens)", path, current.Len())
		partialPaths = append(partialPaths, path)
		current = index.New()
		return nil
	}

	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		htmlBytes := []byte(doc.Content)

		body, title, boldHeading := extract.ExtractTiered(htmlBytes)
		normal := tokenize.Tokenize(body)

		verdict, fingerprint := detector.Check(htmlBytes, normal.Counts)
		switch verdict {
		case dedup.ExactDuplicate:
			exactDups++
			log.Printf("skipping exact duplicate %s (content_hash=%s)", doc.URL, dedup.ContentHashHex(htmlBytes))
			continue
		case dedup.NearDuplicate:
			nearDups++
			continue
		}

		detector.RegisterContentHash(htmlBytes)
		docID := nextDocID
		nextDocID++
		detector.AddDoc(fingerprint, docID)
		mapping.Set(docID, doc.URL)

		for token, tf := range normal.Counts {
			current.AddToken(token, docID, tf, index.Normal)
		}
		titleCounts := tokenize.Tokenize(title)
		for token, tf := range titleCounts.Counts {
			current.AddToken(token, docID, tf, index.Title)
		}
		boldCounts := tokenize.Tokenize(boldHeading)
		for token, tf := range boldCounts.Counts {
			current.AddToken(token, docID, tf, index.BoldOrHeading)
		}

		if nextDocID%cfg.BatchSize == 0 {
			if err := spill(); err != nil {
				return analytics.Report{}, err
			}
		}
	}
	if err := spill(); err != nil {
		return analytics.Report{}, err
	}

	log.Printf("merging %d partial index(es) into %s", len(partialPaths), cfg.FinalIndexDir)
	if err := merge.Merge(partialPaths, cfg.FinalIndexDir); err != nil {
		return analytics.Report{}, fmt.Errorf("merging partial indexes: %w", err)
	}

	if err := writeDocMapping(cfg, mapping); err != nil {
		return analytics.Report{}, err
	}

	uniqueTokens, err := countShardTokens(cfg.FinalIndexDir)
	if err != nil {
		return analytics.Report{}, err
	}
	indexSizeBytes, err := analytics.DirSizeBytes(cfg.FinalIndexDir)
	if err != nil {
		return analytics.Report{}, err
	}

	return analytics.Report{
		NumDocs:          mapping.Len(),
		UniqueTokens:     uniqueTokens,
		IndexSizeBytes:   indexSizeBytes,
		ExactDupsRemoved: exactDups,
		NearDupsRemoved:  nearDups,
	}, nil
}

// writeDocMapping persists the doc_id -> URL mapping through whichever
// backend cfg selects: the default flat JSON file, or an optional SQLite
// store for corpora too large to hold comfortably as one JSON object.
func writeDocMapping(cfg buildconfig.Config, mapping *docmap.Map) error {
	if cfg.DocMappingBackend == "sqlite" {
		store, err := sqlitedocstore.Open(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("opening sqlite doc mapping: %w", err)
		}
		defer store.Close()
		urls := make(map[int]string, mapping.Len())
		for docID := 0; docID < mapping.Len(); docID++ {
			if url, ok := mapping.URL(docID); ok {
				urls[docID] = url
			}
		}
		if err := store.WriteAll(urls); err != nil {
			return fmt.Errorf("writing sqlite doc mapping: %w", err)
		}
		return nil
	}

	if err := mapping.Write(cfg.DocMapPath); err != nil {
		return fmt.Errorf("writing doc mapping: %w", err)
	}
	return nil
}

// countShardTokens sums the number of entries (lines) across every shard
// file in finalDir, the analytics report's "unique tokens" figure.
func countShardTokens(finalDir string) (int, error) {
	entries, err := os.ReadDir(finalDir)
	if err != nil {
		return 0, fmt.Errorf("reading final index directory: %w", err)
	}
	total := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		f, err := os.Open(filepath.Join(finalDir, e.Name()))
		if err != nil {
			return 0, fmt.Errorf("opening shard %s: %w", e.Name(), err)
		}
		n, err := countLines(f)
		f.Close()
		if err != nil {
			return 0, fmt.Errorf("counting shard %s: %w", e.Name(), err)
		}
		total += n
	}
	return total, nil
}

func countLines(f *os.File) (int, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	count := 0
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func recordClickHouseRun(ctx context.Context, cfg buildconfig.Config, startedAt time.Time, report analytics.Report) error {
	sink, err := analytics.NewClickHouseSink(ctx, cfg.ClickHouseDSN, "default", "default", "")
	if err != nil {
		return err
	}
	defer sink.Close()
	return sink.RecordRun(ctx, startedAt, report)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
