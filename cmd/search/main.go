// Package main is the query CLI: tokenizes its single positional argument
// as one multi-term boolean query (the programmatic-search semantics
// spec.md §9's Open Questions adopts, not the CLI's per-whitespace-token
// loop) and prints one ranked result per line.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/corpusdex/indexer/internal/buildconfig"
	"github.com/corpusdex/indexer/internal/query"
)

func main() {
	mode := flag.String("mode", "AND", "boolean combine mode: AND or OR")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: search [-mode AND|OR] \"query string\"")
		os.Exit(2)
	}

	cfg, err := buildconfig.Load(envOrDefault("CDX_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var qmode query.Mode
	switch *mode {
	case "AND":
		qmode = query.AND
	case "OR":
		qmode = query.OR
	default:
		log.Fatalf("unknown -mode %q, want AND or OR", *mode)
	}

	results, err := query.Run(args[0], qmode, cfg.FinalIndexDir, cfg.DocMapPath, cfg.DocMappingBackend, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}

	for i, r := range results {
		fmt.Printf("%d. URL: %s, Score: %.1f\n", i+1, r.URL, r.Score)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
