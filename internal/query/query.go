// Package query implements boolean retrieval over the sharded final index:
// tokenize the query, fetch only the shards it touches, intersect or union
// posting doc_ids, rank by term frequency plus an importance bonus, and
// resolve doc_ids back to URLs.
package query

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/corpusdex/indexer/internal/docmap"
	sqlitedocstore "github.com/corpusdex/indexer/internal/docstore/sqlite"
	"github.com/corpusdex/indexer/internal/index"
	"github.com/corpusdex/indexer/internal/tokenize"
)

// Mode selects how per-token posting sets combine.
type Mode int

const (
	AND Mode = iota
	OR
)

// Result is one ranked match.
type Result struct {
	DocID int
	URL   string
	Score float64
}

// shardEntry mirrors the on-disk shape merge.finalShardEntry writes;
// duplicated here rather than imported, since query only ever reads shards
// the merger already finalized and owes no write-side invariants to them.
type shardEntry struct {
	Token    string          `json:"token"`
	Postings []index.Posting `json:"postings"`
	DF       int             `json:"df"`
}

// fetchShardEntry scans <finalDir>/<token[0]>.jsonl for token, stopping
// early once a token greater than the target is seen (shards are
// token-ascending). A missing shard file is treated as an empty entry, not
// an error.
func fetchShardEntry(finalDir, token string) (*shardEntry, error) {
	letter := "_"
	if token != "" {
		letter = string(token[0])
	}
	path := filepath.Join(finalDir, letter+".jsonl")

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening shard %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var e shardEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("corrupt shard %s: %w", path, err)
		}
		if e.Token == token {
			return &e, nil
		}
		if e.Token > token {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading shard %s: %w", path, err)
	}
	return nil, nil
}

// docResolver resolves a doc_id to its URL, abstracting over the two
// doc-mapping backends internal/buildconfig can select: the default flat
// JSON file and the optional SQLite store. docstore/sqlite.Store already
// exposes exactly this method, so it satisfies this interface directly.
type docResolver interface {
	URL(docID int) (string, bool, error)
}

// jsonResolver adapts docmap.Map, whose URL lookup cannot fail once loaded,
// to docResolver's fallible shape.
type jsonResolver struct {
	m *docmap.Map
}

func (r jsonResolver) URL(docID int) (string, bool, error) {
	url, ok := r.m.URL(docID)
	return url, ok, nil
}

// openResolver opens whichever doc-mapping backend docMappingBackend names:
// "sqlite" opens the SQLite store at sqlitePath, anything else (including
// "" and "none") reads the flat JSON file at docMapPath. The returned close
// func must be called once the resolver is no longer needed.
func openResolver(docMapPath, docMappingBackend, sqlitePath string) (docResolver, func() error, error) {
	if docMappingBackend == "sqlite" {
		store, err := sqlitedocstore.Open(sqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite doc mapping: %w", err)
		}
		return store, store.Close, nil
	}

	mapping, err := docmap.Read(docMapPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading doc mapping: %w", err)
	}
	return jsonResolver{mapping}, func() error { return nil }, nil
}

// Run executes one boolean query against the final index at finalDir,
// resolving doc_ids through whichever doc-mapping backend docMappingBackend
// selects (the flat JSON file at docMapPath, or the SQLite store at
// sqlitePath).
func Run(query string, mode Mode, finalDir, docMapPath, docMappingBackend, sqlitePath string) ([]Result, error) {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	entries := make([]*shardEntry, len(tokens))
	for i, tok := range tokens {
		e, err := fetchShardEntry(finalDir, tok)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}

	docIDs, err := mergeDocIDs(entries, mode)
	if err != nil {
		return nil, err
	}
	if len(docIDs) == 0 {
		return nil, nil
	}

	scores := score(entries, docIDs)

	resolver, closeResolver, err := openResolver(docMapPath, docMappingBackend, sqlitePath)
	if err != nil {
		return nil, err
	}
	defer closeResolver()

	results := make([]Result, 0, len(docIDs))
	for _, docID := range docIDs {
		url, ok, err := resolver.URL(docID)
		if err != nil {
			return nil, fmt.Errorf("resolving doc_id %d: %w", docID, err)
		}
		if !ok {
			return nil, fmt.Errorf("doc_id %d present in index but missing from doc mapping", docID)
		}
		results = append(results, Result{DocID: docID, URL: url, Score: scores[docID]})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results, nil
}

// queryTokens tokenizes the raw query with the indexing tokenizer and
// returns the sorted, deduplicated set of resulting tokens.
func queryTokens(query string) []string {
	res := tokenize.Tokenize(query)
	tokens := make([]string, 0, len(res.Counts))
	for tok := range res.Counts {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// mergeDocIDs combines the candidate doc_id sets per the query mode. AND
// returns empty immediately if any token has no entry; OR skips absent
// tokens entirely.
func mergeDocIDs(entries []*shardEntry, mode Mode) ([]int, error) {
	if mode == AND {
		for _, e := range entries {
			if e == nil {
				return nil, nil
			}
		}
	}

	counts := make(map[int]int)
	contributing := 0
	for _, e := range entries {
		if e == nil {
			continue
		}
		contributing++
		for _, p := range e.Postings {
			counts[p.DocID]++
		}
	}
	if contributing == 0 {
		return nil, nil
	}

	docIDs := make([]int, 0, len(counts))
	for docID, n := range counts {
		if mode == AND && n != len(entries) {
			continue
		}
		docIDs = append(docIDs, docID)
	}
	sort.Ints(docIDs)
	return docIDs, nil
}

// score computes score(doc_id) = sum over query tokens of tf + 0.5*importance
// for postings belonging to that doc_id; absent tokens contribute zero.
func score(entries []*shardEntry, docIDs []int) map[int]float64 {
	scores := make(map[int]float64, len(docIDs))
	for _, docID := range docIDs {
		scores[docID] = 0
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		for _, p := range e.Postings {
			if _, wanted := scores[p.DocID]; !wanted {
				continue
			}
			scores[p.DocID] += float64(p.TF) + 0.5*float64(p.Importance)
		}
	}
	return scores
}
