package index

import "sort"

// Index is the logical mapping token -> Entry. The builder owns one Index
// exclusively for the duration of a single build (see spec's concurrency
// model), so no locking is carried here — compare
// internal/storage/memory/store.go in the teacher, which does need a mutex
// because it serves concurrent API readers/writers.
type Index struct {
	byToken map[string]*Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{byToken: make(map[string]*Entry)}
}

// AddToken records one occurrence group of token in docID: tf occurrences,
// the highest importance tier among them. Silently rejects tf <= 0.
//
// Doc-ids are assigned strictly increasingly during a single build and a
// document is fully indexed before the next doc-id is allocated (spec.md
// §9), so within one build a token's postings are appended in increasing
// doc_id order; AddToken exploits that with an append-only fast path and
// only falls back to an ordered insert if that invariant is ever violated
// (e.g. a caller re-indexing a doc_id out of order).
func (idx *Index) AddToken(token string, docID, tf int, importance Importance) {
	if tf <= 0 {
		return
	}
	e, ok := idx.byToken[token]
	if !ok {
		e = &Entry{Token: token}
		idx.byToken[token] = e
	}
	n := len(e.Postings)
	if n > 0 && e.Postings[n-1].DocID == docID {
		e.Postings[n-1].TF += tf
		e.Postings[n-1].Importance = Max(e.Postings[n-1].Importance, importance)
		return
	}
	if n == 0 || e.Postings[n-1].DocID < docID {
		e.Postings = append(e.Postings, Posting{DocID: docID, TF: tf, Importance: importance})
		return
	}
	e.addOrUpdatePosting(docID, tf, importance)
}

// GetEntry returns the entry for token, or nil if the token has never been
// added.
func (idx *Index) GetEntry(token string) *Entry {
	return idx.byToken[token]
}

// Len reports the number of distinct tokens currently indexed.
func (idx *Index) Len() int {
	return len(idx.byToken)
}

// Merge folds other into idx: entries absent here are adopted wholesale,
// entries present in both are merged posting-by-posting. Merge(A, empty)
// leaves A unchanged; Merge(A, B) and Merge(B, A) agree on the resulting
// (tf-sum, max-importance) per (token, doc_id), though the physical order
// entries were adopted in may differ until SortedEntries is called.
func (idx *Index) Merge(other *Index) {
	for token, oe := range other.byToken {
		if e, ok := idx.byToken[token]; ok {
			e.Merge(oe)
		} else {
			cp := &Entry{Token: oe.Token, Postings: append([]Posting(nil), oe.Postings...)}
			idx.byToken[token] = cp
		}
	}
}

// SortedEntries returns every entry in token-ascending order, the form
// required when spilling a partial index or writing a final shard (spec.md
// §4.E, §4.F).
func (idx *Index) SortedEntries() []*Entry {
	entries := make([]*Entry, 0, len(idx.byToken))
	for _, e := range idx.byToken {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Token < entries[j].Token })
	return entries
}
