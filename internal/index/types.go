// Package index implements the in-memory inverted index: token -> posting
// list, insertion and merge.
package index

import "fmt"

// Importance is a totally ordered tier describing how prominently a term
// appeared in a document. Comparison uses the numeric order; merges take
// the maximum.
type Importance uint8

const (
	Normal Importance = iota
	BoldOrHeading
	Title
)

// String renders the importance tier for logging and JSON debugging.
func (imp Importance) String() string {
	switch imp {
	case Normal:
		return "normal"
	case BoldOrHeading:
		return "bold_or_heading"
	case Title:
		return "title"
	default:
		return fmt.Sprintf("importance(%d)", uint8(imp))
	}
}

// Max returns the higher of two importance tiers.
func Max(a, b Importance) Importance {
	if b > a {
		return b
	}
	return a
}

// Posting records that a token occurs in a specific document, with term
// frequency and the highest importance tier of its occurrences.
type Posting struct {
	DocID      int        `json:"doc_id"`
	TF         int        `json:"tf"`
	Importance Importance `json:"importance"`
}

// Entry is the ordered posting list for a single stemmed token.
type Entry struct {
	Token    string    `json:"token"`
	Postings []Posting `json:"postings"`
}

// DF returns the document frequency: the number of distinct doc_ids with a
// posting in this entry. Invariant: postings carry unique, increasing
// doc_ids, so this is simply len(Postings).
func (e *Entry) DF() int {
	return len(e.Postings)
}

// addOrUpdatePosting inserts tf/importance for docID, preserving the
// strictly-increasing-doc_id invariant on Postings. If a posting for docID
// already exists, tf accumulates and importance takes the max; otherwise a
// new posting is inserted in doc_id order.
func (e *Entry) addOrUpdatePosting(docID, tf int, importance Importance) {
	n := len(e.Postings)
	i := 0
	for i < n && e.Postings[i].DocID < docID {
		i++
	}
	if i < n && e.Postings[i].DocID == docID {
		e.Postings[i].TF += tf
		e.Postings[i].Importance = Max(e.Postings[i].Importance, importance)
		return
	}
	e.Postings = append(e.Postings, Posting{})
	copy(e.Postings[i+1:], e.Postings[i:])
	e.Postings[i] = Posting{DocID: docID, TF: tf, Importance: importance}
}

// Merge folds other's postings into e, preserving doc_id order and
// maximizing importance/summing tf per shared doc_id. Merging with an
// empty entry is a no-op.
func (e *Entry) Merge(other *Entry) {
	for _, p := range other.Postings {
		e.addOrUpdatePosting(p.DocID, p.TF, p.Importance)
	}
}
