// Package index implements the in-memory inverted index: an ordered map
// from term to the sorted, duplicate-free list of documents containing it.
// An Index is immutable once built; queries and codecs only read it.
package index

import (
	"fmt"
	"iter"
	"slices"

	"github.com/invidx/invidx/internal/tokenizer"
)

// DocID identifies a document in the collection. Valid IDs are positive.
type DocID uint64

// Index maps each term to its posting list. Terms are held in ascending
// lexicographic order, which is the canonical order every consumer
// (queries, codecs, equality) observes.
type Index struct {
	terms    []string
	postings map[string][]DocID
}

// Build constructs an Index from a document collection. Documents are
// visited in ascending ID order so the same collection always produces the
// same index; a term repeated within one document contributes a single
// posting.
func Build(docs map[DocID]string) *Index {
	ids := make([]DocID, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	postings := make(map[string][]DocID)
	for _, id := range ids {
		seen := make(map[string]struct{})
		for term := range tokenizer.Tokenize(docs[id]) {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			postings[term] = append(postings[term], id)
		}
	}
	return newIndex(postings)
}

// FromPostings constructs an Index from raw posting lists, validating the
// index invariant: every list non-empty, strictly ascending, and free of
// zero IDs. The lists are copied; the caller keeps ownership of its map.
func FromPostings(postings map[string][]DocID) (*Index, error) {
	copied := make(map[string][]DocID, len(postings))
	for term, ids := range postings {
		if term == "" {
			return nil, fmt.Errorf("empty term")
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("term %q has an empty posting list", term)
		}
		for i, id := range ids {
			if id == 0 {
				return nil, fmt.Errorf("term %q has a non-positive document ID", term)
			}
			if i > 0 && ids[i-1] >= id {
				return nil, fmt.Errorf("posting list for term %q is not strictly ascending", term)
			}
		}
		copied[term] = slices.Clone(ids)
	}
	return newIndex(copied), nil
}

func newIndex(postings map[string][]DocID) *Index {
	terms := make([]string, 0, len(postings))
	for term := range postings {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return &Index{terms: terms, postings: postings}
}

// Len returns the number of distinct terms in the index.
func (x *Index) Len() int {
	return len(x.terms)
}

// Terms iterates the terms in canonical (ascending lexicographic) order.
func (x *Index) Terms() iter.Seq[string] {
	return slices.Values(x.terms)
}

// Postings returns a copy of the posting list for term, or nil when the
// term is absent. The copy never shares backing storage with the index.
func (x *Index) Postings(term string) []DocID {
	ids, ok := x.postings[term]
	if !ok {
		return nil
	}
	return slices.Clone(ids)
}

// Query answers a conjunctive (AND) query. Every term is normalised the
// same way Build normalises document text; a term absent from the index
// makes the whole conjunction unsatisfiable. The empty query is defined as
// unsatisfiable too, not as match-everything. Results are ascending,
// duplicate-free, and independent of the index's own storage.
func (x *Index) Query(terms []string) []DocID {
	if len(terms) == 0 {
		return nil
	}
	lists := make([][]DocID, 0, len(terms))
	for _, term := range terms {
		ids, ok := x.postings[tokenizer.Normalize(term)]
		if !ok {
			return nil
		}
		lists = append(lists, ids)
	}
	// Intersecting the shortest list first keeps the candidate set small.
	slices.SortFunc(lists, func(a, b []DocID) int {
		return len(a) - len(b)
	})
	result := slices.Clone(lists[0])
	for _, ids := range lists[1:] {
		result = intersect(result, ids)
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

// intersect merges two ascending lists into a fresh ascending list of the
// IDs present in both.
func intersect(a, b []DocID) []DocID {
	out := make([]DocID, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Equal reports structural equality: the same term set and, per term, the
// same posting sequence.
func (x *Index) Equal(other *Index) bool {
	if other == nil || !slices.Equal(x.terms, other.terms) {
		return false
	}
	for _, term := range x.terms {
		if !slices.Equal(x.postings[term], other.postings[term]) {
			return false
		}
	}
	return true
}
