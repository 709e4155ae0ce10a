package codec

import (
	"encoding/json"
	"errors"

	"github.com/invidx/invidx/internal/index"
	"github.com/invidx/invidx/pkg/xerrors"
)

// JSON is the human-readable text format: a single JSON object mapping
// each term to its posting list. encoding/json emits object keys in sorted
// order, which is exactly the index's canonical term order, so encoding is
// deterministic.
type JSON struct{}

// Encode serialises the index as one JSON object.
func (JSON) Encode(idx *index.Index) ([]byte, error) {
	postings := make(map[string][]index.DocID, idx.Len())
	for term := range idx.Terms() {
		postings[term] = idx.Postings(term)
	}
	return json.Marshal(postings)
}

// Decode parses a JSON object of term to posting list. Input that is not
// such an object, or whose posting lists break the index invariant, fails
// with a DecodeError.
func (JSON) Decode(data []byte) (*index.Index, error) {
	var postings map[string][]index.DocID
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, xerrors.NewDecodeError(NameJSON, xerrors.StageBodyParse, err)
	}
	// A JSON null passes Unmarshal untouched; only an object will do.
	if postings == nil {
		return nil, xerrors.NewDecodeError(NameJSON, xerrors.StageBodyParse,
			errors.New("top-level value is not an object"))
	}
	idx, err := index.FromPostings(postings)
	if err != nil {
		return nil, xerrors.NewDecodeError(NameJSON, xerrors.StageBodyParse, err)
	}
	return idx, nil
}

// Name returns the codec's stable name ("json").
func (JSON) Name() string { return NameJSON }
