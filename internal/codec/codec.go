// Package codec implements the persisted index formats.
//
// Codec selection is a compatibility boundary: files do not record which
// codec wrote them, so callers must load an index with the codec that
// dumped it. Both codecs obey the round-trip law
// Decode(Encode(idx)).Equal(idx).
package codec

import "github.com/invidx/invidx/internal/index"

// Codec encodes an index to bytes and back.
type Codec interface {
	Encode(idx *index.Index) ([]byte, error)
	Decode(data []byte) (*index.Index, error)
	Name() string
}

// Codec names accepted by ByName and by the CLI's --strategy flag.
const (
	NameJSON   = "json"
	NameBinary = "binary"
)

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case NameJSON:
		return JSON{}, true
	case NameBinary:
		return Binary{}, true
	default:
		return nil, false
	}
}
