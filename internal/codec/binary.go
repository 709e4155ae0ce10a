package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/invidx/invidx/internal/index"
	"github.com/invidx/invidx/pkg/xerrors"
)

// Binary is the compact self-describing format. Layout, all integers
// little-endian:
//
//	[0:4)    uint32 header length H
//	[4:4+H)  metadata header: a JSON object {term: count, ...} holding the
//	         posting-list sizes, not the IDs
//	[4+H:)   payload: every posting list concatenated in header key order,
//	         each document ID a fixed 4-byte word
//
// The header's key order is the payload order contract. The encoder emits
// keys in the index's canonical term order and the decoder reads them back
// in stream order with a token-level JSON decoder; the order never passes
// through an unordered Go map. The payload carries no markers of its own,
// so decoding stands or falls on exact byte accounting: the remaining
// stream must hold precisely sum(counts) 4-byte words.
type Binary struct{}

const (
	headerLenWidth = 4
	docIDWidth     = 4
)

// MaxDocID is the largest document ID the 4-byte payload word can hold.
// Wider IDs fail encoding; they are never truncated.
const MaxDocID = index.DocID(math.MaxUint32)

// maxCount caps a single declared posting count. Anything larger cannot
// describe a real payload and only risks arithmetic overflow downstream.
const maxCount = math.MaxInt32

// Encode serialises the index into the header+payload layout.
func (Binary) Encode(idx *index.Index) ([]byte, error) {
	var header, payload bytes.Buffer
	header.WriteByte('{')
	first := true
	for term := range idx.Terms() {
		ids := idx.Postings(term)
		for _, id := range ids {
			if id > MaxDocID {
				return nil, fmt.Errorf("%w: document ID %d under term %q exceeds the %d-byte ID width",
					xerrors.ErrEncodingViolation, id, term, docIDWidth)
			}
			var word [docIDWidth]byte
			binary.LittleEndian.PutUint32(word[:], uint32(id))
			payload.Write(word[:])
		}
		if !first {
			header.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(term)
		if err != nil {
			return nil, fmt.Errorf("encoding header key %q: %w", term, err)
		}
		header.Write(key)
		header.WriteByte(':')
		header.Write(strconv.AppendInt(nil, int64(len(ids)), 10))
	}
	header.WriteByte('}')

	if uint64(header.Len()) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: metadata header of %d bytes exceeds the 4-byte length field",
			xerrors.ErrEncodingViolation, header.Len())
	}
	out := make([]byte, headerLenWidth, headerLenWidth+header.Len()+payload.Len())
	binary.LittleEndian.PutUint32(out, uint32(header.Len()))
	out = append(out, header.Bytes()...)
	out = append(out, payload.Bytes()...)
	return out, nil
}

// Decode reconstructs an index from the header+payload layout. Every
// failure is a *xerrors.DecodeError naming the stage that rejected the
// stream: header-length (stream too short for the declared lengths),
// header-parse (malformed count object), payload-length (byte count
// disagrees with the declared counts), or payload-parse (decoded posting
// lists break the index invariant).
func (Binary) Decode(data []byte) (*index.Index, error) {
	if len(data) < headerLenWidth {
		return nil, decodeErr(xerrors.StageHeaderLength,
			fmt.Errorf("stream holds %d bytes, need %d for the header length field", len(data), headerLenWidth))
	}
	headerLen := binary.LittleEndian.Uint32(data[:headerLenWidth])
	if uint64(headerLen) > uint64(len(data)-headerLenWidth) {
		return nil, decodeErr(xerrors.StageHeaderLength,
			fmt.Errorf("declared header length %d exceeds the %d bytes remaining", headerLen, len(data)-headerLenWidth))
	}

	entries, err := parseCountHeader(data[headerLenWidth : headerLenWidth+int(headerLen)])
	if err != nil {
		return nil, decodeErr(xerrors.StageHeaderParse, err)
	}

	payload := data[headerLenWidth+int(headerLen):]
	var total uint64
	for _, e := range entries {
		total += uint64(e.count)
	}
	if uint64(len(payload)) != total*docIDWidth {
		return nil, decodeErr(xerrors.StagePayloadLength,
			fmt.Errorf("header declares %d document IDs (%d payload bytes), stream holds %d",
				total, total*docIDWidth, len(payload)))
	}

	postings := make(map[string][]index.DocID, len(entries))
	offset := 0
	for _, e := range entries {
		ids := make([]index.DocID, e.count)
		for i := range ids {
			ids[i] = index.DocID(binary.LittleEndian.Uint32(payload[offset:]))
			offset += docIDWidth
		}
		postings[e.term] = ids
	}
	idx, err := index.FromPostings(postings)
	if err != nil {
		return nil, decodeErr(xerrors.StagePayloadParse, err)
	}
	return idx, nil
}

// Name returns the codec's stable name ("binary").
func (Binary) Name() string { return NameBinary }

func decodeErr(stage xerrors.DecodeStage, err error) *xerrors.DecodeError {
	return xerrors.NewDecodeError(NameBinary, stage, err)
}

// countEntry is one (term, posting count) pair in header order.
type countEntry struct {
	term  string
	count int
}

// parseCountHeader reads the metadata header token by token so the key
// order survives. It accepts exactly one JSON object whose values are
// positive integers and rejects duplicates, non-integers, and trailing
// bytes after the closing brace.
func parseCountHeader(data []byte) ([]countEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading header object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("header is %v, not a JSON object", tok)
	}

	entries := make([]countEntry, 0, 16)
	seen := make(map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading header key: %w", err)
		}
		term, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("header key %v is not a string", keyTok)
		}
		if _, dup := seen[term]; dup {
			return nil, fmt.Errorf("term %q declared twice in header", term)
		}
		seen[term] = struct{}{}

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading count for term %q: %w", term, err)
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return nil, fmt.Errorf("count for term %q is %v, not a number", term, valTok)
		}
		count, err := strconv.ParseInt(num.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("count for term %q is not an integer: %w", term, err)
		}
		if count <= 0 {
			return nil, fmt.Errorf("count %d for term %q is not positive", count, term)
		}
		if count > maxCount {
			return nil, fmt.Errorf("count %d for term %q exceeds the format limit", count, term)
		}
		entries = append(entries, countEntry{term: term, count: int(count)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading header object end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing bytes after header object")
	}
	return entries, nil
}
