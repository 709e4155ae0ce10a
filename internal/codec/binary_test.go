package codec

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invidx/invidx/internal/index"
	"github.com/invidx/invidx/pkg/xerrors"
)

// binStream assembles a binary-format stream from a raw header and payload
// document IDs, used to hand-craft both valid and corrupt inputs.
func binStream(header string, ids ...uint32) []byte {
	out := make([]byte, 4, 4+len(header)+4*len(ids))
	binary.LittleEndian.PutUint32(out, uint32(len(header)))
	out = append(out, header...)
	for _, id := range ids {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], id)
		out = append(out, word[:]...)
	}
	return out
}

func requireStage(t *testing.T, err error, stage xerrors.DecodeStage) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrDecode)
	var decErr *xerrors.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, NameBinary, decErr.Format)
	assert.Equal(t, stage, decErr.Stage)
}

func TestBinaryRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		postings map[string][]index.DocID
	}{
		{"empty index", nil},
		{"single term single doc", map[string][]index.DocID{"topic": {12}}},
		{
			"worked example",
			map[string][]index.DocID{
				"anarchism": {12}, "is": {12}, "often": {12}, "defined": {12},
				"as": {12}, "topic": {12, 25}, "test": {12}, "another": {25},
			},
		},
		{
			"non-ascii and escaped terms",
			map[string][]index.DocID{"тема": {1, 2}, `quo"te`: {3}},
		},
		{
			"boundary document IDs",
			map[string][]index.DocID{"edge": {1, math.MaxUint32}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := mustIndex(t, tt.postings)
			data, err := Binary{}.Encode(idx)
			require.NoError(t, err)

			got, err := Binary{}.Decode(data)
			require.NoError(t, err)
			assert.True(t, got.Equal(idx))
		})
	}
}

func TestBinaryEncodeLayout(t *testing.T) {
	idx := mustIndex(t, map[string][]index.DocID{
		"a": {2, 3},
		"b": {1},
	})
	data, err := Binary{}.Encode(idx)
	require.NoError(t, err)

	want := binStream(`{"a":2,"b":1}`, 2, 3, 1)
	assert.Equal(t, want, data)
}

func TestBinaryEncodeStable(t *testing.T) {
	idx := mustIndex(t, map[string][]index.DocID{
		"zebra": {9}, "apple": {1, 4}, "mango": {2},
	})
	first, err := Binary{}.Encode(idx)
	require.NoError(t, err)
	second, err := Binary{}.Encode(idx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// encode(decode(encode(idx))) == encode(idx)
	decoded, err := Binary{}.Decode(first)
	require.NoError(t, err)
	again, err := Binary{}.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestBinaryEncodeRejectsOversizedDocID(t *testing.T) {
	idx := mustIndex(t, map[string][]index.DocID{
		"huge": {index.DocID(math.MaxUint32) + 1},
	})
	_, err := Binary{}.Encode(idx)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrEncodingViolation)
}

func TestBinaryDecodeHonorsHeaderOrder(t *testing.T) {
	// Header order deliberately disagrees with sorted term order; the
	// payload must be consumed in header order, not sorted order.
	data := binStream(`{"zebra":1,"apple":2}`, 5, 7, 9)
	idx, err := Binary{}.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, []index.DocID{5}, idx.Postings("zebra"))
	assert.Equal(t, []index.DocID{7, 9}, idx.Postings("apple"))
}

func TestBinaryDecodeEmptyIndex(t *testing.T) {
	idx, err := Binary{}.Decode(binStream(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestBinaryDecodeTruncatedStream(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0x01}, {0x01, 0x00}, {0x01, 0x00, 0x00}} {
		_, err := Binary{}.Decode(data)
		requireStage(t, err, xerrors.StageHeaderLength)
	}
}

func TestBinaryDecodeHeaderLengthPastEOF(t *testing.T) {
	// Declares a 100-byte header but only 2 bytes follow.
	data := make([]byte, 6)
	binary.LittleEndian.PutUint32(data, 100)
	_, err := Binary{}.Decode(data)
	requireStage(t, err, xerrors.StageHeaderLength)
}

func TestBinaryDecodeHugeHeaderLength(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data, math.MaxUint32)
	_, err := Binary{}.Decode(data)
	requireStage(t, err, xerrors.StageHeaderLength)
}

func TestBinaryDecodeMalformedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"not JSON", "not json"},
		{"truncated object", `{"a":`},
		{"array instead of object", `[1,2]`},
		{"scalar instead of object", `42`},
		{"count is a string", `{"a":"1"}`},
		{"count is a float", `{"a":1.5}`},
		{"count is an array", `{"a":[1]}`},
		{"count is zero", `{"a":0}`},
		{"count is negative", `{"a":-1}`},
		{"count beyond format limit", `{"a":9999999999}`},
		{"duplicate term", `{"a":1,"a":1}`},
		{"trailing bytes after object", `{"a":1} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Binary{}.Decode(binStream(tt.header, 1))
			requireStage(t, err, xerrors.StageHeaderParse)
		})
	}
}

func TestBinaryDecodePayloadLengthMismatch(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"payload shorter than counts", binStream(`{"a":2}`, 1)},
		{"payload longer than counts", binStream(`{"a":1}`, 1, 2)},
		{"payload after empty header", binStream(`{}`, 1)},
		{"payload not a multiple of the ID width", append(binStream(`{"a":1}`, 1), 0xFF)},
		{"declared count with no payload", binStream(`{"a":3}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Binary{}.Decode(tt.data)
			requireStage(t, err, xerrors.StagePayloadLength)
		})
	}
}

func TestBinaryDecodeInvalidPostings(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"descending posting list", binStream(`{"a":2}`, 5, 3)},
		{"duplicate posting", binStream(`{"a":2}`, 3, 3)},
		{"zero document ID", binStream(`{"a":1}`, 0)},
		{"empty term", binStream(`{"":1}`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Binary{}.Decode(tt.data)
			requireStage(t, err, xerrors.StagePayloadParse)
		})
	}
}

func TestBinaryJSONCrossFormatEquality(t *testing.T) {
	idx := mustIndex(t, map[string][]index.DocID{
		"topic": {12, 25}, "test": {12},
	})
	binData, err := Binary{}.Encode(idx)
	require.NoError(t, err)
	jsonData, err := JSON{}.Encode(idx)
	require.NoError(t, err)

	fromBin, err := Binary{}.Decode(binData)
	require.NoError(t, err)
	fromJSON, err := JSON{}.Decode(jsonData)
	require.NoError(t, err)
	assert.True(t, fromBin.Equal(fromJSON))
}

func BenchmarkBinaryEncode(b *testing.B) {
	postings := make(map[string][]index.DocID, 1000)
	for i := 0; i < 1000; i++ {
		term := "term" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + string(rune('a'+(i/676)%26))
		postings[term] = []index.DocID{index.DocID(i + 1), index.DocID(i + 1000), index.DocID(i + 100000)}
	}
	idx, err := index.FromPostings(postings)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := (Binary{}).Encode(idx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBinaryDecode(b *testing.B) {
	postings := make(map[string][]index.DocID, 1000)
	for i := 0; i < 1000; i++ {
		term := "term" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + string(rune('a'+(i/676)%26))
		postings[term] = []index.DocID{index.DocID(i + 1), index.DocID(i + 1000), index.DocID(i + 100000)}
	}
	idx, err := index.FromPostings(postings)
	if err != nil {
		b.Fatal(err)
	}
	data, err := Binary{}.Encode(idx)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := (Binary{}).Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}
