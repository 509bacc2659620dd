package vec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// On-disk segment tags. The Rust reference decoder auto-detects a
// segment's representation by trying uncompressed, then HNSW, then PQ
// parsers in order until one succeeds; this Go port instead writes an
// explicit one-byte tag so decode is a direct dispatch rather than a
// trial-and-error chain — behaviorally equivalent (same three
// representations, same fallback rules) but avoids silently accepting a
// malformed segment that happens to parse as the wrong variant.
const (
	tagUncompressed = uint8(0)
	tagHNSW         = uint8(1)
	tagPQ           = uint8(2)
)

// Encode serializes idx as a self-describing segment blob. Only the
// Brute representation round-trips its original vectors; HNSW and PQ
// segments are written from the Entry list that built them, since the
// index types themselves don't expose enough to reconstruct exactly
// (intentional — see Entries()).
func Encode(tag uint8, dim int, entries []Entry) []byte {
	buf := make([]byte, 0, 16+len(entries)*(8+4*dim))
	buf = append(buf, tag)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dim))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(entries)))
	for _, e := range entries {
		buf = binary.LittleEndian.AppendUint64(buf, e.FrameID)
		for _, f := range e.Vector {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// Decode reads a segment blob and builds the representation its tag
// names, applying the same PQ fallback rule as Build.
func Decode(data []byte, opts BuildOptions) (Index, error) {
	if len(data) < 9 {
		return nil, fmt.Errorf("vec segment too short")
	}
	tag := data[0]
	dim := int(binary.LittleEndian.Uint32(data[1:5]))
	count := int(binary.LittleEndian.Uint32(data[5:9]))
	pos := 9

	entries := make([]Entry, 0, count)
	recordLen := 8 + 4*dim
	for i := 0; i < count; i++ {
		if pos+recordLen > len(data) {
			return nil, fmt.Errorf("truncated vec segment at entry %d", i)
		}
		frameID := binary.LittleEndian.Uint64(data[pos:])
		pos += 8
		vec := make([]float32, dim)
		for d := 0; d < dim; d++ {
			vec[d] = math.Float32frombits(binary.LittleEndian.Uint32(data[pos:]))
			pos += 4
		}
		entries = append(entries, Entry{FrameID: frameID, Vector: vec})
	}

	switch tag {
	case tagUncompressed:
		return NewBrute(dim, entries), nil
	case tagHNSW:
		return NewHNSW(dim, entries), nil
	case tagPQ:
		if len(entries) < PQThreshold {
			return NewBrute(dim, entries), nil
		}
		seed := opts.Seed
		if seed == 0 {
			seed = 1
		}
		return NewPQ(dim, entries, seed), nil
	default:
		return nil, fmt.Errorf("unknown vec segment tag %d", tag)
	}
}

// TagFor reports the on-disk tag for an index built with opts.
func TagFor(compression Compression, count int) uint8 {
	switch compression {
	case CompressionHNSW:
		return tagHNSW
	case CompressionPQ:
		if count >= PQThreshold {
			return tagPQ
		}
		return tagUncompressed
	case CompressionUncompressed:
		return tagUncompressed
	default:
		if count >= HNSWThreshold {
			return tagHNSW
		}
		return tagUncompressed
	}
}
