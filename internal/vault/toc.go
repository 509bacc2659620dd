package vault

import (
	"lukechampine.com/blake3"
)

const tocMagic = "AVTOC1\x00\x00"

// Toc is the table-of-contents footer: every frame's metadata, the
// segment catalog, the memory track, and a Merkle-style root over frame
// checksums. A writer commits by serializing a new Toc, fsyncing the
// data region, then atomically swapping the header to point at it.
type Toc struct {
	Frames  []Frame
	Segments []Segment
	Memory  []MemoryEntry
	Root    [32]byte
}

// NextFrameID returns the id the next Put call should assign: frame ids
// are dense, zero-based, and assigned in commit order.
func (t *Toc) NextFrameID() uint64 {
	return uint64(len(t.Frames))
}

// ComputeRoot folds every frame checksum into a single BLAKE3 digest, in
// frame-id order, giving a tamper-evident summary of the whole capsule
// without needing a full Merkle tree for this scale of file.
func (t *Toc) ComputeRoot() [32]byte {
	h := blake3.New(32, nil)
	for _, f := range t.Frames {
		h.Write(f.Checksum[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Encode serializes the TOC with fixed-width little-endian fields and a
// leading magic, so decodeToc can reject anything that isn't ours before
// parsing any field (the size cap is checked first, in newDecoder).
func (t *Toc) Encode() []byte {
	e := newEncoder()
	e.buf = append(e.buf, tocMagic...)
	e.u32(uint32(len(t.Frames)))
	for _, f := range t.Frames {
		e.frame(f)
	}
	e.u32(uint32(len(t.Segments)))
	for _, s := range t.Segments {
		e.segment(s)
	}
	e.u32(uint32(len(t.Memory)))
	for _, m := range t.Memory {
		e.memoryEntry(m)
	}
	e.bytes(t.Root)
	return e.buf
}

func decodeToc(data []byte) (*Toc, error) {
	d, err := newDecoder(data)
	if err != nil {
		return nil, err
	}
	if len(d.buf) < len(tocMagic) || string(d.buf[:len(tocMagic)]) != tocMagic {
		return nil, errInvalidTocMagic
	}
	d.pos = len(tocMagic)

	t := &Toc{}
	nFrames, err := d.u32()
	if err != nil {
		return nil, err
	}
	t.Frames = make([]Frame, 0, nFrames)
	for i := uint32(0); i < nFrames; i++ {
		f, err := d.frame()
		if err != nil {
			return nil, err
		}
		t.Frames = append(t.Frames, f)
	}

	nSegs, err := d.u32()
	if err != nil {
		return nil, err
	}
	t.Segments = make([]Segment, 0, nSegs)
	for i := uint32(0); i < nSegs; i++ {
		s, err := d.segment()
		if err != nil {
			return nil, err
		}
		t.Segments = append(t.Segments, s)
	}

	nMem, err := d.u32()
	if err != nil {
		return nil, err
	}
	t.Memory = make([]MemoryEntry, 0, nMem)
	for i := uint32(0); i < nMem; i++ {
		m, err := d.memoryEntry()
		if err != nil {
			return nil, err
		}
		t.Memory = append(t.Memory, m)
	}

	if t.Root, err = d.bytes32(); err != nil {
		return nil, err
	}
	return t, nil
}

var errInvalidTocMagic = tocMagicErr{}

type tocMagicErr struct{}

func (tocMagicErr) Error() string { return "toc: bad magic" }
