package vault

// SegmentKind names what a sealed segment blob holds.
type SegmentKind uint8

const (
	SegmentLex SegmentKind = iota
	SegmentVec
	SegmentTime
)

// CompressionMode mirrors the adaptive manifest's compression discriminator
// from the Rust reference (types/manifest.rs) — kept explicit as its own
// byte tag rather than folded into Frame.Encoding, since segments compress
// as a whole blob, not per-payload.
type CompressionMode uint8

const (
	CompressionNone CompressionMode = iota
	CompressionZstd
)

// Segment is one entry in the TOC's append-only segment catalog: a sealed,
// checksummed blob of lexical, vector, or temporal index data.
type Segment struct {
	ID          string
	Kind        SegmentKind
	Offset      int64
	Length      int64
	Checksum    [32]byte
	VectorCount int
	Dimension   int
	Compression CompressionMode
}

func (e *encoder) segment(s Segment) {
	e.str(s.ID)
	e.u8(uint8(s.Kind))
	e.i64(s.Offset)
	e.i64(s.Length)
	e.bytes(s.Checksum)
	e.u32(uint32(s.VectorCount))
	e.u32(uint32(s.Dimension))
	e.u8(uint8(s.Compression))
}

func (d *decoder) segment() (Segment, error) {
	var s Segment
	var err error
	if s.ID, err = d.str(); err != nil {
		return s, err
	}
	kind, err := d.u8()
	if err != nil {
		return s, err
	}
	s.Kind = SegmentKind(kind)
	if s.Offset, err = d.i64(); err != nil {
		return s, err
	}
	if s.Length, err = d.i64(); err != nil {
		return s, err
	}
	if s.Checksum, err = d.bytes32(); err != nil {
		return s, err
	}
	vc, err := d.u32()
	if err != nil {
		return s, err
	}
	s.VectorCount = int(vc)
	dim, err := d.u32()
	if err != nil {
		return s, err
	}
	s.Dimension = int(dim)
	comp, err := d.u8()
	if err != nil {
		return s, err
	}
	s.Compression = CompressionMode(comp)
	return s, nil
}
