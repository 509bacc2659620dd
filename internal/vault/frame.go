package vault

import "time"

// Status marks whether a frame is currently visible to search.
type Status uint8

const (
	StatusActive Status = iota
	StatusTombstoned
)

// Role distinguishes whole documents, their chunks, and extracted images.
type Role uint8

const (
	RoleDocument Role = iota
	RoleDocumentChunk
	RoleExtractedImage
)

// Encoding is how a frame's payload bytes are stored on disk.
type Encoding uint8

const (
	EncodingPlain Encoding = iota
	EncodingZstd
)

// Frame is the unit of storage. Its payload and metadata are immutable
// after commit; logical updates appear as a new frame with the same URI
// and a later Timestamp.
type Frame struct {
	ID        uint64
	Timestamp time.Time
	Checksum  [32]byte // BLAKE3 of the canonical (decompressed) payload

	URI   string
	Title string
	Track string
	Kind  string
	Mime  string

	Status Status
	Role   Role

	ParentID   uint64 // valid only when HasParent
	HasParent  bool
	ChunkIndex int

	Extra map[string]string

	// Payload coordinates into the capsule's data region.
	Offset         int64
	Length         int64
	Encoding       Encoding
	CanonicalLength int64
}

// PutOptions configures a Put call. Zero value means "no override".
type PutOptions struct {
	URI             string
	Title           string
	Track           string
	Kind            string
	Mime            string
	SearchText      string // overrides the text used for lexical indexing
	Tags            []string
	Labels          []string
	Extra           map[string]string
	EnableEmbedding bool
	ParentID        uint64
	HasParent       bool
	ChunkIndex      int
	Role            Role
	ChunkBudget     int // soft chunking budget in bytes; 0 = package default
	Dedup           bool
	Compress        bool // request zstd encoding for this payload
}

// IsActive reports whether the frame currently participates in search.
func (f *Frame) IsActive() bool { return f.Status == StatusActive }
