// Package vault owns the single-file append-only capsule layout: a
// fixed header, a write-ahead region, a growing data region of frame
// payloads and sealed index segments, and a serialized table-of-contents
// footer. It is the only package that opens the capsule file directly;
// everything else reads frames and segments through it.
package vault

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"

	"github.com/aethervault/aether-core/internal/verrors"
)

// DefaultHardCapBytes is the default byte cap enforced on every write
// path, overridable via VAULT_HARD_CAP_BYTES.
const DefaultHardCapBytes int64 = 500_000_000

// Vault is a handle to one capsule file. Handles are cheap and scoped to
// a single operation: a read-only handle holds a shared lock from Open
// until Close; a writable handle
// takes an exclusive lock only for the commit critical section. Callers
// must not cache a Vault across tool invocations.
type Vault struct {
	path     string
	writable bool
	hardCap  int64
	logger   *slog.Logger

	f    *os.File
	lock *flock.Flock

	toc *Toc
	hdr *header

	stagedBlobs    [][]byte
	stagedFrameIdx []int
}

// Options configures Open.
type Options struct {
	Writable bool
	HardCap  int64 // 0 = DefaultHardCapBytes
	Logger   *slog.Logger
}

// Open opens (or, if writable and absent, creates) the capsule at path.
// A read-only open takes a shared lock for the duration of the returned
// Vault's lifetime up to the caller's Close; callers are expected to
// Close promptly rather than hold the handle across unrelated work.
func Open(path string, opts Options) (*Vault, error) {
	if opts.HardCap == 0 {
		opts.HardCap = DefaultHardCapBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	v := &Vault{
		path:     path,
		writable: opts.Writable,
		hardCap:  opts.HardCap,
		logger:   opts.Logger,
	}

	flags := os.O_RDONLY
	if opts.Writable {
		flags = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open capsule %s: %w", path, err)
	}
	v.f = f

	v.lock = flock.New(path + ".lock")
	if opts.Writable {
		// Exclusive lock is only held across the commit critical
		// section (see Commit), not for the whole handle lifetime.
	} else {
		locked, err := v.lock.TryRLock()
		if err != nil || !locked {
			f.Close()
			return nil, fmt.Errorf("acquire shared lock on %s: %w", path, err)
		}
	}

	info, err := f.Stat()
	if err != nil {
		v.closeLocks()
		f.Close()
		return nil, err
	}

	if info.Size() == 0 {
		if !opts.Writable {
			v.closeLocks()
			f.Close()
			return nil, fmt.Errorf("capsule %s does not exist", path)
		}
		v.toc = &Toc{}
		v.hdr = newHeader()
		return v, nil
	}

	hdr, toc, err := readCommitted(f)
	if err != nil {
		v.closeLocks()
		f.Close()
		return nil, err
	}
	v.hdr = hdr
	v.toc = toc
	return v, nil
}

func readCommitted(f *os.File) (*header, *Toc, error) {
	hdrBuf := make([]byte, headerSize)
	if _, err := f.ReadAt(hdrBuf, 0); err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	hdr, err := decodeHeader(hdrBuf)
	if err != nil {
		return nil, nil, verrors.Wrap(verrors.KindInvalidToc, "bad header", err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	tocLen := info.Size() - int64(hdr.FooterOffset)
	if tocLen <= 0 {
		return nil, nil, verrors.InvalidToc("footer offset beyond file end")
	}
	tocBuf := make([]byte, tocLen)
	if _, err := f.ReadAt(tocBuf, int64(hdr.FooterOffset)); err != nil {
		return nil, nil, fmt.Errorf("read toc: %w", err)
	}

	sum := blake3.Sum256(tocBuf)
	if sum != hdr.TocChecksum {
		return nil, nil, verrors.InvalidToc("toc checksum mismatch")
	}

	toc, err := decodeToc(tocBuf)
	if err != nil {
		return nil, nil, verrors.Wrap(verrors.KindInvalidToc, "decode toc", err)
	}
	return hdr, toc, nil
}

func (v *Vault) closeLocks() {
	if v.lock != nil {
		v.lock.Unlock()
	}
}

// Close releases the lock (if held) and the file handle. A Vault must
// not be used after Close.
func (v *Vault) Close() error {
	v.closeLocks()
	if v.f != nil {
		return v.f.Close()
	}
	return nil
}

// dataRegionStart is where frame payloads and segment blobs may begin:
// strictly beyond the header and the (currently zero-length) WAL region
// reserved by the header fields.
func (v *Vault) dataRegionStart() int64 {
	return int64(headerSize) + int64(v.hdr.WALSize)
}

func (v *Vault) fileSize() (int64, error) {
	info, err := v.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// pending accumulates appended payloads between Put and Commit so a
// single commit can seal many puts at once without re-opening the file.
type pending struct {
	frames []Frame
	blobs  [][]byte
}

// Put assigns the next frame id, computes its checksum, and stages the
// payload for the next Commit. It does not itself acquire the exclusive
// lock — callers that want single-writer discipline should call Put
// then Commit back to back and Close immediately after, never
// interleaving with other writers.
func (v *Vault) Put(payload []byte, opts PutOptions) (uint64, error) {
	if !v.writable {
		return 0, fmt.Errorf("vault opened read-only")
	}

	size, err := v.fileSize()
	if err != nil {
		return 0, err
	}
	if size > v.hardCap {
		return 0, verrors.VaultFull(size, v.hardCap)
	}

	canonicalSum := blake3.Sum256(payload)

	if opts.Dedup {
		if id, ok := v.latestActiveByChecksum(opts.URI, canonicalSum); ok {
			return id, nil
		}
	}

	stored := payload
	enc := EncodingPlain
	if opts.Compress {
		var zbuf []byte
		zw, err := zstd.NewWriter(nil)
		if err == nil {
			zbuf = zw.EncodeAll(payload, make([]byte, 0, len(payload)))
			zw.Close()
			stored = zbuf
			enc = EncodingZstd
		}
	}

	f := Frame{
		ID:              v.toc.NextFrameID(),
		Timestamp:       time.Now().UTC(),
		Checksum:        canonicalSum,
		URI:             opts.URI,
		Title:           opts.Title,
		Track:           opts.Track,
		Kind:            opts.Kind,
		Mime:            opts.Mime,
		Status:          StatusActive,
		Role:            opts.Role,
		ParentID:        opts.ParentID,
		HasParent:       opts.HasParent,
		ChunkIndex:      opts.ChunkIndex,
		Extra:           opts.Extra,
		Encoding:        enc,
		CanonicalLength: int64(len(payload)),
	}
	if f.Extra == nil {
		f.Extra = map[string]string{}
	}
	for i, tag := range opts.Tags {
		f.Extra[fmt.Sprintf("tag.%d", i)] = tag
	}
	for i, label := range opts.Labels {
		f.Extra[fmt.Sprintf("label.%d", i)] = label
	}
	if opts.SearchText != "" {
		f.Extra["search_text"] = opts.SearchText
	}

	v.stagePayload(&f, stored)
	v.toc.Frames = append(v.toc.Frames, f)
	return f.ID, nil
}

// stagePayload tracks where this frame's bytes will live once committed;
// actual writing happens in Commit so a crash mid-Put never touches disk.
func (v *Vault) stagePayload(f *Frame, stored []byte) {
	v.stagedBlobs = append(v.stagedBlobs, stored)
	v.stagedFrameIdx = append(v.stagedFrameIdx, len(v.toc.Frames))
	f.Length = int64(len(stored))
}

// Tombstone marks a frame inactive. It takes effect on the next Commit.
func (v *Vault) Tombstone(frameID uint64) error {
	if !v.writable {
		return fmt.Errorf("vault opened read-only")
	}
	for i := range v.toc.Frames {
		if v.toc.Frames[i].ID == frameID {
			v.toc.Frames[i].Status = StatusTombstoned
			return nil
		}
	}
	return verrors.NotFound(frameID)
}

// Commit seals staged payloads and segments, rewrites the TOC footer,
// fsyncs, and atomically swaps the header to point at the new footer.
// enrich, if non-nil, runs after the new state is durable but before the
// exclusive lock is released — a narrow hook point for post-commit
// side effects (e.g. refreshing an in-memory index), not a new
// subsystem.
func (v *Vault) Commit(enrich func(*Toc) error) error {
	if !v.writable {
		return fmt.Errorf("vault opened read-only")
	}

	locked, err := v.lock.TryLock()
	if err != nil || !locked {
		return fmt.Errorf("acquire exclusive lock: %w", err)
	}
	defer v.lock.Unlock()

	offset, err := v.fileSize()
	if err != nil {
		return err
	}
	if offset < v.dataRegionStart() {
		offset = v.dataRegionStart()
	}

	for i, blob := range v.stagedBlobs {
		frameIdx := v.stagedFrameIdx[i]
		v.toc.Frames[frameIdx].Offset = offset
		if _, err := v.f.WriteAt(blob, offset); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
		offset += int64(len(blob))
	}
	v.stagedBlobs = nil
	v.stagedFrameIdx = nil

	v.toc.Root = v.toc.ComputeRoot()
	tocBytes := v.toc.Encode()
	if _, err := v.f.WriteAt(tocBytes, offset); err != nil {
		return fmt.Errorf("write toc: %w", err)
	}

	if err := v.f.Sync(); err != nil {
		return verrors.CheckpointFailed(fmt.Sprintf("fsync data: %v", err))
	}

	newHdr := *v.hdr
	newHdr.FooterOffset = uint64(offset)
	newHdr.TocChecksum = blake3.Sum256(tocBytes)
	if _, err := v.f.WriteAt(newHdr.encode(), 0); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := v.f.Sync(); err != nil {
		return verrors.CheckpointFailed(fmt.Sprintf("fsync header: %v", err))
	}
	v.hdr = &newHdr

	if enrich != nil {
		if err := enrich(v.toc); err != nil {
			v.logger.Warn("vault: post-commit enrichment failed", "err", err)
		}
	}
	return nil
}

// ActiveFrames returns every active Document/DocumentChunk/ExtractedImage
// frame, in ascending id order (commit order).
func (v *Vault) ActiveFrames() []Frame {
	out := make([]Frame, 0, len(v.toc.Frames))
	for _, f := range v.toc.Frames {
		if f.IsActive() {
			out = append(out, f)
		}
	}
	return out
}

// LatestByURI scans the TOC newest-first for the latest active frame
// with the given URI.
func (v *Vault) LatestByURI(uri string) (*Frame, error) {
	best := -1
	for i := len(v.toc.Frames) - 1; i >= 0; i-- {
		f := v.toc.Frames[i]
		if f.URI == uri && f.IsActive() {
			best = i
			break
		}
	}
	if best < 0 {
		return nil, verrors.NotFoundByURI(uri)
	}
	cp := v.toc.Frames[best]
	return &cp, nil
}

func (v *Vault) latestActiveByChecksum(uri string, sum [32]byte) (uint64, bool) {
	for i := len(v.toc.Frames) - 1; i >= 0; i-- {
		f := v.toc.Frames[i]
		if f.IsActive() && f.Checksum == sum && (uri == "" || f.URI == uri) {
			return f.ID, true
		}
	}
	return 0, false
}

// FrameByID returns frame metadata by id.
func (v *Vault) FrameByID(id uint64) (*Frame, error) {
	for _, f := range v.toc.Frames {
		if f.ID == id {
			cp := f
			return &cp, nil
		}
	}
	return nil, verrors.NotFound(id)
}

// FrameCanonicalPayload reads, validates, and decompresses a frame's
// payload bytes, checking bounds against the header/data region and the
// recorded checksum before returning.
func (v *Vault) FrameCanonicalPayload(id uint64) ([]byte, error) {
	f, err := v.FrameByID(id)
	if err != nil {
		return nil, err
	}
	if f.Offset < v.dataRegionStart() {
		return nil, verrors.InvalidFrame("payload offset precedes data region")
	}
	raw := make([]byte, f.Length)
	if _, err := v.f.ReadAt(raw, f.Offset); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	var canonical []byte
	switch f.Encoding {
	case EncodingZstd:
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		canonical, err = zr.DecodeAll(raw, make([]byte, 0, f.CanonicalLength))
		if err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}
	default:
		canonical = raw
	}

	if int64(len(canonical)) != f.CanonicalLength {
		return nil, verrors.InvalidFrame("canonical length mismatch")
	}
	sum := blake3.Sum256(canonical)
	if sum != f.Checksum {
		return nil, verrors.InvalidFrame("checksum mismatch")
	}
	return canonical, nil
}

// FrameText is FrameCanonicalPayload decoded as UTF-8 text, or the
// SearchText override recorded in Extra if one was supplied at Put time.
func (v *Vault) FrameText(id uint64) (string, error) {
	f, err := v.FrameByID(id)
	if err != nil {
		return "", err
	}
	if override, ok := f.Extra["search_text"]; ok && override != "" {
		return override, nil
	}
	b, err := v.FrameCanonicalPayload(id)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Toc exposes the current in-memory table of contents for index
// builders. Callers must not mutate the returned value.
func (v *Vault) Toc() *Toc { return v.toc }

// SortedSegments returns the segment catalog ordered by id for
// deterministic iteration.
func (v *Vault) SortedSegments() []Segment {
	out := append([]Segment(nil), v.toc.Segments...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
