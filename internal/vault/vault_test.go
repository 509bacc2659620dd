package vault

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aethervault/aether-core/internal/verrors"
)

func openWritable(t *testing.T, hardCap int64) (*Vault, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.capsule")
	v, err := Open(path, Options{Writable: true, HardCap: hardCap})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v, path
}

// Every committed frame's recorded checksum must match a fresh BLAKE3
// digest of its canonical payload, and FrameCanonicalPayload must
// enforce that on read.
func TestPutCommitChecksumRoundTrip(t *testing.T) {
	v, _ := openWritable(t, 0)
	payload := []byte("hello capsule world")
	id, err := v.Put(payload, PutOptions{URI: "doc://1"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := v.Commit(nil); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := v.FrameCanonicalPayload(id)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

// Reopening a committed capsule must reproduce the same frame set —
// the TOC checksum over the footer must verify on read.
func TestCommitSurvivesReopen(t *testing.T) {
	v, path := openWritable(t, 0)
	id, err := v.Put([]byte("persisted content"), PutOptions{URI: "doc://reopen"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := v.Commit(nil); err != nil {
		t.Fatalf("commit: %v", err)
	}
	v.Close()

	reopened, err := Open(path, Options{Writable: false})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	f, err := reopened.FrameByID(id)
	if err != nil {
		t.Fatalf("frame by id: %v", err)
	}
	if !f.IsActive() {
		t.Fatal("want frame active after reopen")
	}
}

// Put with Dedup set returns the id of the existing active frame with
// the same checksum and URI rather than appending a duplicate.
func TestPutDedupIdempotent(t *testing.T) {
	v, _ := openWritable(t, 0)
	payload := []byte("duplicate-me")

	id1, err := v.Put(payload, PutOptions{URI: "doc://dup", Dedup: true})
	if err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := v.Commit(nil); err != nil {
		t.Fatalf("commit: %v", err)
	}

	id2, err := v.Put(payload, PutOptions{URI: "doc://dup", Dedup: true})
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if id2 != id1 {
		t.Fatalf("want dedup to return existing id %d, got new id %d", id1, id2)
	}
	if len(v.Toc().Frames) != 1 {
		t.Fatalf("want exactly 1 frame after deduped put, got %d", len(v.Toc().Frames))
	}
}

// Put without Dedup always appends a new frame, even for identical
// payloads.
func TestPutWithoutDedupAlwaysAppends(t *testing.T) {
	v, _ := openWritable(t, 0)
	payload := []byte("not deduped")
	if _, err := v.Put(payload, PutOptions{URI: "doc://nodedup"}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := v.Put(payload, PutOptions{URI: "doc://nodedup"}); err != nil {
		t.Fatalf("second put: %v", err)
	}
	if len(v.Toc().Frames) != 2 {
		t.Fatalf("want 2 frames, got %d", len(v.Toc().Frames))
	}
}

// A tombstoned frame survives a commit and reopen as inactive but
// still addressable by id — its payload remains readable, it is just
// excluded from ActiveFrames and LatestByURI.
func TestTombstoneThenReopenInactiveButAddressable(t *testing.T) {
	v, path := openWritable(t, 0)
	id, err := v.Put([]byte("tombstone me"), PutOptions{URI: "doc://tomb"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := v.Commit(nil); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := v.Tombstone(id); err != nil {
		t.Fatalf("tombstone: %v", err)
	}
	if err := v.Commit(nil); err != nil {
		t.Fatalf("commit tombstone: %v", err)
	}
	v.Close()

	reopened, err := Open(path, Options{Writable: false})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	f, err := reopened.FrameByID(id)
	if err != nil {
		t.Fatalf("frame should still be addressable by id: %v", err)
	}
	if f.IsActive() {
		t.Fatal("want frame inactive after tombstone")
	}
	if _, err := reopened.FrameCanonicalPayload(id); err != nil {
		t.Fatalf("tombstoned frame payload should still be readable: %v", err)
	}
	if _, err := reopened.LatestByURI("doc://tomb"); err == nil {
		t.Fatal("want LatestByURI to skip a tombstoned frame")
	}
	for _, af := range reopened.ActiveFrames() {
		if af.ID == id {
			t.Fatal("tombstoned frame should not appear in ActiveFrames")
		}
	}
}

// Put refuses to stage a new payload once the file is already over
// its hard cap, and the refusal must not touch the file on disk.
func TestPutVaultFullLeavesFileByteIdentical(t *testing.T) {
	v, path := openWritable(t, 1)
	if _, err := v.Put([]byte("grows the file past the 1-byte cap"), PutOptions{URI: "doc://first"}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := v.Commit(nil); err != nil {
		t.Fatalf("commit: %v", err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	_, err = v.Put([]byte("should be rejected"), PutOptions{URI: "doc://second"})
	if err == nil {
		t.Fatal("want VaultFull error once file exceeds hard cap")
	}
	if !errors.Is(err, verrors.New(verrors.KindVaultFull)) {
		t.Fatalf("want KindVaultFull, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file after rejected put: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("file changed after a rejected VaultFull put")
	}
}

func TestFrameByIDNotFound(t *testing.T) {
	v, _ := openWritable(t, 0)
	if _, err := v.FrameByID(999); err == nil {
		t.Fatal("want error for unknown frame id")
	}
}

func TestReadOnlyVaultRejectsPut(t *testing.T) {
	v, path := openWritable(t, 0)
	if _, err := v.Put([]byte("seed"), PutOptions{URI: "doc://seed"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := v.Commit(nil); err != nil {
		t.Fatalf("commit: %v", err)
	}
	v.Close()

	ro, err := Open(path, Options{Writable: false})
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	defer ro.Close()
	if _, err := ro.Put([]byte("nope"), PutOptions{}); err == nil {
		t.Fatal("want error putting into a read-only vault")
	}
}
