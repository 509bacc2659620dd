package vault

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// headerMagic identifies an aethervault capsule file.
var headerMagic = [4]byte{'A', 'V', 'L', '1'}

const headerVersion = uint16(1)

// headerSize is padded to one disk sector so the header overwrite in
// commit (step 5/6 of the protocol) is atomic at the sector level on
// common filesystems. Implementations that cannot rely on that must use
// the two-header alternate-slot technique instead; this module assumes
// the simpler single-header guarantee, matching the reference design.
const headerSize = 4096

// header is the fixed-size region at offset 0 of a capsule file.
type header struct {
	Magic        [4]byte
	Version      uint16
	_            [2]byte // padding to align the following u64s
	FooterOffset uint64
	WALOffset    uint64
	WALSize      uint64
	WALCheckpoint uint64
	WALSequence  uint64
	TocChecksum  [32]byte
}

func newHeader() *header {
	return &header{
		Magic:   headerMagic,
		Version: headerVersion,
	}
}

func (h *header) encode() []byte {
	buf := make([]byte, headerSize)
	w := bytes.NewBuffer(buf[:0])
	binary.Write(w, binary.LittleEndian, h.Magic)
	binary.Write(w, binary.LittleEndian, h.Version)
	binary.Write(w, binary.LittleEndian, [2]byte{})
	binary.Write(w, binary.LittleEndian, h.FooterOffset)
	binary.Write(w, binary.LittleEndian, h.WALOffset)
	binary.Write(w, binary.LittleEndian, h.WALSize)
	binary.Write(w, binary.LittleEndian, h.WALCheckpoint)
	binary.Write(w, binary.LittleEndian, h.WALSequence)
	binary.Write(w, binary.LittleEndian, h.TocChecksum)
	out := w.Bytes()
	copy(buf, out)
	return buf
}

func decodeHeader(data []byte) (*header, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("short header: %d bytes", len(data))
	}
	h := &header{}
	r := bytes.NewReader(data[:headerSize])
	binary.Read(r, binary.LittleEndian, &h.Magic)
	binary.Read(r, binary.LittleEndian, &h.Version)
	var pad [2]byte
	binary.Read(r, binary.LittleEndian, &pad)
	binary.Read(r, binary.LittleEndian, &h.FooterOffset)
	binary.Read(r, binary.LittleEndian, &h.WALOffset)
	binary.Read(r, binary.LittleEndian, &h.WALSize)
	binary.Read(r, binary.LittleEndian, &h.WALCheckpoint)
	binary.Read(r, binary.LittleEndian, &h.WALSequence)
	binary.Read(r, binary.LittleEndian, &h.TocChecksum)
	if h.Magic != headerMagic {
		return nil, fmt.Errorf("bad magic %x", h.Magic)
	}
	if h.Version != headerVersion {
		return nil, fmt.Errorf("unsupported version %d", h.Version)
	}
	return h, nil
}
