package lex

import (
	"encoding/binary"
	"fmt"
)

// Format tags distinguish the current section-aware encoding from the
// legacy format that predates sections.
const (
	formatCurrent = uint8(1)
	formatLegacy  = uint8(0)
)

// maxIndexBytes bounds decode against pathological input, independent of
// the vault TOC's own cap, since a lex segment decodes on its own.
const maxIndexBytes = 512 << 20

// Encode serializes docs in the current format.
func Encode(docs []Document) []byte {
	buf := make([]byte, 0, 4096)
	buf = append(buf, formatCurrent)
	buf = appendU32(buf, uint32(len(docs)))
	for _, d := range docs {
		buf = appendDocument(buf, d)
	}
	return buf
}

func appendDocument(buf []byte, d Document) []byte {
	buf = appendU64(buf, d.FrameID)
	buf = appendStr(buf, d.URI)
	buf = appendStr(buf, d.Title)
	buf = appendStr(buf, d.Content)
	buf = appendU32(buf, uint32(len(d.Tags)))
	for _, t := range d.Tags {
		buf = appendStr(buf, t)
	}
	buf = appendU32(buf, uint32(len(d.Sections)))
	for _, s := range d.Sections {
		buf = appendU32(buf, uint32(s.Offset))
		buf = appendStr(buf, s.Content)
	}
	return buf
}

// Decode reads either the current or legacy format. Legacy documents
// (no section table) synthesize a single section covering the full
// content, so callers never special-case the format after decode.
func Decode(data []byte) ([]Document, error) {
	if len(data) > maxIndexBytes {
		return nil, fmt.Errorf("lex index of %d bytes exceeds %d byte cap", len(data), maxIndexBytes)
	}
	if len(data) < 1 {
		return nil, fmt.Errorf("empty lex index")
	}
	switch data[0] {
	case formatCurrent:
		return decodeCurrent(data[1:])
	case formatLegacy:
		return decodeLegacy(data[1:])
	default:
		return nil, fmt.Errorf("unknown lex index format tag %d", data[0])
	}
}

func decodeCurrent(data []byte) ([]Document, error) {
	pos := 0
	n, err := readU32(data, &pos)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, n)
	for i := uint32(0); i < n; i++ {
		var d Document
		if d.FrameID, err = readU64(data, &pos); err != nil {
			return nil, err
		}
		if d.URI, err = readStr(data, &pos); err != nil {
			return nil, err
		}
		if d.Title, err = readStr(data, &pos); err != nil {
			return nil, err
		}
		if d.Content, err = readStr(data, &pos); err != nil {
			return nil, err
		}
		d.Tokens = Tokenize(d.Content)
		d.ContentLower = lowerFold(d.Content)

		nt, err := readU32(data, &pos)
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < nt; j++ {
			tag, err := readStr(data, &pos)
			if err != nil {
				return nil, err
			}
			d.Tags = append(d.Tags, tag)
		}

		ns, err := readU32(data, &pos)
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < ns; j++ {
			off, err := readU32(data, &pos)
			if err != nil {
				return nil, err
			}
			content, err := readStr(data, &pos)
			if err != nil {
				return nil, err
			}
			d.Sections = append(d.Sections, Section{Offset: int(off), Content: content})
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// decodeLegacy reads the pre-section format: frame id, uri, title,
// content, tags — and synthesizes one section spanning the whole
// (lowercased) content.
func decodeLegacy(data []byte) ([]Document, error) {
	pos := 0
	n, err := readU32(data, &pos)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, n)
	for i := uint32(0); i < n; i++ {
		var d Document
		if d.FrameID, err = readU64(data, &pos); err != nil {
			return nil, err
		}
		if d.URI, err = readStr(data, &pos); err != nil {
			return nil, err
		}
		if d.Title, err = readStr(data, &pos); err != nil {
			return nil, err
		}
		if d.Content, err = readStr(data, &pos); err != nil {
			return nil, err
		}
		nt, err := readU32(data, &pos)
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < nt; j++ {
			tag, err := readStr(data, &pos)
			if err != nil {
				return nil, err
			}
			d.Tags = append(d.Tags, tag)
		}
		d.Tokens = Tokenize(d.Content)
		d.ContentLower = lowerFold(d.Content)
		d.Sections = []Section{{Offset: 0, Content: d.ContentLower}}
		docs = append(docs, d)
	}
	return docs, nil
}

func lowerFold(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func appendU32(buf []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(buf, v) }
func appendU64(buf []byte, v uint64) []byte { return binary.LittleEndian.AppendUint64(buf, v) }
func appendStr(buf []byte, s string) []byte {
	buf = appendU32(buf, uint32(len(s)))
	return append(buf, s...)
}

func readU32(data []byte, pos *int) (uint32, error) {
	if *pos+4 > len(data) {
		return 0, fmt.Errorf("truncated lex index at %d", *pos)
	}
	v := binary.LittleEndian.Uint32(data[*pos:])
	*pos += 4
	return v, nil
}

func readU64(data []byte, pos *int) (uint64, error) {
	if *pos+8 > len(data) {
		return 0, fmt.Errorf("truncated lex index at %d", *pos)
	}
	v := binary.LittleEndian.Uint64(data[*pos:])
	*pos += 8
	return v, nil
}

func readStr(data []byte, pos *int) (string, error) {
	n, err := readU32(data, pos)
	if err != nil {
		return "", err
	}
	if *pos+int(n) > len(data) {
		return "", fmt.Errorf("truncated lex index string at %d", *pos)
	}
	s := string(data[*pos : *pos+int(n)])
	*pos += int(n)
	return s, nil
}
