package vault

import "time"

func (e *encoder) frame(f Frame) {
	e.u64(f.ID)
	e.i64(f.Timestamp.UTC().Unix())
	e.bytes(f.Checksum)
	e.str(f.URI)
	e.str(f.Title)
	e.str(f.Track)
	e.str(f.Kind)
	e.str(f.Mime)
	e.u8(uint8(f.Status))
	e.u8(uint8(f.Role))
	e.bool(f.HasParent)
	e.u64(f.ParentID)
	e.u32(uint32(f.ChunkIndex))
	e.strMap(f.Extra)
	e.i64(f.Offset)
	e.i64(f.Length)
	e.u8(uint8(f.Encoding))
	e.i64(f.CanonicalLength)
}

func (d *decoder) frame() (Frame, error) {
	var f Frame
	var err error
	if f.ID, err = d.u64(); err != nil {
		return f, err
	}
	ts, err := d.i64()
	if err != nil {
		return f, err
	}
	f.Timestamp = time.Unix(ts, 0).UTC()
	if f.Checksum, err = d.bytes32(); err != nil {
		return f, err
	}
	if f.URI, err = d.str(); err != nil {
		return f, err
	}
	if f.Title, err = d.str(); err != nil {
		return f, err
	}
	if f.Track, err = d.str(); err != nil {
		return f, err
	}
	if f.Kind, err = d.str(); err != nil {
		return f, err
	}
	if f.Mime, err = d.str(); err != nil {
		return f, err
	}
	st, err := d.u8()
	if err != nil {
		return f, err
	}
	f.Status = Status(st)
	role, err := d.u8()
	if err != nil {
		return f, err
	}
	f.Role = Role(role)
	if f.HasParent, err = d.boolean(); err != nil {
		return f, err
	}
	if f.ParentID, err = d.u64(); err != nil {
		return f, err
	}
	ci, err := d.u32()
	if err != nil {
		return f, err
	}
	f.ChunkIndex = int(ci)
	if f.Extra, err = d.strMap(); err != nil {
		return f, err
	}
	if f.Offset, err = d.i64(); err != nil {
		return f, err
	}
	if f.Length, err = d.i64(); err != nil {
		return f, err
	}
	enc, err := d.u8()
	if err != nil {
		return f, err
	}
	f.Encoding = Encoding(enc)
	if f.CanonicalLength, err = d.i64(); err != nil {
		return f, err
	}
	return f, nil
}
