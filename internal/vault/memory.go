package vault

// MemoryEntry is one append-only key/value note in a capsule's memory
// track. The agent layer uses this to persist cross-turn notes per
// session without minting a Frame for every scratch note. Grounded on
// the Rust reference's vault/memory.rs + types/memories_track.rs, which
// the capsule only gestures at via "optional memory/schema
// tracks" in the TOC.
type MemoryEntry struct {
	Session string
	Key     string
	Value   string
	Unix    int64
}

func (e *encoder) memoryEntry(m MemoryEntry) {
	e.str(m.Session)
	e.str(m.Key)
	e.str(m.Value)
	e.i64(m.Unix)
}

func (d *decoder) memoryEntry() (MemoryEntry, error) {
	var m MemoryEntry
	var err error
	if m.Session, err = d.str(); err != nil {
		return m, err
	}
	if m.Key, err = d.str(); err != nil {
		return m, err
	}
	if m.Value, err = d.str(); err != nil {
		return m, err
	}
	if m.Unix, err = d.i64(); err != nil {
		return m, err
	}
	return m, nil
}
