// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package tail implements the tail suffix pool: the flat array of
// variable-length key suffixes that a double-array trie's separate nodes
// point into. Each entry holds the remaining TrieChar suffix of a stored
// key (terminator included), the data value associated with that key, and
// a free-list link used while the entry is unused.
package tail

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// TrieIndex addresses a tail entry. Index 0 is reserved as the free-list
// head and never holds a real suffix.
type TrieIndex = int32

const sigWord uint32 = 0xdffcdffc

type entry struct {
	nextFree TrieIndex // valid only while the entry is free
	data     int32
	suffix   []byte // TrieChars, terminator included
	free     bool
}

// Tail is the tail suffix pool. The zero value is not usable; use New.
type Tail struct {
	entries   []entry
	firstFree TrieIndex
}

// New returns an empty Tail pool.
func New() *Tail {
	return &Tail{entries: []entry{{}}}
}

// AddSuffix stores suffix in a fresh or recycled entry and returns its
// index. The entry's data starts at 0; callers set the real value with
// SetData.
func (t *Tail) AddSuffix(suffix []byte) TrieIndex {
	cp := append([]byte(nil), suffix...)
	if t.firstFree != 0 {
		idx := t.firstFree
		e := &t.entries[idx]
		t.firstFree = e.nextFree
		e.free = false
		e.data = 0
		e.suffix = cp
		return idx
	}
	t.entries = append(t.entries, entry{suffix: cp})
	return TrieIndex(len(t.entries) - 1)
}

// GetSuffix returns the suffix stored at idx.
func (t *Tail) GetSuffix(idx TrieIndex) ([]byte, bool) {
	if !t.valid(idx) {
		return nil, false
	}
	return t.entries[idx].suffix, true
}

// SetSuffix replaces the suffix stored at idx.
func (t *Tail) SetSuffix(idx TrieIndex, suffix []byte) bool {
	if !t.valid(idx) {
		return false
	}
	t.entries[idx].suffix = append([]byte(nil), suffix...)
	return true
}

// GetData returns the data value stored at idx.
func (t *Tail) GetData(idx TrieIndex) (int32, bool) {
	if !t.valid(idx) {
		return 0, false
	}
	return t.entries[idx].data, true
}

// SetData replaces the data value stored at idx.
func (t *Tail) SetData(idx TrieIndex, data int32) bool {
	if !t.valid(idx) {
		return false
	}
	t.entries[idx].data = data
	return true
}

// Delete frees the entry at idx, returning it to the free list.
func (t *Tail) Delete(idx TrieIndex) bool {
	if !t.valid(idx) {
		return false
	}
	e := &t.entries[idx]
	e.suffix = nil
	e.data = 0
	e.free = true
	e.nextFree = t.firstFree
	t.firstFree = idx
	return true
}

func (t *Tail) valid(idx TrieIndex) bool {
	return idx > 0 && int(idx) < len(t.entries) && !t.entries[idx].free
}

// WalkChar attempts to match c against the suffix at idx, starting at
// byte offset suffixIdx. On success it returns the advanced offset and
// true; on mismatch or out-of-range it returns suffixIdx unchanged and
// false.
func (t *Tail) WalkChar(idx TrieIndex, suffixIdx int, c byte) (int, bool) {
	if !t.valid(idx) {
		return suffixIdx, false
	}
	suffix := t.entries[idx].suffix
	if suffixIdx < 0 || suffixIdx >= len(suffix) {
		return suffixIdx, false
	}
	if suffix[suffixIdx] != c {
		return suffixIdx, false
	}
	return suffixIdx + 1, true
}

// WalkString matches as much of s against the suffix at idx, starting at
// byte offset suffixIdx, as agrees character for character. It returns the
// number of characters of s successfully matched; a return value less
// than len(s) means the match stopped at a mismatch or ran off the end of
// the suffix.
func (t *Tail) WalkString(idx TrieIndex, suffixIdx int, s []byte) int {
	pos := suffixIdx
	for i, c := range s {
		next, ok := t.WalkChar(idx, pos, c)
		if !ok {
			return i
		}
		pos = next
	}
	return len(s)
}

// IsWalkableChar is WalkChar without mutation of any caller state.
func (t *Tail) IsWalkableChar(idx TrieIndex, suffixIdx int, c byte) bool {
	if !t.valid(idx) {
		return false
	}
	suffix := t.entries[idx].suffix
	return suffixIdx >= 0 && suffixIdx < len(suffix) && suffix[suffixIdx] == c
}

// NumEntries returns the size of the backing array, including the
// reserved index-0 slot.
func (t *Tail) NumEntries() int {
	return len(t.entries)
}

// WriteTo serializes the Tail pool in the wire format from spec.md §4.6: a
// signature word, an entry count, a first-free-entry index, then that
// many (next_free, data, length, suffix) records, big-endian.
func (t *Tail) WriteTo(w io.Writer) (int64, error) {
	hdr := make([]byte, 12)
	binary.BigEndian.PutUint32(hdr[0:4], sigWord)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(t.entries)))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(t.firstFree))
	if _, err := w.Write(hdr); err != nil {
		return 0, errors.Wrap(err, "tail: write header")
	}
	n := int64(len(hdr))

	for i, e := range t.entries {
		nextFree := e.nextFree
		length := len(e.suffix)
		if length > math.MaxInt16 {
			return n, errors.Errorf("tail: suffix at entry %d too long (%d bytes)", i, length)
		}
		rec := make([]byte, 4+4+2+length)
		binary.BigEndian.PutUint32(rec[0:4], uint32(nextFree))
		binary.BigEndian.PutUint32(rec[4:8], uint32(e.data))
		binary.BigEndian.PutUint16(rec[8:10], uint16(length))
		copy(rec[10:], e.suffix)
		if _, err := w.Write(rec); err != nil {
			return n, errors.Wrapf(err, "tail: write entry %d", i)
		}
		n += int64(len(rec))
	}
	return n, nil
}

// ReadFrom deserializes a Tail pool previously written by WriteTo.
func (t *Tail) ReadFrom(r io.Reader) (int64, error) {
	hdr := make([]byte, 12)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return 0, errors.Wrap(err, "tail: read header")
	}
	if sig := binary.BigEndian.Uint32(hdr[0:4]); sig != sigWord {
		return 12, errors.Errorf("tail: bad signature %#x", sig)
	}
	numTails := binary.BigEndian.Uint32(hdr[4:8])
	firstFree := binary.BigEndian.Uint32(hdr[8:12])

	n := int64(12)
	entries := make([]entry, numTails)
	fixed := make([]byte, 10)
	for i := range entries {
		if _, err := io.ReadFull(r, fixed); err != nil {
			return n, errors.Wrapf(err, "tail: read entry %d header", i)
		}
		n += int64(len(fixed))
		nextFree := int32(binary.BigEndian.Uint32(fixed[0:4]))
		data := int32(binary.BigEndian.Uint32(fixed[4:8]))
		length := binary.BigEndian.Uint16(fixed[8:10])

		var suffix []byte
		if length > 0 {
			suffix = make([]byte, length)
			if _, err := io.ReadFull(r, suffix); err != nil {
				return n, errors.Wrapf(err, "tail: read entry %d suffix", i)
			}
			n += int64(length)
		}
		entries[i] = entry{nextFree: nextFree, data: data, suffix: suffix}
	}

	// Reconstruct the free flag by walking the free list from firstFree;
	// every other non-zero entry is live.
	for i := range entries {
		entries[i].free = false
	}
	for idx := int32(firstFree); idx != 0; idx = entries[idx].nextFree {
		if idx <= 0 || int(idx) >= len(entries) {
			return n, errors.Errorf("tail: corrupt free list at %d", idx)
		}
		entries[idx].free = true
		entries[idx].suffix = nil
		entries[idx].data = 0
	}

	t.entries = entries
	t.firstFree = TrieIndex(firstFree)
	return n, nil
}
