// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package alphamap translates between a user's alphabet of 32-bit code
// points (AlphaChar) and the dense, 1-byte internal alphabet (TrieChar)
// that the double-array trie in package gotrie is built on.
//
// An AlphaMap is a sorted, disjoint, merged list of inclusive [begin, end]
// AlphaChar ranges. Members of the ranges are numbered consecutively,
// starting at 1, in the order the ranges appear; AlphaChar 0 is reserved as
// the string terminator and always maps to TrieChar 0. Any AlphaChar
// outside every range maps to the sentinel TrieCharNone (255).
package alphamap

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// AlphaChar is a 32-bit code point, as seen by callers of package gotrie.
// The value 0 is the string terminator.
type AlphaChar = uint32

// TrieChar is the dense, 1-byte internal alphabet index used by the
// double-array trie. The value 0 is the internal terminator, written into
// tail suffixes to mark key-end. The value 255 (TrieCharNone) is returned
// for AlphaChars with no mapping.
type TrieChar = byte

const (
	// AlphaCharTerm is the AlphaChar terminator, always mapped to TrieCharTerm.
	AlphaCharTerm AlphaChar = 0

	// TrieCharTerm is the internal terminator written at the end of every
	// stored key.
	TrieCharTerm TrieChar = 0

	// TrieCharNone is returned by CharToTrie when an AlphaChar has no
	// mapping in the AlphaMap.
	TrieCharNone TrieChar = 0xff

	// AlphabetSize is the branching factor of the double-array: one slot
	// per possible TrieChar value, 0..255.
	AlphabetSize = 256

	// maxMapped is the largest count of distinct, non-terminator AlphaChars
	// a single AlphaMap can represent, since TrieChar values 1..254 are the
	// only ones available once 0 (terminator) and 255 (TrieCharNone) are
	// reserved.
	maxMapped = 254

	sigWord uint32 = 0xdffcdffc
)

// span is one inclusive [Begin, End] AlphaChar range.
type span struct {
	Begin, End AlphaChar
}

func (s span) size() uint32 { return s.End - s.Begin + 1 }

// AlphaMap is a sorted, merged collection of AlphaChar ranges, plus the
// lookup tables derived from it. The zero value is an empty, usable map.
type AlphaMap struct {
	spans []span
	// cumStart[i] is the TrieChar-numbering offset (0-based) of the first
	// code point in spans[i]: spans[i].Begin maps to TrieChar(cumStart[i]+1).
	cumStart []uint32
	dirty    bool // lookup tables need a rebuild
}

// New returns a new, empty AlphaMap.
func New() *AlphaMap {
	return &AlphaMap{}
}

// Clone returns a deep copy of a, independent of further mutation to a.
func (a *AlphaMap) Clone() *AlphaMap {
	if a == nil {
		return New()
	}
	c := &AlphaMap{
		spans:    append([]span(nil), a.spans...),
		cumStart: append([]uint32(nil), a.cumStart...),
	}
	return c
}

// AddRange inserts the inclusive range [begin, end] into the map, merging
// it with any overlapping or abutting existing ranges. A range wholly
// contained within an existing one is a no-op. The returned error is
// always nil. The ranges are stored even if they hold more than maxMapped
// distinct codes; CharToTrie returns TrieCharNone for every code numbered
// past that bound.
func (a *AlphaMap) AddRange(begin, end AlphaChar) error {
	if end < begin {
		begin, end = end, begin
	}

	all := append(append([]span(nil), a.spans...), span{begin, end})
	slices.SortFunc(all, func(x, y span) int {
		switch {
		case x.Begin < y.Begin:
			return -1
		case x.Begin > y.Begin:
			return 1
		}
		return 0
	})

	merged := make([]span, 0, len(all))
	for _, s := range all {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			// abutting (last.End+1 == s.Begin) or overlapping ranges merge.
			if s.Begin <= last.End+1 {
				if s.End > last.End {
					last.End = s.End
				}
				continue
			}
		}
		merged = append(merged, s)
	}

	a.spans = merged
	a.dirty = true
	a.rebuild()
	return nil
}

// rebuild recomputes the cumulative TrieChar-numbering offsets. Called
// eagerly from AddRange and lazily (if ever needed) from the lookup
// functions, matching spec.md's "rebuilt lazily or eagerly" latitude.
func (a *AlphaMap) rebuild() {
	if !a.dirty {
		return
	}
	a.cumStart = make([]uint32, len(a.spans))
	var total uint32
	for i, s := range a.spans {
		a.cumStart[i] = total
		total += s.size()
	}
	a.dirty = false
}

// CharToTrie translates c to its dense TrieChar. It returns 0 for c==0, and
// TrieCharNone if c has no mapping in the AlphaMap.
func (a *AlphaMap) CharToTrie(c AlphaChar) TrieChar {
	if c == AlphaCharTerm {
		return TrieCharTerm
	}
	a.rebuild()
	i, ok := a.find(c)
	if !ok {
		return TrieCharNone
	}
	idx := a.cumStart[i] + (c - a.spans[i].Begin)
	if idx >= maxMapped {
		return TrieCharNone
	}
	return TrieChar(idx + 1)
}

// find returns the index of the span containing c, if any.
func (a *AlphaMap) find(c AlphaChar) (int, bool) {
	// linear scan for the first span whose End is at or above c, then
	// check that c is not below its Begin.
	i := slices.IndexFunc(a.spans, func(s span) bool { return s.End >= c })
	if i < 0 || a.spans[i].Begin > c {
		return 0, false
	}
	return i, true
}

// TrieToChar is the inverse of CharToTrie: it returns 0 for tc==0, and the
// original AlphaChar for any tc previously produced by CharToTrie.
func (a *AlphaMap) TrieToChar(tc TrieChar) AlphaChar {
	if tc == TrieCharTerm {
		return AlphaCharTerm
	}
	a.rebuild()
	idx := uint32(tc) - 1
	for i, s := range a.spans {
		size := s.size()
		if idx < a.cumStart[i]+size {
			return s.Begin + (idx - a.cumStart[i])
		}
	}
	return AlphaCharTerm
}

// CharToTrieString translates a zero-terminated AlphaChar slice (not
// including the terminator) into a TrieChar slice, terminated with
// TrieCharTerm. If any code point in alpha has no mapping, ok is false and
// the partial translation is discarded — the caller treats this as "key not
// in alphabet", per spec.md §4.1.
func (a *AlphaMap) CharToTrieString(alpha []AlphaChar) (trie []TrieChar, ok bool) {
	out := make([]TrieChar, 0, len(alpha)+1)
	for _, c := range alpha {
		if c == AlphaCharTerm {
			break
		}
		tc := a.CharToTrie(c)
		if tc == TrieCharNone {
			return nil, false
		}
		out = append(out, tc)
	}
	out = append(out, TrieCharTerm)
	return out, true
}

// WriteTo serializes the AlphaMap in the wire format from spec.md §4.6: a
// signature word, the total number of mapped code points, a range count,
// then that many (begin, end) pairs, all big-endian 32-bit.
func (a *AlphaMap) WriteTo(w io.Writer) (int64, error) {
	a.rebuild()
	var total uint32
	for _, s := range a.spans {
		total += s.size()
	}

	buf := make([]byte, 4+4+4)
	binary.BigEndian.PutUint32(buf[0:4], sigWord)
	binary.BigEndian.PutUint32(buf[4:8], total)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(a.spans)))
	if _, err := w.Write(buf); err != nil {
		return 0, errors.Wrap(err, "alphamap: write header")
	}
	n := int64(len(buf))

	pair := make([]byte, 8)
	for _, s := range a.spans {
		binary.BigEndian.PutUint32(pair[0:4], s.Begin)
		binary.BigEndian.PutUint32(pair[4:8], s.End)
		if _, err := w.Write(pair); err != nil {
			return n, errors.Wrap(err, "alphamap: write range")
		}
		n += int64(len(pair))
	}
	return n, nil
}

// ReadFrom deserializes an AlphaMap previously written by WriteTo. It
// returns an error wrapping a signature mismatch or short read.
func (a *AlphaMap) ReadFrom(r io.Reader) (int64, error) {
	hdr := make([]byte, 12)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return 0, errors.Wrap(err, "alphamap: read header")
	}
	if sig := binary.BigEndian.Uint32(hdr[0:4]); sig != sigWord {
		return 12, errors.Errorf("alphamap: bad signature %#x", sig)
	}
	nRanges := binary.BigEndian.Uint32(hdr[8:12])

	n := int64(12)
	spans := make([]span, 0, nRanges)
	pair := make([]byte, 8)
	for i := uint32(0); i < nRanges; i++ {
		if _, err := io.ReadFull(r, pair); err != nil {
			return n, errors.Wrap(err, "alphamap: read range")
		}
		n += int64(len(pair))
		spans = append(spans, span{
			Begin: binary.BigEndian.Uint32(pair[0:4]),
			End:   binary.BigEndian.Uint32(pair[4:8]),
		})
	}
	a.spans = spans
	a.dirty = true
	a.rebuild()
	return n, nil
}
