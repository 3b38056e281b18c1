// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package darray implements the double-array trie branch structure
// described in Aoe's double-array algorithm: two parallel integer arrays,
// base and check, encoding prefix-trie transitions, plus a free-list
// threaded through the same arrays for unused cells.
//
// A state s has a child on character c iff t := base[s]+c is within
// bounds and check[t] == s; the child state is t. If base[s] < 0, s is a
// "separate" node: its remaining key lives in the tail pool (package
// internal/tail) at index -base[s]. Cell 0 is a header placeholder, cell
// 1 is the free-list head, and cell 2 is the trie root — none of the
// three ever participates in allocation.
package darray

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// TrieIndex addresses a cell in the double array. It is also used, negated,
// to address entries in the tail pool once a state becomes separate.
type TrieIndex = int32

// ErrorIndex is returned by InsertBranch on allocation failure, mirroring
// libdatrie's TRIE_INDEX_ERROR.
const ErrorIndex TrieIndex = -1

const (
	// Root is the state where every key walk begins.
	Root TrieIndex = 2

	headerCell    TrieIndex = 0
	freeListHead  TrieIndex = 1
	poolBegin     TrieIndex = 3 // first cell eligible for allocation
	alphabetSize            = 256
	emptyBase     TrieIndex = 0 // base of a used state with no children/tail yet

	sigWord uint32 = 0xd9fcd9fc
)

// DArray is a double-array trie branch structure. The zero value is not
// usable; use New.
type DArray struct {
	base  []TrieIndex
	check []TrieIndex

	// searchHint is the last base value found by findFreeBase. Starting
	// each search there instead of back at poolBegin keeps repeated
	// insertions from rescanning cells already known to be taken.
	searchHint TrieIndex

	// maxCells caps the backing arrays; 0 means unbounded. Set only by
	// NewBounded, for the capacity-bounded constructors exercised in tests.
	maxCells TrieIndex
}

// New returns an empty DArray with the root state allocated and ready to
// grow children.
func New() *DArray {
	d := &DArray{
		base:  make([]TrieIndex, poolBegin),
		check: make([]TrieIndex, poolBegin),
	}
	d.base[headerCell] = TrieIndex(sigWord & 0x7fffffff)
	d.check[headerCell] = 0
	// free-list head: circular, initially empty (points to itself)
	d.base[freeListHead] = -freeListHead
	d.check[freeListHead] = -freeListHead
	d.base[Root] = emptyBase
	d.check[Root] = 0
	// with the head in place, growTo links the first pool cells into it
	d.growTo(poolBegin)
	return d
}

// NewBounded is New, but caps the array at maxCells cells: once every cell
// up to that bound is in use, InsertBranch returns ErrorIndex instead of
// growing further. maxCells below poolBegin+1 is raised to poolBegin+1,
// the minimum needed for the header/free-list-head/root cells.
func NewBounded(maxCells int) *DArray {
	d := New()
	if maxCells > int(poolBegin) {
		d.maxCells = TrieIndex(maxCells)
	} else {
		d.maxCells = poolBegin + 1
	}
	return d
}

// GetRoot returns the trie's root state.
func (d *DArray) GetRoot() TrieIndex { return Root }

// Base returns base[s], or emptyBase if s is beyond what has been
// allocated so far; it does not grow the backing arrays.
func (d *DArray) Base(s TrieIndex) TrieIndex {
	if int(s) >= len(d.base) {
		return emptyBase
	}
	return d.base[s]
}

// Check returns check[s].
func (d *DArray) Check(s TrieIndex) TrieIndex {
	if int(s) >= len(d.check) {
		return 0
	}
	return d.check[s]
}

// SetBase sets base[s] directly. Used by the trie façade to encode and
// clear tail pointers (negative base values) on separate nodes.
func (d *DArray) SetBase(s TrieIndex, v TrieIndex) {
	d.growTo(s)
	d.base[s] = v
}

// SetCheck sets check[s] directly.
func (d *DArray) SetCheck(s TrieIndex, v TrieIndex) {
	d.growTo(s)
	d.check[s] = v
}

// IsSeparate reports whether s is a separate node (its key continues in
// the tail pool).
func (d *DArray) IsSeparate(s TrieIndex) bool {
	return d.Base(s) < 0
}

// NumCells returns the size of the backing arrays (including the header,
// free-list head, and root cells).
func (d *DArray) NumCells() int {
	return len(d.base)
}

// Reserve grows the backing arrays to cover at least n cells, so that
// insertions whose cells all fall below n need no further reallocation.
func (d *DArray) Reserve(n int) {
	if n > 0 {
		d.growTo(TrieIndex(n))
	}
}

// Walk computes t = base[*s]+c; if check[t] == *s, *s is updated to t and
// Walk returns true. Otherwise *s is left unchanged and Walk returns false.
func (d *DArray) Walk(s *TrieIndex, c byte) bool {
	t := d.Base(*s) + TrieIndex(c)
	if t < 0 || d.Check(t) != *s {
		return false
	}
	*s = t
	return true
}

// IsWalkable is Walk without mutation.
func (d *DArray) IsWalkable(s TrieIndex, c byte) bool {
	t := d.Base(s) + TrieIndex(c)
	return t >= 0 && d.Check(t) == s
}

// WalkableChars appends to out every character on which Walk(s, c) would
// succeed, in ascending order.
func (d *DArray) WalkableChars(s TrieIndex, out []byte) []byte {
	return d.childChars(s, out)
}

// children returns the characters that currently transition away from s.
func (d *DArray) children(s TrieIndex) []byte {
	return d.childChars(s, nil)
}

// childChars scans every possible char for a transition away from s,
// appending each one that currently resolves back to s onto out. out is
// grown to alphabetSize up front, since that's the most a single scan can
// ever append, so the loop below never forces a reallocation mid-scan.
func (d *DArray) childChars(s TrieIndex, out []byte) []byte {
	base := d.Base(s)
	if base <= 0 {
		return out
	}
	out = slices.Grow(out, alphabetSize)
	for c := 0; c < alphabetSize; c++ {
		t := base + TrieIndex(c)
		if t >= 0 && d.Check(t) == s {
			out = append(out, byte(c))
		}
	}
	return out
}

// growTo ensures the backing arrays cover index s, linking any newly
// created cells into the free list as virgin space.
func (d *DArray) growTo(s TrieIndex) {
	if int(s) < len(d.base) {
		return
	}
	newLen := len(d.base)
	if newLen == 0 {
		newLen = int(poolBegin) + 1
	}
	for newLen <= int(s) {
		newLen *= 2
	}
	oldLen := len(d.base)
	newBase := make([]TrieIndex, newLen)
	newCheck := make([]TrieIndex, newLen)
	copy(newBase, d.base)
	copy(newCheck, d.check)
	d.base, d.check = newBase, newCheck

	start := oldLen
	if start < int(poolBegin) {
		start = int(poolBegin)
	}
	for i := start; i < newLen; i++ {
		d.linkFree(TrieIndex(i))
	}
}

// isFree reports whether cell i is on the free list. Cells 0..2 are
// reserved and never considered free.
func (d *DArray) isFree(i TrieIndex) bool {
	if i < poolBegin {
		return false
	}
	if int(i) >= len(d.check) {
		return true // virgin space, joins the free list lazily on growTo
	}
	return d.check[i] <= 0
}

// linkFree inserts a virgin or just-freed cell i at the tail of the
// circular free list (just before the head).
func (d *DArray) linkFree(i TrieIndex) {
	prev := -d.check[freeListHead]
	d.base[i] = -freeListHead
	d.check[i] = -prev
	d.base[prev] = -i
	d.check[freeListHead] = -i
}

// unlinkFree removes cell i from the free list, marking it used.
func (d *DArray) unlinkFree(i TrieIndex) {
	next := -d.base[i]
	prev := -d.check[i]
	d.base[prev] = -next
	d.check[next] = -prev
}

// allocCell claims cell i (growing the arrays if needed) and removes it
// from the free list.
func (d *DArray) allocCell(i TrieIndex) {
	d.growTo(i)
	d.unlinkFree(i)
}

// freeCell clears cell i and returns it to the free list.
func (d *DArray) freeCell(i TrieIndex) {
	d.base[i] = emptyBase
	d.check[i] = 0
	d.linkFree(i)
}

// InsertBranch adds a transition (s, c) to a freshly allocated child
// state and returns it, relocating s's existing children if necessary.
// It returns ErrorIndex when the maxCells bound set by NewBounded leaves no
// room for the new child; an unbounded DArray grows instead.
func (d *DArray) InsertBranch(s TrieIndex, c byte) TrieIndex {
	if d.Base(s) > 0 {
		child := d.Base(s) + TrieIndex(c)
		if child >= 0 && (d.maxCells == 0 || child < d.maxCells) && d.isFree(child) {
			d.allocCell(child)
			d.SetCheck(child, s)
			d.base[child] = emptyBase
			return child
		}
	}

	existing := d.children(s)
	wanted := append(append([]byte(nil), existing...), c)

	newBase := d.findFreeBase(wanted)
	if newBase < 0 {
		return ErrorIndex
	}

	oldBase := d.Base(s)
	for _, cc := range existing {
		oldIdx := oldBase + TrieIndex(cc)
		newIdx := newBase + TrieIndex(cc)
		d.relocateCell(oldIdx, newIdx, s)
	}
	d.SetBase(s, newBase)

	childIdx := newBase + TrieIndex(c)
	d.allocCell(childIdx)
	d.SetCheck(childIdx, s)
	d.base[childIdx] = emptyBase
	return childIdx
}

// relocateCell moves the live cell at oldIdx (a child of parent) to
// newIdx, fixing up any grandchildren whose check points at oldIdx.
func (d *DArray) relocateCell(oldIdx, newIdx, parent TrieIndex) {
	d.allocCell(newIdx)
	d.SetCheck(newIdx, parent)
	oldChildBase := d.Base(oldIdx)
	d.base[newIdx] = oldChildBase

	if oldChildBase > 0 {
		for c := 0; c < alphabetSize; c++ {
			g := oldChildBase + TrieIndex(c)
			if g >= 0 && int(g) < len(d.check) && d.check[g] == oldIdx {
				d.check[g] = newIdx
			}
		}
	}
	d.freeCell(oldIdx)
}

// findFreeBase returns a base >= poolBegin such that base+c is free for
// every c in chars, growing the array if the search runs off the end of
// currently allocated space. The search always starts at or above
// poolBegin so a branch state's base is never negative; a negative base
// is reserved to mean "separate node" (see IsSeparate). If d.maxCells
// bounds growth and no candidate fits below it, it returns ErrorIndex
// without growing the arrays past that bound.
func (d *DArray) findFreeBase(chars []byte) TrieIndex {
	candidate := d.searchHint
	if candidate < poolBegin {
		candidate = poolBegin
	}
	for ; ; candidate++ {
		ok := true
		for _, c := range chars {
			t := candidate + TrieIndex(c)
			if d.maxCells > 0 && t >= d.maxCells {
				return ErrorIndex
			}
			d.growTo(t)
			if !d.isFree(t) {
				ok = false
				break
			}
		}
		if ok {
			d.searchHint = candidate
			return candidate
		}
	}
}

// Prune deletes leaf state s and walks up toward the root, freeing each
// ancestor cell that has no other live child.
func (d *DArray) Prune(s TrieIndex) {
	d.PruneUpto(Root, s)
}

// PruneUpto is Prune, but stops at (and does not free) p, allowing partial
// rollback of a failed insert.
func (d *DArray) PruneUpto(p, s TrieIndex) {
	for s != p && s != Root {
		parent := d.Check(s)
		if len(d.children(s)) > 0 {
			break
		}
		d.freeCell(s)
		s = parent
	}
}

// Enumerate performs a depth-first, trie-char-ascending walk from the
// root, invoking fn(keySoFar, state) at every separate node encountered.
// It stops early and returns false if fn returns false. This port's trie
// façade always tail-encodes a stored key's end (even an empty-suffix
// one) as a separate node, so that is the only case this walk needs to
// surface to callers.
func (d *DArray) Enumerate(fn func(key []byte, sepNode TrieIndex) bool) bool {
	return d.enumerate(Root, nil, fn)
}

func (d *DArray) enumerate(s TrieIndex, prefix []byte, fn func([]byte, TrieIndex) bool) bool {
	if d.IsSeparate(s) {
		return fn(prefix, s)
	}
	for _, c := range d.children(s) {
		t := d.Base(s) + TrieIndex(c)
		if !d.enumerate(t, append(prefix, c), fn) {
			return false
		}
	}
	return true
}

// WriteTo serializes the DArray in the wire format from spec.md §4.6: a
// signature word, a cell count, then that many (base, check) pairs, all
// big-endian 32-bit.
func (d *DArray) WriteTo(w io.Writer) (int64, error) {
	hdr := make([]byte, 8)
	binary.BigEndian.PutUint32(hdr[0:4], sigWord)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(d.base)))
	if _, err := w.Write(hdr); err != nil {
		return 0, errors.Wrap(err, "darray: write header")
	}
	n := int64(len(hdr))

	pair := make([]byte, 8)
	for i := range d.base {
		binary.BigEndian.PutUint32(pair[0:4], uint32(d.base[i]))
		binary.BigEndian.PutUint32(pair[4:8], uint32(d.check[i]))
		if _, err := w.Write(pair); err != nil {
			return n, errors.Wrap(err, "darray: write cell")
		}
		n += int64(len(pair))
	}
	return n, nil
}

// ReadFrom deserializes a DArray previously written by WriteTo.
func (d *DArray) ReadFrom(r io.Reader) (int64, error) {
	hdr := make([]byte, 8)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return 0, errors.Wrap(err, "darray: read header")
	}
	if sig := binary.BigEndian.Uint32(hdr[0:4]); sig != sigWord {
		return 8, errors.Errorf("darray: bad signature %#x", sig)
	}
	numCells := binary.BigEndian.Uint32(hdr[4:8])

	n := int64(8)
	base := make([]TrieIndex, numCells)
	check := make([]TrieIndex, numCells)
	pair := make([]byte, 8)
	for i := range base {
		if _, err := io.ReadFull(r, pair); err != nil {
			return n, errors.Wrap(err, "darray: read cell")
		}
		n += int64(len(pair))
		base[i] = int32(binary.BigEndian.Uint32(pair[0:4]))
		check[i] = int32(binary.BigEndian.Uint32(pair[4:8]))
	}
	d.base, d.check = base, check
	return n, nil
}
