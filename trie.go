// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package gotrie implements a persistent, in-memory double-array trie: a
// compact map from Unicode-ish code point strings to 32-bit integer data,
// backed by a double-array branch structure (package internal/darray)
// with long unbranched suffixes folded into a separate tail pool (package
// internal/tail). Both structures are addressed through a caller-supplied
// alphamap.AlphaMap, which translates the caller's alphabet into the
// dense internal byte alphabet the double array is built on.
package gotrie

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/petehb/gotrie/alphamap"
	"github.com/petehb/gotrie/internal/darray"
	"github.com/petehb/gotrie/internal/tail"
)

// tailStart offsets every tail index stored (negated) into a DArray base
// field, so that tail entry 1 never collides with darray.ErrorIndex (-1)
// or any other DArray sentinel.
const tailStart int32 = 1

// Trie is a persistent, in-memory double-array trie. The zero value is
// not usable; construct one with New or Load/Read.
type Trie struct {
	alpha *alphamap.AlphaMap
	da    *darray.DArray
	tail  *tail.Tail
	dirty bool
	count int // maintained incrementally by Store/Delete; see Len
}

// New returns an empty Trie over the given alphabet. alpha is cloned, so
// later mutation of the caller's AlphaMap does not affect the trie.
func New(alpha *alphamap.AlphaMap, opts ...Option) *Trie {
	o := applyOptions(opts)
	d := darray.New()
	if o.initialCapacity > 0 {
		d.Reserve(o.initialCapacity)
	}
	return &Trie{alpha: alpha.Clone(), da: d, tail: tail.New(), dirty: true}
}

// NewBounded is New, but caps the trie's branch array at maxCells cells;
// once that many are in use, a Store that would need to grow further
// fails (returning false) instead of growing without bound. It returns
// ErrNoCapacity if maxCells cannot even accommodate the WithInitialCapacity
// reservation requested through opts.
func NewBounded(alpha *alphamap.AlphaMap, maxCells int, opts ...Option) (*Trie, error) {
	o := applyOptions(opts)
	if o.initialCapacity > maxCells {
		return nil, errors.Wrapf(ErrNoCapacity, "gotrie: initial capacity %d exceeds maxCells %d", o.initialCapacity, maxCells)
	}
	d := darray.NewBounded(maxCells)
	if o.initialCapacity > 0 {
		d.Reserve(o.initialCapacity)
	}
	return &Trie{alpha: alpha.Clone(), da: d, tail: tail.New(), dirty: true}, nil
}

// Load reads a trie previously saved with Save from the file at path.
func Load(path string) (*Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "gotrie: open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Read reads a trie previously written with Write. After it returns, r is
// positioned just past the trie's serialized data, so a trie can be
// embedded as part of a larger stream.
func Read(r io.Reader) (*Trie, error) {
	am := alphamap.New()
	if _, err := am.ReadFrom(r); err != nil {
		return nil, wrapCorrupt(err, "gotrie: read alphabet")
	}
	d := &darray.DArray{}
	if _, err := d.ReadFrom(r); err != nil {
		return nil, wrapCorrupt(err, "gotrie: read branch array")
	}
	tl := &tail.Tail{}
	if _, err := tl.ReadFrom(r); err != nil {
		return nil, wrapCorrupt(err, "gotrie: read tail pool")
	}
	t := &Trie{alpha: am, da: d, tail: tl}
	// The wire format does not carry a stored count, so pay for one full
	// enumeration here; every Store/Delete after this maintains it for free.
	t.Enumerate(func(string, int32) bool {
		t.count++
		return true
	})
	return t, nil
}

// Save writes t to the file at path, creating or truncating it.
func (t *Trie) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "gotrie: create %s", path)
	}
	defer f.Close()
	return t.Write(f)
}

// Write serializes t to w. After it returns, t is no longer dirty.
func (t *Trie) Write(w io.Writer) error {
	if _, err := t.alpha.WriteTo(w); err != nil {
		return errors.Wrap(err, "gotrie: write alphabet")
	}
	if _, err := t.da.WriteTo(w); err != nil {
		return errors.Wrap(err, "gotrie: write branch array")
	}
	if _, err := t.tail.WriteTo(w); err != nil {
		return errors.Wrap(err, "gotrie: write tail pool")
	}
	t.dirty = false
	return nil
}

// IsDirty reports whether t has changes since it was loaded or last
// written that have not yet been saved.
func (t *Trie) IsDirty() bool {
	return t.dirty
}

// Len reports the number of keys currently stored in t. The count is
// maintained incrementally by Store/StoreIfAbsent/Delete, so Len is O(1).
func (t *Trie) Len() int {
	return t.count
}

// Retrieve looks up key and returns its associated data.
func (t *Trie) Retrieve(key string) (int32, bool) {
	alpha := alphaChars(key)
	s := t.da.GetRoot()
	i := 0
	for !t.da.IsSeparate(s) {
		tc, ok := t.trieCharAt(alpha, i)
		if !ok {
			return 0, false
		}
		if !t.da.Walk(&s, tc) {
			return 0, false
		}
		if tc == alphamap.TrieCharTerm {
			break
		}
		i++
	}

	tIdx := t.tailIndexOf(s)
	suffix, ok := t.trieCharsFrom(alpha, i)
	if !ok {
		return 0, false
	}
	if t.tail.WalkString(tIdx, 0, suffix) != len(suffix) {
		return 0, false
	}

	data, _ := t.tail.GetData(tIdx)
	return data, true
}

// Store associates data with key, overwriting any existing value, and
// reports whether the operation succeeded (it fails only if key contains
// a character outside t's alphabet, or the trie cannot grow further).
func (t *Trie) Store(key string, data int32) bool {
	return t.storeConditionally(key, data, true)
}

// StoreIfAbsent is Store, but leaves any existing value for key untouched
// and returns false if key is already present.
func (t *Trie) StoreIfAbsent(key string, data int32) bool {
	return t.storeConditionally(key, data, false)
}

func (t *Trie) storeConditionally(key string, data int32, overwrite bool) bool {
	alpha := alphaChars(key)
	s := t.da.GetRoot()
	i := 0
	for !t.da.IsSeparate(s) {
		tc, ok := t.trieCharAt(alpha, i)
		if !ok {
			return false
		}
		if !t.da.Walk(&s, tc) {
			suffix, ok := t.trieCharsFrom(alpha, i)
			if !ok {
				return false
			}
			return t.branchInBranch(s, suffix, data)
		}
		if tc == alphamap.TrieCharTerm {
			break
		}
		i++
	}

	tIdx := t.tailIndexOf(s)
	suffix, ok := t.trieCharsFrom(alpha, i)
	if !ok {
		return false
	}
	if t.tail.WalkString(tIdx, 0, suffix) != len(suffix) {
		return t.branchInTail(s, suffix, data)
	}

	if !overwrite {
		return false
	}
	t.tail.SetData(tIdx, data)
	t.dirty = true
	return true
}

// branchInBranch handles a mismatch found while still walking the double
// array: sepNode gains a new child for suffix's first character, and the
// rest of suffix is stashed as a fresh tail entry hung off that child.
func (t *Trie) branchInBranch(sepNode int32, suffix []byte, data int32) bool {
	newChild := t.da.InsertBranch(sepNode, suffix[0])
	if newChild == darray.ErrorIndex {
		return false
	}

	rest := suffix
	if suffix[0] != alphamap.TrieCharTerm {
		rest = suffix[1:]
	}
	newTail := t.tail.AddSuffix(rest)
	t.tail.SetData(newTail, data)
	t.setTailIndex(newChild, newTail)

	t.count++
	t.dirty = true
	return true
}

// branchInTail handles a mismatch found partway through an existing tail
// suffix: the common prefix of the old and new suffixes is promoted into
// real double-array branches, the old suffix is truncated to what remains
// past the divergence point, and the new key's remainder is attached via
// branchInBranch at the new branch point.
func (t *Trie) branchInTail(sepNode int32, suffix []byte, data int32) bool {
	oldTail := t.tailIndexOf(sepNode)
	oldSuffix, ok := t.tail.GetSuffix(oldTail)
	if !ok {
		return false
	}

	s := sepNode
	p, q := 0, 0
	for p < len(oldSuffix) && q < len(suffix) && oldSuffix[p] == suffix[q] {
		child := t.da.InsertBranch(s, oldSuffix[p])
		if child == darray.ErrorIndex {
			t.da.PruneUpto(sepNode, s)
			t.setTailIndex(sepNode, oldTail)
			return false
		}
		s = child
		p++
		q++
	}

	oldDA := t.da.InsertBranch(s, oldSuffix[p])
	if oldDA == darray.ErrorIndex {
		t.da.PruneUpto(sepNode, s)
		t.setTailIndex(sepNode, oldTail)
		return false
	}

	oldRest := oldSuffix[p:]
	if oldSuffix[p] != alphamap.TrieCharTerm {
		oldRest = oldSuffix[p+1:]
	}
	t.tail.SetSuffix(oldTail, oldRest)
	t.setTailIndex(oldDA, oldTail)

	return t.branchInBranch(s, suffix[q:], data)
}

// Delete removes key and its data from t, reporting whether key was
// present. Any double-array cells left with no other children are freed.
func (t *Trie) Delete(key string) bool {
	alpha := alphaChars(key)
	s := t.da.GetRoot()
	i := 0
	for !t.da.IsSeparate(s) {
		tc, ok := t.trieCharAt(alpha, i)
		if !ok {
			return false
		}
		if !t.da.Walk(&s, tc) {
			return false
		}
		if tc == alphamap.TrieCharTerm {
			break
		}
		i++
	}

	tIdx := t.tailIndexOf(s)
	suffix, ok := t.trieCharsFrom(alpha, i)
	if !ok {
		return false
	}
	if t.tail.WalkString(tIdx, 0, suffix) != len(suffix) {
		return false
	}

	t.tail.Delete(tIdx)
	t.da.SetBase(s, darray.ErrorIndex)
	t.da.Prune(s)
	t.count--
	t.dirty = true
	return true
}

// Enumerate visits every key in t in trie order, calling fn with the key
// and its data. It stops early, returning false, if fn returns false.
func (t *Trie) Enumerate(fn func(key string, data int32) bool) bool {
	return t.da.Enumerate(func(prefix []byte, sepNode int32) bool {
		tIdx := t.tailIndexOf(sepNode)
		suffix, _ := t.tail.GetSuffix(tIdx)
		data, _ := t.tail.GetData(tIdx)

		full := make([]rune, 0, len(prefix)+len(suffix))
		for _, tc := range prefix {
			if tc == alphamap.TrieCharTerm {
				break
			}
			full = append(full, rune(t.alpha.TrieToChar(tc)))
		}
		for _, tc := range suffix {
			if tc == alphamap.TrieCharTerm {
				break
			}
			full = append(full, rune(t.alpha.TrieToChar(tc)))
		}
		return fn(string(full), data)
	})
}

func (t *Trie) tailIndexOf(sepNode int32) int32 {
	return -t.da.Base(sepNode) - tailStart
}

func (t *Trie) setTailIndex(sepNode, tailIdx int32) {
	t.da.SetBase(sepNode, -(tailIdx + tailStart))
}

// alphaChars decodes a Go string into the AlphaChar sequence the trie's
// alphabet map operates on, one code point per rune.
func alphaChars(key string) []alphamap.AlphaChar {
	rs := []rune(key)
	out := make([]alphamap.AlphaChar, len(rs))
	for i, r := range rs {
		out[i] = alphamap.AlphaChar(r)
	}
	return out
}

// trieCharAt returns the TrieChar for alpha[i], or the terminator once i
// runs past the end of alpha. ok is false if alpha[i] has no mapping.
func (t *Trie) trieCharAt(alpha []alphamap.AlphaChar, i int) (byte, bool) {
	if i >= len(alpha) {
		return alphamap.TrieCharTerm, true
	}
	tc := t.alpha.CharToTrie(alpha[i])
	if tc == alphamap.TrieCharNone {
		return 0, false
	}
	return tc, true
}

// trieCharsFrom translates alpha[i:] plus a trailing terminator into
// TrieChars. ok is false if any character in the range has no mapping.
func (t *Trie) trieCharsFrom(alpha []alphamap.AlphaChar, i int) ([]byte, bool) {
	return t.alpha.CharToTrieString(alpha[i:])
}
