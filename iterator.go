// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package gotrie

import "github.com/petehb/gotrie/alphamap"

type iteratorEntry struct {
	key  string
	data int32
}

// TrieIterator yields every key reachable from a starting TrieState, in
// trie order. Unlike Trie.Enumerate's callback form, it lets a caller
// drive iteration one key at a time with a for-Next loop. The keys it
// yields are relative to the starting state: iterating from Trie.Root
// yields full stored keys, while iterating from a state reached by a
// partial walk yields only the remaining suffixes.
type TrieIterator struct {
	entries []iteratorEntry
	pos     int // index of the current entry, or -1 before the first Next
}

// NewIterator returns a TrieIterator over every key reachable from s. It
// does not observe s's subsequent changes or further walks.
func NewIterator(s *TrieState) *TrieIterator {
	it := &TrieIterator{pos: -1}
	s.trie.collectFrom(NewKeyStorage(), s.index, s.suffixIdx, s.inTail, &it.entries)
	return it
}

// Next advances the iterator to the next key and reports whether one was
// available.
func (it *TrieIterator) Next() bool {
	if it.pos+1 >= len(it.entries) {
		it.pos = len(it.entries)
		return false
	}
	it.pos++
	return true
}

// Key returns the current entry's key. It panics if called before a
// successful Next or after Next has returned false.
func (it *TrieIterator) Key() string {
	return it.entries[it.pos].key
}

// Data returns the current entry's data.
func (it *TrieIterator) Data() int32 {
	return it.entries[it.pos].data
}

// collectFrom performs the depth-first walk backing NewIterator. key holds
// the characters collected on the path from the iterator's starting state
// down to index; collectFrom pushes onto it on the way down and pops on the
// way back up, so the same buffer is reused for the whole traversal instead
// of allocating a fresh prefix slice per recursion level.
func (t *Trie) collectFrom(key *KeyStorage, index int32, suffixIdx int, inTail bool, out *[]iteratorEntry) {
	if inTail {
		suffix, ok := t.tail.GetSuffix(index)
		if !ok {
			return
		}
		pushed := 0
		if suffixIdx < len(suffix) {
			for _, tc := range suffix[suffixIdx:] {
				if tc == alphamap.TrieCharTerm {
					break
				}
				key.Push(t.alpha.TrieToChar(tc))
				pushed++
			}
		}
		data, _ := t.tail.GetData(index)
		*out = append(*out, iteratorEntry{key: key.String(), data: data})
		for ; pushed > 0; pushed-- {
			key.Pop()
		}
		return
	}

	for _, c := range t.da.WalkableChars(index, nil) {
		child := t.da.Base(index) + int32(c)
		key.Push(t.alpha.TrieToChar(c))
		if t.da.IsSeparate(child) {
			t.collectFrom(key, t.tailIndexOf(child), 0, true, out)
		} else {
			t.collectFrom(key, child, 0, false, out)
		}
		key.Pop()
	}
}
