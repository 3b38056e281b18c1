// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package gotrie

import "github.com/petehb/gotrie/alphamap"

// TrieState is a cursor for walking a Trie one character at a time. Once
// the walk crosses into a tail suffix there is only one possible path
// forward, so a TrieState never needs to track more than a single
// (index, suffix offset) pair plus which structure that index addresses.
//
// The zero value is not usable; obtain one with Trie.Root.
type TrieState struct {
	trie      *Trie
	index     int32 // a DArray index, or (once inTail) a Tail index
	suffixIdx int   // offset into the tail suffix; valid only if inTail
	inTail    bool
}

// Root returns a new TrieState positioned at t's root.
func (t *Trie) Root() *TrieState {
	return &TrieState{trie: t, index: t.da.GetRoot()}
}

// Clone returns an independent copy of s.
func (s *TrieState) Clone() *TrieState {
	cp := *s
	return &cp
}

// Copy overwrites s with src's position.
func (s *TrieState) Copy(src *TrieState) {
	*s = *src
}

// Rewind returns s to its trie's root.
func (s *TrieState) Rewind() {
	s.index = s.trie.da.GetRoot()
	s.suffixIdx = 0
	s.inTail = false
}

// Walk advances s by one character. It returns false, leaving s
// unchanged, if c has no mapping in the trie's alphabet or there is no
// transition for it from s's current position.
func (s *TrieState) Walk(c alphamap.AlphaChar) bool {
	tc := s.trie.alpha.CharToTrie(c)
	if tc == alphamap.TrieCharNone {
		return false
	}
	return s.trie.walkTrieChar(s, tc)
}

// WalkString advances s through every rune of key in turn, stopping and
// returning false as soon as one fails to walk. It does not walk an
// implicit terminator; callers checking for a stored key should follow
// a successful WalkString with Walk(alphamap.AlphaCharTerm).
func (s *TrieState) WalkString(key string) bool {
	for _, r := range key {
		if !s.Walk(alphamap.AlphaChar(r)) {
			return false
		}
	}
	return true
}

// IsWalkable reports whether Walk(c) would succeed, without moving s.
func (s *TrieState) IsWalkable(c alphamap.AlphaChar) bool {
	tc := s.trie.alpha.CharToTrie(c)
	if tc == alphamap.TrieCharNone {
		return false
	}
	return s.trie.isWalkableTrieChar(s, tc)
}

// WalkableChars returns every AlphaChar that Walk would currently accept,
// freshly allocated on each call.
func (s *TrieState) WalkableChars() []alphamap.AlphaChar {
	if s.inTail {
		suffix, ok := s.trie.tail.GetSuffix(s.index)
		if !ok || s.suffixIdx >= len(suffix) {
			return nil
		}
		return []alphamap.AlphaChar{s.trie.alpha.TrieToChar(suffix[s.suffixIdx])}
	}
	var out []alphamap.AlphaChar
	for _, tc := range s.trie.da.WalkableChars(s.index, nil) {
		out = append(out, s.trie.alpha.TrieToChar(tc))
	}
	return out
}

// IsSingle reports whether s is on a single path: once a walk reaches the
// tail pool there is no other branch between here and any leaf.
func (s *TrieState) IsSingle() bool {
	return s.inTail
}

// IsTerminal reports whether s terminates a stored key, i.e. whether
// walking the terminator from s would succeed.
func (s *TrieState) IsTerminal() bool {
	return s.IsWalkable(alphamap.AlphaCharTerm)
}

// IsLeaf reports whether s is both single and terminal: a stored key ends
// here and nothing branches off from it.
func (s *TrieState) IsLeaf() bool {
	return s.IsSingle() && s.IsTerminal()
}

// GetData returns the data of the tail entry s is in. It succeeds whenever
// s is inside a tail suffix (IsSingle), at any offset, and returns the data
// of the one key that suffix belongs to; it fails while s is still in the
// double array. Walking a full key followed by Walk(alphamap.AlphaCharTerm)
// always ends inside that key's tail suffix.
func (s *TrieState) GetData() (int32, bool) {
	if !s.inTail {
		return 0, false
	}
	return s.trie.tail.GetData(s.index)
}

// TerminalData returns the data that would be found by walking the
// terminator from s, without moving s. It returns false if s does not
// terminate a key.
func (s *TrieState) TerminalData() (int32, bool) {
	probe := s.Clone()
	if !probe.Walk(alphamap.AlphaCharTerm) {
		return 0, false
	}
	return probe.GetData()
}

// walkTrieChar is the stepping logic behind TrieState.Walk: it advances
// through the double array until a separate node is reached, then
// switches to walking the tail suffix one TrieChar at a time.
func (t *Trie) walkTrieChar(s *TrieState, c byte) bool {
	if s.inTail {
		newIdx, ok := t.tail.WalkChar(s.index, s.suffixIdx, c)
		if !ok {
			return false
		}
		s.suffixIdx = newIdx
		return true
	}
	if !t.da.Walk(&s.index, c) {
		return false
	}
	if t.da.IsSeparate(s.index) {
		s.index = t.tailIndexOf(s.index)
		s.suffixIdx = 0
		s.inTail = true
	}
	return true
}

func (t *Trie) isWalkableTrieChar(s *TrieState, c byte) bool {
	if s.inTail {
		return t.tail.IsWalkableChar(s.index, s.suffixIdx, c)
	}
	return t.da.IsWalkable(s.index, c)
}
