// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package alphamap

import (
	"bytes"
	"testing"
)

func TestAddRangeMergesOverlappingAndAbutting(t *testing.T) {
	a := New()
	if err := a.AddRange('a', 'f'); err != nil {
		t.Fatalf("AddRange: %v", err)
	}
	if err := a.AddRange('d', 'k'); err != nil {
		t.Fatalf("AddRange: %v", err)
	}
	if err := a.AddRange('l', 'n'); err != nil {
		t.Fatalf("AddRange: %v", err)
	}

	if len(a.spans) != 1 {
		t.Fatalf("expected a single merged span, got %d: %+v", len(a.spans), a.spans)
	}
	if a.spans[0] != (span{'a', 'n'}) {
		t.Fatalf("unexpected merged span: %+v", a.spans[0])
	}
}

func TestAddRangeKeepsDisjointRangesSeparate(t *testing.T) {
	a := New()
	a.AddRange('a', 'c')
	a.AddRange('x', 'z')

	if len(a.spans) != 2 {
		t.Fatalf("expected two disjoint spans, got %d", len(a.spans))
	}
}

func TestCharToTrieRoundTrip(t *testing.T) {
	a := New()
	a.AddRange('a', 'z')

	for c := AlphaChar('a'); c <= 'z'; c++ {
		tc := a.CharToTrie(c)
		if tc == TrieCharNone {
			t.Fatalf("char %q has no mapping", rune(c))
		}
		got := a.TrieToChar(tc)
		if got != c {
			t.Fatalf("round trip mismatch for %q: got %q", rune(c), rune(got))
		}
	}
}

func TestCharToTrieTerminator(t *testing.T) {
	a := New()
	a.AddRange('a', 'z')

	if tc := a.CharToTrie(AlphaCharTerm); tc != TrieCharTerm {
		t.Fatalf("terminator should map to TrieCharTerm, got %d", tc)
	}
	if c := a.TrieToChar(TrieCharTerm); c != AlphaCharTerm {
		t.Fatalf("TrieCharTerm should map back to AlphaCharTerm, got %d", c)
	}
}

func TestCharToTrieOutOfAlphabet(t *testing.T) {
	a := New()
	a.AddRange('a', 'z')

	if tc := a.CharToTrie('9'); tc != TrieCharNone {
		t.Fatalf("expected TrieCharNone for out-of-alphabet char, got %d", tc)
	}
}

func TestCharToTrieStringStopsAtUnmapped(t *testing.T) {
	a := New()
	a.AddRange('a', 'z')

	if _, ok := a.CharToTrieString([]AlphaChar{'c', 'a', 't', '!'}); ok {
		t.Fatalf("expected translation to fail on unmapped '!'")
	}

	trie, ok := a.CharToTrieString([]AlphaChar{'c', 'a', 't'})
	if !ok {
		t.Fatalf("translation of in-alphabet string failed")
	}
	if len(trie) != 4 || trie[3] != TrieCharTerm {
		t.Fatalf("expected 3 chars plus terminator, got %v", trie)
	}
}

func TestWriteToReadFromRoundTrip(t *testing.T) {
	a := New()
	a.AddRange('a', 'z')
	a.AddRange(0x0e01, 0x0e5b) // Thai block, exercises non-ASCII ranges

	var buf bytes.Buffer
	if _, err := a.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	b := New()
	if _, err := b.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if len(b.spans) != len(a.spans) {
		t.Fatalf("span count mismatch: got %d, want %d", len(b.spans), len(a.spans))
	}
	for i := range a.spans {
		if a.spans[i] != b.spans[i] {
			t.Fatalf("span %d mismatch: got %+v, want %+v", i, b.spans[i], a.spans[i])
		}
	}
	for c := AlphaChar('a'); c <= 'z'; c++ {
		if a.CharToTrie(c) != b.CharToTrie(c) {
			t.Fatalf("CharToTrie(%q) mismatch after round trip", rune(c))
		}
	}
}

func TestReadFromRejectsBadSignature(t *testing.T) {
	a := New()
	if _, err := a.ReadFrom(bytes.NewReader(make([]byte, 12))); err == nil {
		t.Fatalf("expected an error for a zeroed, non-matching signature")
	}
}
