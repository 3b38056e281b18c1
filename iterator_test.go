// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package gotrie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(it *TrieIterator) map[string]int32 {
	out := map[string]int32{}
	for it.Next() {
		out[it.Key()] = it.Data()
	}
	return out
}

func TestIteratorFromRootYieldsAllKeys(t *testing.T) {
	tr := newTestTrie()

	it := NewIterator(tr.Root())
	got := collect(it)

	require.Equal(t, map[string]int32{"cat": 1, "car": 2, "cart": 3, "dog": 4}, got)
}

func TestIteratorFromPartialWalkYieldsSuffixesOnly(t *testing.T) {
	tr := newTestTrie()

	s := tr.Root()
	s.WalkString("ca")
	it := NewIterator(s)
	got := collect(it)

	require.Equal(t, map[string]int32{"t": 1, "r": 2, "rt": 3}, got)
}

func TestIteratorFromLeafYieldsSingleEmptyKey(t *testing.T) {
	tr := newTestTrie()

	s := tr.Root()
	s.WalkString("cat")
	it := NewIterator(s)
	got := collect(it)

	require.Equal(t, map[string]int32{"": 1}, got)
}

func TestIteratorOnEmptyTrieYieldsNothing(t *testing.T) {
	tr := New(lowercaseAlpha())
	it := NewIterator(tr.Root())
	require.False(t, it.Next())
}

func TestIteratorDoesNotObserveLaterWrites(t *testing.T) {
	tr := New(lowercaseAlpha())
	tr.Store("a", 1)

	it := NewIterator(tr.Root())
	tr.Store("b", 2)

	got := collect(it)
	require.Equal(t, map[string]int32{"a": 1}, got)
}

func TestIteratorNextFalseAfterExhausted(t *testing.T) {
	tr := New(lowercaseAlpha())
	tr.Store("a", 1)

	it := NewIterator(tr.Root())
	require.True(t, it.Next())
	require.False(t, it.Next())
	require.False(t, it.Next(), "Next must keep returning false once exhausted")
}
