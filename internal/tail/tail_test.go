// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package tail

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/maps"
)

func TestAddSuffixGetSuffix(t *testing.T) {
	tl := New()

	idx := tl.AddSuffix([]byte{'c', 'a', 't', 0})
	require.NotEqual(t, TrieIndex(0), idx)

	got, ok := tl.GetSuffix(idx)
	require.True(t, ok)
	require.Equal(t, []byte{'c', 'a', 't', 0}, got)
}

func TestSetSuffixReplaces(t *testing.T) {
	tl := New()
	idx := tl.AddSuffix([]byte{'x', 0})

	require.True(t, tl.SetSuffix(idx, []byte{'y', 'z', 0}))

	got, ok := tl.GetSuffix(idx)
	require.True(t, ok)
	require.Equal(t, []byte{'y', 'z', 0}, got)
}

func TestGetSetData(t *testing.T) {
	tl := New()
	idx := tl.AddSuffix([]byte{0})

	_, ok := tl.GetData(idx)
	require.True(t, ok, "a freshly added entry must have a readable, zeroed data value")

	require.True(t, tl.SetData(idx, 42))
	data, ok := tl.GetData(idx)
	require.True(t, ok)
	require.Equal(t, int32(42), data)
}

func TestInvalidIndexOperationsFail(t *testing.T) {
	tl := New()

	_, ok := tl.GetSuffix(0)
	require.False(t, ok, "index 0 is the reserved free-list head, never a real entry")

	_, ok = tl.GetSuffix(99)
	require.False(t, ok)

	require.False(t, tl.SetData(0, 1))
	require.False(t, tl.Delete(99))
}

func TestDeleteRecyclesEntry(t *testing.T) {
	tl := New()

	a := tl.AddSuffix([]byte{'a', 0})
	b := tl.AddSuffix([]byte{'b', 0})
	before := tl.NumEntries()

	require.True(t, tl.Delete(a))
	_, ok := tl.GetSuffix(a)
	require.False(t, ok, "a deleted entry must no longer be readable")

	c := tl.AddSuffix([]byte{'c', 0})
	require.Equal(t, a, c, "AddSuffix should recycle the freed slot before growing")
	require.Equal(t, before, tl.NumEntries(), "recycling must not grow the backing array")

	// b is untouched by the delete/recycle of a.
	got, ok := tl.GetSuffix(b)
	require.True(t, ok)
	require.Equal(t, []byte{'b', 0}, got)
}

func TestDeleteFreeListOrdering(t *testing.T) {
	tl := New()

	a := tl.AddSuffix([]byte{'a', 0})
	b := tl.AddSuffix([]byte{'b', 0})
	c := tl.AddSuffix([]byte{'c', 0})

	require.True(t, tl.Delete(a))
	require.True(t, tl.Delete(b))

	// Entries are handed back out in most-recently-freed order (a simple
	// LIFO free list), so b is recycled before a.
	first := tl.AddSuffix([]byte{'x', 0})
	require.Equal(t, b, first)
	second := tl.AddSuffix([]byte{'y', 0})
	require.Equal(t, a, second)

	got, ok := tl.GetSuffix(c)
	require.True(t, ok)
	require.Equal(t, []byte{'c', 0}, got)
}

func TestWalkChar(t *testing.T) {
	tl := New()
	idx := tl.AddSuffix([]byte{'d', 'o', 'g', 0})

	pos := 0
	var ok bool
	for _, want := range []byte{'d', 'o', 'g', 0} {
		pos, ok = tl.WalkChar(idx, pos, want)
		require.True(t, ok)
	}
	require.Equal(t, 4, pos)

	_, ok = tl.WalkChar(idx, pos, 'x')
	require.False(t, ok, "walking past the terminator must fail")
}

func TestWalkCharMismatchLeavesOffsetUnchanged(t *testing.T) {
	tl := New()
	idx := tl.AddSuffix([]byte{'d', 'o', 'g', 0})

	pos, ok := tl.WalkChar(idx, 0, 'x')
	require.False(t, ok)
	require.Equal(t, 0, pos)
}

func TestWalkStringMatchesWholeSuffix(t *testing.T) {
	tl := New()
	idx := tl.AddSuffix([]byte{'d', 'o', 'g', 0})

	n := tl.WalkString(idx, 0, []byte{'d', 'o', 'g', 0})
	require.Equal(t, 4, n)
}

func TestWalkStringStopsAtMismatch(t *testing.T) {
	tl := New()
	idx := tl.AddSuffix([]byte{'d', 'o', 'g', 0})

	n := tl.WalkString(idx, 0, []byte{'d', 'o', 'x', 0})
	require.Equal(t, 2, n, "should match 'd' and 'o' before failing on 'x'")

	// A partial match must leave the suffix untouched for a fresh walk.
	pos, ok := tl.WalkChar(idx, 0, 'd')
	require.True(t, ok)
	require.Equal(t, 1, pos)
}

func TestWalkStringFromMidSuffix(t *testing.T) {
	tl := New()
	idx := tl.AddSuffix([]byte{'d', 'o', 'g', 0})

	n := tl.WalkString(idx, 1, []byte{'o', 'g'})
	require.Equal(t, 2, n)
}

func TestIsWalkableCharDoesNotMutate(t *testing.T) {
	tl := New()
	idx := tl.AddSuffix([]byte{'h', 'i', 0})

	require.True(t, tl.IsWalkableChar(idx, 0, 'h'))
	require.False(t, tl.IsWalkableChar(idx, 0, 'z'))

	// Confirm no state changed: walking from the same offset still works.
	pos, ok := tl.WalkChar(idx, 0, 'h')
	require.True(t, ok)
	require.Equal(t, 1, pos)
}

func TestWriteToReadFromRoundTrip(t *testing.T) {
	tl := New()
	a := tl.AddSuffix([]byte{'a', 'l', 'p', 'h', 'a', 0})
	tl.SetData(a, 7)
	b := tl.AddSuffix([]byte{'b', 'e', 't', 'a', 0})
	tl.SetData(b, -3)
	tl.Delete(a)

	var buf bytes.Buffer
	_, err := tl.WriteTo(&buf)
	require.NoError(t, err)

	tl2 := &Tail{}
	_, err = tl2.ReadFrom(&buf)
	require.NoError(t, err)

	require.Equal(t, tl.NumEntries(), tl2.NumEntries())

	_, ok := tl2.GetSuffix(a)
	require.False(t, ok, "a must still be free after a round trip")

	got, ok := tl2.GetSuffix(b)
	require.True(t, ok)
	require.Equal(t, []byte{'b', 'e', 't', 'a', 0}, got)
	data, ok := tl2.GetData(b)
	require.True(t, ok)
	require.Equal(t, int32(-3), data)

	// The recycled slot must still work after the round trip.
	c := tl2.AddSuffix([]byte{'c', 0})
	require.Equal(t, a, c)
}

func TestReadFromRejectsBadSignature(t *testing.T) {
	tl := &Tail{}
	_, err := tl.ReadFrom(bytes.NewReader(make([]byte, 12)))
	require.Error(t, err)
}

// liveData snapshots every non-free entry's data value into a map, for
// comparing what the free list left standing after a round of deletes.
func liveData(tl *Tail) map[TrieIndex]int32 {
	out := map[TrieIndex]int32{}
	for idx := TrieIndex(1); int(idx) < tl.NumEntries(); idx++ {
		if data, ok := tl.GetData(idx); ok {
			out[idx] = data
		}
	}
	return out
}

func TestDeleteLeavesOnlyLiveEntriesReadable(t *testing.T) {
	tl := New()
	a := tl.AddSuffix([]byte{'a', 0})
	tl.SetData(a, 1)
	b := tl.AddSuffix([]byte{'b', 0})
	tl.SetData(b, 2)
	c := tl.AddSuffix([]byte{'c', 0})
	tl.SetData(c, 3)

	tl.Delete(b)

	want := map[TrieIndex]int32{a: 1, c: 3}
	got := liveData(tl)
	require.True(t, maps.Equal(want, got), "expected live entries %v, got %v (keys: %v)", want, got, maps.Keys(got))
}

func TestReadFromRejectsCorruptFreeList(t *testing.T) {
	// A valid header and a single reserved entry, but firstFree points past
	// the end of the (one-entry) array.
	var buf bytes.Buffer
	hdr := make([]byte, 12)
	binary.BigEndian.PutUint32(hdr[0:4], sigWord)
	binary.BigEndian.PutUint32(hdr[4:8], 1)
	binary.BigEndian.PutUint32(hdr[8:12], 5)
	buf.Write(hdr)
	buf.Write(make([]byte, 10)) // the single reserved entry, empty suffix

	tl := &Tail{}
	_, err := tl.ReadFrom(&buf)
	require.Error(t, err, "an out-of-range free-list link must be rejected, not silently ignored")
}
