// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package gotrie

import "github.com/petehb/gotrie/alphamap"

// KeyStorage is a growable buffer used to reconstruct an AlphaChar key
// while walking or enumerating a trie. Unlike the array it is modeled on,
// growth is just append; Go's slice growth already amortizes it.
type KeyStorage struct {
	chars []alphamap.AlphaChar
}

// NewKeyStorage returns an empty KeyStorage.
func NewKeyStorage() *KeyStorage {
	return &KeyStorage{}
}

// Push appends c to the stored key.
func (k *KeyStorage) Push(c alphamap.AlphaChar) {
	k.chars = append(k.chars, c)
}

// Pop removes and returns the last character pushed. It panics if the
// storage is empty, matching the precondition that callers only pop what
// they have pushed.
func (k *KeyStorage) Pop() alphamap.AlphaChar {
	n := len(k.chars)
	c := k.chars[n-1]
	k.chars = k.chars[:n-1]
	return c
}

// Len returns the number of characters currently stored.
func (k *KeyStorage) Len() int {
	return len(k.chars)
}

// Terminate appends the AlphaChar terminator.
func (k *KeyStorage) Terminate() {
	k.Push(alphamap.AlphaCharTerm)
}

// Reverse reverses the stored characters in place. Walks that build a key
// by prepending as they ascend toward the root push in reverse order and
// call Reverse once, rather than paying for an insert-at-front on every
// character.
func (k *KeyStorage) Reverse() {
	for i, j := 0, len(k.chars)-1; i < j; i, j = i+1, j-1 {
		k.chars[i], k.chars[j] = k.chars[j], k.chars[i]
	}
}

// Clear empties the storage without releasing its backing array.
func (k *KeyStorage) Clear() {
	k.chars = k.chars[:0]
}

// Chars returns the stored key, terminator included if Terminate was
// called. The returned slice aliases internal storage and must not be
// retained across further mutation of k.
func (k *KeyStorage) Chars() []alphamap.AlphaChar {
	return k.chars
}

// String returns the stored key as a Go string, stopping at the first
// terminator (or at the end of storage if none was pushed). Code points
// are converted via rune, matching AlphaChar's use as a Unicode code
// point space.
func (k *KeyStorage) String() string {
	out := make([]rune, 0, len(k.chars))
	for _, c := range k.chars {
		if c == alphamap.AlphaCharTerm {
			break
		}
		out = append(out, rune(c))
	}
	return string(out)
}
