// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package gotrie

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors of package gotrie. The functions that return an error
// (NewBounded, Load, Read) wrap them with github.com/pkg/errors, so callers
// match them with errors.Is. The in-memory API (Store, StoreIfAbsent,
// Retrieve, Delete) reports failure with a false return, not an error.
var (
	// ErrNotFound names the condition a false return from Retrieve or
	// Delete reports for a key that is not in the trie. No function in
	// this package returns it.
	ErrNotFound = errors.New("gotrie: key not found")

	// ErrOutOfAlphabet names the condition of a key containing a code
	// point that has no mapping in the trie's alphabet; Store, Retrieve
	// and Delete report it with a false return. No function in this
	// package returns it.
	ErrOutOfAlphabet = errors.New("gotrie: key contains a character outside the trie's alphabet")

	// ErrNoCapacity is returned by NewBounded when the requested initial
	// capacity exceeds maxCells. A Store that runs out of branch cells
	// returns false instead.
	ErrNoCapacity = errors.New("gotrie: unable to allocate trie capacity for this key")

	// ErrCorrupt is returned when deserialized trie data fails a structural
	// sanity check.
	ErrCorrupt = errors.New("gotrie: corrupt trie data")
)

// wrapCorrupt wraps a deserialization failure from one of the three
// sub-structure codecs with ErrCorrupt, so Read's callers can match it
// with errors.Is, plus msg for the decoding step that failed and cause's
// own message for detail.
func wrapCorrupt(cause error, msg string) error {
	return pkgerrors.Wrap(ErrCorrupt, msg+": "+cause.Error())
}
