// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package gotrie

// Option configures a Trie at construction time.
type Option func(*trieOptions)

type trieOptions struct {
	initialCapacity int
}

// WithInitialCapacity pre-sizes the trie's branch array for at least n
// cells, avoiding reallocation while a known-size key set is loaded.
func WithInitialCapacity(n int) Option {
	return func(o *trieOptions) {
		if n > 0 {
			o.initialCapacity = n
		}
	}
}

func applyOptions(opts []Option) trieOptions {
	o := trieOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
