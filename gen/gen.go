// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package gen generates the golden key/data fixtures consumed by the root
// package's property tests (via internal/testkeys). To run, "go generate".
// This overwrites ../testdata/words.keys and ../testdata/words.data!
//
// Unlike a dictionary-compiler tool, this program fetches nothing from the
// network: it builds a deterministic word list from a small seed
// vocabulary, combined so that many entries share prefixes (exercising
// branchInTail-style splits) and some entries are prefixes of others
// (exercising the terminal-is-prefix-of-longer-key case), plus a
// seeded pseudo-random data value per word so the fixture is reproducible
// across runs.
//
//go:generate go run gen.go
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
)

var prefixes = []string{
	"a", "al", "an", "app", "ar", "ba", "ban", "bar", "be", "bi",
	"ca", "car", "cat", "ce", "co", "con", "cor", "de", "di", "do",
	"el", "en", "ex", "fa", "fi", "fo", "ga", "ge", "go", "ha",
}

var suffixes = []string{
	"", "a", "an", "at", "ba", "be", "da", "do", "e", "ed",
	"er", "es", "et", "ge", "id", "ie", "in", "ing", "it", "le",
	"ly", "na", "ng", "on", "or", "ra", "re", "ro", "s", "t",
	"ta", "te", "to", "ty", "ve", "y",
}

func main() {
	words := buildWords()

	dir, err := os.Stat("../testdata")
	onErrFatalf(err, "stat '../testdata' (are you running this from the gen/ folder?)")
	assert(dir.IsDir(), "'../testdata' is not a directory")

	rng := rand.New(rand.NewSource(0xd47a1e))

	keysFile, err := os.Create("../testdata/words.keys")
	onErrFatalf(err, "creating words.keys")
	defer keysFile.Close()

	dataFile, err := os.Create("../testdata/words.data")
	onErrFatalf(err, "creating words.data")
	defer dataFile.Close()

	for _, w := range words {
		fmt.Fprintln(keysFile, w)
		fmt.Fprintln(dataFile, rng.Int31())
	}
	fmt.Printf("wrote %d words to ../testdata/words.keys and ../testdata/words.data\n", len(words))
}

// buildWords returns a sorted, deduplicated cross product of prefixes and
// suffixes, restricted to the lowercase letters a-z so every word fits the
// test suite's plain lowercaseAlpha alphabet.
func buildWords() []string {
	seen := make(map[string]bool)
	var words []string
	for _, p := range prefixes {
		for _, s := range suffixes {
			w := p + s
			if seen[w] {
				continue
			}
			seen[w] = true
			words = append(words, w)
		}
	}
	sort.Strings(words)
	assert(len(words) > 0, "buildWords produced no words")
	assert(!strings.Contains(words[0], " "), "words must not contain spaces")
	return words
}

// This style of error handling is a little weird for Go programs, but
// since this is a one-shot CLI program, it's appropriate to just fatal on
// an error if we can't recover.

func onErrFatalf(err error, format string, args ...any) {
	if err != nil {
		fmt.Printf(format, args...)
		fmt.Printf(": %v\n", err)
		os.Exit(1)
	}
}

func assert(cond bool, format string, args ...any) {
	if !cond {
		fmt.Print("assertion failed: ")
		fmt.Printf(format, args...)
		os.Exit(1)
	}
}
