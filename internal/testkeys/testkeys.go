// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package testkeys reads golden key/data fixtures used by the trie test
// suite: one key per line in a keys file, paired line-for-line with its
// associated data value in a data file.
package testkeys

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Pair is one golden key/data fixture entry.
type Pair struct {
	Key  string
	Data int32
}

// Reader reads a pair of files holding golden key/data fixtures. Rows are
// read one at a time with Next.
type Reader struct {
	keyScanner  *bufio.Scanner
	dataScanner *bufio.Scanner
	keyF        *os.File
	dataF       *os.File
	nameBase    string
	line        int
	isClosed    bool
}

// NewReader returns a Reader over keysFile (one key per line) and
// dataFile (one base-10 int32 per line, line-aligned with keysFile).
func NewReader(keysFile, dataFile string) (*Reader, error) {
	keyF, err := os.Open(keysFile)
	if err != nil {
		return nil, err
	}
	dataF, err := os.Open(dataFile)
	if err != nil {
		keyF.Close()
		return nil, err
	}

	return &Reader{
		keyScanner:  bufio.NewScanner(keyF),
		dataScanner: bufio.NewScanner(dataF),
		keyF:        keyF,
		dataF:       dataF,
		nameBase:    filepath.Base(keysFile),
	}, nil
}

// Next returns the next key/data pair. Once the files are exhausted, Next
// returns (nil, nil) indefinitely.
func (r *Reader) Next() (*Pair, error) {
	if r.isClosed {
		return nil, nil
	}

	if r.keyScanner.Scan() && r.dataScanner.Scan() {
		r.line++
		data, err := strconv.ParseInt(r.dataScanner.Text(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.CaseName(), err)
		}
		return &Pair{Key: r.keyScanner.Text(), Data: int32(data)}, nil
	}

	r.Close()
	return nil, nil
}

// Line returns the 1-based line number of the last pair read.
func (r *Reader) Line() int {
	return r.line
}

// CaseName identifies the current fixture row for test failure messages.
func (r *Reader) CaseName() string {
	return fmt.Sprintf("%s#%d", r.nameBase, r.line)
}

// Close closes the underlying files. It is safe to call on an already
// closed Reader.
func (r *Reader) Close() {
	if !r.isClosed {
		r.keyF.Close()
		r.dataF.Close()
		r.isClosed = true
	}
}
