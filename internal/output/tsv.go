// Copyright 2018 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

const (
	windowSizePrefix = "## windowSize="
	columnHeader     = "chromosome\tposition\tcount"
)

var errClosed = errors.New("append to closed writer")

// TSV writes window counts as tab-separated text.  The first line records the
// window size and the second names the columns.
type TSV struct {
	w       *bufio.Writer
	hash    *blake3.Hasher
	closers []io.Closer
	closed  bool
}

// NewTSV writes the header to w and returns a TSV appending to it.  Closers
// are closed, in order, when the TSV is closed.
func NewTSV(w io.Writer, windowSize int64, closers ...io.Closer) (*TSV, error) {
	hash := blake3.New()
	t := &TSV{
		w:       bufio.NewWriter(io.MultiWriter(w, hash)),
		hash:    hash,
		closers: closers,
	}
	if _, err := fmt.Fprintf(t.w, "%s%d\n%s\n", windowSizePrefix, windowSize, columnHeader); err != nil {
		return nil, fmt.Errorf("writing header: %v", err)
	}
	return t, nil
}

// Append writes one row per count.
func (t *TSV) Append(chromosome string, counts []genomics.ReadCount) error {
	if t.closed {
		return errClosed
	}
	var line []byte
	for _, count := range counts {
		line = append(line[:0], chromosome...)
		line = append(line, '\t')
		line = strconv.AppendInt(line, count.Position, 10)
		line = append(line, '\t')
		line = strconv.AppendInt(line, int64(count.Count), 10)
		line = append(line, '\n')
		if _, err := t.w.Write(line); err != nil {
			return fmt.Errorf("writing %s: %v", count, err)
		}
	}
	return nil
}

// Digest returns the hex BLAKE3 digest of the text written so far.  It is
// final once the TSV is closed.
func (t *TSV) Digest() string {
	t.w.Flush()
	return hex.EncodeToString(t.hash.Sum(nil))
}

// Close flushes buffered rows and closes the underlying writers.
func (t *TSV) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	var errors []error
	if err := t.w.Flush(); err != nil {
		errors = append(errors, err)
	}
	for _, closer := range t.closers {
		if err := closer.Close(); err != nil {
			errors = append(errors, err)
		}
	}
	if len(errors) > 0 {
		return fmt.Errorf("closing TSV: %v", errors)
	}
	return nil
}
