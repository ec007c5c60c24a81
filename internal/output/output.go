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

// Package output writes per-chromosome window counts to TSV files and SQLite
// databases.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/hartwigmedical/hmftools-sub094/internal/bgzf"
	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

// Writer receives the window counts of one chromosome at a time.
type Writer interface {
	Append(chromosome string, counts []genomics.ReadCount) error
	Close() error
}

// Create opens a Writer for path.  Paths ending in .db or .sqlite are SQLite
// databases; anything else is a TSV, BGZF compressed if the path ends in .gz
// or .bgz.
func Create(path string, windowSize int64) (Writer, error) {
	if strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite") {
		return OpenSQLite(path, windowSize)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %v", path, err)
	}
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".bgz") {
		w := bgzf.NewWriter(f)
		t, err := NewTSV(w, windowSize, w, f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return t, nil
	}
	t, err := NewTSV(f, windowSize, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

// Multi appends every chromosome to each writer in turn.
type Multi []Writer

// Append stops at the first writer that fails.
func (m Multi) Append(chromosome string, counts []genomics.ReadCount) error {
	for _, w := range m {
		if err := w.Append(chromosome, counts); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer and reports the first failure.
func (m Multi) Close() error {
	var first error
	for _, w := range m {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
