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

// Package alignment provides position-sorted streams of aligned reads, one
// chromosome at a time.
package alignment

import (
	"context"
	"io"
)

// Record is the part of an aligned read needed to count coverage.
type Record struct {
	// Start is the 1-based alignment start.
	Start                    int64
	MappingQuality           int
	Unmapped                 bool
	Duplicate                bool
	SecondaryOrSupplementary bool
}

// Cursor iterates the reads of one chromosome in ascending start order.
type Cursor interface {
	// Next returns the next read, or io.EOF once the chromosome is exhausted.
	Next() (Record, error)
	Close() error
}

// Source opens independent cursors over the chromosomes of an alignment
// file.  Implementations must allow cursors on different chromosomes to be
// used concurrently.
type Source interface {
	OpenCursor(ctx context.Context, chromosome string) (Cursor, error)
}

// SliceSource is a Source holding its reads in memory, keyed by chromosome.
type SliceSource map[string][]Record

// OpenCursor returns a cursor over the reads stored for chromosome.
func (s SliceSource) OpenCursor(_ context.Context, chromosome string) (Cursor, error) {
	return &sliceCursor{records: s[chromosome]}, nil
}

type sliceCursor struct {
	records []Record
}

func (c *sliceCursor) Next() (Record, error) {
	if len(c.records) == 0 {
		return Record{}, io.EOF
	}
	next := c.records[0]
	c.records = c.records[1:]
	return next, nil
}

func (c *sliceCursor) Close() error {
	c.records = nil
	return nil
}
