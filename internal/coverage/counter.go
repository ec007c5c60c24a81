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

// Package coverage counts reads in fixed-size windows, one chromosome per
// task, and merges the per-chromosome results in chromosome-table order.
package coverage

import (
	"github.com/hartwigmedical/hmftools-sub094/internal/alignment"
	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

// Eligible reports whether record contributes to window counts.
func Eligible(record alignment.Record) bool {
	return record.MappingQuality > 0 &&
		!record.Unmapped &&
		!record.Duplicate &&
		!record.SecondaryOrSupplementary
}

// Counter accumulates reads of one chromosome into windows.  Reads must be
// added in non-decreasing start order; the counter does not check.  A
// Counter is owned by a single goroutine.
type Counter struct {
	chromosome string
	length     int64
	windowSize int64

	windowStart int64
	count       int32
	emitted     []genomics.ReadCount
}

// NewCounter returns a Counter for a chromosome of the given length.
func NewCounter(chromosome string, length, windowSize int64) *Counter {
	return &Counter{
		chromosome:  chromosome,
		length:      length,
		windowSize:  windowSize,
		windowStart: 1,
		count:       -1,
	}
}

// Add counts a read starting at alignmentStart if it is eligible.  Windows
// without reads are not emitted.
func (c *Counter) Add(alignmentStart int64, eligible bool) {
	if !eligible {
		return
	}
	window := genomics.WindowPosition(alignmentStart, c.windowSize)
	if window != c.windowStart {
		c.flush()
		c.windowStart = window
		c.count = 0
	} else if c.count < 0 {
		c.count = 0
	}
	c.count++
}

func (c *Counter) flush() {
	if c.count < 0 {
		return
	}
	c.emitted = append(c.emitted, genomics.ReadCount{
		Chromosome: c.chromosome,
		Position:   c.windowStart,
		Count:      c.count,
	})
	c.count = -1
}

// Finish flushes the open window and appends an end-of-chromosome marker at
// the window holding the last base when it lies past the current window.  The
// current window is the last one counted, or 1 if no read was counted, so a
// chromosome that fits in its first window gets no marker.  The Counter must
// not be used afterwards.
func (c *Counter) Finish() []genomics.ReadCount {
	c.flush()
	if last := genomics.WindowPosition(c.length, c.windowSize); last > c.windowStart {
		c.emitted = append(c.emitted, genomics.ReadCount{
			Chromosome: c.chromosome,
			Position:   last,
			Count:      genomics.ChromosomeEnd,
		})
	}
	return c.emitted
}
