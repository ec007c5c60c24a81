// Copyright 2017 Google Inc.
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

// Package bgzf provides support for BGZF virtual addresses, index chunks and
// writing BGZF files.
package bgzf

import (
	"fmt"
	"sort"

	htsbgzf "github.com/biogo/hts/bgzf"
)

// LastAddress is the maximum valid BGZF address.
const LastAddress = Address(0xffffffffffffffff)

// Address stores a BGZF "virtual address".  The lower 16 bits store the data
// offset inside the uncompressed block and upper 48 bits store the block
// offset inside the compressed file.
type Address uint64

// BlockOffset returns the offset to the start of the compressed block.
func (v Address) BlockOffset() uint64 {
	return uint64(v >> 16)
}

// DataOffset returns the offset to the data in the uncompressed block.
func (v Address) DataOffset() uint16 {
	return uint16(v & 0xffff)
}

// Offset returns v in the form used by the BAM record reader.
func (v Address) Offset() htsbgzf.Offset {
	return htsbgzf.Offset{File: int64(v.BlockOffset()), Block: v.DataOffset()}
}

func (v Address) String() string {
	return fmt.Sprintf("%d:%d", v.BlockOffset(), v.DataOffset())
}

// Chunk specifies a region from Start to End inside a BGZF file, as listed in
// a BAI or CSI index.
type Chunk struct {
	Start, End Address
}

func (v *Chunk) String() string {
	return fmt.Sprintf("[%s-%s]", v.Start, v.End)
}

// Merge orders chunks by start address and joins any that overlap or touch,
// so that a reader visits every record once.  The result is expressed as
// record reader chunks.  The input slice is not modified.
func Merge(chunks []*Chunk) []htsbgzf.Chunk {
	if len(chunks) == 0 {
		return nil
	}
	sorted := make([]Chunk, len(chunks))
	for i, chunk := range chunks {
		sorted[i] = *chunk
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := []Chunk{sorted[0]}
	for _, chunk := range sorted[1:] {
		last := &merged[len(merged)-1]
		if chunk.Start <= last.End {
			if last.End < chunk.End {
				last.End = chunk.End
			}
			continue
		}
		merged = append(merged, chunk)
	}

	converted := make([]htsbgzf.Chunk, len(merged))
	for i, chunk := range merged {
		converted[i] = htsbgzf.Chunk{Begin: chunk.Start.Offset(), End: chunk.End.Offset()}
	}
	return converted
}
