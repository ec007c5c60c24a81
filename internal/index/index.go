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

// Package index contains support for reading hierarchical binning indexes.
package index

import (
	"fmt"
	"io"

	"github.com/hartwigmedical/hmftools-sub094/internal/bgzf"
	"github.com/hartwigmedical/hmftools-sub094/internal/binary"
)

// Interval selects reads from an index by reference ID.
type Interval struct {
	// ReferenceID specifies the reference to match.  If it is negative, any
	// reference matches the interval.
	ReferenceID int32
	// Start and End specify the open range (in base pairs) relative to the
	// reference.  If both are zero the whole reference matches.
	Start, End uint32
}

// WholeReference returns an Interval covering every read mapped to id.
func WholeReference(id int32) Interval {
	return Interval{ReferenceID: id}
}

func (interval Interval) String() string {
	return fmt.Sprintf("[reference:%d, start:%d, end:%d]", interval.ReferenceID, interval.Start, interval.End)
}

// Read reads index data from r and returns a set of BGZF chunks covering the
// header and all mapped reads that fall inside interval.  The first chunk is
// always the header of the indexed file.  Format specific fields are read
// through reader.
func Read(r io.Reader, interval Interval, magic string, reader Reader) ([]*bgzf.Chunk, error) {
	if err := binary.ExpectBytes(r, []byte(magic)); err != nil {
		return nil, fmt.Errorf("reading magic: %v", err)
	}

	minShift, depth, err := reader.ReadSchemeSize(r)
	if err != nil {
		return nil, fmt.Errorf("reading the scheme size: %v", err)
	}
	if minShift <= 0 || depth <= 0 || minShift+depth*3 > 32 {
		return nil, fmt.Errorf("unsupported binning scheme (min shift %d, depth %d)", minShift, depth)
	}
	bins := BinsForRange(interval.Start, interval.End, minShift, depth)

	var references int32
	if err := binary.Read(r, &references); err != nil {
		return nil, fmt.Errorf("reading reference count: %v", err)
	}

	header := &bgzf.Chunk{End: bgzf.LastAddress}
	chunks := []*bgzf.Chunk{header}
	for i := int32(0); i < references; i++ {
		var binCount int32
		if err := binary.Read(r, &binCount); err != nil {
			return nil, fmt.Errorf("reading bin count: %v", err)
		}

		var candidates []*bgzf.Chunk
		for j := int32(0); j < binCount; j++ {
			bin, err := reader.ReadBin(r)
			if err != nil {
				return nil, fmt.Errorf("reading bin: %v", err)
			}
			if bin.Chunks < 0 {
				return nil, fmt.Errorf("invalid chunk count (%d chunks)", bin.Chunks)
			}

			includeChunks := ContainsBin(interval, i, bin.ID, bins)
			for k := int32(0); k < bin.Chunks; k++ {
				var chunk bgzf.Chunk
				if err := binary.Read(r, &chunk); err != nil {
					return nil, fmt.Errorf("reading chunk: %v", err)
				}
				if reader.IsVirtualBin(bin.ID) {
					continue
				}
				if includeChunks && chunk.End >= bgzf.Address(bin.Offset) {
					candidates = append(candidates, &chunk)
				}
				if header.End > chunk.Start {
					header.End = chunk.Start
				}
			}
		}
		chunks, err = reader.SelectChunks(r, interval, candidates, chunks)
		if err != nil {
			return nil, fmt.Errorf("selecting chunks of reference %d: %v", i, err)
		}
	}
	return chunks, nil
}

// Reader reads format specific information from index data.
type Reader interface {
	// ReadSchemeSize reads the binning scheme's width, which is the number of
	// bits for the minimal interval, and the depth of the binning index.
	ReadSchemeSize(io.Reader) (int32, int32, error)
	// ReadBin reads a bin header.
	ReadBin(io.Reader) (*Bin, error)
	// IsVirtualBin indicates if the provided ID identifies a pseudo-bin that
	// stores metadata rather than reads.
	IsVirtualBin(uint32) bool
	// SelectChunks reads any data that follows the bins of a reference, drops
	// candidates it rules out and appends the rest to chunks.
	SelectChunks(r io.Reader, interval Interval, candidates, chunks []*bgzf.Chunk) ([]*bgzf.Chunk, error)
}

// Bin represents a contiguous genomic region.
type Bin struct {
	// ID is an identifier for the bin.
	ID uint32
	// Offset is the (virtual) file offset of the first overlapping record.
	Offset uint64
	// Chunks is the number of chunks in the bin.
	Chunks int32
}

// MetadataBin returns the ID of the pseudo-bin holding per-reference
// metadata in an index of the given depth.
func MetadataBin(depth int32) uint32 {
	return uint32((1<<(uint(depth+1)*3))-1)/7 + 1
}

// ContainsBin reports whether the bin with binID on referenceID may hold reads
// inside interval.  bins must come from BinsForRange for the same interval.
func ContainsBin(interval Interval, referenceID int32, binID uint32, bins []uint32) bool {
	if interval.ReferenceID >= 0 && referenceID != interval.ReferenceID {
		return false
	}

	if interval.Start == 0 && interval.End == 0 {
		return true
	}

	for _, id := range bins {
		if id == binID {
			return true
		}
	}
	return false
}

// BinsForRange lists the IDs of every bin overlapping [start, end) in a
// scheme with the given minimal shift and depth.
func BinsForRange(start, end uint32, minShift, depth int32) []uint32 {
	maxWidth := maximumBinWidth(minShift, depth)
	if end == 0 || uint64(end) > maxWidth {
		end = uint32(maxWidth - 1)
	} else {
		end--
	}
	if uint64(start) >= maxWidth || end < start {
		return nil
	}

	var bins []uint32
	for l, t, s := uint(0), uint32(0), uint(minShift+depth*3); l <= uint(depth); l++ {
		b := t + (start >> s)
		e := t + (end >> s)
		for i := b; i <= e; i++ {
			bins = append(bins, i)
		}
		s -= 3
		t += 1 << (l * 3)
	}
	return bins
}

func maximumBinWidth(minShift, depth int32) uint64 {
	return uint64(1) << uint(minShift+depth*3)
}
