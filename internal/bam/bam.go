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

// Package bam provides support for parsing BAM headers and BAI indexes.
package bam

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/hartwigmedical/hmftools-sub094/internal/bgzf"
	"github.com/hartwigmedical/hmftools-sub094/internal/binary"
	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/index"
)

const (
	baiMagic = "BAI\x01"
	bamMagic = "BAM\x01"

	// This is just to prevent arbitrarily long allocations due to malformed
	// data.  No reference name should be longer than this in practice.
	maximumNameLength = 1024

	// Upper bound on the SAM text embedded in a BAM header.
	maximumTextLength = 1 << 26

	// BAI uses a fixed binning scheme: 16kb leaves, five levels.
	baiMinShift = 14
	baiDepth    = 5

	// The size of each tiling window from the linear index, as specified in the
	// SAM specification section 5.1.3.
	linearWindowSize = 1 << baiMinShift
)

// Reference is a sequence declared in the BAM header.
type Reference struct {
	Name   string
	Length int64
}

// Header is the part of a BAM file that precedes the first record.
type Header struct {
	// Text is the embedded SAM header, which may be empty.
	Text string
	// References are in header order, so the index of each entry is its
	// reference ID.
	References []Reference
}

// ReadHeader reads the SAM text and the reference dictionary from the start
// of the BGZF compressed BAM data in r.
func ReadHeader(r io.Reader) (*Header, error) {
	bam, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %v", err)
	}
	defer bam.Close()

	if err := binary.ExpectBytes(bam, []byte(bamMagic)); err != nil {
		return nil, fmt.Errorf("reading magic: %v", err)
	}
	var length int32
	if err := binary.Read(bam, &length); err != nil {
		return nil, fmt.Errorf("reading SAM header length: %v", err)
	}
	if length < 0 || length > maximumTextLength {
		return nil, fmt.Errorf("invalid SAM header length (%d bytes)", length)
	}
	text := make([]byte, length)
	if _, err := io.ReadFull(bam, text); err != nil {
		return nil, fmt.Errorf("reading SAM header: %v", err)
	}

	var count int32
	if err := binary.Read(bam, &count); err != nil {
		return nil, fmt.Errorf("reading references count: %v", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("invalid references count (%d)", count)
	}
	header := &Header{Text: string(text)}
	for i := int32(0); i < count; i++ {
		// The name length includes a null terminating character.
		name, err := binary.ReadString(bam, maximumNameLength)
		if err != nil {
			return nil, fmt.Errorf("reading name of reference %d: %v", i, err)
		}
		if err := binary.Read(bam, &length); err != nil {
			return nil, fmt.Errorf("reading reference length: %v", err)
		}
		header.References = append(header.References, Reference{Name: name, Length: int64(length)})
	}
	return header, nil
}

// ChromosomeLengths converts the header's references into a chromosome-length
// table.
func (h *Header) ChromosomeLengths() []genomics.ChromosomeLength {
	lengths := make([]genomics.ChromosomeLength, len(h.References))
	for i, ref := range h.References {
		lengths[i] = genomics.ChromosomeLength{Chromosome: ref.Name, Length: ref.Length}
	}
	return lengths
}

// Read reads index data from bai and returns a set of BGZF chunks covering
// the header and all mapped reads that fall inside the specified interval.
// The first chunk is always the BAM header.
func Read(bai io.Reader, interval index.Interval) ([]*bgzf.Chunk, error) {
	return index.Read(bai, interval, baiMagic, baiReader{})
}

// baiReader reads the BAI flavour of the binning index: a fixed scheme, bins
// without a first-record offset and a linear index after each reference.
type baiReader struct{}

func (baiReader) ReadSchemeSize(io.Reader) (int32, int32, error) {
	return baiMinShift, baiDepth, nil
}

func (baiReader) ReadBin(r io.Reader) (*index.Bin, error) {
	var bin struct {
		ID     uint32
		Chunks int32
	}
	if err := binary.Read(r, &bin); err != nil {
		return nil, fmt.Errorf("reading bin header: %v", err)
	}
	return &index.Bin{ID: bin.ID, Chunks: bin.Chunks}, nil
}

func (baiReader) IsVirtualBin(id uint32) bool {
	return id == index.MetadataBin(baiDepth)
}

// SelectChunks reads the linear index and drops candidates that end before
// the first read of the interval's 16kb window.
func (baiReader) SelectChunks(r io.Reader, interval index.Interval, candidates, chunks []*bgzf.Chunk) ([]*bgzf.Chunk, error) {
	var intervals int32
	if err := binary.Read(r, &intervals); err != nil {
		return nil, fmt.Errorf("reading interval count: %v", err)
	}
	if intervals < 0 {
		return nil, fmt.Errorf("invalid interval count (%d intervals)", intervals)
	}
	offsets := make([]uint64, intervals)
	if err := binary.Read(r, &offsets); err != nil {
		return nil, fmt.Errorf("reading offsets: %v", err)
	}

	var firstReadOffset bgzf.Address
	if window := int(interval.Start / linearWindowSize); window < len(offsets) {
		firstReadOffset = bgzf.Address(offsets[window])
	}
	for _, chunk := range candidates {
		if chunk.End < firstReadOffset {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}
