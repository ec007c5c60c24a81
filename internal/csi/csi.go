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

// Package csi contains support for processing the information in a CSI file (http://samtools.github.io/hts-specs/CSIv1.pdf).
package csi

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/hartwigmedical/hmftools-sub094/internal/bgzf"
	"github.com/hartwigmedical/hmftools-sub094/internal/binary"
	"github.com/hartwigmedical/hmftools-sub094/internal/index"
)

const csiMagic = "CSI\x01"

var gzipMagic = []byte{0x1f, 0x8b}

// Read reads CSI formatted index data from r and returns a set of BGZF chunks
// covering the header and all mapped reads that fall inside interval.  The
// first chunk is always the header of the indexed file.  The index may be
// BGZF compressed, as written by samtools, or raw.
func Read(r io.Reader, interval index.Interval) ([]*bgzf.Chunk, error) {
	br := bufio.NewReader(r)
	var data io.Reader = br
	if magic, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(magic, gzipMagic) {
		csi, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("initializing gzip reader: %v", err)
		}
		defer csi.Close()
		data = csi
	}
	return index.Read(data, interval, csiMagic, &Reader{})
}

// Reader contains support for reading information from CSI formatted data.
type Reader struct {
	depth int32
}

// ReadSchemeSize reads the CSI formatted index data header and returns the
// scheme size.
func (rd *Reader) ReadSchemeSize(csi io.Reader) (int32, int32, error) {
	var csiHeader struct {
		MinimumWidth    int32
		Depth           int32
		AuxiliaryLength int32
	}
	if err := binary.Read(csi, &csiHeader); err != nil {
		return 0, 0, fmt.Errorf("reading the csi header: %v", err)
	}
	if csiHeader.AuxiliaryLength < 0 {
		return 0, 0, fmt.Errorf("invalid auxiliary data length (%d)", csiHeader.AuxiliaryLength)
	}
	if _, err := io.CopyN(io.Discard, csi, int64(csiHeader.AuxiliaryLength)); err != nil {
		return 0, 0, fmt.Errorf("reading past auxiliary data: %v", err)
	}
	rd.depth = csiHeader.Depth
	return csiHeader.MinimumWidth, csiHeader.Depth, nil
}

// ReadBin reads a bin from r.
func (*Reader) ReadBin(r io.Reader) (*index.Bin, error) {
	var bin index.Bin
	if err := binary.Read(r, &bin); err != nil {
		return nil, fmt.Errorf("reading bin header: %v", err)
	}
	return &bin, nil
}

// IsVirtualBin indicates if the provided ID identifies the metadata
// pseudo-bin.
func (rd *Reader) IsVirtualBin(id uint32) bool {
	return id == index.MetadataBin(rd.depth)
}

// SelectChunks appends every candidate; CSI has no linear index.
func (*Reader) SelectChunks(_ io.Reader, _ index.Interval, candidates, chunks []*bgzf.Chunk) ([]*bgzf.Chunk, error) {
	return append(chunks, candidates...), nil
}
