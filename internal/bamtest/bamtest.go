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

// Package bamtest builds small coordinate-sorted BAM files and their BAI or
// CSI indexes in memory for tests.
package bamtest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/csi"
	"github.com/biogo/hts/sam"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

// ReadLength is the aligned length of every generated read.
const ReadLength = 50

// Read describes one alignment to generate.
type Read struct {
	// Reference is the index of the read's chromosome in the table passed to
	// Build.
	Reference int
	// Start is the 1-based alignment start.
	Start          int64
	MappingQuality byte
	Flags          sam.Flags
}

// Build returns a BAM file holding reads (which must be coordinate sorted)
// and a matching BAI index.
func Build(references []genomics.ChromosomeLength, reads []Read) ([]byte, []byte, error) {
	var refs []*sam.Reference
	for _, r := range references {
		ref, err := sam.NewReference(r.Chromosome, "", "", int(r.Length), nil, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("creating reference %q: %v", r.Chromosome, err)
		}
		refs = append(refs, ref)
	}
	header, err := sam.NewHeader(nil, refs)
	if err != nil {
		return nil, nil, fmt.Errorf("creating header: %v", err)
	}
	header.SortOrder = sam.Coordinate

	var data bytes.Buffer
	w, err := bam.NewWriter(&data, header, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("creating writer: %v", err)
	}
	seq := bytes.Repeat([]byte{'A'}, ReadLength)
	qual := bytes.Repeat([]byte{30}, ReadLength)
	cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, ReadLength)}
	for i, read := range reads {
		rec, err := sam.NewRecord(fmt.Sprintf("read%d", i), refs[read.Reference], nil,
			int(read.Start-1), -1, 0, read.MappingQuality, cigar, seq, qual, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("creating record %d: %v", i, err)
		}
		rec.Flags = read.Flags
		if err := w.Write(rec); err != nil {
			return nil, nil, fmt.Errorf("writing record %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, nil, fmt.Errorf("closing writer: %v", err)
	}

	var index bam.Index
	if err := indexBAM(data.Bytes(), index.Add); err != nil {
		return nil, nil, err
	}
	var bai bytes.Buffer
	if err := bam.WriteIndex(&bai, &index); err != nil {
		return nil, nil, fmt.Errorf("writing index: %v", err)
	}
	return data.Bytes(), bai.Bytes(), nil
}

// CSI returns a CSI index for a BAM built by Build.  The binning scheme
// matches BAI, so the same bins hold the same reads.
func CSI(data []byte) ([]byte, error) {
	idx := csi.New(14, 5)
	err := indexBAM(data, func(rec *sam.Record, chunk bgzf.Chunk) error {
		placed := rec.Ref != nil && rec.Pos != -1
		mapped := rec.Flags&sam.Unmapped == 0
		return idx.Add(rec, chunk, placed, mapped)
	})
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := csi.WriteTo(&out, idx); err != nil {
		return nil, fmt.Errorf("writing CSI index: %v", err)
	}
	return out.Bytes(), nil
}

func indexBAM(data []byte, add func(*sam.Record, bgzf.Chunk) error) error {
	r, err := bam.NewReader(bytes.NewReader(data), 1)
	if err != nil {
		return fmt.Errorf("reopening BAM: %v", err)
	}
	defer r.Close()
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading back record: %v", err)
		}
		if err := add(rec, r.LastChunk()); err != nil {
			return fmt.Errorf("indexing record: %v", err)
		}
	}
}
