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

package alignment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	htsbam "github.com/biogo/hts/bam"
	htsbgzf "github.com/biogo/hts/bgzf"
	htssam "github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"

	"github.com/hartwigmedical/hmftools-sub094/internal/bam"
	"github.com/hartwigmedical/hmftools-sub094/internal/bgzf"
	"github.com/hartwigmedical/hmftools-sub094/internal/csi"
	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/index"
	"github.com/hartwigmedical/hmftools-sub094/internal/sam"
	"github.com/hartwigmedical/hmftools-sub094/internal/storage"
)

var errNoIndex = errors.New("no BAM index found")

// BAMSource reads a coordinate-sorted BAM file through its BAI or CSI index.  Every
// cursor opens its own reader, so chromosomes can be read concurrently.
type BAMSource struct {
	opener    *storage.Opener
	path      string
	indexPath string
	header    *bam.Header
	ids       map[string]int32
}

// NewBAMSource checks that the BAM at path and its index exist and reads the
// reference dictionary from the BAM header.  The index is looked for at
// path+".bai", then with the .bam extension replaced by .bai, then at
// path+".csi".
func NewBAMSource(ctx context.Context, opener *storage.Opener, path string) (*BAMSource, error) {
	indexPath, err := findIndex(ctx, opener, path)
	if err != nil {
		return nil, err
	}

	r, err := opener.OpenRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	header, err := bam.ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("reading BAM header from %s: %w", path, err)
	}
	ids, err := referenceIDs(header)
	if err != nil {
		return nil, fmt.Errorf("reading BAM header from %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"path":       path,
		"index":      indexPath,
		"references": len(header.References),
	}).Debug("Opened BAM")
	return &BAMSource{
		opener:    opener,
		path:      path,
		indexPath: indexPath,
		header:    header,
		ids:       ids,
	}, nil
}

// referenceIDs maps every reference name, and every alternative name the SAM
// text declares for it with AN, to its reference ID.
func referenceIDs(header *bam.Header) (map[string]int32, error) {
	ids := make(map[string]int32, len(header.References))
	for i, ref := range header.References {
		ids[ref.Name] = int32(i)
	}
	sequences, err := sam.ReadSequences(strings.NewReader(header.Text))
	if err != nil {
		return nil, err
	}
	for _, seq := range sequences {
		id, ok := ids[seq.Name]
		if !ok {
			continue
		}
		for _, alias := range seq.Aliases {
			if _, taken := ids[alias]; !taken {
				ids[alias] = id
			}
		}
	}
	return ids, nil
}

// alternateName returns the other common spelling of a chromosome name, with
// or without the "chr" prefix.
func alternateName(chromosome string) string {
	switch chromosome {
	case "MT":
		return "chrM"
	case "chrM":
		return "MT"
	}
	if strings.HasPrefix(chromosome, "chr") {
		return strings.TrimPrefix(chromosome, "chr")
	}
	return "chr" + chromosome
}

func (s *BAMSource) referenceID(chromosome string) (int32, bool) {
	if id, ok := s.ids[chromosome]; ok {
		return id, true
	}
	id, ok := s.ids[alternateName(chromosome)]
	return id, ok
}

func findIndex(ctx context.Context, opener *storage.Opener, path string) (string, error) {
	exists, err := opener.Exists(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &storage.InputError{Path: path, Reason: "no such input", Err: errors.New("BAM not found")}
	}

	candidates := []string{path + ".bai"}
	if strings.HasSuffix(path, ".bam") {
		candidates = append(candidates, strings.TrimSuffix(path, ".bam")+".bai")
	}
	candidates = append(candidates, path+".csi")
	for _, candidate := range candidates {
		exists, err := opener.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if exists {
			return candidate, nil
		}
	}
	return "", &storage.InputError{Path: candidates[0], Reason: "no such input", Err: errNoIndex}
}

// References returns the chromosomes declared in the BAM header, in header
// order.
func (s *BAMSource) References() []genomics.ChromosomeLength {
	return s.header.ChromosomeLengths()
}

// OpenCursor returns a cursor over the reads mapped to chromosome.  The name
// is matched against the BAM header's names, their AN aliases and their
// spelling with or without "chr".  Chromosomes absent from the BAM header have
// no reads.
func (s *BAMSource) OpenCursor(ctx context.Context, chromosome string) (Cursor, error) {
	id, ok := s.referenceID(chromosome)
	if !ok {
		log.WithFields(log.Fields{"path": s.path, "chromosome": chromosome}).Debug("Chromosome not in BAM header")
		return &sliceCursor{}, nil
	}

	chunks, err := s.readChunks(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &sliceCursor{}, nil
	}

	f, err := s.opener.OpenSeeker(ctx, s.path)
	if err != nil {
		return nil, err
	}
	r, err := htsbam.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening BAM %s: %w", s.path, err)
	}
	it, err := htsbam.NewIterator(r, chunks)
	if err != nil {
		r.Close()
		f.Close()
		return nil, fmt.Errorf("seeking to %s in %s: %w", chromosome, s.path, err)
	}
	return &bamCursor{file: f, reader: r, it: it, id: id}, nil
}

// readChunks returns the file ranges holding the reads of reference id,
// sorted and merged so that each range is visited once.
func (s *BAMSource) readChunks(ctx context.Context, id int32) ([]htsbgzf.Chunk, error) {
	r, err := s.opener.OpenRaw(ctx, s.indexPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	read := bam.Read
	if strings.HasSuffix(s.indexPath, ".csi") {
		read = csi.Read
	}
	chunks, err := read(r, index.WholeReference(id))
	if err != nil {
		return nil, fmt.Errorf("reading BAM index %s: %w", s.indexPath, err)
	}
	// The first chunk covers the header.
	return bgzf.Merge(chunks[1:]), nil
}

type bamCursor struct {
	file   io.Closer
	reader *htsbam.Reader
	it     *htsbam.Iterator
	id     int32
}

func (c *bamCursor) Next() (Record, error) {
	for c.it.Next() {
		rec := c.it.Record()
		if rec.Ref == nil || int32(rec.Ref.ID()) != c.id {
			continue
		}
		return Record{
			Start:                    int64(rec.Pos) + 1,
			MappingQuality:           int(rec.MapQ),
			Unmapped:                 rec.Flags&htssam.Unmapped != 0,
			Duplicate:                rec.Flags&htssam.Duplicate != 0,
			SecondaryOrSupplementary: rec.Flags&(htssam.Secondary|htssam.Supplementary) != 0,
		}, nil
	}
	if err := c.it.Error(); err != nil {
		return Record{}, fmt.Errorf("reading BAM record: %w", err)
	}
	return Record{}, io.EOF
}

func (c *bamCursor) Close() error {
	var errors []error
	for _, fn := range []func() error{c.it.Close, c.reader.Close, c.file.Close} {
		if err := fn(); err != nil {
			errors = append(errors, err)
		}
	}
	if len(errors) > 0 {
		return fmt.Errorf("closing BAM cursor: %v", errors)
	}
	return nil
}
