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

// Package reference loads the table of chromosomes to scan and their
// lengths.
package reference

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hartwigmedical/hmftools-sub094/internal/bam"
	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/sam"
	"github.com/hartwigmedical/hmftools-sub094/internal/storage"
)

// ReadLengths parses a two-column chromosome<TAB>length table.  Blank lines
// and lines starting with # are skipped.
func ReadLengths(r io.Reader) ([]genomics.ChromosomeLength, error) {
	var lengths []genomics.ChromosomeLength
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected chromosome and length", line)
		}
		length, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing length: %v", line, err)
		}
		if length <= 0 {
			return nil, fmt.Errorf("line %d: invalid length %d", line, length)
		}
		if seen[fields[0]] {
			return nil, fmt.Errorf("line %d: duplicate chromosome %q", line, fields[0])
		}
		seen[fields[0]] = true
		lengths = append(lengths, genomics.ChromosomeLength{Chromosome: fields[0], Length: length})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lengths: %v", err)
	}
	return lengths, nil
}

// Load reads the chromosome table at path.  Sequence dictionaries (.dict)
// and BAM headers (.bam) are recognised by extension; anything else is read
// as a two-column table.
func Load(ctx context.Context, opener *storage.Opener, path string) ([]genomics.ChromosomeLength, error) {
	var (
		r   io.ReadCloser
		err error
	)
	if strings.HasSuffix(path, ".bam") {
		r, err = opener.OpenRaw(ctx, path)
	} else {
		r, err = opener.Open(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var lengths []genomics.ChromosomeLength
	switch {
	case strings.HasSuffix(path, ".dict"):
		lengths, err = sam.ReadDictionary(r)
	case strings.HasSuffix(path, ".bam"):
		var header *bam.Header
		if header, err = bam.ReadHeader(r); err == nil {
			lengths = header.ChromosomeLengths()
		}
	default:
		lengths, err = ReadLengths(r)
	}
	if err != nil {
		return nil, fmt.Errorf("loading chromosome lengths from %s: %w", path, err)
	}
	if len(lengths) == 0 {
		return nil, fmt.Errorf("no chromosomes in %s", path)
	}
	return lengths, nil
}
