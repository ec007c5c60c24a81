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

package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

// Series holds window counts read back from a TSV.
type Series struct {
	WindowSize int64
	// Chromosomes lists the chromosomes in the order they were written.
	Chromosomes []string
	Counts      map[string][]genomics.ReadCount
}

// ReadTSV parses the output of a TSV writer.
func ReadTSV(r io.Reader) (*Series, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, fmt.Errorf("reading header: %v", headerError(scanner))
	}
	header := scanner.Text()
	if !strings.HasPrefix(header, windowSizePrefix) {
		return nil, fmt.Errorf("unexpected header %q", header)
	}
	windowSize, err := strconv.ParseInt(header[len(windowSizePrefix):], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing window size: %v", err)
	}
	if !scanner.Scan() {
		return nil, fmt.Errorf("reading column header: %v", headerError(scanner))
	}
	if got := scanner.Text(); got != columnHeader {
		return nil, fmt.Errorf("unexpected column header %q", got)
	}

	series := &Series{WindowSize: windowSize, Counts: make(map[string][]genomics.ReadCount)}
	for line := 3; scanner.Scan(); line++ {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 columns, got %d", line, len(fields))
		}
		position, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing position: %v", line, err)
		}
		count, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing count: %v", line, err)
		}
		chromosome := fields[0]
		if _, ok := series.Counts[chromosome]; !ok {
			series.Chromosomes = append(series.Chromosomes, chromosome)
		}
		series.Counts[chromosome] = append(series.Counts[chromosome], genomics.ReadCount{
			Chromosome: chromosome,
			Position:   position,
			Count:      int32(count),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading counts: %v", err)
	}
	return series, nil
}

func headerError(scanner *bufio.Scanner) error {
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}
