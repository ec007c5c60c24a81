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

// Package sam provides support for parsing SAM headers and sequence
// dictionaries.
package sam

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

var tagRe = regexp.MustCompile(`\b(SN|LN|AN):(\S+)`)

// Sequence is one @SQ line of a header.
type Sequence struct {
	Name    string
	Length  int64
	Aliases []string
}

// ReadSequences returns the @SQ entries of the SAM header (or Picard
// sequence dictionary) in r, in order.
func ReadSequences(r io.Reader) ([]Sequence, error) {
	var sequences []Sequence

	// @SQ SN:foo LN:5 AN:bar,baz ...
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if !strings.HasPrefix(text, "@SQ") {
			continue
		}
		var seq Sequence
		for _, tag := range tagRe.FindAllStringSubmatch(text, -1) {
			switch tag[1] {
			case "SN":
				seq.Name = tag[2]
			case "LN":
				n, err := strconv.ParseInt(tag[2], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: parsing LN: %v", line, err)
				}
				seq.Length = n
			case "AN":
				seq.Aliases = strings.Split(tag[2], ",")
			}
		}
		if seq.Name == "" {
			return nil, fmt.Errorf("line %d: @SQ without SN tag", line)
		}
		sequences = append(sequences, seq)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading header: %v", err)
	}
	return sequences, nil
}

// ReadDictionary returns the chromosome-length table declared by the @SQ
// lines in r.  Every sequence must declare a positive LN.
func ReadDictionary(r io.Reader) ([]genomics.ChromosomeLength, error) {
	sequences, err := ReadSequences(r)
	if err != nil {
		return nil, err
	}
	lengths := make([]genomics.ChromosomeLength, 0, len(sequences))
	for _, seq := range sequences {
		if seq.Length <= 0 {
			return nil, fmt.Errorf("sequence %q has no length", seq.Name)
		}
		lengths = append(lengths, genomics.ChromosomeLength{Chromosome: seq.Name, Length: seq.Length})
	}
	return lengths, nil
}
