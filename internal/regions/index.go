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

// Package regions tests genomic positions for membership in a curated set of
// intervals.
//
// An Index is built once from loaded regions and is immutable afterwards, so
// it may be shared by any number of goroutines.  Membership queries go
// through a Tester, whose traversal strategy is chosen explicitly with New.
package regions

import (
	"errors"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

// ErrMalformedRegion describes a region whose end precedes its start.  Such
// regions are dropped while building an Index.
var ErrMalformedRegion = errors.New("region end precedes start")

// Index holds, per chromosome, regions sorted ascending by start.  Regions of
// one chromosome are assumed not to overlap.
type Index struct {
	regions   map[string][]genomics.Region
	count     int
	bases     int64
	malformed int
}

// NewIndex validates and sorts loaded.  Malformed regions are dropped and
// counted; chromosomes whose regions arrive out of order are sorted.  The
// input map and slices are not modified.
func NewIndex(loaded map[string][]genomics.Region) *Index {
	index := &Index{regions: make(map[string][]genomics.Region, len(loaded))}
	for chromosome, input := range loaded {
		regions := make([]genomics.Region, 0, len(input))
		for _, region := range input {
			if !region.Valid() {
				log.WithFields(log.Fields{
					"chromosome": chromosome,
					"start":      region.Start,
					"end":        region.End,
				}).Warn(ErrMalformedRegion)
				index.malformed++
				continue
			}
			regions = append(regions, region)
		}

		less := func(i, j int) bool { return regions[i].Start < regions[j].Start }
		if !sort.SliceIsSorted(regions, less) {
			log.WithField("chromosome", chromosome).Debug("Sorting regions loaded out of order")
			sort.SliceStable(regions, less)
		}

		for _, region := range regions {
			index.bases += region.Bases()
		}
		index.count += len(regions)
		if len(regions) > 0 {
			index.regions[chromosome] = regions
		}
	}
	return index
}

// RegionCount returns the number of valid regions in the index.
func (index *Index) RegionCount() int {
	return index.count
}

// TotalBases returns the number of positions covered by all regions.
func (index *Index) TotalBases() int64 {
	return index.bases
}

// Malformed returns the number of regions dropped because their end preceded
// their start.
func (index *Index) Malformed() int {
	return index.malformed
}

// Chromosomes returns the chromosomes with at least one region, sorted by
// name.
func (index *Index) Chromosomes() []string {
	chromosomes := make([]string, 0, len(index.regions))
	for chromosome := range index.regions {
		chromosomes = append(chromosomes, chromosome)
	}
	sort.Strings(chromosomes)
	return chromosomes
}

// Regions returns the sorted regions of chromosome.  The slice is shared
// with the index and must not be modified.
func (index *Index) Regions(chromosome string) []genomics.Region {
	return index.regions[chromosome]
}
