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

package regions

import (
	"errors"
	"fmt"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

// ErrOrderingViolation is returned by a forward cursor tester queried with a
// position smaller than one it has already seen on the same chromosome.
// The tester is unusable afterwards.
var ErrOrderingViolation = errors.New("position precedes previous query")

// Tester reports whether positions fall inside the regions of an Index.
type Tester interface {
	// Contains reports whether position lies inside any region.  Positions
	// on chromosomes absent from the index are never contained.
	Contains(position genomics.Position) (bool, error)
	// RegionCount returns the number of regions tested against.
	RegionCount() int
	// TotalBases returns the number of positions covered by the regions.
	TotalBases() int64
}

// Strategy selects how a Tester traverses the index.
type Strategy int

const (
	// ForwardCursor requires non-decreasing positions per chromosome and
	// answers each query in amortized constant time.
	ForwardCursor Strategy = iota
	// LinearScan accepts queries in any order and scans from the first region
	// of the chromosome every time.
	LinearScan
	// Bidirectional accepts queries in any order using one LinearScan per
	// chromosome.
	Bidirectional
)

var strategyNames = map[Strategy]string{
	ForwardCursor: "forward",
	LinearScan:    "linear",
	Bidirectional: "bidirectional",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the Strategy called name.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// New returns a Tester over index using strategy.  Only ForwardCursor testers
// carry mutable state; the others are safe for concurrent use.
func New(index *Index, strategy Strategy) (Tester, error) {
	switch strategy {
	case ForwardCursor:
		return newForwardCursor(index), nil
	case LinearScan:
		return &linearScan{index}, nil
	case Bidirectional:
		return newBidirectional(index), nil
	}
	return nil, fmt.Errorf("unsupported strategy %v", strategy)
}

type cursor struct {
	next int
	last int64
}

type forwardCursor struct {
	*Index

	cursors map[string]*cursor
	err     error
}

func newForwardCursor(index *Index) *forwardCursor {
	return &forwardCursor{Index: index, cursors: make(map[string]*cursor)}
}

func (t *forwardCursor) Contains(position genomics.Position) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	regions := t.regions[position.Chromosome]
	if regions == nil {
		return false, nil
	}
	c, ok := t.cursors[position.Chromosome]
	if !ok {
		c = &cursor{}
		t.cursors[position.Chromosome] = c
	} else if position.Position < c.last {
		t.err = fmt.Errorf("%w: %s after %d", ErrOrderingViolation, position, c.last)
		return false, t.err
	}
	c.last = position.Position

	for c.next < len(regions) && regions[c.next].End < position.Position {
		c.next++
	}
	return c.next < len(regions) && position.Position >= regions[c.next].Start, nil
}

type linearScan struct {
	*Index
}

func (t *linearScan) Contains(position genomics.Position) (bool, error) {
	return scan(t.regions[position.Chromosome], position.Position), nil
}

func scan(regions []genomics.Region, position int64) bool {
	for _, region := range regions {
		if region.Contains(position) {
			return true
		}
		if region.Start > position {
			return false
		}
	}
	return false
}

type chromosomeScan []genomics.Region

func (regions chromosomeScan) contains(position int64) bool {
	return scan(regions, position)
}

type bidirectional struct {
	*Index

	chromosomes map[string]chromosomeScan
}

func newBidirectional(index *Index) *bidirectional {
	t := &bidirectional{Index: index, chromosomes: make(map[string]chromosomeScan, len(index.regions))}
	for chromosome, regions := range index.regions {
		t.chromosomes[chromosome] = chromosomeScan(regions)
	}
	return t
}

func (t *bidirectional) Contains(position genomics.Position) (bool, error) {
	s, ok := t.chromosomes[position.Chromosome]
	if !ok {
		return false, nil
	}
	return s.contains(position.Position), nil
}
