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

// Package genomics contains definitions related to Genomic data.
package genomics

import "fmt"

// Region defines a closed interval of genomic interest on one chromosome.
type Region struct {
	Chromosome string
	// Start and End are 1-based and both inclusive.  A region is only valid
	// when Start <= End.
	Start, End int64
	// Annotation is optional free text carried over from the region file.
	Annotation string
}

// Valid reports whether the region's bounds are in order.
func (region Region) Valid() bool {
	return region.Start <= region.End
}

// Bases returns the number of positions covered by the region.
func (region Region) Bases() int64 {
	return region.End - region.Start + 1
}

// Contains reports whether position lies inside the region.  The chromosome
// is not compared.
func (region Region) Contains(position int64) bool {
	return position >= region.Start && position <= region.End
}

func (region Region) String() string {
	return fmt.Sprintf("[chromosome:%s, start:%d, end:%d]", region.Chromosome, region.Start, region.End)
}

// Position identifies a single 1-based base on a chromosome.
type Position struct {
	Chromosome string
	Position   int64
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Chromosome, p.Position)
}

// ChromosomeLength enumerates a chromosome to scan and its extent.
type ChromosomeLength struct {
	Chromosome string
	Length     int64
}
