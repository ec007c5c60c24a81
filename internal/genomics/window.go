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

package genomics

import "fmt"

// ChromosomeEnd is the count stored in a ReadCount that marks the final
// window of a chromosome rather than an observed number of reads.
const ChromosomeEnd = -1

// ReadCount is the number of eligible reads starting inside the window
// beginning at Position.
type ReadCount struct {
	Chromosome string
	Position   int64
	Count      int32
}

// IsBoundary reports whether c is an end-of-chromosome marker.
func (c ReadCount) IsBoundary() bool {
	return c.Count == ChromosomeEnd
}

func (c ReadCount) String() string {
	if c.IsBoundary() {
		return fmt.Sprintf("%s:%d(end)", c.Chromosome, c.Position)
	}
	return fmt.Sprintf("%s:%d=%d", c.Chromosome, c.Position, c.Count)
}

// WindowPosition returns the 1-based start of the fixed-size window that
// contains position.
func WindowPosition(position, windowSize int64) int64 {
	return ((position-1)/windowSize)*windowSize + 1
}
