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

package coverage

import (
	"reflect"
	"testing"

	"github.com/hartwigmedical/hmftools-sub094/internal/alignment"
	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

func rc(position int64, count int32) genomics.ReadCount {
	return genomics.ReadCount{Chromosome: "1", Position: position, Count: count}
}

func TestCounter(t *testing.T) {
	testCases := []struct {
		name   string
		length int64
		starts []int64
		want   []genomics.ReadCount
	}{
		{
			name:   "end marker after last window",
			length: 3725,
			starts: []int64{10, 20, 2001, 2500},
			want:   []genomics.ReadCount{rc(1, 2), rc(2001, 2), rc(3001, -1)},
		},
		{
			name:   "no reads",
			length: 3725,
			want:   []genomics.ReadCount{rc(3001, -1)},
		},
		{
			name:   "no reads, chromosome within first window",
			length: 1000,
			want:   nil,
		},
		{
			name:   "no reads, chromosome one base past first window",
			length: 1001,
			want:   []genomics.ReadCount{rc(1001, -1)},
		},
		{
			name:   "reads in last window",
			length: 3725,
			starts: []int64{1, 3001, 3725},
			want:   []genomics.ReadCount{rc(1, 1), rc(3001, 2)},
		},
		{
			name:   "first window counted from one",
			length: 1000,
			starts: []int64{1, 1000},
			want:   []genomics.ReadCount{rc(1, 2)},
		},
		{
			name:   "empty windows skipped",
			length: 10000,
			starts: []int64{1500, 7001, 7999, 8000},
			want:   []genomics.ReadCount{rc(1001, 1), rc(7001, 3), rc(9001, -1)},
		},
		{
			name:   "exact multiple of window size",
			length: 5000,
			starts: []int64{4999},
			want:   []genomics.ReadCount{rc(4001, 1)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			counter := NewCounter("1", tc.length, 1000)
			for _, start := range tc.starts {
				counter.Add(start, true)
			}
			if got := counter.Finish(); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Finish(): got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCounter_IneligibleReads(t *testing.T) {
	counter := NewCounter("1", 3725, 1000)
	counter.Add(5, true)
	counter.Add(1200, false)
	counter.Add(2100, false)
	counter.Add(2200, true)
	want := []genomics.ReadCount{rc(1, 1), rc(2001, 1), rc(3001, -1)}
	if got := counter.Finish(); !reflect.DeepEqual(got, want) {
		t.Errorf("Finish(): got %v, want %v", got, want)
	}
}

func TestEligible(t *testing.T) {
	testCases := []struct {
		name   string
		record alignment.Record
		want   bool
	}{
		{"good", alignment.Record{Start: 1, MappingQuality: 60}, true},
		{"low quality", alignment.Record{Start: 1, MappingQuality: 1}, true},
		{"zero quality", alignment.Record{Start: 1}, false},
		{"unmapped", alignment.Record{Start: 1, MappingQuality: 60, Unmapped: true}, false},
		{"duplicate", alignment.Record{Start: 1, MappingQuality: 60, Duplicate: true}, false},
		{"secondary", alignment.Record{Start: 1, MappingQuality: 60, SecondaryOrSupplementary: true}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Eligible(tc.record); got != tc.want {
				t.Errorf("Eligible(%+v): got %v, want %v", tc.record, got, tc.want)
			}
		})
	}
}
