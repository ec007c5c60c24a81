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
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/storage"
)

func loadIndex(t *testing.T, bed string) *Index {
	loaded, err := Load(strings.NewReader(bed), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	return NewIndex(loaded)
}

func TestLoad(t *testing.T) {
	bed := strings.Join([]string{
		"track name=panel",
		"# comment",
		"",
		"1\t99\t200\tGENE1",
		"1\t299\t400",
		"2 0 10",
	}, "\n")
	got, err := Load(strings.NewReader(bed), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	want := map[string][]genomics.Region{
		"1": {
			{Chromosome: "1", Start: 100, End: 200, Annotation: "GENE1"},
			{Chromosome: "1", Start: 300, End: 400},
		},
		"2": {
			{Chromosome: "2", Start: 1, End: 10},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wrong regions: got %v, want %v", got, want)
	}
}

func TestLoad_OneBased(t *testing.T) {
	got, err := Load(strings.NewReader("X\t100\t200\n"), LoadOptions{OneBased: true})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	want := genomics.Region{Chromosome: "X", Start: 100, End: 200}
	if len(got["X"]) != 1 || got["X"][0] != want {
		t.Errorf("Wrong regions: got %v, want %v", got["X"], want)
	}
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name string
		bed  string
	}{
		{"too few columns", "1\t100\t200\n1\t300\n"},
		{"bad start", "1\tstart\t200\n"},
		{"bad end", "1\t100\t2e3\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tc.bed), LoadOptions{}); err == nil {
				t.Errorf("Load() returned no error")
			}
		})
	}
}

func TestIndex_UnsortedInput(t *testing.T) {
	index := loadIndex(t, "1\t299\t400\n1\t99\t200\n1\t499\t600\n")

	if got, want := index.RegionCount(), 3; got != want {
		t.Errorf("Wrong region count: got %d, want %d", got, want)
	}
	var starts []int64
	for _, region := range index.Regions("1") {
		starts = append(starts, region.Start)
	}
	if want := []int64{100, 300, 500}; !reflect.DeepEqual(starts, want) {
		t.Errorf("Regions not sorted: got starts %v, want %v", starts, want)
	}
}

func TestIndex_UnsortedPair(t *testing.T) {
	index := loadIndex(t, "# regions\n1\t299\t400\n1\t99\t200\n")
	if got, want := index.RegionCount(), 2; got != want {
		t.Errorf("Wrong region count: got %d, want %d", got, want)
	}
	tester, err := New(index, ForwardCursor)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	for _, position := range []int64{150, 350} {
		if got, err := tester.Contains(genomics.Position{Chromosome: "1", Position: position}); err != nil || !got {
			t.Errorf("Contains(1:%d): got (%v, %v), want (true, nil)", position, got, err)
		}
	}
}

func TestIndex_MalformedRegion(t *testing.T) {
	index := loadIndex(t, "1\t99\t200\n1\t500\t400\n1\t599\t700\n")

	if got, want := index.RegionCount(), 2; got != want {
		t.Errorf("Wrong region count: got %d, want %d", got, want)
	}
	if got, want := index.Malformed(), 1; got != want {
		t.Errorf("Wrong malformed count: got %d, want %d", got, want)
	}
	if got, want := index.TotalBases(), int64(202); got != want {
		t.Errorf("Wrong total bases: got %d, want %d", got, want)
	}
}

func TestIndex_Chromosomes(t *testing.T) {
	index := NewIndex(map[string][]genomics.Region{
		"Y":     {{Chromosome: "Y", Start: 1, End: 1}},
		"X":     {{Chromosome: "X", Start: 1, End: 1}},
		"empty": nil,
		"bad":   {{Chromosome: "bad", Start: 10, End: 1}},
	})
	if got, want := index.Chromosomes(), []string{"X", "Y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Wrong chromosomes: got %v, want %v", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.bed")
	if err := os.WriteFile(path, []byte("X\t99\t200\nX\t299\t400\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	opener := storage.NewOpener(nil)

	loaded, err := LoadFile(context.Background(), opener, path, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadFile() returned error: %v", err)
	}
	if got, want := len(loaded["X"]), 2; got != want {
		t.Errorf("Wrong number of regions: got %d, want %d", got, want)
	}

	_, err = LoadFile(context.Background(), opener, filepath.Join(dir, "absent.bed"), LoadOptions{})
	if !errors.Is(err, storage.ErrMissingInput) {
		t.Errorf("LoadFile() of absent file: got error %v, want ErrMissingInput", err)
	}
}
