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

package reference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hartwigmedical/hmftools-sub094/internal/bamtest"
	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/storage"
)

var want = []genomics.ChromosomeLength{
	{Chromosome: "1", Length: 249250621},
	{Chromosome: "2", Length: 243199373},
	{Chromosome: "MT", Length: 16569},
}

func TestReadLengths(t *testing.T) {
	input := "# chromosome lengths\n1\t249250621\n\n2\t243199373\nMT 16569\n"
	got, err := ReadLengths(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadLengths() returned error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wrong lengths: got %v, want %v", got, want)
	}
}

func TestReadLengths_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"missing length", "1\n"},
		{"bad length", "1\tlong\n"},
		{"zero length", "1\t0\n"},
		{"duplicate", "1\t10\n1\t20\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadLengths(strings.NewReader(tc.input)); err == nil {
				t.Errorf("ReadLengths(%q) returned no error", tc.input)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	data, _, err := bamtest.Build(want, []bamtest.Read{{Reference: 0, Start: 1, MappingQuality: 60}})
	if err != nil {
		t.Fatalf("Failed to build test BAM: %v", err)
	}
	files := map[string][]byte{
		"lengths.tsv": []byte("1\t249250621\n2\t243199373\nMT\t16569\n"),
		"genome.dict": []byte("@HD\tVN:1.5\n" +
			"@SQ\tSN:1\tLN:249250621\tM5:1b22b98cdeb4a9304cb5d48026a85128\n" +
			"@SQ\tSN:2\tLN:243199373\n" +
			"@SQ\tSN:MT\tLN:16569\tAN:chrM\n"),
		"sample.bam": data,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	opener := storage.NewOpener(nil)
	for name := range files {
		t.Run(name, func(t *testing.T) {
			got, err := Load(context.Background(), opener, filepath.Join(dir, name))
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Wrong lengths: got %v, want %v", got, want)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(context.Background(), storage.NewOpener(nil), filepath.Join(t.TempDir(), "absent.tsv"))
	if !errors.Is(err, storage.ErrMissingInput) {
		t.Errorf("Load() of absent file: got error %v, want ErrMissingInput", err)
	}
}

func TestLoad_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tsv")
	if err := os.WriteFile(path, []byte("# nothing\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if _, err := Load(context.Background(), storage.NewOpener(nil), path); err == nil {
		t.Errorf("Load() of empty table returned no error")
	}
}
