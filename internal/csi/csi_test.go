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

package csi

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/hartwigmedical/hmftools-sub094/internal/bgzf"
	"github.com/hartwigmedical/hmftools-sub094/internal/index"
)

type testBin struct {
	id     uint32
	chunks [][2]uint64
}

// buildIndex writes a depth 5 CSI index.  Every reference also gets a
// metadata pseudo-bin whose chunks must be ignored.
func buildIndex(t *testing.T, references [][]testBin) []byte {
	t.Helper()
	var buf bytes.Buffer
	write := func(v interface{}) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("Failed to write index data: %v", err)
		}
	}
	buf.WriteString(csiMagic)
	write(int32(14))
	write(int32(5))
	write(int32(3))
	buf.WriteString("aux")
	write(int32(len(references)))
	for _, bins := range references {
		write(int32(len(bins) + 1))
		for _, bin := range bins {
			write(bin.id)
			write(uint64(0))
			write(int32(len(bin.chunks)))
			for _, c := range bin.chunks {
				write(c[0])
				write(c[1])
			}
		}
		write(index.MetadataBin(5))
		write(uint64(0))
		write(int32(2))
		write([]uint64{0, 0, 7, 0})
	}
	return buf.Bytes()
}

func sampleIndex(t *testing.T) []byte {
	return buildIndex(t, [][]testBin{
		{{4681, [][2]uint64{{100 << 16, 200 << 16}}}, {4682, [][2]uint64{{200 << 16, 300 << 16}}}},
		{{4681, [][2]uint64{{300 << 16, 400 << 16}}}},
		{},
	})
}

func TestRead(t *testing.T) {
	testCases := []struct {
		name     string
		interval index.Interval
		chunks   int
	}{
		{"first reference", index.WholeReference(0), 3},
		{"second reference", index.WholeReference(1), 2},
		{"reference without reads", index.WholeReference(2), 1},
		{"all references", index.Interval{ReferenceID: -1}, 4},
		{"range within first window", index.Interval{ReferenceID: 0, Start: 10, End: 20}, 2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chunks, err := Read(bytes.NewReader(sampleIndex(t)), tc.interval)
			if err != nil {
				t.Fatalf("Read() returned unexpected error: %v", err)
			}
			if got, want := len(chunks), tc.chunks; got != want {
				t.Fatalf("Wrong number of chunks: got %d, want %d", got, want)
			}
			if got, want := chunks[0].End, bgzf.Address(100<<16); got != want {
				t.Errorf("Wrong header end: got %v, want %v", got, want)
			}
		})
	}
}

func TestRead_Compressed(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(sampleIndex(t)); err != nil {
		t.Fatalf("Failed to compress index: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to compress index: %v", err)
	}

	chunks, err := Read(&buf, index.WholeReference(1))
	if err != nil {
		t.Fatalf("Read() returned unexpected error: %v", err)
	}
	if got, want := len(chunks), 2; got != want {
		t.Fatalf("Wrong number of chunks: got %d, want %d", got, want)
	}
	if got, want := chunks[1].Start, bgzf.Address(300<<16); got != want {
		t.Errorf("Wrong chunk start: got %v, want %v", got, want)
	}
}

func TestRead_Errors(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"wrong magic", []byte("BAI\x01")},
		{"truncated header", []byte("CSI\x01\x0e\x00")},
		{"truncated bins", sampleIndex(t)[:40]},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Read(bytes.NewReader(tc.data), index.WholeReference(0)); err == nil {
				t.Errorf("Read() returned no error")
			}
		})
	}
}
