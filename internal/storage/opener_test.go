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

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"google.golang.org/api/googleapi"
)

const testContent = "chr1\t100\t200\nchr2\t300\t400\n"

type fakeClient map[string][]byte

func (c fakeClient) NewObjectHandle(bucket, object string) ObjectHandle {
	return fakeHandle{c, bucket + "/" + object}
}

type fakeHandle struct {
	client fakeClient
	name   string
}

func (h fakeHandle) NewRangeReader(_ context.Context, offset, length int64) (io.ReadCloser, error) {
	data, ok := h.client[h.name]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	data = data[offset:]
	if length >= 0 && length < int64(len(data)) {
		data = data[:length]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (h fakeHandle) Size(context.Context) (int64, error) {
	data, ok := h.client[h.name]
	if !ok {
		return 0, storage.ErrObjectNotExist
	}
	return int64(len(data)), nil
}

func newFakeOpener(objects fakeClient) *Opener {
	return NewOpener(func(context.Context) (Client, error) { return objects, nil })
}

func gzipped(t *testing.T, s string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}
	return buf.Bytes()
}

func xzipped(t *testing.T, s string) []byte {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("Failed to create xz writer: %v", err)
	}
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}
	return buf.Bytes()
}

func TestOpen_Local(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"plain.bed":  []byte(testContent),
		"regions.gz": gzipped(t, testContent),
		"regions.xz": xzipped(t, testContent),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
	}

	opener := NewOpener(nil)
	for name := range files {
		t.Run(name, func(t *testing.T) {
			r, err := opener.Open(context.Background(), filepath.Join(dir, name))
			if err != nil {
				t.Fatalf("Open() returned error: %v", err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("Failed to read: %v", err)
			}
			if string(got) != testContent {
				t.Errorf("Wrong content: got %q, want %q", got, testContent)
			}
		})
	}
}

func TestOpen_Missing(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name   string
		opener *Opener
		path   string
	}{
		{"local", NewOpener(nil), filepath.Join(t.TempDir(), "absent.bed")},
		{"gcs object", newFakeOpener(fakeClient{}), "gs://bucket/absent.bed"},
		{"gcs without client", NewOpener(nil), "gs://bucket/regions.bed"},
		{"malformed gcs path", newFakeOpener(fakeClient{}), "gs://bucket"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.opener.Open(ctx, tc.path); !errors.Is(err, ErrMissingInput) {
				t.Errorf("Open(%q): got error %v, want ErrMissingInput", tc.path, err)
			}
		})
	}
}

func TestOpen_GCS(t *testing.T) {
	opener := newFakeOpener(fakeClient{
		"bucket/regions.bed":    []byte(testContent),
		"bucket/regions.bed.gz": gzipped(t, testContent),
	})
	for _, path := range []string{"gs://bucket/regions.bed", "gs://bucket/regions.bed.gz"} {
		t.Run(path, func(t *testing.T) {
			r, err := opener.Open(context.Background(), path)
			if err != nil {
				t.Fatalf("Open() returned error: %v", err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("Failed to read: %v", err)
			}
			if string(got) != testContent {
				t.Errorf("Wrong content: got %q, want %q", got, testContent)
			}
		})
	}
}

func TestOpenSeeker_GCS(t *testing.T) {
	data := []byte("0123456789abcdefghij")
	opener := newFakeOpener(fakeClient{"bucket/object": data})
	rs, err := opener.OpenSeeker(context.Background(), "gs://bucket/object")
	if err != nil {
		t.Fatalf("OpenSeeker() returned error: %v", err)
	}
	defer rs.Close()

	steps := []struct {
		offset int64
		whence int
		want   string
	}{
		{10, io.SeekStart, "abcd"},
		{2, io.SeekCurrent, "ghij"},
		{-6, io.SeekEnd, "efgh"},
		{0, io.SeekStart, "0123"},
	}
	for _, step := range steps {
		if _, err := rs.Seek(step.offset, step.whence); err != nil {
			t.Fatalf("Seek(%d, %d) failed: %v", step.offset, step.whence, err)
		}
		buf := make([]byte, 4)
		if _, err := io.ReadFull(rs, buf); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if got := string(buf); got != step.want {
			t.Errorf("Seek(%d, %d): got %q, want %q", step.offset, step.whence, got, step.want)
		}
	}
	if _, err := rs.Seek(0, io.SeekEnd); err != nil {
		t.Fatalf("Seek to end failed: %v", err)
	}
	if _, err := rs.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("Read at end: got %v, want io.EOF", err)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	if err := os.WriteFile(present, nil, 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	opener := newFakeOpener(fakeClient{"bucket/object": nil})
	testCases := []struct {
		path string
		want bool
	}{
		{present, true},
		{filepath.Join(dir, "absent"), false},
		{"gs://bucket/object", true},
		{"gs://bucket/absent", false},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := opener.Exists(context.Background(), tc.path)
			if err != nil {
				t.Fatalf("Exists() returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Exists(%q): got %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestNewStorageError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		reason string
	}{
		{"unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}, "invalid authentication for"},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, "permission denied for"},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, "no such input"},
		{"object missing", storage.ErrObjectNotExist, "no such input"},
		{"wrapped local", fmt.Errorf("open: %w", os.ErrNotExist), "no such input"},
		{"other", errors.New("connection reset"), "cannot open"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := newStorageError("gs://bucket/object", tc.err)
			if !errors.Is(err, ErrMissingInput) {
				t.Errorf("Error %v does not match ErrMissingInput", err)
			}
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Error %v is not an *InputError", err)
			}
			if got, want := inputErr.Reason, tc.reason; got != want {
				t.Errorf("Wrong reason: got %q, want %q", got, want)
			}
		})
	}
}
