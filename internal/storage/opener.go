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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

const gcsScheme = "gs://"

var errNoGCS = errors.New("no cloud storage client configured")

// NewClientFunc constructs the client used for gs:// paths.
type NewClientFunc func(context.Context) (Client, error)

// Opener opens local paths and gs://bucket/object URLs.  The cloud client is
// created on first use and shared afterwards.  An Opener is safe for
// concurrent use.
type Opener struct {
	newClient NewClientFunc

	once      sync.Once
	client    Client
	clientErr error
}

// NewOpener returns an Opener that uses newClient for gs:// paths.  If
// newClient is nil, only local paths can be opened.
func NewOpener(newClient NewClientFunc) *Opener {
	return &Opener{newClient: newClient}
}

// ParseGCSPath splits a gs://bucket/object URL.  It reports false for any
// other path.
func ParseGCSPath(path string) (string, string, bool) {
	if !strings.HasPrefix(path, gcsScheme) {
		return "", "", false
	}
	if parts := strings.SplitN(path[len(gcsScheme):], "/", 2); len(parts) == 2 {
		if parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], true
		}
	}
	return "", "", false
}

func (o *Opener) handle(ctx context.Context, path string) (ObjectHandle, error) {
	bucket, object, ok := ParseGCSPath(path)
	if !ok {
		return nil, fmt.Errorf("invalid cloud storage path %q", path)
	}
	o.once.Do(func() {
		if o.newClient == nil {
			o.clientErr = errNoGCS
			return
		}
		o.client, o.clientErr = o.newClient(ctx)
	})
	if o.clientErr != nil {
		return nil, o.clientErr
	}
	return o.client.NewObjectHandle(bucket, object), nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// OpenRaw returns the bytes of path without decompression.
func (o *Opener) OpenRaw(ctx context.Context, path string) (io.ReadCloser, error) {
	if !isRemote(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, newStorageError(path, err)
		}
		return f, nil
	}
	h, err := o.handle(ctx, path)
	if err != nil {
		return nil, newStorageError(path, err)
	}
	r, err := h.NewRangeReader(ctx, 0, -1)
	if err != nil {
		return nil, newStorageError(path, err)
	}
	return r, nil
}

// Open returns the content of path, transparently decompressing gzip (and
// BGZF) files ending in .gz or .bgz and xz files ending in .xz.
func (o *Opener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	raw, err := o.OpenRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, ".gz"), strings.HasSuffix(path, ".bgz"):
		gzr, err := gzip.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		return &readCloser{gzr, []io.Closer{gzr, raw}}, nil
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("opening xz stream %s: %w", path, err)
		}
		return &readCloser{xzr, []io.Closer{raw}}, nil
	}
	return raw, nil
}

// OpenSeeker returns a seekable reader over the raw bytes of path.
func (o *Opener) OpenSeeker(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	if !isRemote(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, newStorageError(path, err)
		}
		return f, nil
	}
	h, err := o.handle(ctx, path)
	if err != nil {
		return nil, newStorageError(path, err)
	}
	size, err := h.Size(ctx)
	if err != nil {
		return nil, newStorageError(path, err)
	}
	return &objectReadSeeker{ctx: ctx, handle: h, size: size}, nil
}

// Exists reports whether path can be opened.  Errors other than the input
// being absent are returned.
func (o *Opener) Exists(ctx context.Context, path string) (bool, error) {
	if !isRemote(path) {
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, newStorageError(path, err)
	}
	h, err := o.handle(ctx, path)
	if err != nil {
		return false, newStorageError(path, err)
	}
	if _, err := h.Size(ctx); err != nil {
		err = newStorageError(path, err)
		var inputErr *InputError
		if errors.As(err, &inputErr) && inputErr.Reason == "no such input" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type readCloser struct {
	io.Reader

	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var errors []error
	for _, closer := range rc.closers {
		if err := closer.Close(); err != nil {
			errors = append(errors, err)
		}
	}
	if len(errors) > 0 {
		return fmt.Errorf("one or more errors: %v", errors)
	}
	return nil
}

// objectReadSeeker implements io.ReadSeekCloser over an object by reopening
// a range reader after every seek that moves the offset.
type objectReadSeeker struct {
	ctx    context.Context
	handle ObjectHandle
	size   int64
	offset int64
	r      io.ReadCloser
}

func (s *objectReadSeeker) Read(p []byte) (int, error) {
	if s.offset >= s.size {
		return 0, io.EOF
	}
	if s.r == nil {
		r, err := s.handle.NewRangeReader(s.ctx, s.offset, -1)
		if err != nil {
			return 0, err
		}
		s.r = r
	}
	n, err := s.r.Read(p)
	s.offset += int64(n)
	return n, err
}

func (s *objectReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.offset + offset
	case io.SeekEnd:
		abs = s.size + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative position %d", abs)
	}
	if abs != s.offset && s.r != nil {
		s.r.Close()
		s.r = nil
	}
	s.offset = abs
	return abs, nil
}

func (s *objectReadSeeker) Close() error {
	if s.r == nil {
		return nil
	}
	err := s.r.Close()
	s.r = nil
	return err
}
