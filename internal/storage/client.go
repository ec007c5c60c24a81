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

// Package storage opens run inputs from the local file system or from Google
// Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// ErrMissingInput is matched (with errors.Is) by every error caused by an
// input that is absent or unreadable.
var ErrMissingInput = errors.New("missing input")

// Client is an interface to the storage engine.
type Client interface {
	// NewObjectHandle returns a handle to a specified object in
	// the storage engine.
	NewObjectHandle(bucket, object string) ObjectHandle
}

// ObjectHandle is an interface to the actual storage engine in use.
type ObjectHandle interface {
	// NewRangeReader returns a reader that reads from a specified
	// range. Length of -1 means to capture everything until the
	// end.
	NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error)
	// Size returns the length of the object in bytes.
	Size(ctx context.Context) (int64, error)
}

// InputError describes an input that could not be opened.
type InputError struct {
	Path   string
	Reason string
	Err    error
}

func (err *InputError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Reason, err.Path, err.Err)
}

// Unwrap returns the underlying cause.
func (err *InputError) Unwrap() error {
	return err.Err
}

// Is reports every InputError as ErrMissingInput.
func (err *InputError) Is(target error) bool {
	return target == ErrMissingInput
}

func newStorageError(path string, err error) error {
	if errors.Is(err, ErrMissingInput) {
		return err
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return &InputError{path, "no such input", err}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return &InputError{path, "invalid authentication for", err}
		case http.StatusForbidden:
			return &InputError{path, "permission denied for", err}
		case http.StatusNotFound:
			return &InputError{path, "no such input", err}
		}
	}
	if errors.Is(err, os.ErrPermission) {
		return &InputError{path, "permission denied for", err}
	}
	return &InputError{path, "cannot open", err}
}
