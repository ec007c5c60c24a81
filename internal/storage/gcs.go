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
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// GCSClient is Client for accessing Google Cloud Storage.
type GCSClient struct {
	*storage.Client
}

// NewObjectHandle returns a handle to a specified object in the
// storage engine.
func (c GCSClient) NewObjectHandle(bucket, object string) ObjectHandle {
	return gcsObjectHandle{c.Bucket(bucket).Object(object)}
}

type gcsObjectHandle struct {
	*storage.ObjectHandle
}

func (h gcsObjectHandle) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	return h.ObjectHandle.NewRangeReader(ctx, offset, length)
}

func (h gcsObjectHandle) Size(ctx context.Context) (int64, error) {
	attrs, err := h.ObjectHandle.Attrs(ctx)
	if err != nil {
		return 0, err
	}
	return attrs.Size, nil
}

// GCSOptions selects how GCS requests are authorized.
type GCSOptions struct {
	// Token is an OAuth2 bearer token.  If empty, application default
	// credentials are used.
	Token string
	// Anonymous disables authorization entirely.  It can only be used to
	// read publicly-readable objects.
	Anonymous bool
}

// NewGCSClient constructs a storage client authorized according to opts.
func NewGCSClient(ctx context.Context, opts GCSOptions) (Client, error) {
	var clientOpts []option.ClientOption
	switch {
	case opts.Anonymous:
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	case opts.Token != "":
		token := oauth2.Token{
			TokenType:   "Bearer",
			AccessToken: opts.Token,
		}
		clientOpts = append(clientOpts, option.WithTokenSource(oauth2.StaticTokenSource(&token)))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %v", err)
	}
	return GCSClient{client}, nil
}
