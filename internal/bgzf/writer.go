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

package bgzf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// MaximumBlockSize is the maximum size of a compressed BGZF block.
const MaximumBlockSize = 65536

// blockDataSize is the amount of uncompressed data packed into each block.
// It leaves room for deflate overhead on incompressible input.
const blockDataSize = 0xff00

// EOFMarker is the empty block that terminates a BGZF file.
var EOFMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

var errClosed = errors.New("bgzf: write to closed writer")

// Writer compresses everything written to it into a sequence of BGZF blocks.
// The output is a valid multi-member gzip stream.  Close must be called to
// flush the final block and append the EOF marker; it does not close the
// underlying writer.
type Writer struct {
	w      io.Writer
	buffer []byte
	block  bytes.Buffer
	gz     *gzip.Writer
	closed bool
}

// NewWriter returns a Writer that writes blocks to w.
func NewWriter(w io.Writer) *Writer {
	bw := &Writer{w: w, buffer: make([]byte, 0, blockDataSize)}
	bw.gz = gzip.NewWriter(&bw.block)
	return bw
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errClosed
	}
	var written int
	for len(p) > 0 {
		n := copy(w.buffer[len(w.buffer):cap(w.buffer)], p)
		w.buffer = w.buffer[:len(w.buffer)+n]
		p = p[n:]
		written += n
		if len(w.buffer) == cap(w.buffer) {
			if err := w.Flush(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush writes any buffered data as a complete block.
func (w *Writer) Flush() error {
	if len(w.buffer) == 0 {
		return nil
	}
	if err := w.encode(w.buffer); err != nil {
		return fmt.Errorf("encoding block: %v", err)
	}
	if _, err := w.w.Write(w.block.Bytes()); err != nil {
		return fmt.Errorf("writing block: %w", err)
	}
	w.buffer = w.buffer[:0]
	return nil
}

// encode compresses data into w.block as a single gzip member carrying the
// BC extra field, with BSIZE set to the member size minus one.
func (w *Writer) encode(data []byte) error {
	w.block.Reset()
	w.gz.Reset(&w.block)
	w.gz.Header.Extra = []byte{
		'B', 'C', // Subfield ID.
		0x02, 0x00, // Subfield length.
		0x00, 0x00, // BSIZE, patched below.
	}
	if _, err := w.gz.Write(data); err != nil {
		return fmt.Errorf("compressing data: %v", err)
	}
	if err := w.gz.Close(); err != nil {
		return fmt.Errorf("closing gzip member: %v", err)
	}
	size := w.block.Len()
	if size > MaximumBlockSize {
		return fmt.Errorf("block of %d bytes exceeds the BGZF limit", size)
	}
	encoded := w.block.Bytes()
	encoded[16] = byte(size - 1)
	encoded[17] = byte((size - 1) >> 8)
	return nil
}

// Close flushes buffered data and writes the EOF marker.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.Flush(); err != nil {
		return err
	}
	w.closed = true
	if _, err := w.w.Write(EOFMarker); err != nil {
		return fmt.Errorf("writing EOF marker: %w", err)
	}
	return nil
}
