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
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hartwigmedical/hmftools-sub094/internal/alignment"
	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/metrics"
)

const (
	// DefaultThreads is the worker pool size used when Config.Threads is not
	// positive.
	DefaultThreads = 4
	// DefaultWindowSize is the window width used when Config.WindowSize is not
	// positive.
	DefaultWindowSize = 1000
)

// ErrUnsortedReads is the cause of a TaskError raised when a chromosome's
// reads are not in ascending start order.
var ErrUnsortedReads = errors.New("reads not sorted by alignment start")

// Config controls a Scanner.
type Config struct {
	Threads    int   // number of chromosomes counted concurrently
	WindowSize int64 // window width in bases
}

func (cfg Config) withDefaults() Config {
	if cfg.Threads < 1 {
		cfg.Threads = DefaultThreads
	}
	if cfg.WindowSize < 1 {
		cfg.WindowSize = DefaultWindowSize
	}
	return cfg
}

// Sink receives the window counts of each chromosome.  Append is called from
// a single goroutine, once per chromosome, in chromosome-table order.
type Sink interface {
	Append(chromosome string, counts []genomics.ReadCount) error
}

// TaskError reports the chromosome whose counting task failed.
type TaskError struct {
	Chromosome string
	Err        error
}

func (err *TaskError) Error() string {
	return fmt.Sprintf("counting reads on %s: %v", err.Chromosome, err.Err)
}

// Unwrap returns the cause of the failure.
func (err *TaskError) Unwrap() error {
	return err.Err
}

// Scanner counts reads in windows across a chromosome table.
type Scanner struct {
	cfg    Config
	source alignment.Source
}

// NewScanner returns a Scanner reading from source.
func NewScanner(cfg Config, source alignment.Source) *Scanner {
	return &Scanner{cfg: cfg.withDefaults(), source: source}
}

// WindowSize returns the window width the Scanner counts with.
func (s *Scanner) WindowSize() int64 {
	return s.cfg.WindowSize
}

type result struct {
	counts []genomics.ReadCount
	err    error
}

// Scan counts every chromosome in lengths, at most Config.Threads at a time,
// and appends the results to sink in the order of lengths.  The first
// failure stops further chromosomes from being started; chromosomes already
// being counted run to completion before Scan returns.  A task failure is
// returned as a *TaskError.
func (s *Scanner) Scan(ctx context.Context, lengths []genomics.ChromosomeLength, sink Sink) error {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]chan result, len(lengths))
	for i := range results {
		results[i] = make(chan result, 1)
	}

	type job struct {
		index  int
		length genomics.ChromosomeLength
	}
	jobs := make(chan job)

	threads := s.cfg.Threads
	if threads > len(lengths) {
		threads = len(lengths)
	}
	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				counts, err := s.count(ctx, j.length)
				results[j.index] <- result{counts, err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, length := range lengths {
			select {
			case <-ctx.Done():
				for _, ch := range results[i:] {
					ch <- result{err: ctx.Err()}
				}
				return
			case jobs <- job{i, length}:
			}
		}
	}()

	var firstErr error
	for i, length := range lengths {
		r := <-results[i]
		if firstErr != nil {
			continue
		}
		switch {
		case r.err != nil && parent.Err() != nil:
			firstErr = parent.Err()
		case r.err != nil:
			firstErr = &TaskError{Chromosome: length.Chromosome, Err: r.err}
		default:
			if err := sink.Append(length.Chromosome, r.counts); err != nil {
				firstErr = fmt.Errorf("writing counts for %s: %w", length.Chromosome, err)
			}
		}
		if firstErr != nil {
			log.WithField("chromosome", length.Chromosome).Debug("Stopping scan after failure")
			cancel()
		}
	}
	wg.Wait()
	return firstErr
}

// count runs one chromosome to completion.  Cancellation is only observed
// before the chromosome is started.
func (s *Scanner) count(ctx context.Context, length genomics.ChromosomeLength) ([]genomics.ReadCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	counts, err := s.countReads(ctx, length)
	if err != nil {
		metrics.Chromosomes.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, err
	}
	elapsed := time.Since(start)
	metrics.Chromosomes.WithLabelValues(metrics.ResultOK).Inc()
	metrics.ChromosomeDuration.Observe(elapsed.Seconds())
	log.WithFields(log.Fields{
		"chromosome": length.Chromosome,
		"windows":    len(counts),
		"elapsed":    elapsed,
	}).Debug("Counted chromosome")
	return counts, nil
}

func (s *Scanner) countReads(ctx context.Context, length genomics.ChromosomeLength) ([]genomics.ReadCount, error) {
	cursor, err := s.source.OpenCursor(ctx, length.Chromosome)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	counter := NewCounter(length.Chromosome, length.Length, s.cfg.WindowSize)
	var previous, counted, ineligible int64
	for {
		record, err := cursor.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if record.Start < previous {
			return nil, fmt.Errorf("%w: %d after %d", ErrUnsortedReads, record.Start, previous)
		}
		previous = record.Start

		eligible := Eligible(record)
		if eligible {
			counted++
		} else {
			ineligible++
		}
		counter.Add(record.Start, eligible)
	}
	metrics.Reads.WithLabelValues(metrics.ReadCounted).Add(float64(counted))
	metrics.Reads.WithLabelValues(metrics.ReadIneligible).Add(float64(ineligible))
	return counter.Finish(), nil
}
