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

package main

import (
	"errors"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hartwigmedical/hmftools-sub094/internal/alignment"
	"github.com/hartwigmedical/hmftools-sub094/internal/coverage"
	"github.com/hartwigmedical/hmftools-sub094/internal/output"
	"github.com/hartwigmedical/hmftools-sub094/internal/reference"
)

type scanCmd struct {
	BAM               string `name:"bam" required:"" help:"Indexed, coordinate-sorted BAM (local path or gs:// URL)."`
	ChromosomeLengths string `name:"chromosome-lengths" help:"Chromosome table (.tsv, .dict or .bam); the BAM header is used if unset."`
	Output            string `name:"output" required:"" type:"path" help:"Output path; .gz or .bgz writes BGZF-compressed TSV, .db or .sqlite writes SQLite."`
	SQLite            string `name:"sqlite" type:"path" help:"Also store the counts in this SQLite database."`
	Threads           int    `name:"threads" default:"4" help:"Chromosomes counted concurrently."`
	WindowSize        int64  `name:"window-size" default:"1000" help:"Window width in bases."`
}

func (cmd *scanCmd) Run(a *app) error {
	source, err := alignment.NewBAMSource(a.ctx, a.opener, cmd.BAM)
	if err != nil {
		return err
	}
	lengths := source.References()
	if cmd.ChromosomeLengths != "" {
		if lengths, err = reference.Load(a.ctx, a.opener, cmd.ChromosomeLengths); err != nil {
			return err
		}
	}

	w, err := output.Create(cmd.Output, cmd.WindowSize)
	if err != nil {
		return err
	}
	sink := output.Writer(w)
	created := []string{cmd.Output}
	if cmd.SQLite != "" {
		if _, err := os.Stat(cmd.SQLite); errors.Is(err, os.ErrNotExist) {
			created = append(created, cmd.SQLite)
		}
		db, err := output.OpenSQLite(cmd.SQLite, cmd.WindowSize)
		if err != nil {
			w.Close()
			a.discard(created...)
			return err
		}
		sink = output.Multi{w, db}
	}

	a.log.WithFields(log.Fields{
		"bam":         cmd.BAM,
		"chromosomes": len(lengths),
		"threads":     cmd.Threads,
		"windowSize":  cmd.WindowSize,
	}).Info("Starting scan")
	start := time.Now()
	scanner := coverage.NewScanner(coverage.Config{Threads: cmd.Threads, WindowSize: cmd.WindowSize}, source)
	err = scanner.Scan(a.ctx, lengths, sink)
	if closeErr := sink.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		a.discard(created...)
		return err
	}

	fields := log.Fields{
		"output":  cmd.Output,
		"elapsed": time.Since(start),
	}
	if tsv, ok := w.(*output.TSV); ok {
		fields["blake3"] = tsv.Digest()
	}
	a.log.WithFields(fields).Info("Scan complete")
	return nil
}

// discard removes the outputs a failed scan created so that a partial result
// is never mistaken for a complete one.  An SQLite database that existed
// before the scan is kept.
func (a *app) discard(paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.log.WithError(err).WithField("path", path).Warn("Failed to remove incomplete output")
		}
	}
}
