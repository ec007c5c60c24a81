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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/regions"
)

type regionsCmd struct {
	BED      string `name:"bed" required:"" help:"Region file (local path or gs:// URL, optionally compressed)."`
	OneBased bool   `name:"one-based" help:"Coordinates are 1-based and closed rather than BED."`
	Strategy string `name:"strategy" default:"linear" enum:"forward,linear,bidirectional" help:"Membership strategy (${enum}); forward requires ascending queries."`
	Query    string `name:"query" help:"File of chromosome<TAB>position queries, or - for stdin."`
}

func loadIndex(a *app, path string, oneBased bool) (*regions.Index, error) {
	loaded, err := regions.LoadFile(a.ctx, a.opener, path, regions.LoadOptions{OneBased: oneBased})
	if err != nil {
		return nil, err
	}
	index := regions.NewIndex(loaded)
	a.log.WithFields(log.Fields{
		"bed":       path,
		"regions":   index.RegionCount(),
		"bases":     index.TotalBases(),
		"malformed": index.Malformed(),
	}).Info("Loaded regions")
	return index, nil
}

func (cmd *regionsCmd) Run(a *app) error {
	strategy, err := regions.ParseStrategy(cmd.Strategy)
	if err != nil {
		return err
	}
	index, err := loadIndex(a, cmd.BED, cmd.OneBased)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	fmt.Fprintf(out, "regions\t%d\nbases\t%d\n", index.RegionCount(), index.TotalBases())
	if cmd.Query == "" {
		return nil
	}

	var queries io.Reader = os.Stdin
	if cmd.Query != "-" {
		r, err := a.opener.Open(a.ctx, cmd.Query)
		if err != nil {
			return err
		}
		defer r.Close()
		queries = r
	}
	tester, err := regions.New(index, strategy)
	if err != nil {
		return err
	}
	return answer(tester, queries, out)
}

// answer writes chromosome<TAB>position<TAB>true|false for every query line.
func answer(tester regions.Tester, queries io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(queries)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return fmt.Errorf("query line %d: expected chromosome and position", line)
		}
		position, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("query line %d: parsing position: %v", line, err)
		}
		contained, err := tester.Contains(genomics.Position{Chromosome: fields[0], Position: position})
		if err != nil {
			return fmt.Errorf("query line %d: %w", line, err)
		}
		if _, err := fmt.Fprintf(out, "%s\t%d\t%t\n", fields[0], position, contained); err != nil {
			return err
		}
	}
	return scanner.Err()
}
