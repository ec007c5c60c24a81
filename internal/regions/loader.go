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

package regions

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/storage"
)

// LoadOptions controls how region files are interpreted.
type LoadOptions struct {
	// OneBased reads coordinates as 1-based closed intervals instead of the
	// 0-based half-open intervals of BED.
	OneBased bool
}

// Load reads regions from r, one per line.  Lines hold a chromosome, a start
// and an end, optionally followed by an annotation; blank lines, comments
// and track or browser lines are skipped.  Regions are returned in file order
// and are not validated.
func Load(r io.Reader, opts LoadOptions) (map[string][]genomics.Region, error) {
	loaded := make(map[string][]genomics.Region)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if skipLine(text) {
			continue
		}
		region, err := parseRegion(text, opts)
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}
		loaded[region.Chromosome] = append(loaded[region.Chromosome], region)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading regions: %w", err)
	}
	return loaded, nil
}

func skipLine(text string) bool {
	return text == "" ||
		strings.HasPrefix(text, "#") ||
		strings.HasPrefix(text, "track") ||
		strings.HasPrefix(text, "browser")
}

func parseRegion(text string, opts LoadOptions) (genomics.Region, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < 3 {
		fields = strings.Fields(text)
	}
	if len(fields) < 3 {
		return genomics.Region{}, fmt.Errorf("expected at least 3 columns, got %d", len(fields))
	}

	start, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return genomics.Region{}, fmt.Errorf("parsing start: %v", err)
	}
	end, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return genomics.Region{}, fmt.Errorf("parsing end: %v", err)
	}
	if !opts.OneBased {
		start++
	}

	region := genomics.Region{
		Chromosome: strings.TrimSpace(fields[0]),
		Start:      start,
		End:        end,
	}
	if len(fields) > 3 {
		region.Annotation = strings.TrimSpace(fields[3])
	}
	return region, nil
}

// LoadFile loads the regions stored at path, which may be a local file or a
// gs:// URL and may be compressed.
func LoadFile(ctx context.Context, opener *storage.Opener, path string, opts LoadOptions) (map[string][]genomics.Region, error) {
	r, err := opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	loaded, err := Load(r, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	log.WithFields(log.Fields{"path": path, "chromosomes": len(loaded)}).Debug("Loaded regions")
	return loaded, nil
}
