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

// Package server exposes region membership queries and window counts over
// HTTP.
package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
	"github.com/hartwigmedical/hmftools-sub094/internal/metrics"
	"github.com/hartwigmedical/hmftools-sub094/internal/output"
	"github.com/hartwigmedical/hmftools-sub094/internal/regions"
)

const requestIDHeader = "X-Request-ID"

// NewRouter returns a gin engine answering queries against index with a
// tester of the given strategy.  Requests are served concurrently, so the
// stateful forward cursor strategy is rejected.  Series may be nil, in which
// case the coverage endpoints report that no counts are loaded.
func NewRouter(index *regions.Index, strategy regions.Strategy, series *output.Series) (*gin.Engine, error) {
	if strategy == regions.ForwardCursor {
		return nil, fmt.Errorf("strategy %v cannot serve concurrent queries", strategy)
	}
	tester, err := regions.New(index, strategy)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.GET("/regions", NewRegionsHandler(index))
	router.GET("/regions/:chromosome/:position", NewMembershipHandler(tester))
	router.GET("/coverage", NewCoverageHandler(series))
	router.GET("/coverage/:chromosome", NewChromosomeCoverageHandler(series))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router, nil
}

// requestLogger tags every request with an ID, reusing one supplied by the
// client, and logs it once it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"request": id,
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Info("Handled request")
	}
}

// NewRegionsHandler returns a handler summarising index.
func NewRegionsHandler(index *regions.Index) func(c *gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, RegionsResponse{
			Regions:   index.RegionCount(),
			Bases:     index.TotalBases(),
			Malformed: index.Malformed(),
		})
	}
}

// NewMembershipHandler returns a handler reporting whether the position in
// the request path lies inside a region.
func NewMembershipHandler(tester regions.Tester) func(c *gin.Context) {
	return func(c *gin.Context) {
		position, err := strconv.ParseInt(c.Param("position"), 10, 64)
		if err != nil || position < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{fmt.Sprintf("invalid position %q", c.Param("position"))})
			return
		}
		query := genomics.Position{Chromosome: c.Param("chromosome"), Position: position}
		contained, err := tester.Contains(query)
		if err != nil {
			metrics.MembershipQueries.WithLabelValues(metrics.QueryError).Inc()
			c.JSON(http.StatusInternalServerError, ErrorResponse{err.Error()})
			return
		}
		if contained {
			metrics.MembershipQueries.WithLabelValues(metrics.QueryContained).Inc()
		} else {
			metrics.MembershipQueries.WithLabelValues(metrics.QueryOutside).Inc()
		}
		c.JSON(http.StatusOK, MembershipResponse{
			Chromosome: query.Chromosome,
			Position:   query.Position,
			Contained:  contained,
		})
	}
}

// NewCoverageHandler returns a handler describing series.
func NewCoverageHandler(series *output.Series) func(c *gin.Context) {
	return func(c *gin.Context) {
		if series == nil {
			c.JSON(http.StatusNotFound, ErrorResponse{"no window counts loaded"})
			return
		}
		c.JSON(http.StatusOK, CoverageResponse{
			WindowSize:  series.WindowSize,
			Chromosomes: series.Chromosomes,
		})
	}
}

// NewChromosomeCoverageHandler returns a handler listing the window counts
// of the chromosome in the request path.
func NewChromosomeCoverageHandler(series *output.Series) func(c *gin.Context) {
	return func(c *gin.Context) {
		if series == nil {
			c.JSON(http.StatusNotFound, ErrorResponse{"no window counts loaded"})
			return
		}
		chromosome := c.Param("chromosome")
		counts, ok := series.Counts[chromosome]
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse{fmt.Sprintf("unknown chromosome %q", chromosome)})
			return
		}
		windows := make([]Window, len(counts))
		for i, count := range counts {
			windows[i] = Window{Position: count.Position, Count: count.Count, Boundary: count.IsBoundary()}
		}
		c.JSON(http.StatusOK, ChromosomeCoverageResponse{
			Chromosome: chromosome,
			WindowSize: series.WindowSize,
			Windows:    windows,
		})
	}
}
