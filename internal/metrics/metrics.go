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

// Package metrics declares the Prometheus collectors shared by the scanner
// and the HTTP service.  All collectors are registered with the default
// registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values used with the collectors below.
const (
	ReadCounted    = "counted"
	ReadIneligible = "ineligible"

	ResultOK     = "ok"
	ResultFailed = "failed"

	QueryContained = "contained"
	QueryOutside   = "outside"
	QueryError     = "error"
)

var (
	// Reads counts reads consumed by the scanner by status.
	Reads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covscan_reads_total",
		Help: "Reads consumed while counting coverage, by status",
	}, []string{"status"})

	// Chromosomes counts finished chromosome tasks by result.
	Chromosomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covscan_chromosomes_total",
		Help: "Chromosome counting tasks by result",
	}, []string{"result"})

	// ChromosomeDuration tracks how long counting one chromosome takes.
	ChromosomeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "covscan_chromosome_duration_seconds",
		Help:    "Time spent counting one chromosome in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
	})

	// MembershipQueries counts region membership queries by result.
	MembershipQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covscan_membership_queries_total",
		Help: "Region membership queries by result",
	}, []string{"result"})
)
