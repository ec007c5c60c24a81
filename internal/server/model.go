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

package server

// RegionsResponse summarises the loaded regions.
type RegionsResponse struct {
	Regions   int   `json:"regions"`
	Bases     int64 `json:"bases"`
	Malformed int   `json:"malformed"`
}

// MembershipResponse answers one membership query.
type MembershipResponse struct {
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	Contained  bool   `json:"contained"`
}

// CoverageResponse describes the loaded window counts.
type CoverageResponse struct {
	WindowSize  int64    `json:"windowSize"`
	Chromosomes []string `json:"chromosomes"`
}

// Window is one window count.  End-of-chromosome markers have a count of -1
// and Boundary set.
type Window struct {
	Position int64 `json:"position"`
	Count    int32 `json:"count"`
	Boundary bool  `json:"boundary,omitempty"`
}

// ChromosomeCoverageResponse lists the window counts of one chromosome.
type ChromosomeCoverageResponse struct {
	Chromosome string   `json:"chromosome"`
	WindowSize int64    `json:"windowSize"`
	Windows    []Window `json:"windows"`
}

// ErrorResponse carries the reason a request failed.
type ErrorResponse struct {
	Error string `json:"error"`
}
