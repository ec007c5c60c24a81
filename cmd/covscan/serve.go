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
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/hartwigmedical/hmftools-sub094/internal/output"
	"github.com/hartwigmedical/hmftools-sub094/internal/regions"
	"github.com/hartwigmedical/hmftools-sub094/internal/server"
)

type serveCmd struct {
	BED       string `name:"bed" required:"" help:"Region file (local path or gs:// URL, optionally compressed)."`
	OneBased  bool   `name:"one-based" help:"Coordinates are 1-based and closed rather than BED."`
	Strategy  string `name:"strategy" default:"linear" enum:"linear,bidirectional" help:"Membership strategy (${enum})."`
	Counts    string `name:"counts" help:"Window counts TSV written by scan."`
	Port      int    `name:"port" default:"8080" help:"HTTP service port."`
	HTTPSCert string `name:"https-cert" type:"existingfile" help:"HTTPS certificate file."`
	HTTPSKey  string `name:"https-key" type:"existingfile" help:"HTTPS key file."`
}

func (cmd *serveCmd) Run(a *app) error {
	if (cmd.HTTPSCert == "") != (cmd.HTTPSKey == "") {
		return errors.New("--https-cert and --https-key must be given together")
	}
	strategy, err := regions.ParseStrategy(cmd.Strategy)
	if err != nil {
		return err
	}
	index, err := loadIndex(a, cmd.BED, cmd.OneBased)
	if err != nil {
		return err
	}

	var series *output.Series
	if cmd.Counts != "" {
		r, err := a.opener.Open(a.ctx, cmd.Counts)
		if err != nil {
			return err
		}
		series, err = output.ReadTSV(r)
		r.Close()
		if err != nil {
			return fmt.Errorf("loading counts from %s: %w", cmd.Counts, err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := server.NewRouter(index, strategy, series)
	if err != nil {
		return err
	}

	address := fmt.Sprintf(":%d", cmd.Port)
	a.log.WithField("address", address).Info("Serving")
	if cmd.HTTPSCert != "" {
		return router.RunTLS(address, cmd.HTTPSCert, cmd.HTTPSKey)
	}
	return router.Run(address)
}
