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

// This binary counts reads in fixed-size windows across a genome, answers
// region membership queries and serves both over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/hartwigmedical/hmftools-sub094/internal/storage"
)

var cli struct {
	LogLevel     string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Logging level (${enum})."`
	GCSToken     string `name:"gcs-token" env:"GCS_ACCESS_TOKEN" help:"OAuth2 bearer token for gs:// inputs; application default credentials are used otherwise."`
	GCSAnonymous bool   `name:"gcs-anonymous" help:"Read gs:// inputs without credentials (public buckets only)."`
	Profile      string `name:"profile" default:"" enum:",cpu,mem" help:"Write a cpu or mem profile."`
	ProfilePath  string `name:"profile-path" default:"." type:"path" help:"Directory for profile output."`

	Scan    scanCmd    `cmd:"" help:"Count reads in fixed-size windows across every chromosome."`
	Regions regionsCmd `cmd:"" help:"Summarise a region file and answer membership queries."`
	Serve   serveCmd   `cmd:"" help:"Serve membership queries and window counts over HTTP."`
}

// app carries what every command needs.
type app struct {
	ctx    context.Context
	opener *storage.Opener
	log    *log.Entry
}

func main() {
	parser, err := kong.New(&cli,
		kong.Name("covscan"),
		kong.Description("Windowed read coverage and region membership."),
		kong.UsageOnError())
	if err != nil {
		log.Fatalf("Failed to build command line parser: %v", err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "covscan: %v\n", err)
		os.Exit(1)
	}

	if err := run(kctx); err != nil {
		log.WithError(err).Error("covscan failed")
		os.Exit(1)
	}
}

func run(kctx *kong.Context) error {
	level, err := log.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	switch cli.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cli.ProfilePath), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(cli.ProfilePath), profile.Quiet).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gcs := storage.GCSOptions{Token: cli.GCSToken, Anonymous: cli.GCSAnonymous}
	a := &app{
		ctx: ctx,
		opener: storage.NewOpener(func(ctx context.Context) (storage.Client, error) {
			return storage.NewGCSClient(ctx, gcs)
		}),
		log: log.WithField("run", uuid.NewString()),
	}
	return kctx.Run(a)
}
