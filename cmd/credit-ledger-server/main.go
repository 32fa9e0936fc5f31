// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/ziflex/lecho/v2"

	"github.com/optakt/credit-ledger/api/rest"
	"github.com/optakt/credit-ledger/codec/zbor"
	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/service/chain"
	"github.com/optakt/credit-ledger/service/index"
	"github.com/optakt/credit-ledger/service/loader"
	"github.com/optakt/credit-ledger/service/metrics"
	"github.com/optakt/credit-ledger/service/quorum"
	"github.com/optakt/credit-ledger/service/settlement"
	"github.com/optakt/credit-ledger/service/storage"
	"github.com/optakt/credit-ledger/service/synchronizer"
)

const (
	success = 0
	failure = 1
)

// Config holds the server settings assembled from the command line.
type Config struct {
	Port        uint16  `validate:"gt=0"`
	Metrics     string  `validate:"omitempty,hostname_port"`
	Data        string  `validate:"omitempty"`
	Difficulty  uint    `validate:"lte=64"`
	Validators  uint    `validate:"gte=1"`
	Probability float64 `validate:"gte=0,lte=1"`
}

func main() {
	os.Exit(run())
}

func run() int {

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	var (
		flagData        string
		flagDifficulty  uint
		flagLevel       string
		flagMetrics     string
		flagPort        uint16
		flagProbability float64
		flagValidators  uint
	)

	pflag.StringVarP(&flagData, "data", "d", "", "directory for the archive database (in-memory if empty)")
	pflag.UintVar(&flagDifficulty, "difficulty", chain.DefaultConfig.Difficulty, "number of leading zero bits required for block hashes")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagMetrics, "metrics", "m", ":9090", "address on which to expose prometheus metrics (disabled if empty)")
	pflag.Uint16VarP(&flagPort, "port", "p", 8080, "port to host the REST API on")
	pflag.Float64Var(&flagProbability, "probability", quorum.DefaultConfig.Probability, "probability of an affirmative vote for each validator")
	pflag.UintVar(&flagValidators, "validators", quorum.DefaultConfig.Validators, "number of simulated validators")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)
	elog := lecho.From(log)

	cfg := Config{
		Port:        flagPort,
		Metrics:     flagMetrics,
		Data:        flagData,
		Difficulty:  flagDifficulty,
		Validators:  flagValidators,
		Probability: flagProbability,
	}
	err = validator.New().Struct(cfg)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return failure
	}

	// Open the archive database.
	db, err := badger.Open(storage.DefaultOptions(cfg.Data))
	if err != nil {
		log.Error().Str("data", cfg.Data).Err(err).Msg("could not open archive database")
		return failure
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Error().Err(err).Msg("could not close archive database")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	err = metrics.RegisterBadgerMetrics(registry)
	if err != nil {
		log.Error().Err(err).Msg("could not register badger metrics")
		return failure
	}

	// Initialize the archive.
	codec, err := zbor.NewCodec()
	if err != nil {
		log.Error().Err(err).Msg("could not initialize storage codec")
		return failure
	}
	lib := storage.New(metrics.NewCodec(codec, registry))
	write := index.NewMetricsWriter(index.NewWriter(db, lib), registry)
	read := index.NewReader(db, lib)

	// Restore or create the ledger, then rebuild the settlement state on top
	// of it.
	load := loader.FromIndex(log, read, write)
	blocks, err := load.Ledger(chain.WithDifficulty(cfg.Difficulty))
	if err != nil {
		log.Error().Err(err).Msg("could not load ledger")
		return failure
	}

	gate, err := quorum.New(log,
		quorum.WithValidators(cfg.Validators),
		quorum.WithProbability(cfg.Probability),
	)
	if err != nil {
		log.Error().Err(err).Msg("could not initialize quorum gate")
		return failure
	}

	syncer := synchronizer.New(log)
	settle := settlement.New(log,
		metrics.NewChain(blocks, registry),
		metrics.NewGate(gate, registry),
		syncer,
		settlement.WithArchive(write),
	)
	err = load.Settle(blocks, settle)
	if err != nil {
		log.Error().Err(err).Msg("could not restore settlement state")
		return failure
	}

	deliveries := metrics.NewDeliveries(registry)
	ctrl := rest.NewController(log, settle, blocks,
		rest.WithObserverWrapper(func(observer ledger.Observer) ledger.Observer {
			return deliveries.Wrap(observer)
		}),
	)

	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Logger = elog
	server.Use(lecho.Middleware(lecho.Config{Logger: elog}))
	rest.Routes(server, ctrl)

	var monitor *metrics.Server
	if cfg.Metrics != "" {
		monitor = metrics.NewServer(log, cfg.Metrics, registry)
	}

	// This section launches the servers in their own goroutines, so they can
	// run concurrently. Afterwards, we wait for an interrupt signal in order
	// to proceed with the next section.
	done := make(chan struct{})
	failed := make(chan struct{})
	go func() {
		log.Info().Uint16("port", cfg.Port).Msg("credit ledger server starting")
		err := server.Start(fmt.Sprint(":", cfg.Port))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("credit ledger server failed")
			close(failed)
		} else {
			close(done)
		}
		log.Info().Msg("credit ledger server stopped")
	}()
	if monitor != nil {
		go func() {
			err := monitor.Start()
			if err != nil {
				log.Warn().Err(err).Msg("metrics server failed")
			}
		}()
	}

	select {
	case <-sig:
		log.Info().Msg("credit ledger server stopping")
	case <-done:
		log.Info().Msg("credit ledger server done")
	case <-failed:
		log.Warn().Msg("credit ledger server aborted")
		return failure
	}
	go func() {
		<-sig
		log.Warn().Msg("forcing exit")
		os.Exit(1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not shut down credit ledger server")
		return failure
	}
	if monitor != nil {
		err = monitor.Stop(ctx)
		if err != nil {
			log.Error().Err(err).Msg("could not shut down metrics server")
			return failure
		}
	}

	// Closing the synchronizer disconnects all websocket subscribers.
	err = syncer.Close()
	if err != nil {
		log.Warn().Err(err).Msg("could not close all observers")
	}

	return success
}
