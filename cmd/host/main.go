// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main provides the CLI entrypoint for the target provider plugin host.
//
// The host accepts configuration via a CLI flag, environment variable, or
// default:
//
//   - Config file: --config flag, HOST_CONFIG_FILE env var, or "/etc/symphony/host.yaml" default
//
// The host loads every provider shared library named in the config file,
// serves Prometheus metrics, and runs until receiving SIGTERM or SIGINT, at
// which point it releases every loaded provider and shuts down gracefully.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	_ "github.com/KimMachineGun/automemlimit"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eclipse-symphony/target-provider-go/pkg/config"
	"github.com/eclipse-symphony/target-provider-go/pkg/logging"
	"github.com/eclipse-symphony/target-provider-go/pkg/metrics"
	"github.com/eclipse-symphony/target-provider-go/pkg/pluginhost"
)

// DefaultConfigFile is the default path to the host configuration file.
const DefaultConfigFile = "/etc/symphony/host.yaml"

func main() {
	var configFile string

	flag.StringVar(&configFile, "config", "",
		"Path to the host configuration file (env: HOST_CONFIG_FILE)")
	flag.Parse()

	if configFile == "" {
		configFile = os.Getenv("HOST_CONFIG_FILE")
	}
	if configFile == "" {
		configFile = DefaultConfigFile
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", configFile, err)
		os.Exit(1)
	}

	logger := logging.NewLogger("host", cfg.Host.LogLevel)
	slog.SetDefault(logger)

	gomaxprocs := runtime.GOMAXPROCS(0)
	var gomemlimit string
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 {
		gomemlimit = fmt.Sprintf("%d bytes (%.2f MiB)", limit, float64(limit)/(1024*1024))
	} else {
		gomemlimit = "unlimited"
	}

	logger.Info("target provider host starting",
		"config_file", configFile,
		"metrics_port", cfg.Host.MetricsPort,
		"log_level", cfg.Host.LogLevel,
		"providers", len(cfg.Providers),
		"gomaxprocs", gomaxprocs,
		"gomemlimit", gomemlimit)

	registry := prometheus.NewRegistry()
	metricsHost := metrics.NewHost(registry)

	handles := make(map[string]*pluginhost.Handle, len(cfg.Providers))
	for name, entry := range cfg.Providers {
		configJSON := []byte(config.DefaultProviderConfigJSON)
		if entry.ConfigFile != "" {
			data, err := os.ReadFile(entry.ConfigFile)
			if err != nil {
				logger.Error("failed to read provider config file", "provider", name, "error", err)
				os.Exit(1)
			}
			configJSON = data
		}

		handle, err := pluginhost.LoadProvider(entry.Path, entry.ExpectedHash, configJSON)
		if err != nil {
			metricsHost.ProviderLoadFailures.WithLabelValues(stageOf(err)).Inc()
			logger.Error("failed to load provider", "provider", name, "path", entry.Path, "error", err)
			os.Exit(1)
		}

		metricsHost.ProviderLoadsTotal.Inc()
		logger.Info("provider loaded", "provider", name, "path", entry.Path)
		handles[name] = handle
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	metricsServer := metrics.NewServer(fmt.Sprintf(":%d", cfg.Host.MetricsPort), registry)
	if err := metricsServer.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("metrics server failed", "error", err)
		cancel()
	}

	for name, handle := range handles {
		if err := handle.Close(); err != nil {
			logger.Error("failed to release provider", "provider", name, "error", err)
		}
	}

	logger.Info("target provider host shutdown complete")
}

// stageOf extracts the failure stage from a pluginhost.HostError, falling
// back to "unknown" for any other error type.
func stageOf(err error) string {
	var hostErr *pluginhost.HostError
	if errors.As(err, &hostErr) {
		return hostErr.Stage
	}
	return "unknown"
}
