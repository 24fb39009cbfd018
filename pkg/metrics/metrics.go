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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Host collects the plugin host's own operational metrics, all
// registered against an instance-owned registry rather than the global
// default registerer.
type Host struct {
	ProviderLoadsTotal       prometheus.Counter
	ProviderLoadFailures     *prometheus.CounterVec
	OperationsTotal          *prometheus.CounterVec
	OperationDurationSeconds *prometheus.HistogramVec
}

// NewHost registers and returns the host's metric set on registry.
func NewHost(registry prometheus.Registerer) *Host {
	f := promauto.With(registry)

	return &Host{
		ProviderLoadsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "pluginhost_provider_loads_total",
			Help: "Total number of provider instances successfully constructed.",
		}),
		ProviderLoadFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pluginhost_provider_load_failures_total",
			Help: "Total number of provider construction failures by stage.",
		}, []string{"stage"}),
		OperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pluginhost_operations_total",
			Help: "Total provider operation invocations by provider and operation.",
		}, []string{"provider", "operation", "outcome"}),
		OperationDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pluginhost_operation_duration_seconds",
			Help:    "Provider operation latency in seconds by provider and operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
	}
}

// ObserveOperation records one completed operation's outcome and latency.
func (h *Host) ObserveOperation(providerName, operation string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	h.OperationsTotal.WithLabelValues(providerName, operation, outcome).Inc()
	h.OperationDurationSeconds.WithLabelValues(providerName, operation).Observe(duration.Seconds())
}
