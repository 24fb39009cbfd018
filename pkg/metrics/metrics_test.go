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
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation_SuccessAndFailureLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	h := NewHost(registry)

	h.ObserveOperation("mock", "Apply", nil, 10*time.Millisecond)
	h.ObserveOperation("mock", "Apply", errors.New("boom"), 20*time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "pluginhost_operations_total" {
			found = f
		}
	}
	require.NotNil(t, found)
	assert.Len(t, found.Metric, 2)
}

func TestNewHost_RegistersProviderLoadMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	h := NewHost(registry)
	h.ProviderLoadsTotal.Inc()
	h.ProviderLoadFailures.WithLabelValues("verify-hash").Inc()

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
