package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/jobfeed/lib/config"
	"github.com/artie-labs/jobfeed/lib/config/constants"
)

func TestLoadExporter(t *testing.T) {
	{
		// No provider
		assert.IsType(t, NullMetricsProvider{}, LoadExporter(config.Config{}))
	}
	{
		// Unsupported provider
		var cfg config.Config
		cfg.Telemetry.Metrics.Provider = "prometheus"
		assert.IsType(t, NullMetricsProvider{}, LoadExporter(cfg))
	}
	{
		// Datadog
		var cfg config.Config
		cfg.Telemetry.Metrics.Provider = constants.Datadog
		cfg.Telemetry.Metrics.Settings = map[string]any{"namespace": "jobfeed.test."}
		client := LoadExporter(cfg)
		assert.NotNil(t, client)
		assert.NotPanics(t, func() { client.Incr("ingest.runs", map[string]string{"status": "ok"}) })
		_, isNull := client.(NullMetricsProvider)
		assert.False(t, isNull)
	}
}
