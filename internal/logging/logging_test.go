package logging_test

import (
	"testing"

	"github.com/dessyd/scout/internal/config"
	"github.com/dessyd/scout/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_DefaultConfig(t *testing.T) {
	cfg := config.LoggingConfig{
		Level: "INFO",
	}

	logger := logging.Configure(cfg)
	require.NotNil(t, logger, "Configure should return a logger")
}

func TestConfigure_AllLogLevels(t *testing.T) {
	levels := []string{"DEBUG", "INFO", "WARN", "WARNING", "ERROR"}

	for _, level := range levels {
		t.Run(level, func(t *testing.T) {
			cfg := config.LoggingConfig{Level: level}
			logger := logging.Configure(cfg)
			assert.NotNil(t, logger)
		})
	}
}

func TestConfigure_CaseInsensitiveLevel(t *testing.T) {
	levels := []string{"debug", "Debug", "DeBuG"}

	for _, level := range levels {
		t.Run(level, func(t *testing.T) {
			cfg := config.LoggingConfig{Level: level}
			logger := logging.Configure(cfg)
			assert.NotNil(t, logger)
		})
	}
}

func TestConfigure_InvalidLevelDefaultsToInfo(t *testing.T) {
	cfg := config.LoggingConfig{Level: "INVALID"}
	logger := logging.Configure(cfg)
	assert.NotNil(t, logger, "Invalid level should still return a logger")
}

func TestConfigure_StructuredJSON(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:            "INFO",
		Structured:       true,
		StructuredFormat: "json",
	}

	logger := logging.Configure(cfg)
	assert.NotNil(t, logger)
}

func TestConfigure_WithExtraFields(t *testing.T) {
	cfg := config.LoggingConfig{
		Level: "INFO",
		ExtraFields: map[string]string{
			"app":     "scout",
			"version": "1.0.0",
		},
	}

	logger := logging.Configure(cfg)
	assert.NotNil(t, logger)
}

func TestConfigure_WithPID(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:      "INFO",
		IncludePID: true,
	}

	logger := logging.Configure(cfg)
	assert.NotNil(t, logger)
}
