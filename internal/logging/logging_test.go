package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulmo-helper/internal/domain"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       domain.LoggingConfig
		level     logrus.Level
		formatter logrus.Formatter
	}{
		{"json debug", domain.LoggingConfig{Level: "debug", Format: "json"}, logrus.DebugLevel, &logrus.JSONFormatter{}},
		{"text warn", domain.LoggingConfig{Level: "warn", Format: "TEXT"}, logrus.WarnLevel, &logrus.TextFormatter{}},
		{"bad level", domain.LoggingConfig{Level: "loud"}, logrus.InfoLevel, &logrus.JSONFormatter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.cfg)
			assert.Equal(t, tt.level, logger.GetLevel())
			assert.IsType(t, tt.formatter, logger.Formatter)
		})
	}
}

func TestOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, Output("stdout"))
	assert.Equal(t, os.Stderr, Output("stderr"))
	assert.Equal(t, os.Stderr, Output(""))
}

func TestNewWritesStructuredFields(t *testing.T) {
	logger := New(domain.LoggingConfig{Level: "info", Format: "json"})
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.WithField("rule", "IPF 진단 치료").Info("Rule linked")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "IPF 진단 치료", entry["rule"])
	assert.Equal(t, "Rule linked", entry["msg"])
}
