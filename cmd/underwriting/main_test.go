package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/property-underwriting/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func referenceConfigPath() string {
	return filepath.Join("..", "..", "config.yaml.example")
}

func TestEvaluatePretty(t *testing.T) {
	out, err := runCLI(t, "evaluate", "--config", referenceConfigPath(), "--env-file", "", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "99 Main Street")
	assert.Contains(t, out, "Operating Expenses")
	assert.Contains(t, out, "136,375.00")
	assert.Contains(t, out, "7.88%")
}

func TestEvaluateCSV(t *testing.T) {
	out, err := runCLI(t, "evaluate", "--config", referenceConfigPath(), "--output-format", "csv", "--env-file", "", "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "item,amount,running total", lines[0])
	assert.Contains(t, out, "Annual Taxes,21625.00,21625.00")
}

func TestEvaluateJSON(t *testing.T) {
	out, err := runCLI(t, "evaluate", "--config", referenceConfigPath(), "--output-format", "json", "--env-file", "", "--log-level", "error")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "outputs")
}

func TestEvaluateErrors(t *testing.T) {
	_, err := runCLI(t, "evaluate", "--config", referenceConfigPath(), "--output-format", "xml", "--env-file", "")
	assert.Error(t, err)

	_, err = runCLI(t, "evaluate", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--env-file", "")
	assert.Error(t, err)

	_, err = runCLI(t, "evaluate", "--config", referenceConfigPath(), "--log-level", "verbose", "--env-file", "")
	assert.Error(t, err)

	invalid := filepath.Join("..", "..", "internal", "config", "testdata", "invalid.yaml")
	_, err = runCLI(t, "evaluate", "--config", invalid, "--env-file", "", "--log-level", "error")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		expectErr bool
	}{
		{name: "defaults", config: config.LoggingConfig{}},
		{name: "console debug", config: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", config: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "invalid level", config: config.LoggingConfig{Level: "bogus"}, expectErr: true},
		{name: "invalid format", config: config.LoggingConfig{Format: "xml"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "underwriting.log")

	logger, err := initializeLogger(config.LoggingConfig{Level: "info", OutputFile: path}, "")
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
