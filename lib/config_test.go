package lib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFilePath)
	expected := DefaultConfig()
	expected.Capacity = 123
	expected.Peers = []string{"http://validator-1:40000"}
	require.NoError(t, expected.WriteToFile(path))
	got, err := NewConfigFromFile(path)
	require.NoError(t, err)
	require.Equal(t, expected, got)
}

func TestConfigFileFillsDefaults(t *testing.T) {
	// a partial file only overrides what it names
	path := filepath.Join(t.TempDir(), ConfigFilePath)
	require.NoError(t, os.WriteFile(path, []byte(`{"capacity": 42, "logLevel": "debug"}`), os.ModePerm))
	got, err := NewConfigFromFile(path)
	require.NoError(t, err)
	require.EqualValues(t, 42, got.Capacity)
	require.Equal(t, "debug", got.LogLevel)
	require.Equal(t, DefaultMempoolConfig().GCIntervalMS, got.GCIntervalMS)
	require.Equal(t, DefaultRPCConfig().RPCPort, got.RPCPort)
}

func TestLogLevelFromString(t *testing.T) {
	require.Equal(t, DebugLevel, LogLevelFromString("debug"))
	require.Equal(t, WarnLevel, LogLevelFromString("WARN"))
	require.Equal(t, ErrorLevel, LogLevelFromString("error"))
	require.Equal(t, InfoLevel, LogLevelFromString("anything-else"))
}
