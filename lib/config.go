package lib

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/alecthomas/units"
)

/* This file implements logic for 'user controlled' global configurations of each module of the node */

const (
	// FILE NAMES in the 'data directory'
	ConfigFilePath = "config.json" // the file path for the node configuration
)

// Config is the structure of the user configuration options for a Meridian mempool node
type Config struct {
	MainConfig    // main options spanning over all modules
	RPCConfig     // rpc API options
	MempoolConfig // mempool options
	NetworkConfig // peer networking options
	MetricsConfig // telemetry options
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:    DefaultMainConfig(),
		RPCConfig:     DefaultRPCConfig(),
		MempoolConfig: DefaultMempoolConfig(),
		NetworkConfig: DefaultNetworkConfig(),
		MetricsConfig: DefaultMetricsConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel    string `json:"logLevel"`    // any level includes the levels above it: debug < info < warning < error
	ChainId     uint64 `json:"chainId"`     // the identifier of this particular chain within a single 'network id'
	DataDirPath string `json:"dataDirPath"` // the path of the designated folder where the node saves config and log files
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig {
	return MainConfig{
		LogLevel:    "info", // everything but debug is the default
		ChainId:     1,      // mainnet chain id
		DataDirPath: DefaultDataDirPath(),
	}
}

// RPC CONFIG BELOW

type RPCConfig struct {
	RPCPort     string `json:"rpcPort"`     // the port where the rpc server is hosted
	AdminPort   string `json:"adminPort"`   // the port where the admin rpc server is hosted
	RPCUrl      string `json:"rpcURL"`      // the url where the rpc server is hosted
	AdminRPCUrl string `json:"adminRPCUrl"` // the url where the admin rpc server is hosted
	TimeoutS    int    `json:"timeoutS"`    // the rpc request timeout in seconds
	MaxConns    int    `json:"maxConns"`    // the maximum simultaneous inbound rpc connections
}

// DefaultRPCConfig() sets rpc url to localhost and sets rpc and admin ports from [40000-40001]
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		RPCPort:     "40000",                  // the rpc is served on localhost:40000
		AdminPort:   "40001",                  // the admin rpc is served on localhost:40001
		RPCUrl:      "http://localhost:40000", // use a local rpc by default
		AdminRPCUrl: "http://localhost:40001", // use a local admin rpc by default
		TimeoutS:    3,                        // the rpc timeout is 3 seconds
		MaxConns:    100,                      // allow 100 simultaneous connections
	}
}

// MEMPOOL CONFIG BELOW

// MempoolConfig is the user configuration of the unconfirmed transaction pool
type MempoolConfig struct {
	Capacity            uint32 `json:"capacity"`            // max number of transactions held in the pool
	IndividualMaxTxSize uint32 `json:"individualMaxTxSize"` // max bytes of a single transaction
	GCIntervalMS        uint64 `json:"gcIntervalMS"`        // how often the expiration sweep runs in milliseconds
	HealthLagFactor     uint64 `json:"healthLagFactor"`     // unhealthy after this many missed sweep intervals
}

// DefaultMempoolConfig() returns the developer created Mempool options
func DefaultMempoolConfig() MempoolConfig {
	return MempoolConfig{
		Capacity:            5000,                       // 5000 max transactions
		IndividualMaxTxSize: uint32(4 * units.Kilobyte), // 4 KB max individual tx size
		GCIntervalMS:        1000,                       // sweep expired transactions every second
		HealthLagFactor:     3,                          // report unhealthy after 3 missed sweeps
	}
}

// NETWORK CONFIG BELOW

// NetworkConfig defines peering urls and limits for the validator gossip layer
type NetworkConfig struct {
	Peers               []string `json:"peers"`               // the rpc urls of the peer validators
	SubmitTimeoutMS     uint64   `json:"submitTimeoutMS"`     // per-peer submission timeout in milliseconds
	BroadcastIntervalMS uint64   `json:"broadcastIntervalMS"` // how often the timeline is polled for new transactions
	BroadcastBatchSize  uint64   `json:"broadcastBatchSize"`  // max transactions pulled from the timeline per poll
	MaxReceiveRate      int64    `json:"maxReceiveRate"`      // max bytes per second read from a single peer response
	MaxSubmitRetries    uint64   `json:"maxSubmitRetries"`    // max exponential backoff retries per peer submission
}

// DefaultNetworkConfig() returns the developer created networking options
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		Peers:               nil,                    // no peers until configured
		SubmitTimeoutMS:     3000,                   // give up on a peer submission after 3 seconds
		BroadcastIntervalMS: 500,                    // poll the timeline twice a second
		BroadcastBatchSize:  100,                    // forward at most 100 transactions per poll
		MaxReceiveRate:      int64(units.MB),        // read at most 1 MB/s from a peer
		MaxSubmitRetries:    3,                      // retry a failed peer submission 3 times
	}
}

// METRICS CONFIG BELOW

// MetricsConfig represents the configuration for the metrics server
type MetricsConfig struct {
	Enabled           bool   `json:"enabled"`           // if the metrics are enabled
	PrometheusAddress string `json:"prometheusAddress"` // the address of the server
}

// DefaultMetricsConfig() returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:           true,           // enabled by default
		PrometheusAddress: "0.0.0.0:9090", // the default prometheus address
	}
}

// WriteToFile() saves the Config object to a JSON file
func (c Config) WriteToFile(filepath string) error {
	// convert the config to indented 'pretty' json bytes
	jsonBytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// write the config.json file to the data directory
	return os.WriteFile(filepath, jsonBytes, os.ModePerm)
}

// NewConfigFromFile() populates a Config object from a JSON file
func NewConfigFromFile(filepath string) (Config, error) {
	// read the file into bytes
	fileBytes, err := os.ReadFile(filepath)
	if err != nil {
		return Config{}, err
	}
	// define the default config to fill in any blanks in the file
	c := DefaultConfig()
	// populate the default config with the file bytes
	if err = json.Unmarshal(fileBytes, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DefaultDataDirPath() returns the default data directory path under the user's home folder
func DefaultDataDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.meridian"
	}
	return filepath.Join(home, ".meridian")
}
