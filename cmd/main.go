package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meridian-network/meridian/cmd/rpc"
	"github.com/meridian-network/meridian/controller"
	"github.com/meridian-network/meridian/lib"
)

var (
	rootCmd = &cobra.Command{Use: "meridian", Short: "meridian is a validator mempool node"}
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "start the mempool daemon",
	Run: func(cmd *cobra.Command, args []string) {
		Start()
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func Start() {
	c := InitializeDataDirectory("", lib.NewDefaultLogger())
	// the runtime logger writes to stdout and the rotating file in the data directory
	l := lib.NewLogger(lib.LoggerConfig{Level: lib.LogLevelFromString(c.LogLevel)}, c.DataDirPath)
	var metrics *lib.Metrics
	if c.MetricsConfig.Enabled {
		metrics = lib.NewMetricsServer(c.MetricsConfig, l)
	}
	app := controller.New(c, metrics, l)
	app.Start()
	rpc.NewServer(app, c, l).Start()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGABRT)
	s := <-stop
	app.Stop()
	l.Infof("Exit command %s received", s)
	os.Exit(0)
}

// InitializeDataDirectory ensures the data directory and config file exist and loads the configuration
func InitializeDataDirectory(dataDirPath string, log lib.LoggerI) (c lib.Config) {
	if dataDirPath == "" {
		dataDirPath = lib.DefaultDataDirPath()
	}
	log.Infof("Reading data directory at %s", dataDirPath)
	if err := os.MkdirAll(dataDirPath, os.ModePerm); err != nil {
		panic(err)
	}
	configFilePath := filepath.Join(dataDirPath, lib.ConfigFilePath)
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		log.Infof("Creating %s file", lib.ConfigFilePath)
		if err = lib.DefaultConfig().WriteToFile(configFilePath); err != nil {
			panic(err)
		}
	}
	c, err := lib.NewConfigFromFile(configFilePath)
	if err != nil {
		panic(err)
	}
	c.DataDirPath = dataDirPath
	return
}
