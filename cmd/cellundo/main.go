// cmd/cellundo/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	stlog "log" // Use standard log for FATAL errors before logger is ready
	"os"

	"github.com/bethropolis/cellundo/internal/app"
	"github.com/bethropolis/cellundo/internal/config"
	"github.com/bethropolis/cellundo/internal/logger"
)

var version = "dev"

func main() {
	flags := config.NewFlags(config.AppName)
	args, err := flags.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}
	if flags.Version {
		fmt.Printf("%s %s\n", config.AppName, version)
		return
	}

	var filePath string
	if len(args) > 0 {
		filePath = args[0]
	}

	cfg, err := config.LoadConfig(flags.ConfigFilePath, flags)
	if err != nil {
		stlog.Printf("Warning: could not read config: %v", err)
	}

	if err := logger.Init(cfg.Logger); err != nil {
		stlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Infof("Starting %s %s", config.AppName, version)
	if filePath != "" {
		logger.Debugf("File path specified: %s", filePath)
	} else {
		logger.Debugf("No file specified, starting empty.")
	}

	cellApp, err := app.NewApp(cfg, filePath)
	if err != nil {
		logger.Errorf("Error initializing application: %v", err)
		_ = logger.Close()
		os.Exit(1)
	}

	if err := cellApp.Run(); err != nil {
		logger.Errorf("Application exited with error: %v", err)
		_ = logger.Close()
		os.Exit(1)
	}

	logger.Infof("%s finished.", config.AppName)
}
