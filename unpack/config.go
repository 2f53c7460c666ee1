package main

import (
	"encoding/json"
	"fmt"
	"os"

	unpacker "github.com/next-exp/xiareader_go/pkg"
)

// LoadConfiguration overlays the JSON file on top of the default values.
func LoadConfiguration(filename string) (unpacker.Configuration, error) {
	config := unpacker.DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config unpacker.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Channels file: %s", config.ChannelsFile), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Window policy: %v", config.Policy), "config")
	logger.Info(fmt.Sprintf("Trigger type: %v", config.TriggerType), "config")
	logger.Info(fmt.Sprintf("Gap threshold: %d", config.GapThreshold), "config")
	logger.Info(fmt.Sprintf("Coincidence half-width: %d", config.CoincidenceHalfWidth), "config")
	logger.Info(fmt.Sprintf("Capacity: %d", config.Capacity), "config")
	for _, t := range unpacker.ChannelTypes {
		logger.Info(fmt.Sprintf("Channels %v: %d", t, config.Channels[t]), "config")
	}
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
}
