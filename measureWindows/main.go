package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	unpacker "github.com/next-exp/xiareader_go/pkg"
	flag "github.com/spf13/pflag"
)

var configuration unpacker.Configuration

var logger Logger

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger = Logger{
		InfoLog:  slog.New(slog.NewTextHandler(os.Stdout, opts)),
		ErrorLog: slog.New(slog.NewJSONHandler(os.Stderr, opts)),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	gaps := flag.Int64Slice("gaps", []int64{25, 50, 100, 200, 500, 1000}, "Gap thresholds to try")
	widths := flag.Int64Slice("widths", []int64{500, 1000, 2500, 5000}, "Coincidence half-widths to try")
	numWorkers := flag.Int("workers", 0, "Override the configured number of workers")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if *numWorkers > 0 {
		configuration.NumWorkers = *numWorkers
	}
	unpacker.SetLogger(logger)

	if err := checkConfiguration(configuration); err != nil {
		message := fmt.Errorf("Invalid configuration: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	channels, err := unpacker.LoadChannelsFile(configuration.ChannelsFile)
	if err != nil {
		logger.Error(fmt.Errorf("Error reading channels file: %w", err).Error())
		os.Exit(1)
	}
	words, err := unpacker.ReadWordsFromFile(configuration.FileIn)
	if err != nil {
		logger.Error(fmt.Errorf("Error reading words: %w", err).Error())
		os.Exit(1)
	}
	message := fmt.Sprintf("Read %d words from %s", len(words), configuration.FileIn)
	logger.Info(message, "main")

	start := time.Now()
	for _, settings := range sweep(configuration.Settings, *gaps, *widths) {
		result, err := measure(words, channels, settings)
		if err != nil {
			logger.Error(fmt.Errorf("%s: %w", describe(settings), err).Error())
			continue
		}
		fmt.Println(result)
	}
	duration := time.Since(start)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

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

// checkConfiguration covers the fields a sweep reads. Output, database
// and window settings are ignored here.
func checkConfiguration(config unpacker.Configuration) error {
	if config.FileIn == "" {
		return fmt.Errorf("no input file given")
	}
	if config.ChannelsFile == "" {
		return fmt.Errorf("a channels file is required")
	}
	if config.NumWorkers < 1 {
		return fmt.Errorf("num_workers must be at least 1, got %d", config.NumWorkers)
	}
	return config.Layout.Validate()
}

type Logger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func (l Logger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l Logger) Error(message string) {
	l.ErrorLog.Error(message)
}
