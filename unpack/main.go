package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	unpacker "github.com/next-exp/xiareader_go/pkg"
	"github.com/next-exp/xiareader_go/pkg/writer"
	flag "github.com/spf13/pflag"
)

var dbConn *sqlx.DB
var configuration unpacker.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	verbosity := flag.IntP("verbosity", "v", -1, "Override the configured verbosity")
	parallel := flag.Bool("parallel", false, "Pack events on several workers")
	numWorkers := flag.Int("workers", 0, "Override the configured number of workers")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if *verbosity >= 0 {
		configuration.Verbosity = *verbosity
	}
	if flag.CommandLine.Changed("parallel") {
		configuration.Parallel = *parallel
	}
	if *numWorkers > 0 {
		configuration.NumWorkers = *numWorkers
	}

	unpacker.SetLogger(logger)
	unpacker.SetVerbosity(configuration.Verbosity)
	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if err := configuration.Validate(); err != nil {
		message := fmt.Errorf("Invalid configuration: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}

	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	channels, err := loadChannels()
	if err != nil {
		return err
	}
	checkLayout(channels, configuration.Layout)

	words, err := unpacker.ReadWordsFromFile(configuration.FileIn)
	if err != nil {
		return fmt.Errorf("error reading words: %w", err)
	}

	var w *writer.Writer
	if configuration.WriteData {
		w, err = writer.NewWriter(configuration.FileOut, configuration.CompressionLevel)
		if err != nil {
			return fmt.Errorf("error creating writer: %w", err)
		}
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error(err.Error())
			}
		}()
		if err := w.WriteRunInfo(configuration.RunNumber); err != nil {
			return fmt.Errorf("error writing run info: %w", err)
		}
		if err := w.WriteChannels(channels); err != nil {
			return fmt.Errorf("error writing channel map: %w", err)
		}
	}

	start := time.Now()
	summary := unpacker.NewRunSummary()
	var stats unpacker.Statistics
	if configuration.Parallel {
		stats, err = unpackParallel(words, channels, w, summary)
	} else {
		stats, err = unpackSequential(words, channels, w, summary)
	}
	if err != nil {
		return err
	}

	summary.Log(stats)
	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Total time: %d ms", duration.Milliseconds()), "main")
	return nil
}

// checkLayout reports every channel type whose map refers to channels the
// event layout has no slot for.
func checkLayout(channels unpacker.ChannelMap, layout unpacker.Layout) int {
	counts := channels.Counts()
	undersized := layout.Undersized(counts)
	for _, t := range undersized {
		message := fmt.Sprintf("channel map needs %d %v channels but the layout holds %d: their words will be dropped",
			counts[t], t, layout.Channels[t])
		logger.Error(message)
	}
	return len(undersized)
}

func loadChannels() (unpacker.ChannelMap, error) {
	if configuration.NoDB {
		channels, err := unpacker.LoadChannelsFile(configuration.ChannelsFile)
		if err != nil {
			return nil, fmt.Errorf("error reading channels file: %w", err)
		}
		return channels, nil
	}

	var err error
	dbConn, err = unpacker.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()

	channels, err := unpacker.LoadChannelsFromDB(dbConn, configuration.RunNumber)
	if err != nil {
		return nil, fmt.Errorf("error reading channel map for run %d: %w", configuration.RunNumber, err)
	}
	return channels, nil
}

func unpackSequential(words []unpacker.Word, channels unpacker.ChannelMap,
	w *writer.Writer, summary *unpacker.RunSummary) (unpacker.Statistics, error) {
	u, err := unpacker.NewFromSettings(channels, configuration.Settings)
	if err != nil {
		return unpacker.Statistics{}, err
	}
	event := unpacker.NewEvent(configuration.Layout)

	u.Attach(words)
	for u.Statistics().Events < configuration.MaxEvents {
		if u.Next(event) == unpacker.Exhausted {
			break
		}
		window := u.Window()
		if err := processEvent(window, words, event, w, summary); err != nil {
			return u.Statistics(), err
		}
	}
	return u.Statistics(), nil
}

func unpackParallel(words []unpacker.Word, channels unpacker.ChannelMap,
	w *writer.Writer, summary *unpacker.RunSummary) (unpacker.Statistics, error) {
	windower, err := unpacker.NewWindower(configuration.Settings, channels)
	if err != nil {
		return unpacker.Statistics{}, err
	}
	windows, stats := unpacker.Partition(words, windower)
	if len(windows) > configuration.MaxEvents {
		windows = windows[:configuration.MaxEvents]
		stats = unpacker.Statistics{Events: len(windows)}
		for _, window := range windows {
			stats.Words += window.Stop - window.Start
			stats.Skipped += window.Skipped
		}
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d", len(windows))
		logger.Info(message, "main")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := unpacker.PackWindows(ctx, words, channels, configuration.Layout, windows, configuration.NumWorkers)
	queue := newEventQueue()
	for packed := range results {
		for _, ready := range queue.Push(packed) {
			if ready.Error {
				message := fmt.Sprintf("discarding event %d", ready.Window.Index)
				logger.Error(message)
				continue
			}
			stats.Add(ready.Counts)
			if err := processEvent(ready.Window, words, ready.Event, w, summary); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func processEvent(window unpacker.Window, words []unpacker.Word, event *unpacker.Event,
	w *writer.Writer, summary *unpacker.RunSummary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic on event %d: %v", window.Index, r)
		}
	}()

	summary.Add(event)
	if w == nil {
		return nil
	}
	header := writer.EventHeader{
		Number:    window.Index,
		Start:     window.Start,
		Timestamp: words[window.Start].Timestamp,
	}
	return w.WriteEvent(header, event)
}
