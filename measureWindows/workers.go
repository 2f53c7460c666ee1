package main

import (
	"context"
	"fmt"
	"time"

	unpacker "github.com/next-exp/xiareader_go/pkg"
)

// Result is what one window setting does to a run.
type Result struct {
	Settings unpacker.Settings
	Stats    unpacker.Statistics
	Duration time.Duration
}

func (r Result) String() string {
	return fmt.Sprintf("(%s) events %d, avg length %.2f, overflow %d, unclassified %d, outside events %d, time %d ms",
		describe(r.Settings), r.Stats.Events, r.Stats.AverageLength(), r.Stats.Overflow,
		r.Stats.Unclassified, r.Stats.Skipped, r.Duration.Milliseconds())
}

func describe(settings unpacker.Settings) string {
	if settings.Policy == unpacker.GapPolicy {
		return fmt.Sprintf("gap, threshold %d", settings.GapThreshold)
	}
	return fmt.Sprintf("trigger %v, half-width %d", settings.TriggerType, settings.CoincidenceHalfWidth)
}

// sweep expands base into one gap setting per threshold followed by one
// trigger setting per half-width.
func sweep(base unpacker.Settings, gaps []int64, widths []int64) []unpacker.Settings {
	candidates := make([]unpacker.Settings, 0, len(gaps)+len(widths))
	for _, gap := range gaps {
		settings := base
		settings.Policy = unpacker.GapPolicy
		settings.GapThreshold = gap
		candidates = append(candidates, settings)
	}
	for _, width := range widths {
		settings := base
		settings.Policy = unpacker.TriggerPolicy
		settings.CoincidenceHalfWidth = width
		candidates = append(candidates, settings)
	}
	return candidates
}

func measure(words []unpacker.Word, channels unpacker.ChannelMap, settings unpacker.Settings) (Result, error) {
	windower, err := unpacker.NewWindower(settings, channels)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	windows, stats := unpacker.Partition(words, windower)
	results := unpacker.PackWindows(context.Background(), words, channels,
		configuration.Layout, windows, configuration.NumWorkers)
	for packed := range results {
		if packed.Error {
			message := fmt.Sprintf("discarding event %d", packed.Window.Index)
			logger.Error(message)
			continue
		}
		stats.Add(packed.Counts)
	}
	return Result{Settings: settings, Stats: stats, Duration: time.Since(start)}, nil
}
