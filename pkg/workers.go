package unpacker

import (
	"context"
	"fmt"
	"sync"
)

// Window is one event boundary found by Partition.
type Window struct {
	Index   int
	Start   int
	Stop    int
	Skipped int
}

// Partition runs the windowing policy over the whole source, exactly as a
// sequence of Next calls would, without packing anything. The returned
// statistics carry Events, Words and Skipped.
func Partition(source []Word, windower Windower) ([]Window, Statistics) {
	var stats Statistics
	windows := make([]Window, 0)

	cursor := 0
	for cursor < len(source) {
		start, stop, ok := windower.Window(source, cursor)
		if !ok {
			stats.Skipped += len(source) - cursor
			break
		}
		windows = append(windows, Window{
			Index:   len(windows),
			Start:   start,
			Stop:    stop,
			Skipped: start - cursor,
		})
		stats.Skipped += start - cursor
		stats.Events++
		stats.Words += stop - start
		cursor = stop
	}
	return windows, stats
}

type PackedEvent struct {
	Window Window
	Event  *Event
	// Accepted, Overflow and Unclassified for this event.
	Counts Statistics
	Error  bool
}

// PackWindows packs windows on numWorkers goroutines. Every result owns a
// freshly allocated Event; results arrive in no particular order. The
// channel is closed once all windows are packed or ctx is cancelled.
func PackWindows(ctx context.Context, source []Word, directory Directory, layout Layout,
	windows []Window, numWorkers int) <-chan PackedEvent {
	if numWorkers < 1 {
		numWorkers = 1
	}
	jobs := make(chan Window, numWorkers)
	results := make(chan PackedEvent, 100)

	var wg sync.WaitGroup
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(ctx, id, source, directory, layout, jobs, results)
		}(w)
	}

	go sendWindowsToWorkers(ctx, windows, jobs)

	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

func sendWindowsToWorkers(ctx context.Context, windows []Window, jobs chan<- Window) {
	defer close(jobs)
	for _, window := range windows {
		select {
		case jobs <- window:
		case <-ctx.Done():
			return
		}
	}
}

func worker(ctx context.Context, id int, source []Word, directory Directory, layout Layout,
	jobs <-chan Window, results chan<- PackedEvent) {
	for window := range jobs {
		if verbosity > 1 {
			message := fmt.Sprintf("Worker %d processing event %d", id, window.Index)
			logger.Info(message, "workers")
		}
		packed := packWindow(id, source, directory, layout, window)
		select {
		case results <- packed:
		case <-ctx.Done():
			return
		}
	}
}

func packWindow(id int, source []Word, directory Directory, layout Layout, window Window) (packed PackedEvent) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("worker %d recovered from panic on event %d: %v", id, window.Index, r)
			logger.Error(errMessage.Error())
			packed = PackedEvent{Window: window, Error: true}
		}
	}()

	event := NewEvent(layout)
	counts := Pack(event, source[window.Start:window.Stop], directory)
	return PackedEvent{Window: window, Event: event, Counts: counts}
}
