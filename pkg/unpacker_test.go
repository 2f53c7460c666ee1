package unpacker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGapWindowsPartitionSource(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sources := map[string][]Word{
		"single word":  words(42),
		"no gap":       words(0, 50, 100, 150, 200),
		"all gaps":     words(0, 1000, 2000, 3000),
		"equal stamps": words(5, 5, 5, 5),
	}
	random := make([]int64, 500)
	var ts int64
	for i := range random {
		ts += rng.Int63n(250)
		random[i] = ts
	}
	sources["random"] = words(random...)

	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			u := gapUnpacker(t)
			event := NewEvent(testLayout())
			u.Attach(source)

			windows := drain(u, event)
			require.NotEmpty(t, windows)

			next := 0
			total := 0
			for _, window := range windows {
				assert.Equal(t, next, window.Start, "windows must be contiguous")
				assert.Greater(t, window.Stop, window.Start)
				next = window.Stop
				total += window.Stop - window.Start
			}
			assert.Equal(t, len(source), next)
			assert.Equal(t, len(source), total)

			stats := u.Statistics()
			assert.Equal(t, len(windows), stats.Events)
			assert.Equal(t, len(source), stats.Words)
			assert.Equal(t, 0, stats.Skipped)
			assert.Equal(t, len(source), u.Cursor())
		})
	}
}

func TestGapWindowBoundary(t *testing.T) {
	u := gapUnpacker(t)
	event := NewEvent(testLayout())
	u.Attach(words(0, 10, 20, 200, 210))

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, Window{Index: 0, Start: 0, Stop: 3}, u.Window())
	assert.Equal(t, 3, event.Length)

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, Window{Index: 1, Start: 3, Stop: 5}, u.Window())
	assert.Equal(t, 2, event.Length)
	hits := event.Hits(LaBr, 0)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(200), hits[0].Timestamp)
	assert.Equal(t, int64(210), hits[1].Timestamp)

	assert.Equal(t, Exhausted, u.Next(event))
	assert.Equal(t, Exhausted, u.Next(event))
	assert.Equal(t, 2, u.Statistics().Events)
}

func TestGapEqualToThresholdStaysInWindow(t *testing.T) {
	u := gapUnpacker(t)
	event := NewEvent(testLayout())
	u.Attach(words(0, 100, 201))

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, 2, event.Length)
}

func TestTriggerCentersWindow(t *testing.T) {
	source := []Word{
		{Address: addrLaBr0, Timestamp: -3000},
		{Address: addrLaBr0, Timestamp: -1000},
		{Address: addrPPAC0, Timestamp: 0},
		{Address: addrLaBr1, Timestamp: 1200},
		{Address: addrLaBr1, Timestamp: 4000},
	}
	u := triggerUnpacker(t)
	event := NewEvent(testLayout())
	u.Attach(source)

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, Window{Index: 0, Start: 1, Stop: 4, Skipped: 1}, u.Window())
	assert.Equal(t, 3, event.Length)
	assert.Equal(t, 1, event.Total(PPAC))
	assert.Equal(t, 2, event.Total(LaBr))
	require.Len(t, event.Hits(LaBr, 0), 1)
	assert.Equal(t, int64(-1000), event.Hits(LaBr, 0)[0].Timestamp)
	require.Len(t, event.Hits(LaBr, 1), 1)
	assert.Equal(t, int64(1200), event.Hits(LaBr, 1)[0].Timestamp)

	// The 4000 word has no trigger of its own.
	assert.Equal(t, Exhausted, u.Next(event))
	stats := u.Statistics()
	assert.Equal(t, 1, stats.Events)
	assert.Equal(t, 3, stats.Words)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, len(source), u.Cursor())
}

func TestTriggerAtSourceEdges(t *testing.T) {
	t.Run("first word", func(t *testing.T) {
		source := []Word{
			{Address: addrPPAC0, Timestamp: 0},
			{Address: addrLaBr0, Timestamp: 100},
			{Address: addrLaBr0, Timestamp: 9000},
		}
		u := triggerUnpacker(t)
		event := NewEvent(testLayout())
		u.Attach(source)

		require.Equal(t, Produced, u.Next(event))
		assert.Equal(t, 0, u.Window().Start)
		assert.Equal(t, 2, u.Window().Stop)
	})

	t.Run("last word", func(t *testing.T) {
		source := []Word{
			{Address: addrLaBr0, Timestamp: 0},
			{Address: addrLaBr0, Timestamp: 8000},
			{Address: addrPPAC0, Timestamp: 9000},
		}
		u := triggerUnpacker(t)
		event := NewEvent(testLayout())
		u.Attach(source)

		require.Equal(t, Produced, u.Next(event))
		assert.Equal(t, 1, u.Window().Start)
		assert.Equal(t, 3, u.Window().Stop)
	})

	t.Run("whole source in range", func(t *testing.T) {
		source := []Word{
			{Address: addrLaBr0, Timestamp: 0},
			{Address: addrPPAC0, Timestamp: 10},
			{Address: addrLaBr0, Timestamp: 20},
		}
		u := triggerUnpacker(t)
		event := NewEvent(testLayout())
		u.Attach(source)

		require.Equal(t, Produced, u.Next(event))
		assert.Equal(t, Window{Index: 0, Start: 0, Stop: 3}, u.Window())
		assert.Equal(t, Exhausted, u.Next(event))
	})
}

func TestTriggerWindowsDoNotOverlap(t *testing.T) {
	source := []Word{
		{Address: addrPPAC0, Timestamp: 0},
		{Address: addrLaBr0, Timestamp: 2000},
		{Address: addrLaBr0, Timestamp: 3000},
		{Address: addrPPAC0, Timestamp: 4000},
		{Address: addrLaBr0, Timestamp: 4100},
	}
	u := triggerUnpacker(t)
	event := NewEvent(testLayout())
	u.Attach(source)

	windows := drain(u, event)
	require.Len(t, windows, 2)
	assert.Equal(t, Window{Index: 0, Start: 0, Stop: 2}, windows[0])
	// 2000 is within 2500 of the second trigger but already belongs to the
	// first event.
	assert.Equal(t, Window{Index: 1, Start: 2, Stop: 5}, windows[1])
}

func TestNoTriggerIsExhausted(t *testing.T) {
	u := triggerUnpacker(t)
	event := NewEvent(testLayout())
	source := words(0, 10, 20, 30)
	u.Attach(source)

	assert.Equal(t, Exhausted, u.Next(event))
	stats := u.Statistics()
	assert.Equal(t, 0, stats.Events)
	assert.Equal(t, 0, stats.Words)
	assert.Equal(t, len(source), stats.Skipped)
	assert.Equal(t, len(source), u.Cursor())
}

func TestEmptySource(t *testing.T) {
	for name, u := range map[string]*Unpacker{"gap": gapUnpacker(t), "trigger": triggerUnpacker(t)} {
		t.Run(name, func(t *testing.T) {
			event := NewEvent(testLayout())
			u.Attach(nil)
			assert.Equal(t, Exhausted, u.Next(event))
			assert.Equal(t, Statistics{}, u.Statistics())
		})
	}
}

func TestCapacityOverflow(t *testing.T) {
	l := captureLogger(t)

	source := []Word{
		{Address: addrDeltaE0, Timestamp: 0},
		{Address: addrLaBr0, Timestamp: 1},
		{Address: addrLaBr0, Timestamp: 2},
		{Address: addrLaBr0, Timestamp: 3},
		{Address: addrLaBr0, Timestamp: 4},
		{Address: addrLaBr0, Timestamp: 5},
	}
	u := gapUnpacker(t)
	event := NewEvent(testLayout())
	u.Attach(source)

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, 3, event.Count(LaBr, 0))
	assert.Equal(t, 3, event.Total(LaBr))
	assert.Equal(t, 1, event.Count(DeltaE, 0))
	assert.Equal(t, 1, event.Total(DeltaE))
	assert.Equal(t, 0, event.Count(LaBr, 1))
	assert.Equal(t, len(source), event.Length)

	// The first three words are kept, later ones dropped.
	hits := event.Hits(LaBr, 0)
	require.Len(t, hits, 3)
	assert.Equal(t, int64(3), hits[2].Timestamp)

	stats := u.Statistics()
	assert.Equal(t, 4, stats.Accepted)
	assert.Equal(t, 2, stats.Overflow)
	assert.Len(t, l.errors, 2)
}

func TestUnclassifiedWordsDroppedSilently(t *testing.T) {
	l := captureLogger(t)

	source := []Word{
		{Address: addrUnknown, Timestamp: 0},
		{Address: addrOutOfRange, Timestamp: 1},
		{Address: addrLaBr1, Timestamp: 2},
	}
	u := gapUnpacker(t)
	event := NewEvent(testLayout())
	u.Attach(source)

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, 3, event.Length)
	assert.Equal(t, 1, event.Accepted())
	assert.Equal(t, 1, event.Count(LaBr, 1))

	stats := u.Statistics()
	assert.Equal(t, 2, stats.Unclassified)
	assert.Equal(t, 0, stats.Overflow)
	assert.Empty(t, l.errors)
}

func TestRFSharesOneSlot(t *testing.T) {
	source := []Word{
		{Address: addrRF, Timestamp: 0},
		{Address: addrRFOther, Timestamp: 1},
	}
	u := gapUnpacker(t)
	event := NewEvent(testLayout())
	u.Attach(source)

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, 1, event.Channels(RF))
	assert.Equal(t, 2, event.Count(RF, 0))
	assert.Equal(t, 2, event.Total(RF))
}

func TestAttachResetsState(t *testing.T) {
	source := words(0, 10, 500, 510, 1000)

	fresh := gapUnpacker(t)
	freshEvent := NewEvent(testLayout())
	fresh.Attach(source)
	expected := drain(fresh, freshEvent)
	expectedStats := fresh.Statistics()

	reused := gapUnpacker(t)
	event := NewEvent(testLayout())
	reused.Attach(words(0, 1, 2, 3000, 3001, 9000))
	drain(reused, event)
	assert.Equal(t, 6, reused.Cursor())

	reused.Attach(source)
	assert.Equal(t, 0, reused.Cursor())
	assert.Equal(t, Statistics{}, reused.Statistics())
	assert.Equal(t, Window{}, reused.Window())

	assert.Equal(t, expected, drain(reused, event))
	assert.Equal(t, expectedStats, reused.Statistics())
}

func TestEventIsClearedBetweenWindows(t *testing.T) {
	source := []Word{
		{Address: addrLaBr0, Timestamp: 0},
		{Address: addrLaBr0, Timestamp: 1},
		{Address: addrDeltaE0, Timestamp: 1000},
	}
	u := gapUnpacker(t)
	event := NewEvent(testLayout())
	u.Attach(source)

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, 2, event.Total(LaBr))

	require.Equal(t, Produced, u.Next(event))
	assert.Equal(t, 0, event.Total(LaBr))
	assert.Equal(t, 0, event.Count(LaBr, 0))
	assert.Equal(t, 1, event.Total(DeltaE))
	assert.Equal(t, 1, event.Length)
}

func TestNewWindowerRejectsBadSettings(t *testing.T) {
	tests := map[string]Settings{
		"trigger without type": {Policy: TriggerPolicy, CoincidenceHalfWidth: 10, TriggerType: Unknown},
		"negative half-width":  {Policy: TriggerPolicy, CoincidenceHalfWidth: -1, TriggerType: PPAC},
		"negative gap":         {Policy: GapPolicy, GapThreshold: -5},
		"unknown policy":       {Policy: Policy(12)},
	}
	for name, settings := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewWindower(settings, testChannels())
			assert.Error(t, err)
		})
	}

	_, err := NewWindower(DefaultSettings(), nil)
	assert.Error(t, err)
}
