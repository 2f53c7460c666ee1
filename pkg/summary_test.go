package unpacker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSummary(t *testing.T) {
	summary := NewRunSummary()
	mean, std := summary.Length()
	assert.Zero(t, mean)
	assert.Zero(t, std)

	event := NewEvent(testLayout())
	event.Length = 2
	event.add(ChannelInfo{Type: LaBr, Index: 0}, SubEvent{})
	summary.Add(event)

	mean, std = summary.Length()
	assert.Equal(t, 2.0, mean)
	assert.Zero(t, std)

	event.Reset()
	event.Length = 4
	event.add(ChannelInfo{Type: LaBr, Index: 0}, SubEvent{})
	event.add(ChannelInfo{Type: LaBr, Index: 1}, SubEvent{})
	event.add(ChannelInfo{Type: LaBr, Index: 2}, SubEvent{})
	summary.Add(event)

	assert.Equal(t, 2, summary.Events())
	mean, std = summary.Length()
	assert.InDelta(t, 3.0, mean, 1e-12)
	assert.InDelta(t, math.Sqrt2, std, 1e-12)

	mean, _ = summary.Multiplicity(LaBr)
	assert.InDelta(t, 2.0, mean, 1e-12)
	mean, std = summary.Multiplicity(PPAC)
	assert.Zero(t, mean)
	assert.Zero(t, std)
	mean, _ = summary.Multiplicity(Unknown)
	assert.Zero(t, mean)
}

func TestRunSummaryLog(t *testing.T) {
	l := captureLogger(t)
	summary := NewRunSummary()
	summary.Add(NewEvent(testLayout()))
	summary.Log(Statistics{Events: 1, Words: 3, Accepted: 2, Skipped: 1})

	assert.Contains(t, l.infos, "Events: 1")
	assert.Contains(t, l.infos, "Average event length: 3.00")
	assert.Len(t, l.infos, 4+len(ChannelTypes))
}
