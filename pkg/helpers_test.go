package unpacker

import (
	"sync"
	"testing"
)

const (
	addrLaBr0      uint16 = 0
	addrLaBr1      uint16 = 1
	addrDeltaE0    uint16 = 30
	addrPPAC0      uint16 = 10
	addrRF         uint16 = 20
	addrRFOther    uint16 = 21
	addrOutOfRange uint16 = 40
	addrUnknown    uint16 = 99
)

func testChannels() ChannelMap {
	return ChannelMap{
		addrLaBr0:      {Type: LaBr, Index: 0},
		addrLaBr1:      {Type: LaBr, Index: 1},
		addrDeltaE0:    {Type: DeltaE, Index: 0},
		addrPPAC0:      {Type: PPAC, Index: 0},
		addrRF:         {Type: RF, Index: 0},
		addrRFOther:    {Type: RF, Index: 5},
		addrOutOfRange: {Type: LaBr, Index: 100},
	}
}

func testLayout() Layout {
	return Layout{
		Channels: map[ChannelType]int{LaBr: 4, DeltaE: 2, E: 1, EGuard: 1, PPAC: 1, RF: 1},
		Capacity: 3,
	}
}

// words builds a source of LaBr0 hits at the given timestamps.
func words(timestamps ...int64) []Word {
	source := make([]Word, len(timestamps))
	for i, ts := range timestamps {
		source[i] = Word{Address: addrLaBr0, Timestamp: ts, ADCData: uint16(i)}
	}
	return source
}

func gapUnpacker(t *testing.T) *Unpacker {
	t.Helper()
	settings := DefaultSettings()
	settings.Policy = GapPolicy
	u, err := NewFromSettings(testChannels(), settings)
	if err != nil {
		t.Fatalf("creating unpacker: %v", err)
	}
	return u
}

func triggerUnpacker(t *testing.T) *Unpacker {
	t.Helper()
	u, err := NewFromSettings(testChannels(), DefaultSettings())
	if err != nil {
		t.Fatalf("creating unpacker: %v", err)
	}
	return u
}

// drain pulls every event and returns the windows that were produced.
func drain(u *Unpacker, event *Event) []Window {
	windows := make([]Window, 0)
	for u.Next(event) == Produced {
		windows = append(windows, u.Window())
	}
	return windows
}

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, message)
}

func (l *recordingLogger) Error(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

// captureLogger installs a recording logger for the duration of the test.
func captureLogger(t *testing.T) *recordingLogger {
	t.Helper()
	l := &recordingLogger{}
	SetLogger(l)
	t.Cleanup(func() { SetLogger(nil) })
	return l
}
