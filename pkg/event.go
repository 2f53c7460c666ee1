package unpacker

import "fmt"

const (
	DEFAULT_CAPACITY        = 16
	DEFAULT_LABR_CHANNELS   = 32
	DEFAULT_DE_CHANNELS     = 64
	DEFAULT_E_CHANNELS      = 8
	DEFAULT_EGUARD_CHANNELS = 8
	DEFAULT_PPAC_CHANNELS   = 4
)

// Layout fixes the shape of an Event: how many channels each type has and
// how many sub-events a single channel keeps per event.
type Layout struct {
	Channels map[ChannelType]int `json:"channels"`
	Capacity int                 `json:"capacity"`
}

func DefaultLayout() Layout {
	return Layout{
		Channels: map[ChannelType]int{
			LaBr:   DEFAULT_LABR_CHANNELS,
			DeltaE: DEFAULT_DE_CHANNELS,
			E:      DEFAULT_E_CHANNELS,
			EGuard: DEFAULT_EGUARD_CHANNELS,
			PPAC:   DEFAULT_PPAC_CHANNELS,
			RF:     1,
		},
		Capacity: DEFAULT_CAPACITY,
	}
}

func (l Layout) Validate() error {
	if l.Capacity <= 0 {
		return fmt.Errorf("invalid layout: capacity must be positive, got %d", l.Capacity)
	}
	for t, n := range l.Channels {
		if !t.Valid() {
			return fmt.Errorf("invalid layout: unsupported channel type %v", t)
		}
		if n < 0 {
			return fmt.Errorf("invalid layout: negative channel count %d for %v", n, t)
		}
	}
	return nil
}

// Undersized lists, in ChannelTypes order, the types whose channel map
// refers to more channels than the layout holds. Words from the missing
// channels would be dropped as unclassified. RF is never undersized.
func (l Layout) Undersized(counts map[ChannelType]int) []ChannelType {
	undersized := make([]ChannelType, 0)
	for _, t := range ChannelTypes {
		if counts[t] > l.channels(t) && t != RF {
			undersized = append(undersized, t)
		}
	}
	return undersized
}

// channels returns the number of slots held for type t. RF always has a
// single flat slot.
func (l Layout) channels(t ChannelType) int {
	if t == RF {
		return 1
	}
	return l.Channels[t]
}

// Slot holds the sub-events of one channel. Its capacity is fixed when the
// event is created.
type Slot struct {
	hits []SubEvent
}

// TryAppend stores sub unless the slot is already full.
func (s *Slot) TryAppend(sub SubEvent) bool {
	if len(s.hits) == cap(s.hits) {
		return false
	}
	s.hits = append(s.hits, sub)
	return true
}

func (s *Slot) Len() int {
	return len(s.hits)
}

func (s *Slot) Cap() int {
	return cap(s.hits)
}

func (s *Slot) Hits() []SubEvent {
	return s.hits
}

type detectorHits struct {
	slots []Slot
	total int
}

// Event is one window of words sorted into per-channel slots. It is
// allocated once and reused: Reset clears it without releasing memory.
type Event struct {
	detectors [numChannelTypes]detectorHits
	capacity  int
	// Number of words spanned by the window, accepted or not.
	Length int
}

func NewEvent(layout Layout) *Event {
	event := &Event{capacity: layout.Capacity}
	for _, t := range ChannelTypes {
		n := layout.channels(t)
		if n <= 0 {
			continue
		}
		backing := make([]SubEvent, n*layout.Capacity)
		slots := make([]Slot, n)
		for i := range slots {
			start := i * layout.Capacity
			end := start + layout.Capacity
			slots[i].hits = backing[start:start:end]
		}
		event.detectors[t].slots = slots
	}
	return event
}

func (e *Event) Reset() {
	for t := range e.detectors {
		d := &e.detectors[t]
		for i := range d.slots {
			d.slots[i].hits = d.slots[i].hits[:0]
		}
		d.total = 0
	}
	e.Length = 0
}

// Capacity is the maximum number of sub-events kept per channel.
func (e *Event) Capacity() int {
	return e.capacity
}

// Channels returns the number of channel slots of type t.
func (e *Event) Channels(t ChannelType) int {
	if !t.Valid() {
		return 0
	}
	return len(e.detectors[t].slots)
}

// Slot returns the slot for channel index of type t, or nil when out of
// range.
func (e *Event) Slot(t ChannelType, index int) *Slot {
	if !t.Valid() {
		return nil
	}
	slots := e.detectors[t].slots
	if index < 0 || index >= len(slots) {
		return nil
	}
	return &slots[index]
}

func (e *Event) Hits(t ChannelType, index int) []SubEvent {
	slot := e.Slot(t, index)
	if slot == nil {
		return nil
	}
	return slot.Hits()
}

// Count is the occupancy of one channel slot.
func (e *Event) Count(t ChannelType, index int) int {
	slot := e.Slot(t, index)
	if slot == nil {
		return 0
	}
	return slot.Len()
}

// Total is the number of accepted words of type t over all its channels.
func (e *Event) Total(t ChannelType) int {
	if !t.Valid() {
		return 0
	}
	return e.detectors[t].total
}

// Accepted is the number of words stored in the event.
func (e *Event) Accepted() int {
	n := 0
	for t := range e.detectors {
		n += e.detectors[t].total
	}
	return n
}

type packResult int

const (
	accepted packResult = iota
	overflow
	unclassified
)

func (e *Event) add(info ChannelInfo, sub SubEvent) packResult {
	if !info.Type.Valid() {
		return unclassified
	}
	d := &e.detectors[info.Type]
	index := info.Index
	if info.Type == RF {
		index = 0
	}
	if index < 0 || index >= len(d.slots) {
		return unclassified
	}
	if !d.slots[index].TryAppend(sub) {
		return overflow
	}
	d.total++
	return accepted
}
