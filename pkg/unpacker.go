package unpacker

import "fmt"

type Status int

const (
	Produced Status = iota
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Produced:
		return "Produced"
	case Exhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// Statistics are the running counters of one attached word source.
type Statistics struct {
	Events       int
	Words        int
	Accepted     int
	Overflow     int
	Unclassified int
	Skipped      int
}

func (s *Statistics) Add(other Statistics) {
	s.Events += other.Events
	s.Words += other.Words
	s.Accepted += other.Accepted
	s.Overflow += other.Overflow
	s.Unclassified += other.Unclassified
	s.Skipped += other.Skipped
}

// AverageLength is the mean number of words spanned by an event.
func (s Statistics) AverageLength() float64 {
	if s.Events == 0 {
		return 0
	}
	return float64(s.Words) / float64(s.Events)
}

// Unpacker cuts an attached word source into events, one per call to Next.
// It only reads the source and never keeps a reference to the events it
// fills. An Unpacker is not safe for concurrent use.
type Unpacker struct {
	directory Directory
	windower  Windower
	source    []Word
	cursor    int
	window    Window
	stats     Statistics
}

func New(directory Directory, windower Windower) *Unpacker {
	return &Unpacker{directory: directory, windower: windower}
}

func NewFromSettings(directory Directory, settings Settings) (*Unpacker, error) {
	windower, err := NewWindower(settings, directory)
	if err != nil {
		return nil, fmt.Errorf("error creating unpacker: %w", err)
	}
	return New(directory, windower), nil
}

// Attach binds a new word source and clears the cursor and statistics.
// Timestamps must be non-decreasing; this is not checked.
func (u *Unpacker) Attach(source []Word) {
	u.source = source
	u.cursor = 0
	u.window = Window{}
	u.stats = Statistics{}
}

// Next packs the next window of the source into event. The event is only
// valid until the following call.
func (u *Unpacker) Next(event *Event) Status {
	if u.cursor >= len(u.source) {
		return Exhausted
	}

	start, stop, ok := u.windower.Window(u.source, u.cursor)
	if !ok {
		u.stats.Skipped += len(u.source) - u.cursor
		u.cursor = len(u.source)
		return Exhausted
	}
	u.window = Window{Index: u.stats.Events, Start: start, Stop: stop, Skipped: start - u.cursor}
	u.stats.Skipped += start - u.cursor

	u.pack(event, start, stop)
	u.cursor = stop
	u.stats.Events++
	u.stats.Words += stop - start

	if verbosity > 1 {
		message := fmt.Sprintf("Event %d: words [%d, %d), %d accepted", u.stats.Events-1, start, stop, event.Accepted())
		logger.Info(message, "unpacker")
	}
	return Produced
}

func (u *Unpacker) pack(event *Event, start int, stop int) {
	counts := Pack(event, u.source[start:stop], u.directory)
	u.stats.Accepted += counts.Accepted
	u.stats.Overflow += counts.Overflow
	u.stats.Unclassified += counts.Unclassified
}

func (u *Unpacker) Cursor() int {
	return u.cursor
}

// Window is the boundary of the event produced by the last call to Next.
func (u *Unpacker) Window() Window {
	return u.window
}

func (u *Unpacker) Statistics() Statistics {
	return u.stats
}
