package unpacker

import (
	"encoding/json"
	"fmt"
)

const (
	GAP_SIZE               int64 = 100
	COINCIDENCE_HALF_WIDTH int64 = 2500
)

// Windower finds the boundaries of the next event. Window returns the
// half-open range [start, stop) of the first window beginning at or after
// cursor, and ok=false when no further window can be formed.
type Windower interface {
	Window(source []Word, cursor int) (start int, stop int, ok bool)
}

// GapWindower closes a window at the first forward timestamp jump larger
// than Gap. Used for singles runs, where there is no trigger detector.
type GapWindower struct {
	Gap int64
}

func (g GapWindower) Window(source []Word, cursor int) (int, int, bool) {
	if cursor >= len(source) {
		return cursor, cursor, false
	}
	for i := cursor + 1; i < len(source); i++ {
		if source[i].Timestamp-source[i-1].Timestamp > g.Gap {
			return cursor, i, true
		}
	}
	return cursor, len(source), true
}

// TriggerWindower centres each window on the next word of type Trigger and
// keeps every neighbour within HalfWidth timestamp units of it. Words between
// the cursor and the window start are left out of every event.
type TriggerWindower struct {
	Directory Directory
	Trigger   ChannelType
	HalfWidth int64
}

func (t TriggerWindower) Window(source []Word, cursor int) (int, int, bool) {
	for i := cursor; i < len(source); i++ {
		if t.Directory.Lookup(source[i].Address).Type != t.Trigger {
			continue
		}
		triggerTime := source[i].Timestamp

		// The backward walk stops at the cursor: words before it already
		// belong to the previous window.
		start := cursor
		for j := i; j > cursor; j-- {
			if abs(source[j-1].Timestamp-triggerTime) > t.HalfWidth {
				start = j
				break
			}
		}

		stop := len(source)
		for j := i; j < len(source)-1; j++ {
			if abs(source[j+1].Timestamp-triggerTime) > t.HalfWidth {
				stop = j + 1
				break
			}
		}
		return start, stop, true
	}
	return len(source), len(source), false
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

type Policy int

const (
	TriggerPolicy Policy = iota
	GapPolicy
)

var policyStrings = []string{
	"trigger",
	"gap",
}

func (p Policy) String() string {
	if p < TriggerPolicy || p > GapPolicy {
		return "UNKNOWN"
	}
	return policyStrings[p]
}

func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Policy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range policyStrings {
		if v == s {
			*p = Policy(i)
			return nil
		}
	}
	return fmt.Errorf("invalid Policy: %s", s)
}

// Settings selects and parameterises the windowing policy of a run.
type Settings struct {
	Policy               Policy      `json:"window_policy"`
	GapThreshold         int64       `json:"gap_threshold"`
	CoincidenceHalfWidth int64       `json:"coincidence_half_width"`
	TriggerType          ChannelType `json:"trigger_type"`
}

func DefaultSettings() Settings {
	return Settings{
		Policy:               TriggerPolicy,
		GapThreshold:         GAP_SIZE,
		CoincidenceHalfWidth: COINCIDENCE_HALF_WIDTH,
		TriggerType:          PPAC,
	}
}

func NewWindower(settings Settings, directory Directory) (Windower, error) {
	switch settings.Policy {
	case GapPolicy:
		if settings.GapThreshold < 0 {
			return nil, fmt.Errorf("gap threshold must not be negative, got %d", settings.GapThreshold)
		}
		return GapWindower{Gap: settings.GapThreshold}, nil
	case TriggerPolicy:
		if !settings.TriggerType.Valid() {
			return nil, fmt.Errorf("trigger policy needs a trigger channel type, got %v", settings.TriggerType)
		}
		if settings.CoincidenceHalfWidth < 0 {
			return nil, fmt.Errorf("coincidence half-width must not be negative, got %d", settings.CoincidenceHalfWidth)
		}
		if directory == nil {
			return nil, fmt.Errorf("trigger policy needs a channel directory")
		}
		return TriggerWindower{
			Directory: directory,
			Trigger:   settings.TriggerType,
			HalfWidth: settings.CoincidenceHalfWidth,
		}, nil
	default:
		return nil, fmt.Errorf("unknown window policy %v", settings.Policy)
	}
}
