package unpacker

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

type ChannelType int

const (
	Unknown ChannelType = iota
	LaBr
	DeltaE
	E
	EGuard
	PPAC
	RF
)

const numChannelTypes = int(RF) + 1

var channelTypeStrings = []string{
	"unknown",
	"labr",
	"de",
	"e",
	"eguard",
	"ppac",
	"rf",
}

// ChannelTypes lists every type an event can hold, in output order.
var ChannelTypes = []ChannelType{LaBr, DeltaE, E, EGuard, PPAC, RF}

func (c ChannelType) String() string {
	if c < Unknown || c > RF {
		return "UNKNOWN"
	}
	return channelTypeStrings[c]
}

// Valid reports whether c is one of the types an event has slots for.
func (c ChannelType) Valid() bool {
	return c > Unknown && c <= RF
}

func ParseChannelType(s string) (ChannelType, error) {
	for i, v := range channelTypeStrings {
		if v == s {
			return ChannelType(i), nil
		}
	}
	return Unknown, fmt.Errorf("invalid ChannelType: %s", s)
}

func (c ChannelType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ChannelType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseChannelType(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText and UnmarshalText let ChannelType key JSON objects.
func (c ChannelType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ChannelType) UnmarshalText(data []byte) error {
	parsed, err := ParseChannelType(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *ChannelType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseChannelType(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

type ChannelInfo struct {
	Type  ChannelType
	Index int
}

func (c ChannelInfo) String() string {
	return fmt.Sprintf("%v[%d]", c.Type, c.Index)
}

// Directory classifies hardware addresses. Lookup must be total: addresses
// it does not know about are reported with type Unknown.
type Directory interface {
	Lookup(address uint16) ChannelInfo
}

// ChannelMap is an in-memory Directory.
type ChannelMap map[uint16]ChannelInfo

func (m ChannelMap) Lookup(address uint16) ChannelInfo {
	info, ok := m[address]
	if !ok {
		return ChannelInfo{Type: Unknown}
	}
	return info
}

// Add registers an address, refusing to reassign an existing one.
func (m ChannelMap) Add(address uint16, info ChannelInfo) error {
	if previous, ok := m[address]; ok {
		return &ErrDuplicateAddress{Address: address, First: previous, Second: info}
	}
	m[address] = info
	return nil
}

type ChannelEntry struct {
	Address uint16      `yaml:"address"`
	Type    ChannelType `yaml:"type"`
	Index   int         `yaml:"index"`
}

// Entries returns the map contents sorted by address.
func (m ChannelMap) Entries() []ChannelEntry {
	entries := make([]ChannelEntry, 0, len(m))
	for address, info := range m {
		entries = append(entries, ChannelEntry{Address: address, Type: info.Type, Index: info.Index})
	}
	slices.SortFunc(entries, func(a, b ChannelEntry) int {
		return int(a.Address) - int(b.Address)
	})
	return entries
}

// Counts returns, per type, the number of channels needed to hold every
// index the map refers to.
func (m ChannelMap) Counts() map[ChannelType]int {
	counts := make(map[ChannelType]int)
	for _, info := range m {
		if !info.Type.Valid() {
			continue
		}
		if info.Index+1 > counts[info.Type] {
			counts[info.Type] = info.Index + 1
		}
	}
	return counts
}
