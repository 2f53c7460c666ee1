package unpacker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type channelsFile struct {
	Channels []ChannelEntry `yaml:"channels"`
}

// LoadChannelsFile reads a YAML address map of the form
//
//	channels:
//	  - {address: 0, type: labr, index: 0}
func LoadChannelsFile(filename string) (ChannelMap, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	return ParseChannels(data)
}

func ParseChannels(data []byte) (ChannelMap, error) {
	var file channelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing channel map: %w", err)
	}

	channels := make(ChannelMap, len(file.Channels))
	for _, entry := range file.Channels {
		if entry.Index < 0 {
			return nil, fmt.Errorf("address %d: negative channel index %d", entry.Address, entry.Index)
		}
		info := ChannelInfo{Type: entry.Type, Index: entry.Index}
		if err := channels.Add(entry.Address, info); err != nil {
			return nil, err
		}
	}
	return channels, nil
}
