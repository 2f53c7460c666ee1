package unpacker

import "fmt"

type Configuration struct {
	MaxEvents    int    `json:"max_events"`
	Verbosity    int    `json:"verbosity"`
	FileIn       string `json:"file_in"`
	FileOut      string `json:"file_out"`
	ChannelsFile string `json:"channels_file"`
	Settings
	Layout
	NoDB             bool   `json:"no_db"`
	Host             string `json:"host"`
	User             string `json:"user"`
	Passwd           string `json:"pass"`
	DBName           string `json:"dbname"`
	RunNumber        int    `json:"run_number"`
	NumWorkers       int    `json:"num_workers"`
	Parallel         bool   `json:"parallel"`
	WriteData        bool   `json:"write_data"`
	CompressionLevel int    `json:"compression_level"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		MaxEvents:        1000000000,
		Verbosity:        0,
		Settings:         DefaultSettings(),
		Layout:           DefaultLayout(),
		NoDB:             true,
		Host:             "localhost",
		User:             "xiareader",
		Passwd:           "readonly",
		DBName:           "XIA",
		NumWorkers:       1,
		Parallel:         false,
		WriteData:        true,
		CompressionLevel: 4,
	}
}

func (c Configuration) Validate() error {
	if c.FileIn == "" {
		return fmt.Errorf("no input file given")
	}
	if c.WriteData && c.FileOut == "" {
		return fmt.Errorf("write_data is set but no output file given")
	}
	if c.NoDB && c.ChannelsFile == "" {
		return fmt.Errorf("no_db is set but no channels file given")
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("num_workers must be at least 1, got %d", c.NumWorkers)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		return fmt.Errorf("compression_level must be within [0, 9], got %d", c.CompressionLevel)
	}
	return c.Layout.Validate()
}
