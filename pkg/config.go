package eeglab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	// DefaultCalibration converts the microvolts EEGLAB stores into volts.
	DefaultCalibration = 1e-6
	// DefaultBlockBytes bounds a single chunked read to roughly 100 MB.
	DefaultBlockBytes = 100000000
)

type Configuration struct {
	Verbosity        int            `json:"verbosity" toml:"verbosity"`
	FileIn           string         `json:"file_in" toml:"file_in"`
	FileOut          string         `json:"file_out" toml:"file_out"`
	Montage          string         `json:"montage" toml:"montage"`
	MontageCatalog   string         `json:"montage_catalog" toml:"montage_catalog"`
	EOG              []string       `json:"eog" toml:"eog"`
	Preload          bool           `json:"preload" toml:"preload"`
	PreloadFile      string         `json:"preload_file" toml:"preload_file"`
	Calibration      float64        `json:"calibration" toml:"calibration"`
	BlockBytes       int            `json:"block_bytes" toml:"block_bytes"`
	Skip             int            `json:"skip" toml:"skip"`
	MaxSamples       int            `json:"max_samples" toml:"max_samples"`
	EventsFile       string         `json:"events_file" toml:"events_file"`
	EventID          map[string]int `json:"event_id" toml:"event_id"`
	NoDB             bool           `json:"no_db" toml:"no_db"`
	DBDriver         string         `json:"db_driver" toml:"db_driver"`
	Host             string         `json:"host" toml:"host"`
	User             string         `json:"user" toml:"user"`
	Passwd           string         `json:"pass" toml:"pass"`
	DBName           string         `json:"dbname" toml:"dbname"`
	CompressionLevel int            `json:"compression_level" toml:"compression_level"`
}

var verbosity int

// SetVerbosity sets how chatty the package logger calls are.
func SetVerbosity(v int) {
	verbosity = v
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Verbosity:        0,
		Preload:          false,
		Calibration:      DefaultCalibration,
		BlockBytes:       DefaultBlockBytes,
		NoDB:             true,
		DBDriver:         "mysql",
		Host:             "localhost",
		User:             "eeglabreader",
		Passwd:           "readonly",
		DBName:           "EEGLAB",
		CompressionLevel: 4,
	}
}

// LoadConfiguration reads a JSON or TOML (by extension) configuration file on
// top of the defaults.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		err = toml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, err
	}
	if config.Calibration <= 0 {
		return config, fmt.Errorf("invalid calibration %g", config.Calibration)
	}
	if config.BlockBytes <= 0 {
		return config, fmt.Errorf("invalid block size %d", config.BlockBytes)
	}
	if config.Skip < 0 || config.MaxSamples < 0 {
		return config, fmt.Errorf("invalid sample window: skip %d, max samples %d", config.Skip, config.MaxSamples)
	}
	return config, nil
}

func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Montage: %s", config.Montage), "config")
	logger.Info(fmt.Sprintf("Montage catalog: %s", config.MontageCatalog), "config")
	logger.Info(fmt.Sprintf("EOG: %v", config.EOG), "config")
	logger.Info(fmt.Sprintf("Preload: %t", config.Preload), "config")
	logger.Info(fmt.Sprintf("Preload file: %s", config.PreloadFile), "config")
	logger.Info(fmt.Sprintf("Calibration: %g", config.Calibration), "config")
	logger.Info(fmt.Sprintf("Block size: %s", humanize.Bytes(uint64(config.BlockBytes))), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max samples: %d", config.MaxSamples), "config")
	logger.Info(fmt.Sprintf("Events file: %s", config.EventsFile), "config")
	logger.Info(fmt.Sprintf("Event id: %v", config.EventID), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
}
