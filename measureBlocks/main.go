package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	eeglab "github.com/next-exp/eeglab_go/pkg"
)

var configuration eeglab.Configuration

var (
	logger         eeglab.SlogLogger
	VerbosityLevel int
)

func init() {
	logger = eeglab.NewSlogLogger(os.Stdout, os.Stderr, slog.LevelDebug)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	budgets := flag.String("budgets", "1MB,10MB,100MB", "Comma separated block budgets")
	repeat := flag.Int("repeat", 3, "Reads per budget")
	flag.Parse()

	var err error
	configuration, err = eeglab.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	eeglab.SetLogger(logger)
	eeglab.SetVerbosity(configuration.Verbosity)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		eeglab.PrintConfiguration(configuration, logger)
	}

	sizes, err := parseBudgets(*budgets)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	start := time.Now()
	for _, size := range sizes {
		for i := 0; i < *repeat; i++ {
			if err := measure(size); err != nil {
				logger.Error(fmt.Sprintf("Budget %s: %v", humanize.Bytes(uint64(size)), err))
				os.Exit(1)
			}
		}
	}
	duration := time.Since(start)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

func measure(blockBytes int) error {
	raw, err := eeglab.OpenRaw(configuration.FileIn, eeglab.RawOptions{
		Calibration: configuration.Calibration,
		BlockBytes:  blockBytes,
	})
	if err != nil {
		return err
	}
	defer raw.Close()
	if raw.Preloaded() {
		return fmt.Errorf("%s embeds its samples, nothing to measure", configuration.FileIn)
	}

	start := time.Now()
	if _, err := raw.ReadSegment(0, raw.NumSamples, nil, nil); err != nil {
		return err
	}
	duration := time.Since(start)

	nchan := raw.Info.NumChannels()
	size := uint64(nchan) * uint64(raw.NumSamples) * eeglab.BytesPerSample
	blockLen := eeglab.BlockSamples(blockBytes, nchan)
	fmt.Printf("(budget %s, %d samples per block) Time: %d ms, read %s\n",
		humanize.Bytes(uint64(blockBytes)), blockLen, duration.Milliseconds(), humanize.Bytes(size))
	return nil
}

func parseBudgets(list string) ([]int, error) {
	var sizes []int
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if n, err := strconv.Atoi(item); err == nil {
			sizes = append(sizes, n)
			continue
		}
		n, err := humanize.ParseBytes(item)
		if err != nil {
			return nil, fmt.Errorf("invalid block budget %q: %w", item, err)
		}
		sizes = append(sizes, int(n))
	}
	return sizes, nil
}
