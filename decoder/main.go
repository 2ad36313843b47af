package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	eeglab "github.com/next-exp/eeglab_go/pkg"
)

var dbConn *sqlx.DB
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
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		eeglab.PrintConfiguration(configuration, logger)
	}

	var montageReader eeglab.MontageReader = eeglab.FileMontageReader{}
	montage := configuration.Montage
	if !configuration.NoDB {
		dbConn, err = eeglab.ConnectToDatabase(configuration.DBDriver, configuration.User,
			configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connection to database: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		defer dbConn.Close()
		montageReader = eeglab.CatalogMontageReader{DB: dbConn}
		montage = configuration.MontageCatalog
	}

	if err := run(eeglab.HDF5Source{}, montage, montageReader); err != nil {
		logger.Error(err.Error())
		if dbConn != nil {
			dbConn.Close()
		}
		os.Exit(1)
	}
}

// run validates the whole dataset before file_out is created, so a rejected
// recording leaves no output behind.
func run(source eeglab.RecordSource, montage string, montageReader eeglab.MontageReader) error {
	start := time.Now()
	hdr, err := eeglab.ReadHeader(source, configuration.FileIn)
	if err != nil {
		return err
	}

	if hdr.NumTrials == 1 {
		raw, err := openRaw(source, montage, montageReader)
		if err != nil {
			return err
		}
		defer raw.Close()
		err = writeOutput(func(writer *eeglab.Writer) error {
			return decodeRaw(writer, raw)
		})
		if err != nil {
			return err
		}
	} else {
		epochs, err := openEpochs(source, montage, montageReader)
		if err != nil {
			return err
		}
		err = writeOutput(func(writer *eeglab.Writer) error {
			return decodeEpochs(writer, epochs)
		})
		if err != nil {
			return err
		}
	}

	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Total time: %d ms", duration.Milliseconds()), "main")
	return nil
}

func writeOutput(decode func(writer *eeglab.Writer) error) error {
	writer, err := eeglab.NewWriter(configuration.FileOut, configuration.CompressionLevel)
	if err != nil {
		return fmt.Errorf("error creating writer: %w", err)
	}
	err = decode(writer)
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	return err
}

func openRaw(source eeglab.RecordSource, montage string, montageReader eeglab.MontageReader) (*eeglab.Raw, error) {
	raw, err := eeglab.OpenRaw(configuration.FileIn, eeglab.RawOptions{
		Source:        source,
		Montage:       montage,
		MontageReader: montageReader,
		EOG:           configuration.EOG,
		Preload:       configuration.Preload,
		PreloadFile:   configuration.PreloadFile,
		Calibration:   configuration.Calibration,
		BlockBytes:    configuration.BlockBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening raw recording: %w", err)
	}
	return raw, nil
}

func openEpochs(source eeglab.RecordSource, montage string, montageReader eeglab.MontageReader) (*eeglab.Epochs, error) {
	epochs, err := eeglab.OpenEpochs(configuration.FileIn, eeglab.EpochsOptions{
		Source:        source,
		EventsFile:    configuration.EventsFile,
		EventID:       configuration.EventID,
		Montage:       montage,
		MontageReader: montageReader,
		EOG:           configuration.EOG,
		Calibration:   configuration.Calibration,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening epochs: %w", err)
	}
	return epochs, nil
}

func decodeRaw(writer *eeglab.Writer, raw *eeglab.Raw) error {
	blockLen := eeglab.BlockSamples(configuration.BlockBytes, raw.Info.NumChannels())
	reader := NewBlockReader(raw, blockLen)
	if err := writer.WriteInfo(raw.Info, reader.Stop-reader.Next, 1); err != nil {
		return err
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Decoding %d blocks of up to %d samples", reader.countBlocks(), blockLen)
		logger.Info(message, "main")
	}

	// one block is read ahead while the previous one is written
	jobs := make(chan BlockData, 1)
	go sendBlocksToWriter(reader, jobs)
	if err := processBlocks(jobs, writer); err != nil {
		return err
	}

	if configuration.EventsFile != "" {
		events, err := eeglab.ReadEventsFile(configuration.EventsFile)
		if err != nil {
			return err
		}
		eventID := eeglab.EventIDMap(configuration.EventID)
		if eventID == nil {
			eventID = eeglab.DefaultEventIDs(events)
		}
		if err := eeglab.ValidateEventIDs(events, eventID); err != nil {
			return err
		}
		if err := writer.WriteEvents(events, eventID); err != nil {
			return err
		}
	}
	logger.Info(fmt.Sprintf("Total samples written: %d", writer.SampleCounter), "main")
	return nil
}

func decodeEpochs(writer *eeglab.Writer, epochs *eeglab.Epochs) error {
	numSamples := 0
	if len(epochs.Data) > 0 {
		_, numSamples = epochs.Data[0].Dims()
	}
	if err := writer.WriteInfo(epochs.Info, numSamples, len(epochs.Data)); err != nil {
		return err
	}
	if epochs.Info.NumChannels() > 0 {
		for i, trial := range epochs.Data {
			if err := writer.WriteBlock(trial); err != nil {
				return fmt.Errorf("error writing epoch %d: %w", i, err)
			}
		}
	}
	if err := writer.WriteEvents(epochs.Events, epochs.EventID); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Total epochs written: %d", len(epochs.Data)), "main")
	return nil
}
