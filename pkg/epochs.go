package eeglab

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

type EpochsOptions struct {
	Source        RecordSource // defaults to HDF5Source
	Events        EventTable   // external event table, one row per trial
	EventsFile    string       // external event file, used when Events is nil
	EventID       EventIDMap
	Montage       string
	MontageSet    *Montage
	MontageReader MontageReader
	EOG           []string
	Calibration   float64
}

// Epochs is a segmented EEGLAB recording with one event per trial.
type Epochs struct {
	Info     Info
	Filename string
	Events   EventTable
	EventID  EventIDMap
	Tmin     float64
	Tmax     float64
	Data     []*mat.Dense // one channels x samples matrix per trial, in volts
}

// OpenEpochs opens an epoched recording and loads all of its trials.
func OpenEpochs(path string, opts EpochsOptions) (*Epochs, error) {
	if opts.Source == nil {
		opts.Source = HDF5Source{}
	}
	if opts.Calibration == 0 {
		opts.Calibration = DefaultCalibration
	}

	hdr, err := ReadHeader(opts.Source, path)
	if err != nil {
		return nil, err
	}

	events := opts.Events
	eventID := opts.EventID
	switch {
	case events != nil:
	case opts.EventsFile != "":
		events, err = ReadEventsFile(opts.EventsFile)
		if err != nil {
			return nil, err
		}
	case hdr.NumTrials > 1:
		events, eventID, err = ReconstructEvents(hdr.Epochs, opts.EventID)
		if err != nil {
			return nil, fmt.Errorf("error reconstructing events from %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %d trial(s) and no event table supplied", ErrSchema, hdr.NumTrials)
	}
	if eventID == nil {
		eventID = DefaultEventIDs(events)
	}
	if err := ValidateEventIDs(events, eventID); err != nil {
		return nil, err
	}
	if len(events) != hdr.NumTrials {
		return nil, fmt.Errorf("%w: %d events for %d trials", ErrSchema, len(events), hdr.NumTrials)
	}

	if verbosity > 0 {
		logger.Info(fmt.Sprintf("Extracting parameters from %s...", path), "epochs")
	}
	info, err := buildInfo(hdr, TranslateOptions{
		MontagePath: opts.Montage,
		Montage:     opts.MontageSet,
		EOG:         opts.EOG,
		Calibration: opts.Calibration,
	}, opts.MontageReader)
	if err != nil {
		return nil, err
	}
	if info.NumChannels() != hdr.NumChannels {
		return nil, fmt.Errorf("%w: header declares %d channels, channel list has %d",
			ErrSchema, hdr.NumChannels, info.NumChannels())
	}

	var values []float64
	if hdr.Data.IsFile() {
		values, err = readTrialsFile(filepath.Join(filepath.Dir(path), hdr.Data.File),
			hdr.NumChannels*hdr.NumSamples*hdr.NumTrials)
		if err != nil {
			return nil, err
		}
	} else {
		values = hdr.Data.Embedded.Data
	}
	trials, err := SplitTrials(values, hdr.NumChannels, hdr.NumSamples, hdr.NumTrials)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	for _, trial := range trials {
		for i, ch := range info.Channels {
			row := trial.RawRowView(i)
			for j := range row {
				row[j] *= ch.Cal
			}
		}
	}

	if verbosity > 0 {
		logger.Info("Ready.", "epochs")
	}
	return &Epochs{
		Info:     info,
		Filename: path,
		Events:   events,
		EventID:  eventID,
		Tmin:     hdr.XMin,
		Tmax:     hdr.XMax,
		Data:     trials,
	}, nil
}

// readTrialsFile reads exactly n float32 values.
func readTrialsFile(filename string, n int) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	raw := make([]byte, n*BytesPerSample)
	got, err := io.ReadFull(file, raw)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &ErrShortData{Filename: filename, Want: n, Got: got / BytesPerSample}
		}
		return nil, fmt.Errorf("error reading sample data: %w", err)
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*BytesPerSample:])))
	}
	return values, nil
}
