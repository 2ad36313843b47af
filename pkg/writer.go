package eeglab

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	"gonum.org/v1/gonum/mat"
)

// Writer stores a decoded recording in an HDF5 file: run information and
// channel table, the samples as an extendable samples x channels array, and
// the event table with its event id map.
type Writer struct {
	File          *hdf5.File
	Filename      string
	RunGroup      *hdf5.Group
	RDGroup       *hdf5.Group
	SensorsGroup  *hdf5.Group
	EventsGroup   *hdf5.Group
	RunInfoTable  *hdf5.Dataset
	ChannelsTable *hdf5.Dataset
	EventsTable   *hdf5.Dataset
	EventIDTable  *hdf5.Dataset
	Data          *hdf5.Dataset
	NumChannels   int
	SampleCounter int

	compressionLevel int
}

const dataChunkRows = 4096

func NewWriter(filename string, compressionLevel int) (*Writer, error) {
	w := &Writer{Filename: filename, compressionLevel: compressionLevel}
	if verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file: %s", filename), "writer")
	}

	var err error
	if w.File, err = createFile(filename); err != nil {
		return nil, err
	}
	for _, g := range []struct {
		name  string
		group **hdf5.Group
	}{
		{"Run", &w.RunGroup},
		{"RD", &w.RDGroup},
		{"Sensors", &w.SensorsGroup},
		{"Events", &w.EventsGroup},
	} {
		if *g.group, err = createGroup(w.File, g.name); err != nil {
			return nil, errors.Join(err, w.Close())
		}
	}
	if w.RunInfoTable, err = createTable(w.RunGroup, "info", RunInfoHDF5{}, compressionLevel); err != nil {
		return nil, errors.Join(err, w.Close())
	}
	if w.ChannelsTable, err = createTable(w.SensorsGroup, "channels", ChannelHDF5{}, compressionLevel); err != nil {
		return nil, errors.Join(err, w.Close())
	}
	return w, nil
}

// WriteInfo writes the run and channel tables and prepares the sample array.
func (w *Writer) WriteInfo(info Info, numSamples int, numTrials int) error {
	cal := 0.0
	if len(info.Channels) > 0 {
		cal = info.Channels[0].Cal
	}
	run := []RunInfoHDF5{{
		SampleRate:  info.SampleRate,
		NChannels:   int32(info.NumChannels()),
		NSamples:    int32(numSamples),
		NTrials:     int32(numTrials),
		Positions:   convertToHdf5String(info.Positions.Kind.String()),
		Calibration: cal,
	}}
	if err := writeArrayToTable(w.RunInfoTable, &run, 0); err != nil {
		return fmt.Errorf("error writing run info: %w", err)
	}

	channels := make([]ChannelHDF5, len(info.Channels))
	for i, ch := range info.Channels {
		channels[i] = ChannelHDF5{
			Name: convertToHdf5String(ch.Name),
			Kind: convertToHdf5String(ch.Kind.String()),
			Cal:  ch.Cal,
			X:    ch.Position[0],
			Y:    ch.Position[1],
			Z:    ch.Position[2],
		}
	}
	if err := writeArrayToTable(w.ChannelsTable, &channels, 0); err != nil {
		return fmt.Errorf("error writing channels: %w", err)
	}

	w.NumChannels = info.NumChannels()
	if w.NumChannels == 0 || w.Data != nil {
		return nil
	}
	var err error
	w.Data, err = create2dArray(w.RDGroup, "data", w.NumChannels, dataChunkRows, w.compressionLevel)
	return err
}

// WriteBlock appends a channels x samples block to the sample array.
func (w *Writer) WriteBlock(block *mat.Dense) error {
	if w.Data == nil {
		return fmt.Errorf("error writing block: sample array not created")
	}
	rows, cols := block.Dims()
	if rows != w.NumChannels {
		return fmt.Errorf("error writing block: %d rows, file has %d channels", rows, w.NumChannels)
	}
	if cols == 0 {
		return nil
	}
	data := make([]float32, rows*cols)
	for s := 0; s < cols; s++ {
		for c := 0; c < rows; c++ {
			data[s*rows+c] = float32(block.At(c, s))
		}
	}
	if err := append2dArray(w.Data, &data, w.SampleCounter, cols, rows); err != nil {
		return fmt.Errorf("error writing block at sample %d: %w", w.SampleCounter, err)
	}
	w.SampleCounter += cols
	return nil
}

// WriteEvents writes the event table and the event id map.
func (w *Writer) WriteEvents(table EventTable, ids EventIDMap) error {
	var err error
	if w.EventsTable == nil {
		if w.EventsTable, err = createTable(w.EventsGroup, "events", EventHDF5{}, w.compressionLevel); err != nil {
			return err
		}
	}
	if w.EventIDTable == nil {
		if w.EventIDTable, err = createTable(w.EventsGroup, "event_id", EventIDHDF5{}, w.compressionLevel); err != nil {
			return err
		}
	}

	events := make([]EventHDF5, len(table))
	for i, ev := range table {
		events[i] = EventHDF5{Sample: int32(ev.Sample), Prev: int32(ev.Prev), Code: int32(ev.Code)}
	}
	if err := writeArrayToTable(w.EventsTable, &events, 0); err != nil {
		return fmt.Errorf("error writing events: %w", err)
	}

	labels := ids.Labels()
	entries := make([]EventIDHDF5, len(labels))
	for i, label := range labels {
		entries[i] = EventIDHDF5{Label: convertToHdf5String(label), Code: int32(ids[label])}
	}
	if err := writeArrayToTable(w.EventIDTable, &entries, 0); err != nil {
		return fmt.Errorf("error writing event id: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	if verbosity > 0 {
		logger.Info(fmt.Sprintf("Closing file %s", w.Filename), "writer")
	}
	var errs []error

	datasets := []struct {
		name string
		dset *hdf5.Dataset
	}{
		{"run info table", w.RunInfoTable},
		{"channels table", w.ChannelsTable},
		{"events table", w.EventsTable},
		{"event id table", w.EventIDTable},
		{"data", w.Data},
	}
	for _, d := range datasets {
		if d.dset == nil {
			continue
		}
		if err := d.dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", d.name, err))
		}
	}

	groups := []struct {
		name  string
		group *hdf5.Group
	}{
		{"run", w.RunGroup},
		{"RD", w.RDGroup},
		{"sensors", w.SensorsGroup},
		{"events", w.EventsGroup},
	}
	for _, g := range groups {
		if g.group == nil {
			continue
		}
		if err := g.group.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s group: %w", g.name, err))
		}
	}

	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
