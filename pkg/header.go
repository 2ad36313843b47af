package eeglab

import (
	"fmt"
)

// ChannelLocation is one entry of the header channel-location list.
type ChannelLocation struct {
	Label       string
	X, Y, Z     float64
	HasPosition bool
}

// DataPayload is either a reference to an external float32 file or the
// samples embedded in the record.
type DataPayload struct {
	File     string
	Embedded *Matrix
}

func (d DataPayload) IsFile() bool {
	return d.Embedded == nil
}

// EpochAnnotation holds the event labels and latencies attached to one trial.
type EpochAnnotation struct {
	Labels    []string
	Latencies []float64
}

// DatasetHeader is the validated form of an EEGLAB dataset record.
type DatasetHeader struct {
	SampleRate  float64
	NumChannels int
	NumTrials   int
	NumSamples  int // samples per trial
	XMin        float64
	XMax        float64
	ChanLocs    []ChannelLocation
	Data        DataPayload
	Epochs      []EpochAnnotation
}

// ParseHeader validates a dataset record and copies it into a DatasetHeader.
func ParseHeader(rec Record) (*DatasetHeader, error) {
	var err error
	hdr := &DatasetHeader{}

	if hdr.SampleRate, err = rec.Float("srate"); err != nil {
		return nil, err
	}
	if hdr.NumChannels, err = rec.Int("nbchan"); err != nil {
		return nil, err
	}
	if hdr.NumTrials, err = rec.Int("trials"); err != nil {
		return nil, err
	}
	if hdr.NumSamples, err = rec.Int("pnts"); err != nil {
		return nil, err
	}
	if hdr.XMin, err = rec.Float("xmin"); err != nil {
		return nil, err
	}
	if hdr.XMax, err = rec.Float("xmax"); err != nil {
		return nil, err
	}
	if hdr.NumChannels < 0 || hdr.NumTrials < 0 || hdr.NumSamples < 0 {
		return nil, fmt.Errorf("%w: negative dimensions (nbchan %d, trials %d, pnts %d)",
			ErrSchema, hdr.NumChannels, hdr.NumTrials, hdr.NumSamples)
	}

	if hdr.ChanLocs, err = parseChanLocs(rec); err != nil {
		return nil, err
	}
	if hdr.Data, err = parseData(rec); err != nil {
		return nil, err
	}
	if hdr.NumTrials > 1 {
		if hdr.Epochs, err = parseEpochs(rec); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}

// ReadHeader reads and validates the dataset record at path.
func ReadHeader(source RecordSource, path string) (*DatasetHeader, error) {
	rec, err := source.ReadRecord(path)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset record: %w", err)
	}
	hdr, err := ParseHeader(rec)
	if err != nil {
		return nil, fmt.Errorf("error parsing dataset header %s: %w", path, err)
	}
	return hdr, nil
}

func parseChanLocs(rec Record) ([]ChannelLocation, error) {
	entries, err := rec.Records("chanlocs")
	if err != nil {
		return nil, err
	}
	locs := make([]ChannelLocation, len(entries))
	for i, entry := range entries {
		label, err := entry.String("labels")
		if err != nil {
			return nil, fmt.Errorf("chanlocs[%d]: %w", i, err)
		}
		locs[i].Label = label

		// EEGLAB leaves unknown coordinates empty
		if emptyField(entry, "X") || emptyField(entry, "Y") || emptyField(entry, "Z") {
			continue
		}
		var pos [3]float64
		for j, axis := range []string{"X", "Y", "Z"} {
			if pos[j], err = entry.Float(axis); err != nil {
				return nil, fmt.Errorf("chanlocs[%d]: %w", i, err)
			}
		}
		locs[i].X, locs[i].Y, locs[i].Z = pos[0], pos[1], pos[2]
		locs[i].HasPosition = true
	}
	return locs, nil
}

// emptyField reports a field that is absent, nil or an empty matrix.
func emptyField(rec Record, name string) bool {
	if !rec.Has(name) {
		return true
	}
	m, ok := rec[name].(Matrix)
	return ok && m.Len() == 0
}

func parseData(rec Record) (DataPayload, error) {
	v, ok := rec["data"]
	if !ok || v == nil {
		return DataPayload{}, &ErrMissingField{Field: "data"}
	}
	if name, ok := v.(string); ok {
		return DataPayload{File: name}, nil
	}
	m, err := rec.Matrix("data")
	if err != nil {
		return DataPayload{}, err
	}
	return DataPayload{Embedded: &m}, nil
}

func parseEpochs(rec Record) ([]EpochAnnotation, error) {
	entries, err := rec.Records("epoch")
	if err != nil {
		return nil, err
	}
	epochs := make([]EpochAnnotation, len(entries))
	for i, entry := range entries {
		labels, err := entry.Labels("eventtype")
		if err != nil {
			return nil, fmt.Errorf("epoch[%d]: %w", i, err)
		}
		latencyField := "eventurevent"
		if !entry.Has(latencyField) {
			latencyField = "eventlatency"
		}
		if !entry.Has(latencyField) {
			return nil, fmt.Errorf("epoch[%d]: %w", i, &ErrMissingField{Field: "eventurevent"})
		}
		m, err := entry.Matrix(latencyField)
		if err != nil {
			return nil, fmt.Errorf("epoch[%d]: %w", i, err)
		}
		epochs[i] = EpochAnnotation{Labels: labels, Latencies: m.Data}
	}
	return epochs, nil
}
