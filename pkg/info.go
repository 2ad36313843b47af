package eeglab

import (
	"fmt"
)

// Info is the measurement metadata shared by continuous and epoched
// recordings.
type Info struct {
	SampleRate float64
	Channels   []ChannelDescriptor
	Positions  PositionSource
}

func (i Info) NumChannels() int {
	return len(i.Channels)
}

func (i Info) ChannelNames() []string {
	names := make([]string, len(i.Channels))
	for idx, ch := range i.Channels {
		names[idx] = ch.Name
	}
	return names
}

// Picks returns the indices of the named channels.
func (i Info) Picks(names ...string) ([]int, error) {
	picks := make([]int, len(names))
	for n, name := range names {
		found := false
		for idx, ch := range i.Channels {
			if ch.Name == name {
				picks[n] = idx
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("channel %q not found", name)
		}
	}
	return picks, nil
}

// buildInfo translates the header and resolves file montages through reader.
func buildInfo(hdr *DatasetHeader, opts TranslateOptions, reader MontageReader) (Info, error) {
	channels, positions := Translate(hdr, opts)
	if positions.Kind == PositionsFromFile {
		if reader == nil {
			reader = FileMontageReader{}
		}
		montage, err := reader.ReadMontage(positions.Path, positions.Dir)
		if err != nil {
			return Info{}, fmt.Errorf("error reading montage %s: %w", positions.Path, err)
		}
		matched := ApplyMontage(channels, montage)
		positions.Montage = montage
		if verbosity > 0 {
			message := fmt.Sprintf("Montage %s: %d of %d channels positioned", montage.Kind, matched, len(channels))
			logger.Info(message, "info")
		}
	}
	return Info{
		SampleRate: hdr.SampleRate,
		Channels:   channels,
		Positions:  positions,
	}, nil
}
