package eeglab

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ChannelKind int

const (
	ChannelEEG ChannelKind = iota
	ChannelEOG
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelEEG:
		return "EEG"
	case ChannelEOG:
		return "EOG"
	default:
		return "Unknown"
	}
}

// ChannelDescriptor is the validated metadata of one channel.
type ChannelDescriptor struct {
	Name        string
	Position    [3]float64 // origin when HasPosition is false
	HasPosition bool
	Kind        ChannelKind
	Cal         float64
}

type PositionKind int

const (
	PositionsNone PositionKind = iota
	PositionsFromHeader
	PositionsFromFile
	PositionsFromMontage
)

func (k PositionKind) String() string {
	switch k {
	case PositionsNone:
		return "none"
	case PositionsFromHeader:
		return "header"
	case PositionsFromFile:
		return "file"
	case PositionsFromMontage:
		return "montage"
	default:
		return "unknown"
	}
}

// PositionSource tells where channel positions come from. Dir is set for
// file sources so later relative lookups resolve next to the montage file.
type PositionSource struct {
	Kind    PositionKind
	Path    string
	Dir     string
	Montage *Montage
}

type TranslateOptions struct {
	MontagePath string   // external montage file, ignored when the header has chanlocs
	Montage     *Montage // in-memory montage, ignored when the header has chanlocs
	EOG         []string
	EOGIndices  []int
	Calibration float64
}

const headerMontageKind = "user_defined"

// Translate builds channel descriptors from a dataset header.
func Translate(hdr *DatasetHeader, opts TranslateOptions) ([]ChannelDescriptor, PositionSource) {
	var channels []ChannelDescriptor
	var source PositionSource

	if len(hdr.ChanLocs) > 0 {
		channels = make([]ChannelDescriptor, len(hdr.ChanLocs))
		montage := &Montage{Kind: headerMontageKind}
		for i, loc := range hdr.ChanLocs {
			channels[i].Name = loc.Label
			if loc.HasPosition {
				channels[i].Position = [3]float64{loc.X, loc.Y, loc.Z}
				channels[i].HasPosition = true
			}
			montage.Names = append(montage.Names, loc.Label)
			montage.Positions = append(montage.Positions, channels[i].Position)
		}
		source = PositionSource{Kind: PositionsFromHeader, Montage: montage}
	} else {
		channels = make([]ChannelDescriptor, hdr.NumChannels)
		for i := range channels {
			channels[i].Name = fmt.Sprintf("EEG %03d", i+1)
		}
		switch {
		case opts.MontagePath != "":
			source = PositionSource{
				Kind: PositionsFromFile,
				Path: opts.MontagePath,
				Dir:  filepath.Dir(opts.MontagePath),
			}
		case opts.Montage != nil:
			source = PositionSource{Kind: PositionsFromMontage, Montage: opts.Montage}
			ApplyMontage(channels, opts.Montage)
		}
	}

	eogNames := make(map[string]bool, len(opts.EOG))
	for _, name := range opts.EOG {
		eogNames[name] = true
	}
	eogIndices := make(map[int]bool, len(opts.EOGIndices))
	for _, idx := range opts.EOGIndices {
		eogIndices[idx] = true
	}

	for i := range channels {
		channels[i].Cal = opts.Calibration
		if strings.HasPrefix(channels[i].Name, "EOG") || eogNames[channels[i].Name] || eogIndices[i] {
			channels[i].Kind = ChannelEOG
		}
	}

	if verbosity > 0 {
		message := fmt.Sprintf("Translated %d channels, positions from %v", len(channels), source.Kind)
		logger.Info(message, "channels")
	}
	return channels, source
}

// ApplyMontage sets the position of every channel found by name in montage.
// It returns the number of channels that were matched.
func ApplyMontage(channels []ChannelDescriptor, montage *Montage) int {
	matched := 0
	for i := range channels {
		pos, ok := montage.Position(channels[i].Name)
		if !ok {
			continue
		}
		channels[i].Position = pos
		channels[i].HasPosition = true
		matched++
	}
	return matched
}

// Calibrations returns the calibration factor of each channel.
func Calibrations(channels []ChannelDescriptor) []float64 {
	cals := make([]float64, len(channels))
	for i, ch := range channels {
		cals[i] = ch.Cal
	}
	return cals
}
