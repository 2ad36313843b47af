package eeglab

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/dustin/go-humanize"
	mmap "github.com/edsrzf/mmap-go"
	"gonum.org/v1/gonum/mat"
)

type RawOptions struct {
	Source        RecordSource  // defaults to HDF5Source
	Montage       string        // electrode file, used when the header has no chanlocs
	MontageSet    *Montage      // in-memory montage, used when the header has no chanlocs
	MontageReader MontageReader // resolves Montage, defaults to FileMontageReader
	EOG           []string
	EOGIndices    []int
	Preload       bool
	PreloadFile   string // preload into this memory-mapped file instead of the heap
	Calibration   float64
	BlockBytes    int
}

// Raw is a continuous EEGLAB recording. Samples stored in an external data
// file are read on demand unless preloaded.
type Raw struct {
	Info       Info
	Filename   string
	DataFile   string // empty when the samples are embedded in the record
	NumSamples int

	reader      *SegmentReader
	data        *mat.Dense
	preloadFile string
	preloadMap  mmap.MMap
	mapped      *os.File
}

// OpenRaw opens a continuous recording. Every validation happens before the
// data payload is touched; on error nothing is returned.
func OpenRaw(path string, opts RawOptions) (*Raw, error) {
	if opts.Source == nil {
		opts.Source = HDF5Source{}
	}
	if opts.Calibration == 0 {
		opts.Calibration = DefaultCalibration
	}
	if opts.BlockBytes == 0 {
		opts.BlockBytes = DefaultBlockBytes
	}

	hdr, err := ReadHeader(opts.Source, path)
	if err != nil {
		return nil, err
	}
	if hdr.NumTrials != 1 {
		return nil, &ErrTrialCount{Trials: hdr.NumTrials}
	}

	info, err := buildInfo(hdr, TranslateOptions{
		MontagePath: opts.Montage,
		Montage:     opts.MontageSet,
		EOG:         opts.EOG,
		EOGIndices:  opts.EOGIndices,
		Calibration: opts.Calibration,
	}, opts.MontageReader)
	if err != nil {
		return nil, err
	}
	if info.NumChannels() != hdr.NumChannels {
		return nil, fmt.Errorf("%w: header declares %d channels, channel list has %d",
			ErrSchema, hdr.NumChannels, info.NumChannels())
	}

	raw := &Raw{
		Info:        info,
		Filename:    path,
		NumSamples:  hdr.NumSamples,
		preloadFile: opts.PreloadFile,
	}

	if !hdr.Data.IsFile() {
		if !opts.Preload {
			logger.Warn("Data will be preloaded. preload=false is not supported when the data is stored in the .set file", "raw")
		}
		if err := raw.loadEmbedded(hdr.Data.Embedded); err != nil {
			return nil, err
		}
		return raw, nil
	}

	raw.DataFile = filepath.Join(filepath.Dir(path), hdr.Data.File)
	raw.reader = NewSegmentReader(raw.DataFile, hdr.NumChannels, opts.BlockBytes)
	if verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading %s", raw.DataFile), "raw")
	}
	if opts.Preload || opts.PreloadFile != "" {
		if err := raw.LoadData(); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (r *Raw) loadEmbedded(m *Matrix) error {
	nchan := r.Info.NumChannels()
	if m.Len() != nchan*r.NumSamples {
		return fmt.Errorf("%w: embedded data has %d values, want %d channels x %d samples",
			ErrSchema, m.Len(), nchan, r.NumSamples)
	}
	data, err := ColumnMajor64(m.Data, nchan, r.NumSamples)
	if err != nil {
		return err
	}
	for i, ch := range r.Info.Channels {
		row := data.RawRowView(i)
		for j := range row {
			row[j] *= ch.Cal
		}
	}
	r.data = data
	return nil
}

// Preloaded reports whether the samples are held in memory.
func (r *Raw) Preloaded() bool {
	return r.data != nil
}

// LoadData reads every sample into memory, or into the preload file when one
// was configured.
func (r *Raw) LoadData() error {
	if r.data != nil {
		return nil
	}
	nchan := r.Info.NumChannels()
	if nchan == 0 || r.NumSamples == 0 {
		r.data = &mat.Dense{}
		return nil
	}

	buf, err := r.allocate(nchan * r.NumSamples)
	if err != nil {
		return err
	}
	data := mat.NewDense(nchan, r.NumSamples, buf)
	mixer, err := NewCalibrationMixer(nil, Calibrations(r.Info.Channels), nil)
	if err != nil {
		return errors.Join(err, r.release())
	}
	if err := r.reader.ReadSegment(data, 0, r.NumSamples, mixer); err != nil {
		return errors.Join(err, r.release())
	}
	r.data = data
	return nil
}

func (r *Raw) allocate(n int) ([]float64, error) {
	if r.preloadFile == "" {
		return make([]float64, n), nil
	}
	size := int64(n) * int64(unsafe.Sizeof(float64(0)))
	file, err := os.OpenFile(r.preloadFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, &ErrOpenFile{Filename: r.preloadFile, Err: err}
	}
	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, fmt.Errorf("error sizing preload file: %w", err)
	}
	m, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("error mapping preload file: %w", err)
	}
	if verbosity > 0 {
		message := fmt.Sprintf("Preloading into %s (%s)", r.preloadFile, humanize.Bytes(uint64(size)))
		logger.Info(message, "raw")
	}
	r.preloadMap = m
	r.mapped = file
	return unsafe.Slice((*float64)(unsafe.Pointer(&m[0])), n), nil
}

func (r *Raw) release() error {
	if r.preloadMap == nil {
		return nil
	}
	var errs []error
	if err := r.preloadMap.Unmap(); err != nil {
		errs = append(errs, fmt.Errorf("error unmapping preload file: %w", err))
	}
	if err := r.mapped.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing preload file: %w", err))
	}
	r.preloadMap = nil
	r.mapped = nil
	r.data = nil
	return errors.Join(errs...)
}

// Data returns all samples in volts, loading them first if needed.
func (r *Raw) Data() (*mat.Dense, error) {
	if err := r.LoadData(); err != nil {
		return nil, err
	}
	return r.data, nil
}

// ReadSegment returns samples [start, stop) of the picked channels (all when
// picks is nil), optionally combined through proj.
func (r *Raw) ReadSegment(start, stop int, picks []int, proj *mat.Dense) (*mat.Dense, error) {
	if start < 0 || stop > r.NumSamples || stop < start {
		return nil, fmt.Errorf("invalid sample range [%d, %d) for %d samples", start, stop, r.NumSamples)
	}

	if r.data != nil {
		mixer, err := NewCalibrationMixer(picks, ones(r.Info.NumChannels()), proj)
		if err != nil {
			return nil, err
		}
		if stop == start {
			return &mat.Dense{}, nil
		}
		dst := mat.NewDense(mixer.Outputs(), stop-start, nil)
		view := r.data.Slice(0, r.Info.NumChannels(), start, stop).(*mat.Dense)
		if err := mixer.Mix(dst, view); err != nil {
			return nil, err
		}
		return dst, nil
	}

	mixer, err := NewCalibrationMixer(picks, Calibrations(r.Info.Channels), proj)
	if err != nil {
		return nil, err
	}
	if stop == start {
		return &mat.Dense{}, nil
	}
	dst := mat.NewDense(mixer.Outputs(), stop-start, nil)
	if err := r.reader.ReadSegment(dst, start, stop, mixer); err != nil {
		return nil, err
	}
	return dst, nil
}

// Close releases the preload file mapping, if any.
func (r *Raw) Close() error {
	if r.preloadMap != nil {
		if err := r.preloadMap.Flush(); err != nil {
			return errors.Join(fmt.Errorf("error flushing preload file: %w", err), r.release())
		}
	}
	return r.release()
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
