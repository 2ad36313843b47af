package eeglab

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/mat"
)

// BytesPerSample is the size of one stored float32 value.
const BytesPerSample = 4

// BlockSamples converts a memory budget in bytes into the number of samples
// (all channels) read per block. It is never less than one.
func BlockSamples(blockBytes int, nchan int) int {
	if nchan <= 0 {
		return 1
	}
	n := (blockBytes / BytesPerSample) / nchan
	if n < 1 {
		return 1
	}
	return n
}

// SegmentReader reads calibrated segments from an external float32 data file
// laid out channel-fastest.
type SegmentReader struct {
	Filename     string
	NumChannels  int
	BlockSamples int
}

func NewSegmentReader(filename string, nchan int, blockBytes int) *SegmentReader {
	return &SegmentReader{
		Filename:     filename,
		NumChannels:  nchan,
		BlockSamples: BlockSamples(blockBytes, nchan),
	}
}

// ReadSegment reads samples [start, stop) into dst, which must have
// mixer.Outputs() rows and stop-start columns. The file is opened for this
// call only.
func (s *SegmentReader) ReadSegment(dst *mat.Dense, start, stop int, mixer Mixer) error {
	file, err := os.Open(s.Filename)
	if err != nil {
		return &ErrOpenFile{Filename: s.Filename, Err: err}
	}
	defer file.Close()

	if verbosity > 0 {
		message := fmt.Sprintf("Reading %s samples [%d, %d) in blocks of %s", s.Filename, start, stop,
			humanize.Bytes(uint64(s.BlockSamples*s.NumChannels*BytesPerSample)))
		logger.Info(message, "reader")
	}
	return readBlocks(file, s.Filename, s.NumChannels, start, stop, s.BlockSamples, mixer, dst)
}

// ReadBlocks reads samples [start, stop) of an nchan channel float32 stream
// in blocks of at most blockSamples samples, passing each block through mixer
// into the matching columns of dst.
func ReadBlocks(r io.ReadSeeker, nchan, start, stop, blockSamples int, mixer Mixer, dst *mat.Dense) error {
	return readBlocks(r, "", nchan, start, stop, blockSamples, mixer, dst)
}

func readBlocks(r io.ReadSeeker, name string, nchan, start, stop, blockSamples int, mixer Mixer, dst *mat.Dense) error {
	if start < 0 || stop < start {
		return fmt.Errorf("invalid sample range [%d, %d)", start, stop)
	}
	if nchan <= 0 {
		return fmt.Errorf("invalid channel count %d", nchan)
	}
	if blockSamples < 1 {
		return fmt.Errorf("invalid block length %d", blockSamples)
	}
	total := stop - start
	if total == 0 {
		return nil
	}
	if dr, dc := dst.Dims(); dr != mixer.Outputs() || dc != total {
		return fmt.Errorf("destination is %d x %d, want %d x %d", dr, dc, mixer.Outputs(), total)
	}

	offset := int64(nchan) * int64(start) * BytesPerSample
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to sample %d: %w", start, err)
	}

	blockLen := min(blockSamples, total)
	raw := make([]byte, blockLen*nchan*BytesPerSample)
	values := make([]float32, blockLen*nchan)

	for blkStart := 0; blkStart < total; blkStart += blockLen {
		n := min(blockLen, total-blkStart)
		count := n * nchan
		got, err := io.ReadFull(r, raw[:count*BytesPerSample])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return &ErrShortData{
					Filename: name,
					Want:     total * nchan,
					Got:      blkStart*nchan + got/BytesPerSample,
				}
			}
			return fmt.Errorf("error reading sample data: %w", err)
		}
		for i := 0; i < count; i++ {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*BytesPerSample:]))
		}

		block, err := ColumnMajor(values[:count], nchan, n)
		if err != nil {
			return err
		}
		view := dst.Slice(0, mixer.Outputs(), blkStart, blkStart+n).(*mat.Dense)
		if err := mixer.Mix(view, block); err != nil {
			return err
		}
		if verbosity > 1 {
			message := fmt.Sprintf("Block [%d, %d) read", start+blkStart, start+blkStart+n)
			logger.Info(message, "reader")
		}
	}
	return nil
}
