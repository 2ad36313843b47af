package main

import (
	"fmt"
	"io"

	eeglab "github.com/next-exp/eeglab_go/pkg"
	"gonum.org/v1/gonum/mat"
)

// BlockReader walks a continuous recording in consecutive sample blocks,
// honouring the configured skip and max samples.
type BlockReader struct {
	Raw        *eeglab.Raw
	BlockLen   int
	Next       int
	Stop       int
	BlockCount int
}

func NewBlockReader(raw *eeglab.Raw, blockLen int) *BlockReader {
	start := min(configuration.Skip, raw.NumSamples)
	stop := raw.NumSamples
	if configuration.MaxSamples > 0 {
		stop = min(stop, start+configuration.MaxSamples)
	}
	if VerbosityLevel > 0 && start > 0 {
		message := fmt.Sprintf("Skipping %d samples", start)
		logger.Info(message, "fileReader")
	}
	return &BlockReader{Raw: raw, BlockLen: blockLen, Next: start, Stop: stop, BlockCount: -1}
}

// getNextBlock returns the next block, or io.EOF once the window is read.
func (b *BlockReader) getNextBlock() (int, *mat.Dense, error) {
	if b.Next >= b.Stop || b.Raw.Info.NumChannels() == 0 {
		if VerbosityLevel > 0 {
			logger.Info("Last block reached", "fileReader")
		}
		return b.Next, nil, io.EOF
	}
	start := b.Next
	stop := min(start+b.BlockLen, b.Stop)
	block, err := b.Raw.ReadSegment(start, stop, nil, nil)
	if err != nil {
		return start, nil, fmt.Errorf("error reading samples [%d, %d): %w", start, stop, err)
	}
	b.Next = stop
	b.BlockCount++
	if VerbosityLevel > 1 {
		message := fmt.Sprintf("Reading block %d, samples [%d, %d)", b.BlockCount, start, stop)
		logger.Info(message, "fileReader")
	}
	return start, block, nil
}

// countBlocks is the number of blocks the reader will return.
func (b *BlockReader) countBlocks() int {
	if b.Next >= b.Stop {
		return 0
	}
	return (b.Stop - b.Next + b.BlockLen - 1) / b.BlockLen
}
