package main

import (
	"fmt"
	"io"
	"time"

	eeglab "github.com/next-exp/eeglab_go/pkg"
	"gonum.org/v1/gonum/mat"
)

type BlockData struct {
	Start   int
	Samples *mat.Dense
	Err     error
}

// sendBlocksToWriter reads blocks in order and hands them to the writer. A
// single goroutine does all the reads so the data file is never shared.
func sendBlocksToWriter(reader *BlockReader, jobs chan<- BlockData) {
	defer close(jobs)
	for {
		start, block, err := reader.getNextBlock()
		if err == io.EOF {
			return
		}
		if err != nil {
			jobs <- BlockData{Start: start, Err: err}
			return
		}
		jobs <- BlockData{Start: start, Samples: block}
	}
}

// processBlocks writes every block received. After the first error the
// remaining blocks are drained so the reader can finish.
func processBlocks(jobs <-chan BlockData, writer *eeglab.Writer) error {
	var firstErr error
	var totalTime int64 = 0
	blocksWritten := 0
	for job := range jobs {
		if firstErr != nil {
			continue
		}
		if job.Err != nil {
			firstErr = job.Err
			continue
		}
		start := time.Now()
		if err := writer.WriteBlock(job.Samples); err != nil {
			firstErr = fmt.Errorf("error writing block at sample %d: %w", job.Start, err)
			continue
		}
		blocksWritten++
		totalTime += time.Since(start).Milliseconds()
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Blocks written: %d. Total time writing: %d ms", blocksWritten, totalTime)
		logger.Info(message, "writer")
	}
	return firstErr
}
