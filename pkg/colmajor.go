package eeglab

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ColumnMajor interprets buf as a rows x cols matrix stored column by column,
// so element (r, c) is buf[c*rows+r]. For sample blobs rows are channels and
// the channel index varies fastest.
func ColumnMajor(buf []float32, rows, cols int) (*mat.Dense, error) {
	if len(buf) != rows*cols {
		return nil, fmt.Errorf("column-major reshape: buffer has %d values, want %d x %d", len(buf), rows, cols)
	}
	data := make([]float64, rows*cols)
	for c := 0; c < cols; c++ {
		col := buf[c*rows : (c+1)*rows]
		for r, v := range col {
			data[r*cols+c] = float64(v)
		}
	}
	return newDense(rows, cols, data), nil
}

// ColumnMajor64 is ColumnMajor for double precision buffers.
func ColumnMajor64(buf []float64, rows, cols int) (*mat.Dense, error) {
	if len(buf) != rows*cols {
		return nil, fmt.Errorf("column-major reshape: buffer has %d values, want %d x %d", len(buf), rows, cols)
	}
	data := make([]float64, rows*cols)
	for c := 0; c < cols; c++ {
		col := buf[c*rows : (c+1)*rows]
		for r, v := range col {
			data[r*cols+c] = v
		}
	}
	return newDense(rows, cols, data), nil
}

// SplitTrials slices a (rows, cols, trials) column-major buffer into one
// rows x cols matrix per trial.
func SplitTrials(buf []float64, rows, cols, trials int) ([]*mat.Dense, error) {
	size := rows * cols
	if len(buf) != size*trials {
		return nil, fmt.Errorf("column-major reshape: buffer has %d values, want %d x %d x %d", len(buf), rows, cols, trials)
	}
	out := make([]*mat.Dense, trials)
	for t := range out {
		m, err := ColumnMajor64(buf[t*size:(t+1)*size], rows, cols)
		if err != nil {
			return nil, err
		}
		out[t] = m
	}
	return out, nil
}

// newDense tolerates empty shapes, which mat.NewDense rejects.
func newDense(rows, cols int, data []float64) *mat.Dense {
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, cols, data)
}
