package eeglab_test

import (
	"testing"

	eeglab "github.com/next-exp/eeglab_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMajorLayout(t *testing.T) {
	const nchan, nsamp = 3, 4
	m, err := eeglab.ColumnMajor(columnMajor(nchan, nsamp), nchan, nsamp)
	require.NoError(t, err)

	r, c := m.Dims()
	require.Equal(t, nchan, r)
	require.Equal(t, nsamp, c)
	for ch := 0; ch < nchan; ch++ {
		for s := 0; s < nsamp; s++ {
			assert.Equal(t, float64(sampleValue(ch, s)), m.At(ch, s))
		}
	}

	_, err = eeglab.ColumnMajor(make([]float32, 5), 2, 3)
	assert.Error(t, err)
}

func TestSplitTrials(t *testing.T) {
	// (2 channels, 2 samples, 2 trials), channel fastest
	buf := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	trials, err := eeglab.SplitTrials(buf, 2, 2, 2)
	require.NoError(t, err)
	require.Len(t, trials, 2)

	assert.Equal(t, 1.0, trials[0].At(0, 0))
	assert.Equal(t, 2.0, trials[0].At(1, 0))
	assert.Equal(t, 3.0, trials[0].At(0, 1))
	assert.Equal(t, 8.0, trials[1].At(1, 1))
	assert.Equal(t, 6.0, trials[1].At(1, 0))

	_, err = eeglab.SplitTrials(buf, 2, 2, 3)
	assert.Error(t, err)
}

func TestColumnMajorEmpty(t *testing.T) {
	m, err := eeglab.ColumnMajor64(nil, 0, 10)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
}
