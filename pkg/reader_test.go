package eeglab_test

import (
	"bytes"
	"testing"

	eeglab "github.com/next-exp/eeglab_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBlockSamples(t *testing.T) {
	assert.Equal(t, 1, eeglab.BlockSamples(0, 64))
	assert.Equal(t, 1, eeglab.BlockSamples(10, 64))
	assert.Equal(t, 1, eeglab.BlockSamples(1000, 0))
	assert.Equal(t, 100, eeglab.BlockSamples(1600, 4))
	assert.Equal(t, 390625, eeglab.BlockSamples(eeglab.DefaultBlockBytes, 64))
}

func readAll(t *testing.T, nchan, nsamp, start, stop, blockSamples int, picks []int) *mat.Dense {
	t.Helper()
	cals := make([]float64, nchan)
	for i := range cals {
		cals[i] = 1e-6
	}
	mixer, err := eeglab.NewCalibrationMixer(picks, cals, nil)
	require.NoError(t, err)

	r := bytes.NewReader(encodeFloat32(columnMajor(nchan, nsamp)))
	dst := mat.NewDense(mixer.Outputs(), stop-start, nil)
	require.NoError(t, eeglab.ReadBlocks(r, nchan, start, stop, blockSamples, mixer, dst))
	return dst
}

func TestReadBlocksIndependentOfBlockSize(t *testing.T) {
	const nchan, nsamp = 5, 37
	cases := []struct {
		name       string
		start, end int
		picks      []int
	}{
		{"whole recording", 0, nsamp, nil},
		{"inner segment", 3, 29, nil},
		{"picked channels", 7, 36, []int{4, 1}},
		{"single sample", 36, 37, []int{2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			one := readAll(t, nchan, nsamp, tc.start, tc.end, 1, tc.picks)
			budget := readAll(t, nchan, nsamp, tc.start, tc.end, eeglab.BlockSamples(eeglab.DefaultBlockBytes, nchan), tc.picks)
			uneven := readAll(t, nchan, nsamp, tc.start, tc.end, 4, tc.picks)
			whole := readAll(t, nchan, nsamp, tc.start, tc.end, tc.end-tc.start, tc.picks)

			assert.True(t, mat.Equal(one, budget))
			assert.True(t, mat.Equal(one, uneven))
			assert.True(t, mat.Equal(one, whole))

			picks := tc.picks
			if picks == nil {
				picks = []int{0, 1, 2, 3, 4}
			}
			for row, ch := range picks {
				for col := 0; col < tc.end-tc.start; col++ {
					want := float64(sampleValue(ch, tc.start+col)) * 1e-6
					assert.InDelta(t, want, one.At(row, col), 1e-12)
				}
			}
		})
	}
}

func TestReadBlocksIdentity(t *testing.T) {
	const nchan, nsamp = 2, 6
	r := bytes.NewReader(encodeFloat32(columnMajor(nchan, nsamp)))
	dst := mat.NewDense(nchan, nsamp, nil)
	require.NoError(t, eeglab.ReadBlocks(r, nchan, 0, nsamp, 4, eeglab.IdentityMixer{Channels: nchan}, dst))

	want, err := eeglab.ColumnMajor(columnMajor(nchan, nsamp), nchan, nsamp)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, dst))
}

func TestReadBlocksShortRead(t *testing.T) {
	const nchan = 3
	// 10 samples declared, 9 and a half stored
	data := encodeFloat32(columnMajor(nchan, 10))
	data = data[:len(data)-6]

	dst := mat.NewDense(nchan, 10, nil)
	err := eeglab.ReadBlocks(bytes.NewReader(data), nchan, 0, 10, 4, eeglab.IdentityMixer{Channels: nchan}, dst)
	require.ErrorIs(t, err, eeglab.ErrShortRead)

	var short *eeglab.ErrShortData
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 30, short.Want)
	assert.Equal(t, 28, short.Got)
}

func TestReadBlocksInvalidArguments(t *testing.T) {
	r := bytes.NewReader(encodeFloat32(columnMajor(2, 4)))
	mixer := eeglab.IdentityMixer{Channels: 2}

	assert.Error(t, eeglab.ReadBlocks(r, 2, 3, 1, 1, mixer, mat.NewDense(2, 1, nil)))
	assert.Error(t, eeglab.ReadBlocks(r, 0, 0, 1, 1, mixer, mat.NewDense(2, 1, nil)))
	assert.Error(t, eeglab.ReadBlocks(r, 2, 0, 1, 0, mixer, mat.NewDense(2, 1, nil)))
	assert.Error(t, eeglab.ReadBlocks(r, 2, 0, 2, 1, mixer, mat.NewDense(2, 1, nil)))
	assert.NoError(t, eeglab.ReadBlocks(r, 2, 2, 2, 1, mixer, &mat.Dense{}))
}

func TestSegmentReaderFile(t *testing.T) {
	const nchan, nsamp = 4, 20
	path := writeBlob(t, t.TempDir(), "rec.fdt", columnMajor(nchan, nsamp))
	reader := eeglab.NewSegmentReader(path, nchan, 3*nchan*eeglab.BytesPerSample)
	assert.Equal(t, 3, reader.BlockSamples)

	dst := mat.NewDense(nchan, 5, nil)
	require.NoError(t, reader.ReadSegment(dst, 10, 15, eeglab.IdentityMixer{Channels: nchan}))
	assert.Equal(t, float64(sampleValue(3, 14)), dst.At(3, 4))

	missing := eeglab.NewSegmentReader(path+".gone", nchan, 1024)
	err := missing.ReadSegment(dst, 0, 5, eeglab.IdentityMixer{Channels: nchan})
	var openErr *eeglab.ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}
