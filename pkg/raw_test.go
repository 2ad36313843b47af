package eeglab_test

import (
	"os"
	"path/filepath"
	"testing"

	eeglab "github.com/next-exp/eeglab_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// blobRecording writes a continuous recording with an external data file
// into a fresh directory and returns the path of its .set file.
func blobRecording(t *testing.T, names []string, nsamp int) (string, recordSource) {
	t.Helper()
	dir := t.TempDir()
	writeBlob(t, dir, "rec.fdt", columnMajor(len(names), nsamp))
	path := filepath.Join(dir, "rec.set")
	return path, recordSource{path: continuousRecord(names, nsamp, "rec.fdt")}
}

func TestOpenRawRejectsEpochedRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.set")
	rec := continuousRecord([]string{"Cz", "Pz"}, 10, "does-not-exist.fdt")
	rec["trials"] = 3.0
	source := recordSource{path: rec}

	for _, preload := range []bool{false, true} {
		raw, err := eeglab.OpenRaw(path, eeglab.RawOptions{Source: source, Preload: preload})
		assert.Nil(t, raw)
		var trials *eeglab.ErrTrialCount
		require.ErrorAs(t, err, &trials)
		assert.Equal(t, 3, trials.Trials)
		assert.ErrorIs(t, err, eeglab.ErrSchema)
		assert.NotErrorIs(t, err, os.ErrNotExist)
	}
}

func TestOpenRawLazyMatchesPreload(t *testing.T) {
	names := []string{"Fp1", "Fp2", "Cz", "EOG1"}
	const nsamp = 50
	path, source := blobRecording(t, names, nsamp)

	lazy, err := eeglab.OpenRaw(path, eeglab.RawOptions{Source: source, BlockBytes: 7 * 4 * len(names)})
	require.NoError(t, err)
	defer lazy.Close()
	assert.False(t, lazy.Preloaded())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "rec.fdt"), lazy.DataFile)
	assert.Equal(t, eeglab.ChannelEOG, lazy.Info.Channels[3].Kind)

	eager, err := eeglab.OpenRaw(path, eeglab.RawOptions{Source: source, Preload: true})
	require.NoError(t, err)
	defer eager.Close()
	assert.True(t, eager.Preloaded())

	whole, err := lazy.ReadSegment(0, nsamp, nil, nil)
	require.NoError(t, err)
	data, err := eager.Data()
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(whole, data, 1e-15))
	assert.InDelta(t, float64(sampleValue(2, 17))*1e-6, data.At(2, 17), 1e-15)

	picks, err := lazy.Info.Picks("Cz", "Fp1")
	require.NoError(t, err)
	fromFile, err := lazy.ReadSegment(5, 12, picks, nil)
	require.NoError(t, err)
	fromMemory, err := eager.ReadSegment(5, 12, picks, nil)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(fromFile, fromMemory, 1e-15))
	r, c := fromFile.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 7, c)

	_, err = lazy.ReadSegment(10, nsamp+1, nil, nil)
	assert.Error(t, err)
	empty, err := lazy.ReadSegment(3, 3, nil, nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestOpenRawPreloadFile(t *testing.T) {
	names := []string{"C3", "C4"}
	const nsamp = 16
	path, source := blobRecording(t, names, nsamp)
	preload := filepath.Join(t.TempDir(), "rec.mmap")

	raw, err := eeglab.OpenRaw(path, eeglab.RawOptions{
		Source:      source,
		PreloadFile: preload,
		Calibration: 1,
	})
	require.NoError(t, err)
	require.True(t, raw.Preloaded())

	stat, err := os.Stat(preload)
	require.NoError(t, err)
	assert.Equal(t, int64(len(names)*nsamp*8), stat.Size())

	segment, err := raw.ReadSegment(4, 6, []int{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(sampleValue(1, 5)), segment.At(0, 1))

	require.NoError(t, raw.Close())
	assert.False(t, raw.Preloaded())
}

func TestOpenRawShortBlob(t *testing.T) {
	dir := t.TempDir()
	names := []string{"Cz", "Pz", "Oz"}
	writeBlob(t, dir, "rec.fdt", columnMajor(len(names), 20)[:55])
	path := filepath.Join(dir, "rec.set")
	source := recordSource{path: continuousRecord(names, 20, "rec.fdt")}

	raw, err := eeglab.OpenRaw(path, eeglab.RawOptions{Source: source, Preload: true})
	assert.Nil(t, raw)
	assert.ErrorIs(t, err, eeglab.ErrShortRead)

	raw, err = eeglab.OpenRaw(path, eeglab.RawOptions{Source: source, BlockBytes: 64})
	require.NoError(t, err)
	_, err = raw.ReadSegment(0, 18, nil, nil)
	assert.NoError(t, err)
	_, err = raw.ReadSegment(15, 20, nil, nil)
	assert.ErrorIs(t, err, eeglab.ErrShortRead)
}

func TestOpenRawEmbeddedData(t *testing.T) {
	log := installLogger(t)
	names := []string{"Cz", "Pz"}
	const nsamp = 3
	values := columnMajor(len(names), nsamp)
	data := eeglab.Matrix{Dims: []int{len(names), nsamp}, Data: make([]float64, len(values))}
	for i, v := range values {
		data.Data[i] = float64(v)
	}
	source := recordSource{"rec.set": continuousRecord(names, nsamp, data)}

	raw, err := eeglab.OpenRaw("rec.set", eeglab.RawOptions{Source: source})
	require.NoError(t, err)
	assert.True(t, raw.Preloaded())
	assert.Empty(t, raw.DataFile)
	require.Len(t, log.warns, 1)
	assert.Contains(t, log.warns[0], "preload=false is not supported")

	segment, err := raw.ReadSegment(0, nsamp, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, float64(sampleValue(1, 2))*1e-6, segment.At(1, 2), 1e-15)

	log.warns = nil
	_, err = eeglab.OpenRaw("rec.set", eeglab.RawOptions{Source: source, Preload: true})
	require.NoError(t, err)
	assert.Empty(t, log.warns)

	data.Data = data.Data[:4]
	data.Dims = []int{2, 2}
	source["bad.set"] = continuousRecord(names, nsamp, data)
	_, err = eeglab.OpenRaw("bad.set", eeglab.RawOptions{Source: source, Preload: true})
	assert.ErrorIs(t, err, eeglab.ErrSchema)
}

func TestOpenRawChannelCountMismatch(t *testing.T) {
	path, source := blobRecording(t, []string{"Cz", "Pz"}, 4)
	source[path]["nbchan"] = 3.0

	_, err := eeglab.OpenRaw(path, eeglab.RawOptions{Source: source})
	assert.ErrorIs(t, err, eeglab.ErrSchema)
}

func TestOpenRawMontageFile(t *testing.T) {
	dir := t.TempDir()
	writeBlob(t, dir, "rec.fdt", columnMajor(2, 4))
	path := filepath.Join(dir, "rec.set")
	rec := continuousRecord(nil, 4, "rec.fdt")
	rec["nbchan"] = 2.0
	delete(rec, "chanlocs")
	source := recordSource{path: rec}

	montageDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(montageDir, "generic.txt"),
		[]byte("EEG 001 0.1 0.2 0.3\n"), 0o644))

	raw, err := eeglab.OpenRaw(path, eeglab.RawOptions{
		Source:  source,
		Montage: filepath.Join(montageDir, "generic"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"EEG 001", "EEG 002"}, raw.Info.ChannelNames())
	assert.Equal(t, eeglab.PositionsFromFile, raw.Info.Positions.Kind)
	assert.Equal(t, montageDir, raw.Info.Positions.Dir)
	assert.True(t, raw.Info.Channels[0].HasPosition)
	assert.False(t, raw.Info.Channels[1].HasPosition)

	_, err = eeglab.OpenRaw(path, eeglab.RawOptions{Source: source, Montage: filepath.Join(montageDir, "absent")})
	assert.Error(t, err)
}
