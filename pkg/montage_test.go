package eeglab_test

import (
	"os"
	"path/filepath"
	"testing"

	eeglab "github.com/next-exp/eeglab_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const capFile = `% electrode positions
# label x y z
Fz 0.0 0.6 0.8
1 Cz 0.0 0.0 1.0
Pz 0.0 -0.6 0.8
`

func TestFileMontageReader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cap3.sfp"), []byte(capFile), 0o644))

	// the extension is optional and the kind resolves inside dir
	montage, err := eeglab.FileMontageReader{}.ReadMontage("elsewhere/cap3", dir)
	require.NoError(t, err)
	assert.Equal(t, "cap3", montage.Kind)
	assert.Equal(t, []string{"Fz", "Cz", "Pz"}, montage.Names)

	pos, ok := montage.Position("Cz")
	require.True(t, ok)
	assert.Equal(t, [3]float64{0, 0, 1}, pos)
	_, ok = montage.Position("Oz")
	assert.False(t, ok)

	abs, err := eeglab.FileMontageReader{}.ReadMontage(filepath.Join(dir, "cap3.sfp"), "")
	require.NoError(t, err)
	assert.Equal(t, montage.Positions, abs.Positions)
}

func TestFileMontageReaderErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := eeglab.FileMontageReader{}.ReadMontage("missing", dir)
	var openErr *eeglab.ErrOpenFile
	assert.ErrorAs(t, err, &openErr)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "short.txt"), []byte("Fz 0 1\n"), 0o644))
	_, err = eeglab.FileMontageReader{}.ReadMontage("short", dir)
	assert.ErrorContains(t, err, "line 1")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "nan.txt"), []byte("Fz 0 one 2\n"), 0o644))
	_, err = eeglab.FileMontageReader{}.ReadMontage("nan", dir)
	assert.Error(t, err)
}

func TestApplyMontage(t *testing.T) {
	channels := []eeglab.ChannelDescriptor{{Name: "Fz"}, {Name: "X1"}, {Name: "Pz"}}
	montage := &eeglab.Montage{
		Names:     []string{"Pz", "Fz"},
		Positions: [][3]float64{{0, -1, 0}, {0, 1, 0}},
	}
	assert.Equal(t, 2, eeglab.ApplyMontage(channels, montage))
	assert.Equal(t, [3]float64{0, 1, 0}, channels[0].Position)
	assert.False(t, channels[1].HasPosition)
	assert.True(t, channels[2].HasPosition)
}
