package eeglab_test

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	eeglab "github.com/next-exp/eeglab_go/pkg"
	"github.com/stretchr/testify/require"
)

// recordSource serves in-memory records keyed by path.
type recordSource map[string]eeglab.Record

func (s recordSource) ReadRecord(path string) (eeglab.Record, error) {
	rec, ok := s[path]
	if !ok {
		return nil, fmt.Errorf("no record for %s", path)
	}
	return rec, nil
}

// captureLogger records every message it receives.
type captureLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
	errs  []string
}

func (l *captureLogger) Info(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, message)
}

func (l *captureLogger) Warn(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, message)
}

func (l *captureLogger) Error(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, message)
}

func installLogger(t *testing.T) *captureLogger {
	t.Helper()
	l := &captureLogger{}
	eeglab.SetLogger(l)
	t.Cleanup(func() {
		eeglab.SetLogger(nil)
	})
	return l
}

// sampleValue is the synthetic stored value of channel c at sample s.
func sampleValue(c, s int) float32 {
	return float32(c*1000+s) + 0.25
}

// columnMajor builds a channel-fastest buffer of nchan x nsamp synthetic values.
func columnMajor(nchan, nsamp int) []float32 {
	buf := make([]float32, nchan*nsamp)
	for s := 0; s < nsamp; s++ {
		for c := 0; c < nchan; c++ {
			buf[s*nchan+c] = sampleValue(c, s)
		}
	}
	return buf
}

func encodeFloat32(values []float32) []byte {
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return raw
}

// writeBlob writes values as a little-endian float32 file in dir.
func writeBlob(t *testing.T, dir, name string, values []float32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodeFloat32(values), 0o644))
	return path
}

func chanlocs(names ...string) []eeglab.Record {
	locs := make([]eeglab.Record, len(names))
	for i, name := range names {
		locs[i] = eeglab.Record{
			"labels": name,
			"X":      float64(i),
			"Y":      float64(i) + 0.5,
			"Z":      -float64(i),
		}
	}
	return locs
}

// continuousRecord is a single-trial dataset record referencing data.
func continuousRecord(names []string, nsamp int, data any) eeglab.Record {
	return eeglab.Record{
		"srate":    256.0,
		"nbchan":   float64(len(names)),
		"trials":   1.0,
		"pnts":     float64(nsamp),
		"xmin":     0.0,
		"xmax":     float64(nsamp-1) / 256.0,
		"chanlocs": chanlocs(names...),
		"data":     data,
	}
}
