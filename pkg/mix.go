package eeglab

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Mixer turns a raw channels x samples block into output rows: it selects
// channels, applies calibration and any further linear combination such as a
// projection.
type Mixer interface {
	Outputs() int
	Mix(dst *mat.Dense, raw *mat.Dense) error
}

// IdentityMixer copies raw blocks unchanged.
type IdentityMixer struct {
	Channels int
}

func (m IdentityMixer) Outputs() int { return m.Channels }

func (m IdentityMixer) Mix(dst *mat.Dense, raw *mat.Dense) error {
	dr, dc := dst.Dims()
	rr, rc := raw.Dims()
	if dr != rr || dc != rc {
		return fmt.Errorf("mix: destination is %d x %d, block is %d x %d", dr, dc, rr, rc)
	}
	dst.Copy(raw)
	return nil
}

// CalibrationMixer applies proj * diag(cal[picks]) * select(picks).
type CalibrationMixer struct {
	m *mat.Dense
}

// NewCalibrationMixer builds the transform for picks (all channels when nil)
// with per-channel cals. proj, when not nil, must have len(picks) columns.
func NewCalibrationMixer(picks []int, cals []float64, proj *mat.Dense) (*CalibrationMixer, error) {
	nchan := len(cals)
	if picks == nil {
		picks = make([]int, nchan)
		for i := range picks {
			picks[i] = i
		}
	}
	if len(picks) == 0 {
		return nil, fmt.Errorf("mix: no channels selected")
	}
	sel := mat.NewDense(len(picks), nchan, nil)
	for i, p := range picks {
		if p < 0 || p >= nchan {
			return nil, fmt.Errorf("mix: channel index %d out of range [0, %d)", p, nchan)
		}
		sel.Set(i, p, cals[p])
	}
	if proj == nil {
		return &CalibrationMixer{m: sel}, nil
	}
	_, pc := proj.Dims()
	if pc != len(picks) {
		return nil, fmt.Errorf("mix: projection has %d columns, %d channels selected", pc, len(picks))
	}
	var m mat.Dense
	m.Mul(proj, sel)
	return &CalibrationMixer{m: &m}, nil
}

func (c *CalibrationMixer) Outputs() int {
	r, _ := c.m.Dims()
	return r
}

func (c *CalibrationMixer) Mix(dst *mat.Dense, raw *mat.Dense) error {
	r, mc := c.m.Dims()
	dr, dc := dst.Dims()
	rr, rc := raw.Dims()
	if mc != rr || dr != r || dc != rc {
		return fmt.Errorf("mix: cannot map %d x %d block through %d x %d into %d x %d", rr, rc, r, mc, dr, dc)
	}
	dst.Mul(c.m, raw)
	return nil
}
