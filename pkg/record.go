package eeglab

import (
	"math"
)

// Record is a node of the schema-less tree produced by a container parser.
// Values are float64, int, string, []string, Matrix, Record, []Record or nil.
type Record map[string]any

// Matrix is a numeric array as stored by the container. Data is column-major
// with respect to Dims.
type Matrix struct {
	Dims []int
	Data []float64
}

// Len is the number of elements implied by Dims.
func (m Matrix) Len() int {
	if len(m.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range m.Dims {
		n *= d
	}
	return n
}

// RecordSource reads the dataset record stored in a container file.
type RecordSource interface {
	ReadRecord(path string) (Record, error)
}

func (r Record) Has(name string) bool {
	v, ok := r[name]
	return ok && v != nil
}

func (r Record) lookup(name string) (any, error) {
	v, ok := r[name]
	if !ok || v == nil {
		return nil, &ErrMissingField{Field: name}
	}
	return v, nil
}

// Float returns a numeric field. One-element matrices are squeezed.
func (r Record) Float(name string) (float64, error) {
	v, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, &ErrFieldType{Field: name, Want: "number", Got: v}
	}
	return f, nil
}

// Int returns an integral numeric field.
func (r Record) Int(name string) (int, error) {
	f, err := r.Float(name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, &ErrFieldType{Field: name, Want: "integer", Got: f}
	}
	return int(f), nil
}

func (r Record) String(name string) (string, error) {
	v, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &ErrFieldType{Field: name, Want: "string", Got: v}
	}
	return s, nil
}

// Records returns a struct array field. A single nested Record is treated as
// an array of one, and an absent or empty field as an empty array.
func (r Record) Records(name string) ([]Record, error) {
	v, ok := r[name]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case []Record:
		return t, nil
	case Record:
		return []Record{t}, nil
	case Matrix:
		if t.Len() == 0 {
			return nil, nil
		}
	}
	return nil, &ErrFieldType{Field: name, Want: "struct array", Got: v}
}

func (r Record) Matrix(name string) (Matrix, error) {
	v, err := r.lookup(name)
	if err != nil {
		return Matrix{}, err
	}
	switch t := v.(type) {
	case Matrix:
		return t, nil
	case []float64:
		return Matrix{Dims: []int{len(t)}, Data: t}, nil
	}
	if f, ok := asFloat(v); ok {
		return Matrix{Dims: []int{1}, Data: []float64{f}}, nil
	}
	return Matrix{}, &ErrFieldType{Field: name, Want: "numeric array", Got: v}
}

// Labels returns a text field that may hold one or several strings.
func (r Record) Labels(name string) ([]string, error) {
	v, ok := r[name]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		labels := make([]string, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, &ErrFieldType{Field: name, Want: "string", Got: e}
			}
			labels[i] = s
		}
		return labels, nil
	case Matrix:
		if t.Len() == 0 {
			return nil, nil
		}
	}
	return nil, &ErrFieldType{Field: name, Want: "string or list of strings", Got: v}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case Matrix:
		if len(t.Data) == 1 {
			return t.Data[0], true
		}
	case []float64:
		if len(t) == 1 {
			return t[0], true
		}
	}
	return 0, false
}
