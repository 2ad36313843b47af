package eeglab

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// HDF5Source reads dataset records stored as a plain HDF5 tree. Groups become
// records, groups whose members are named 0..n-1 with no gaps become record
// arrays, datasets with MATLAB_class "char" become strings and numeric
// datasets become scalars or matrices with their dimensions reversed. Object
// references are not followed, so struct arrays written by MATLAB under
// #refs# are not supported.
type HDF5Source struct {
	Root string // group holding the dataset record, "EEG" when empty
}

func (s HDF5Source) ReadRecord(path string) (Record, error) {
	root := s.Root
	if root == "" {
		root = "EEG"
	}

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}
	defer f.Close()

	g, err := f.OpenGroup(root)
	if err != nil {
		return nil, fmt.Errorf("error opening group %q: %w", root, err)
	}
	defer g.Close()

	value, err := readGroup(g, root)
	if err != nil {
		return nil, err
	}
	rec, ok := value.(Record)
	if !ok {
		return nil, &ErrFieldType{Field: root, Want: "struct", Got: value}
	}
	if verbosity > 1 {
		message := fmt.Sprintf("Read %d fields from %s:/%s", len(rec), path, root)
		logger.Info(message, "hdf5source")
	}
	return rec, nil
}

func readGroup(g *hdf5.Group, name string) (any, error) {
	n, err := g.NumObjects()
	if err != nil {
		return nil, fmt.Errorf("error listing group %q: %w", name, err)
	}

	rec := Record{}
	for i := uint(0); i < n; i++ {
		child, err := g.ObjectNameByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("error reading member %d of %q: %w", i, name, err)
		}
		kind, err := g.ObjectTypeByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("error reading type of %q: %w", child, err)
		}
		switch kind {
		case hdf5.H5G_GROUP:
			sub, err := g.OpenGroup(child)
			if err != nil {
				return nil, fmt.Errorf("error opening group %q: %w", child, err)
			}
			value, err := readGroup(sub, name+"/"+child)
			sub.Close()
			if err != nil {
				return nil, err
			}
			rec[child] = value
		case hdf5.H5G_DATASET:
			ds, err := g.OpenDataset(child)
			if err != nil {
				return nil, fmt.Errorf("error opening dataset %q: %w", child, err)
			}
			value, err := readDataset(ds, name+"/"+child)
			ds.Close()
			if err != nil {
				return nil, err
			}
			rec[child] = value
		}
	}

	if elems, ok := recordArray(rec); ok {
		return elems, nil
	}
	return rec, nil
}

// recordArray reports whether rec holds only members named 0..n-1, each of
// them a record.
func recordArray(rec Record) ([]Record, bool) {
	if len(rec) == 0 {
		return nil, false
	}
	indices := make([]int, 0, len(rec))
	for key := range rec {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			return nil, false
		}
		if _, ok := rec[key].(Record); !ok {
			return nil, false
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	elems := make([]Record, len(indices))
	for i, idx := range indices {
		if idx != i {
			return nil, false
		}
		elems[i] = rec[strconv.Itoa(idx)].(Record)
	}
	return elems, true
}

func readDataset(ds *hdf5.Dataset, name string) (any, error) {
	space := ds.Space()
	dims, _, err := space.SimpleExtentDims()
	space.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading dimensions of %q: %w", name, err)
	}

	if hasAttribute(ds, "MATLAB_empty") {
		return nil, nil
	}

	// HDF5 dimensions are the reverse of the MATLAB ones, which makes the
	// stored order column-major for the MATLAB shape
	mdims := make([]int, len(dims))
	count := 1
	for i, d := range dims {
		mdims[len(dims)-1-i] = int(d)
		count *= int(d)
	}
	if len(dims) == 0 {
		count = 1
	}
	if count == 0 {
		return nil, nil
	}

	if datasetAttribute(ds, "MATLAB_class") == "char" {
		chars := make([]uint16, count)
		if err := ds.Read(&chars); err != nil {
			return nil, fmt.Errorf("error reading %q: %w", name, err)
		}
		return decodeChars(chars, mdims), nil
	}

	data := make([]float64, count)
	if err := ds.Read(&data); err != nil {
		return nil, fmt.Errorf("error reading %q: %w", name, err)
	}
	if count == 1 {
		return data[0], nil
	}
	return Matrix{Dims: mdims, Data: data}, nil
}

func hasAttribute(ds *hdf5.Dataset, name string) bool {
	attr, err := ds.OpenAttribute(name)
	if err != nil {
		return false
	}
	attr.Close()
	return true
}

// datasetAttribute returns a string attribute, or "" when it is absent or
// not readable as a string.
func datasetAttribute(ds *hdf5.Dataset, name string) string {
	attr, err := ds.OpenAttribute(name)
	if err != nil {
		return ""
	}
	defer attr.Close()
	var value string
	if err := attr.Read(&value, hdf5.T_GO_STRING); err != nil {
		return ""
	}
	return value
}

// decodeChars turns a MATLAB char array into a string, or into one string per
// row when it has several rows.
func decodeChars(chars []uint16, dims []int) any {
	rows := 1
	if len(dims) == 2 && dims[1] > 0 {
		rows = dims[0]
	}
	if rows <= 1 {
		return string(utf16.Decode(chars))
	}
	cols := len(chars) / rows
	out := make([]string, rows)
	row := make([]uint16, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			row[c] = chars[c*rows+r]
		}
		out[r] = strings.TrimRight(string(utf16.Decode(row)), " ")
	}
	return out
}
