package eeglab

import (
	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type RunInfoHDF5 struct {
	SampleRate  float64
	NChannels   int32
	NSamples    int32
	NTrials     int32
	Positions   [STRLEN]byte
	Calibration float64
}

type ChannelHDF5 struct {
	Name [STRLEN]byte
	Kind [STRLEN]byte
	Cal  float64
	X    float64
	Y    float64
	Z    float64
}

type EventHDF5 struct {
	Sample int32
	Prev   int32
	Code   int32
}

type EventIDHDF5 struct {
	Label [STRLEN]byte
	Code  int32
}

const STRLEN = 32

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func createFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

// create2dArray creates an extendable rows x nCols float32 array.
func create2dArray(group *hdf5.Group, name string, nCols int, chunkRows int, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0, uint(nCols)}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims), uint(nCols)}
	chunks := []uint{uint(chunkRows), uint(nCols)}

	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()
	plist.SetChunk(chunks)
	plist.SetDeflate(compressionLevel)

	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_FLOAT, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()
	plist.SetChunk([]uint{1024})
	plist.SetDeflate(compressionLevel)

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowsInFile int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	if err := dataset.Resize([]uint{uint(rowsInFile) + length}); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()
	if err := filespace.SelectHyperslab([]uint{uint(rowsInFile)}, nil, []uint{length}, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

// append2dArray appends nRows rows of row-major data to an extendable array.
func append2dArray(dataset *hdf5.Dataset, data *[]float32, rowsInFile int, nRows int, nCols int) error {
	if err := dataset.Resize([]uint{uint(rowsInFile + nRows), uint(nCols)}); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{uint(rowsInFile), 0}
	count := []uint{uint(nRows), uint(nCols)}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()
	return dataset.WriteSubset(data, dataspace, filespace)
}
