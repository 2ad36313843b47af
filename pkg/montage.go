package eeglab

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Montage is a named spatial layout of electrode positions.
type Montage struct {
	Kind      string
	Names     []string
	Positions [][3]float64
}

// Position returns the coordinates of the named electrode.
func (m *Montage) Position(name string) ([3]float64, bool) {
	for i, n := range m.Names {
		if n == name {
			return m.Positions[i], true
		}
	}
	return [3]float64{}, false
}

// MontageReader resolves a montage by kind, relative to dir when the kind is
// not an absolute location.
type MontageReader interface {
	ReadMontage(kind string, dir string) (*Montage, error)
}

// FileMontageReader reads whitespace separated "label x y z" electrode files.
type FileMontageReader struct{}

var montageExtensions = []string{"", ".sfp", ".txt", ".xyz"}

func (FileMontageReader) ReadMontage(kind string, dir string) (*Montage, error) {
	base := kind
	if !filepath.IsAbs(base) && dir != "" {
		base = filepath.Join(dir, filepath.Base(kind))
	}

	var file *os.File
	var err error
	for _, ext := range montageExtensions {
		file, err = os.Open(base + ext)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, &ErrOpenFile{Filename: base, Err: err}
	}
	defer file.Close()

	montage := &Montage{Kind: strings.TrimSuffix(filepath.Base(kind), filepath.Ext(kind))}
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "%") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 4 {
			return nil, fmt.Errorf("error parsing montage %s line %d: expected label x y z", file.Name(), line)
		}
		coords := fields[len(fields)-3:]
		var pos [3]float64
		for i := range coords {
			pos[i], err = strconv.ParseFloat(coords[i], 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing montage %s line %d: %w", file.Name(), line, err)
			}
		}
		// Some files carry a leading index column
		label := fields[:len(fields)-3]
		if _, err := strconv.Atoi(label[0]); err == nil && len(label) > 1 {
			label = label[1:]
		}
		montage.Names = append(montage.Names, strings.Join(label, " "))
		montage.Positions = append(montage.Positions, pos)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading montage %s: %w", file.Name(), err)
	}
	return montage, nil
}
