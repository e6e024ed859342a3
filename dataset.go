/*
Copyright © 2019 the lightning authors.
This file is part of lightning.

lightning is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

lightning is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with lightning.  If not, see <http://www.gnu.org/licenses/>.
*/

package lightning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// errNotFound is returned by datasets for variables or dimensions that
// do not exist.
var errNotFound = errors.New("not found")

// dataset is a read-only view of a NetCDF file.
type dataset interface {
	// HasVariable returns whether variable v is in the file.
	HasVariable(v string) bool

	// DimLength returns the length of dimension d, or errNotFound.
	DimLength(d string) (int, error)

	// Variable reads all of the values of variable v.
	Variable(v string) (*variable, error)

	Close() error
}

// variable holds the values of a NetCDF variable converted to float64.
type variable struct {
	name   string
	dims   []string
	shape  []int
	values []float64

	// single is true if the values are stored in the file with
	// single (float32) precision.
	single bool

	// attrs holds the variable attributes. Numeric attributes
	// are []float64 and text attributes are string.
	attrs map[string]interface{}
}

// numAttr returns the first value of numeric attribute a.
func (v *variable) numAttr(a string) (float64, bool) {
	x, ok := v.attrs[a].([]float64)
	if !ok || len(x) == 0 {
		return 0, false
	}
	return x[0], true
}

// textAttr returns the value of text attribute a.
func (v *variable) textAttr(a string) (string, bool) {
	x, ok := v.attrs[a].(string)
	return x, ok
}

// dimIndex returns the position of dimension d in v, or -1.
func (v *variable) dimIndex(d string) int {
	for i, dd := range v.dims {
		if dd == d {
			return i
		}
	}
	return -1
}

var (
	magicCDF  = []byte("CDF")
	magicHDF5 = []byte("\x89HDF\r\n\x1a\n")
)

// openDataset opens the NetCDF file at path, choosing the reader from
// the file's magic number.
func openDataset(path string) (dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	magic := make([]byte, len(magicHDF5))
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, &FileError{Path: path, Err: err}
	}
	magic = magic[:n]
	switch {
	case bytes.HasPrefix(magic, magicCDF):
		ds, err := openCDF(f)
		if err != nil {
			f.Close()
			return nil, &FileError{Path: path, Err: err}
		}
		return ds, nil
	case bytes.HasPrefix(magic, magicHDF5):
		f.Close()
		ds, err := openNetCDF4(path)
		if err != nil {
			return nil, &FileError{Path: path, Err: err}
		}
		return ds, nil
	default:
		f.Close()
		return nil, &FileError{Path: path, Err: fmt.Errorf("not a NetCDF file")}
	}
}

// attributeNames are the variable attributes that are read from files.
var attributeNames = []string{
	"_FillValue", "missing_value", "scale_factor", "add_offset", "units", "long_name",
}
