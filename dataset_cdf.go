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
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// cdfDataset reads classic and 64-bit offset NetCDF files.
type cdfDataset struct {
	f  *os.File
	ff *cdf.File
}

func openCDF(f *os.File) (*cdfDataset, error) {
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, err
	}
	return &cdfDataset{f: f, ff: ff}, nil
}

func (d *cdfDataset) Close() error { return d.f.Close() }

func (d *cdfDataset) HasVariable(v string) bool {
	return d.ff.Header.Lengths(v) != nil
}

func (d *cdfDataset) DimLength(name string) (int, error) {
	lengths := d.ff.Header.Lengths("")
	for i, dim := range d.ff.Header.Dimensions("") {
		if dim != name {
			continue
		}
		if lengths[i] == 0 { // record dimension
			return d.numRecs()
		}
		return lengths[i], nil
	}
	return 0, errNotFound
}

// numRecs returns the number of records in the file.
func (d *cdfDataset) numRecs() (int, error) {
	fi, err := d.f.Stat()
	if err != nil {
		return 0, err
	}
	return int(d.ff.Header.NumRecs(fi.Size())), nil
}

func (d *cdfDataset) Variable(name string) (*variable, error) {
	h := d.ff.Header
	lengths := h.Lengths(name)
	if lengths == nil {
		return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, errNotFound)
	}
	v := &variable{
		name:  name,
		dims:  h.Dimensions(name),
		shape: append([]int{}, lengths...),
		attrs: make(map[string]interface{}),
	}
	if h.IsRecordVariable(name) {
		nrec, err := d.numRecs()
		if err != nil {
			return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, err)
		}
		v.shape[0] = nrec
	}

	n := 1
	for _, l := range v.shape {
		n *= l
	}
	v.values = make([]float64, n)

	for _, a := range attributeNames {
		switch val := h.GetAttribute(name, a).(type) {
		case string:
			v.attrs[a] = val
		case nil:
		default:
			v.attrs[a] = toFloat64s(val)
		}
	}

	if n == 0 {
		return v, nil
	}

	// The end index is the inclusive last element.
	start, end := make([]int, len(v.shape)), make([]int, len(v.shape))
	for i, l := range v.shape {
		end[i] = l - 1
	}
	r := d.ff.Reader(name, start, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, err)
	}
	switch b := buf.(type) {
	case []float32:
		v.single = true
		for i, val := range b {
			v.values[i] = float64(val)
		}
	case []float64:
		copy(v.values, b)
	case []int32:
		for i, val := range b {
			v.values[i] = float64(val)
		}
	case []int16:
		for i, val := range b {
			v.values[i] = float64(val)
		}
	case []uint8:
		for i, val := range b {
			v.values[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("lightning: reading netcdf variable %s: unsupported type %T", name, buf)
	}
	return v, nil
}

// toFloat64s converts a numeric NetCDF attribute value to []float64.
func toFloat64s(val interface{}) []float64 {
	var o []float64
	switch a := val.(type) {
	case []float64:
		o = append(o, a...)
	case []float32:
		for _, x := range a {
			o = append(o, float64(x))
		}
	case []int32:
		for _, x := range a {
			o = append(o, float64(x))
		}
	case []int16:
		for _, x := range a {
			o = append(o, float64(x))
		}
	case []uint8:
		for _, x := range a {
			o = append(o, float64(x))
		}
	}
	return o
}
