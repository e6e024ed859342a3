//go:build netcdf
// +build netcdf

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

	"github.com/fhs/go-netcdf/netcdf"
)

// netCDF4Dataset reads NetCDF-4 (HDF5) files through the NetCDF C library.
type netCDF4Dataset struct {
	nc netcdf.Dataset
}

func openNetCDF4(path string) (dataset, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, err
	}
	return &netCDF4Dataset{nc: nc}, nil
}

func (d *netCDF4Dataset) Close() error { return d.nc.Close() }

func (d *netCDF4Dataset) HasVariable(v string) bool {
	_, err := d.nc.Var(v)
	return err == nil
}

func (d *netCDF4Dataset) DimLength(name string) (int, error) {
	dim, err := d.nc.Dim(name)
	if err != nil {
		return 0, errNotFound
	}
	n, err := dim.Len()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (d *netCDF4Dataset) Variable(name string) (*variable, error) {
	nv, err := d.nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, errNotFound)
	}
	dims, err := nv.Dims()
	if err != nil {
		return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, err)
	}
	v := &variable{
		name:  name,
		dims:  make([]string, len(dims)),
		shape: make([]int, len(dims)),
		attrs: make(map[string]interface{}),
	}
	n := 1
	for i, dim := range dims {
		if v.dims[i], err = dim.Name(); err != nil {
			return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, err)
		}
		l, err := dim.Len()
		if err != nil {
			return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, err)
		}
		v.shape[i] = int(l)
		n *= int(l)
	}
	for _, a := range attributeNames {
		if val, ok := netCDF4Attribute(nv.Attr(a)); ok {
			v.attrs[a] = val
		}
	}

	t, err := nv.Type()
	if err != nil {
		return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, err)
	}
	v.values = make([]float64, n)
	switch t {
	case netcdf.FLOAT:
		v.single = true
		buf := make([]float32, n)
		err = nv.ReadFloat32s(buf)
		for i, x := range buf {
			v.values[i] = float64(x)
		}
	case netcdf.DOUBLE:
		err = nv.ReadFloat64s(v.values)
	case netcdf.INT:
		buf := make([]int32, n)
		err = nv.ReadInt32s(buf)
		for i, x := range buf {
			v.values[i] = float64(x)
		}
	case netcdf.SHORT:
		buf := make([]int16, n)
		err = nv.ReadInt16s(buf)
		for i, x := range buf {
			v.values[i] = float64(x)
		}
	default:
		return nil, fmt.Errorf("lightning: reading netcdf variable %s: unsupported type %v", name, t)
	}
	if err != nil {
		return nil, fmt.Errorf("lightning: reading netcdf variable %s: %v", name, err)
	}
	return v, nil
}

// netCDF4Attribute reads a numeric or text attribute.
func netCDF4Attribute(a netcdf.Attr) (interface{}, bool) {
	if a == (netcdf.Attr{}) {
		return nil, false
	}
	n, err := a.Len()
	if err != nil || n == 0 {
		return nil, false
	}
	t, err := a.Type()
	if err != nil {
		return nil, false
	}
	switch t {
	case netcdf.CHAR:
		buf := make([]byte, n)
		if err := a.ReadBytes(buf); err != nil {
			return nil, false
		}
		return string(buf), true
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if err := a.ReadFloat64s(buf); err != nil {
			return nil, false
		}
		return buf, true
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err := a.ReadFloat32s(buf); err != nil {
			return nil, false
		}
		return toFloat64s(buf), true
	case netcdf.INT:
		buf := make([]int32, n)
		if err := a.ReadInt32s(buf); err != nil {
			return nil, false
		}
		return toFloat64s(buf), true
	case netcdf.SHORT:
		buf := make([]int16, n)
		if err := a.ReadInt16s(buf); err != nil {
			return nil, false
		}
		return toFloat64s(buf), true
	}
	return nil, false
}
