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
	"io"
	"math"
	"os"
	"time"

	"github.com/ctessum/cdf"
)

// datetimeUnits are the CF-convention units of the Datetime variable in
// preprocessed files.
const datetimeUnits = "hours since 1970-01-01 00:00:00"

var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteNCF writes f to w in NetCDF format so that it can be read
// back by ReadNCF or OpenField instead of preprocessing the raw file
// again.
func (f *GriddedField) WriteNCF(w *os.File) error {
	h := cdf.NewHeader(
		[]string{DatetimeCoord, LatitudesCoord, LongitudesCoord},
		[]int{len(f.Datetime), len(f.Latitudes), len(f.Longitudes)})
	h.AddVariable(LongitudesCoord, []string{LongitudesCoord}, []float64{0})
	h.AddAttribute(LongitudesCoord, "units", "degrees_east")
	h.AddVariable(LatitudesCoord, []string{LatitudesCoord}, []float64{0})
	h.AddAttribute(LatitudesCoord, "units", "degrees_north")
	h.AddVariable(DatetimeCoord, []string{DatetimeCoord}, []float64{0})
	h.AddAttribute(DatetimeCoord, "units", datetimeUnits)
	h.AddVariable(f.Name, []string{DatetimeCoord, LatitudesCoord, LongitudesCoord}, []float64{0})
	if f.Units != "" {
		h.AddAttribute(f.Name, "units", f.Units)
	}
	if ln, ok := f.Attrs["long_name"].(string); ok {
		h.AddAttribute(f.Name, "long_name", ln)
	}
	h.AddAttribute(f.Name, "missing_value", []float64{math.NaN()})
	h.Define()

	ff, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("lightning: writing netcdf header: %v", err)
	}

	hours := make([]float64, len(f.Datetime))
	for i, t := range f.Datetime {
		hours[i] = t.Sub(epoch).Hours()
	}
	for _, v := range []struct {
		name string
		data []float64
	}{
		{name: LongitudesCoord, data: f.Longitudes},
		{name: LatitudesCoord, data: f.Latitudes},
		{name: DatetimeCoord, data: hours},
		{name: f.Name, data: f.Data.Elements},
	} {
		if err := writeNCF(ff, v.name, v.data); err != nil {
			return err
		}
	}
	return nil
}

// writeNCF writes all of data to the variable name. The cdf writer
// returns io.EOF once the variable is full, which is success here.
func writeNCF(f *cdf.File, name string, data []float64) error {
	if _, err := f.Writer(name, nil, nil).Write(data); err != nil && err != io.EOF {
		return fmt.Errorf("lightning: writing netcdf variable %s: %v", name, err)
	}
	return nil
}

// ReadNCF reads a field written by WriteNCF. The first of the
// candidate variables present in the file is read; if candidates is
// empty, the only non-coordinate variable is read.
func ReadNCF(filename string, candidates []string) (*GriddedField, error) {
	ds, err := openDataset(filename)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	return readPreprocessed(filename, ds, candidates)
}

func readPreprocessed(filename string, ds dataset, candidates []string) (*GriddedField, error) {
	name, err := resolveVariable(ds.HasVariable, candidates)
	if err != nil {
		if len(candidates) != 0 {
			return nil, err
		}
		if name, err = dataVariable(filename, ds); err != nil {
			return nil, err
		}
	}

	coords := make(map[string]*variable)
	for _, c := range []string{LongitudesCoord, LatitudesCoord, DatetimeCoord} {
		if coords[c], err = coordinate(filename, ds, c); err != nil {
			return nil, err
		}
	}
	v, err := ds.Variable(name)
	if err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}
	data, err := reorder(filename, v, []string{
		coords[DatetimeCoord].dims[0], coords[LatitudesCoord].dims[0], coords[LongitudesCoord].dims[0],
	})
	if err != nil {
		return nil, err
	}

	f := &GriddedField{
		Name:       name,
		Longitudes: coords[LongitudesCoord].values,
		Latitudes:  coords[LatitudesCoord].values,
		Datetime:   make([]time.Time, len(coords[DatetimeCoord].values)),
		Data:       data,
		Attrs:      map[string]interface{}{"missing_value": math.NaN()},
	}
	for i, h := range coords[DatetimeCoord].values {
		f.Datetime[i] = epoch.Add(time.Duration(math.Round(h * float64(time.Hour))))
	}
	if u, ok := v.textAttr("units"); ok {
		f.Units = u
		f.Attrs["units"] = u
	}
	if ln, ok := v.textAttr("long_name"); ok {
		f.Attrs["long_name"] = ln
	}
	return f, nil
}

// dataVariable returns the name of the only variable in a preprocessed
// file that is not a coordinate.
func dataVariable(filename string, ds dataset) (string, error) {
	var found []string
	for _, c := range KnownVariables {
		if ds.HasVariable(c) {
			found = append(found, c)
		}
	}
	if len(found) != 1 {
		return "", &StructuralError{Path: filename,
			Reason: fmt.Sprintf("found %d known variables %v; specify which to read", len(found), found)}
	}
	return found[0], nil
}
