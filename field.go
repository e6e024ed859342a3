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
	"math"
	"strings"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/sparse"
)

// GriddedField holds the values of one physical variable on a
// Longitudes × Latitudes × Datetime grid.
type GriddedField struct {
	// Name is the name of the variable.
	Name string

	// Units are the units of the variable, if the source file
	// specified them.
	Units string

	Longitudes []float64
	Latitudes  []float64
	Datetime   []time.Time

	// Data holds the values with shape
	// [len(Datetime), len(Latitudes), len(Longitudes)].
	// Missing values are NaN.
	Data *sparse.DenseArray

	// Attrs holds the attributes of the source variable.
	Attrs map[string]interface{}
}

// At returns the value at the given time, latitude and longitude indices.
func (f *GriddedField) At(t, lat, lon int) float64 {
	return f.Data.Get(t, lat, lon)
}

// Window is a case-study window: a longitude range, a latitude range
// and a single timestamp. Ranges are inclusive and their bounds may be
// given in either order.
type Window struct {
	Lon, Lat [2]float64
	Time     time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("lon [%g, %g], lat [%g, %g], time %s",
		w.Lon[0], w.Lon[1], w.Lat[0], w.Lat[1], w.Time.Format(TimeLayout))
}

// TimeLayout is the layout of case-study timestamps.
const TimeLayout = "2006-01-02T15:04:05"

// ParseTime parses a case-study timestamp such as "2019-07-05T20:00:00",
// optionally followed by fractional seconds as in
// "2019-07-05T20:00:00.000000000". Timestamps are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("lightning: invalid timestamp %q: %v", s, err)
	}
	return t, nil
}

// TimeIndex returns the index of t on the Datetime axis.
func (f *GriddedField) TimeIndex(t time.Time) (int, error) {
	for i, d := range f.Datetime {
		if d.Equal(t) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("lightning: %s at %s: %w", f.Name, t.Format(TimeLayout), ErrTimeNotFound)
}

// Select returns the part of f that falls within w. The result is a new
// field with a single timestamp; f is not modified. ErrEmptySelection is
// returned if no longitude or no latitude falls within the window and
// ErrTimeNotFound if the window's timestamp is not on the Datetime axis.
func (f *GriddedField) Select(w Window) (*GriddedField, error) {
	ti, err := f.TimeIndex(w.Time)
	if err != nil {
		return nil, err
	}
	return f.subset(w.Lon, w.Lat, []int{ti})
}

// SliceAt returns the part of f at timestamp t.
func (f *GriddedField) SliceAt(t time.Time) (*GriddedField, error) {
	ti, err := f.TimeIndex(t)
	if err != nil {
		return nil, err
	}
	all := [2]float64{math.Inf(-1), math.Inf(1)}
	return f.subset(all, all, []int{ti})
}

// SelectRange returns the part of f within the given longitude and
// latitude ranges for all timestamps.
func (f *GriddedField) SelectRange(lon, lat [2]float64) (*GriddedField, error) {
	ti := make([]int, len(f.Datetime))
	for i := range ti {
		ti[i] = i
	}
	return f.subset(lon, lat, ti)
}

func (f *GriddedField) subset(lon, lat [2]float64, ti []int) (*GriddedField, error) {
	xi := indicesWithin(f.Longitudes, lon)
	if len(xi) == 0 {
		return nil, fmt.Errorf("lightning: %s: no %s in [%g, %g]: %w",
			f.Name, LongitudesCoord, lon[0], lon[1], ErrEmptySelection)
	}
	yi := indicesWithin(f.Latitudes, lat)
	if len(yi) == 0 {
		return nil, fmt.Errorf("lightning: %s: no %s in [%g, %g]: %w",
			f.Name, LatitudesCoord, lat[0], lat[1], ErrEmptySelection)
	}

	o := &GriddedField{
		Name:       f.Name,
		Units:      f.Units,
		Longitudes: make([]float64, len(xi)),
		Latitudes:  make([]float64, len(yi)),
		Datetime:   make([]time.Time, len(ti)),
		Data:       sparse.ZerosDense(len(ti), len(yi), len(xi)),
		Attrs:      make(map[string]interface{}, len(f.Attrs)),
	}
	for k, v := range f.Attrs {
		o.Attrs[k] = v
	}
	for i, x := range xi {
		o.Longitudes[i] = f.Longitudes[x]
	}
	for j, y := range yi {
		o.Latitudes[j] = f.Latitudes[y]
	}
	for k, t := range ti {
		o.Datetime[k] = f.Datetime[t]
		for j, y := range yi {
			for i, x := range xi {
				o.Data.Set(f.Data.Get(t, y, x), k, j, i)
			}
		}
	}
	return o, nil
}

// indicesWithin returns the indices of the coordinates that are within
// r, inclusive, in storage order.
func indicesWithin(coords []float64, r [2]float64) []int {
	lo, hi := math.Min(r[0], r[1]), math.Max(r[0], r[1])
	var o []int
	for i, c := range coords {
		if c >= lo && c <= hi {
			o = append(o, i)
		}
	}
	return o
}

// Equal returns whether f and o have the same name, coordinates and
// values. NaN values are equal to each other.
func (f *GriddedField) Equal(o *GriddedField) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Name != o.Name || f.Units != o.Units {
		return false
	}
	if !bitsEqual(f.Longitudes, o.Longitudes) || !bitsEqual(f.Latitudes, o.Latitudes) {
		return false
	}
	if len(f.Datetime) != len(o.Datetime) {
		return false
	}
	for i, t := range f.Datetime {
		if !t.Equal(o.Datetime[i]) {
			return false
		}
	}
	if len(f.Data.Shape) != len(o.Data.Shape) {
		return false
	}
	for i, s := range f.Data.Shape {
		if o.Data.Shape[i] != s {
			return false
		}
	}
	return bitsEqual(f.Data.Elements, o.Data.Elements)
}

func bitsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if math.Float64bits(v) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}

// FieldStats summarizes the values of a field.
type FieldStats struct {
	// Count is the number of non-missing values and Masked is the
	// number of missing ones.
	Count, Masked int

	Min, Max, Mean, StdDev float64
}

// Stats calculates summary statistics for the non-missing values of f.
// Min, Max, Mean and StdDev are NaN when all values are missing.
func (f *GriddedField) Stats() FieldStats {
	var s stats.Stats
	var masked int
	for _, v := range f.Data.Elements {
		if math.IsNaN(v) {
			masked++
			continue
		}
		s.Update(v)
	}
	o := FieldStats{Count: s.Count(), Masked: masked}
	if o.Count == 0 {
		o.Min, o.Max, o.Mean, o.StdDev = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return o
	}
	o.Min, o.Max, o.Mean = s.Min(), s.Max(), s.Mean()
	o.StdDev = s.PopulationStandardDeviation()
	return o
}

// valueRange returns the minimum and maximum of the non-missing values
// in data. ok is false if all values are missing.
func valueRange(data []float64) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		ok = true
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max, ok
}
