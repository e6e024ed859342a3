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
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
)

// ncVar is a variable in a test NetCDF file. data must be a []float32
// or []float64 in the order of dims.
type ncVar struct {
	name  string
	dims  []string
	data  interface{}
	attrs map[string]interface{}
}

// writeCDF creates a classic NetCDF file at path.
func writeCDF(t *testing.T, path string, dims []string, lengths []int, vars []ncVar) {
	t.Helper()
	h := cdf.NewHeader(dims, lengths)
	for _, v := range vars {
		h.AddVariable(v.name, v.dims, v.data)
		for k, a := range v.attrs {
			h.AddAttribute(v.name, k, a)
		}
	}
	h.Define()
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vars {
		if _, err := f.Writer(v.name, nil, nil).Write(v.data); err != nil && err != io.EOF {
			t.Fatalf("writing %s: %v", v.name, err)
		}
	}
}

// Dimensions of the standard test file.
const (
	testDays  = 2
	testHours = 3
)

var (
	testLons = []float64{-100, -99, -98}
	testLats = []float64{30, 31}
)

// testValues returns the values of the standard test variable in
// [Days, Hours, latitude, longitude] order. Element i is i, except
// that elements 1 and 7 are FillSentinel.
func testValues() []float32 {
	v := make([]float32, testDays*testHours*len(testLats)*len(testLons))
	for i := range v {
		v[i] = float32(i)
	}
	v[1] = float32(FillSentinel)
	v[7] = float32(FillSentinel)
	return v
}

// writeRaw writes a raw GLM-style file named name in a temporary
// directory and returns its path. The file holds the variable flashes
// with dimensions Days, Hours, latitude and longitude.
func writeRaw(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeCDF(t, path,
		[]string{DaysDim, HoursDim, LatitudeVar, LongitudeVar},
		[]int{testDays, testHours, len(testLats), len(testLons)},
		[]ncVar{
			{name: LongitudeVar, dims: []string{LongitudeVar}, data: testLons},
			{name: LatitudeVar, dims: []string{LatitudeVar}, data: testLats},
			{
				name: "flashes",
				dims: []string{DaysDim, HoursDim, LatitudeVar, LongitudeVar},
				data: testValues(),
				attrs: map[string]interface{}{
					"units":     "count",
					"long_name": "flash count",
				},
			},
		})
	return path
}
