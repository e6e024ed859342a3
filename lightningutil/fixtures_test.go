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

package lightningutil

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/lightning"
)

// writeRaw writes a raw file with variable name on a 3 × 4 grid with
// 2 days of 24 hours to dir and returns its path. The value at grid
// cell i of hour h is h+i, or the fill sentinel for cell 0 of hour 0.
func writeRaw(t *testing.T, dir, filename, name string) string {
	t.Helper()
	const days, hours = 2, 24
	lons := []float64{-101, -100, -99, -98}
	lats := []float64{30, 31, 32}

	h := cdf.NewHeader(
		[]string{lightning.DaysDim, lightning.HoursDim, lightning.LatitudeVar, lightning.LongitudeVar},
		[]int{days, hours, len(lats), len(lons)})
	h.AddVariable(lightning.LongitudeVar, []string{lightning.LongitudeVar}, []float64{0})
	h.AddVariable(lightning.LatitudeVar, []string{lightning.LatitudeVar}, []float64{0})
	h.AddVariable(name, []string{lightning.DaysDim, lightning.HoursDim, lightning.LatitudeVar, lightning.LongitudeVar}, []float32{0})
	h.AddAttribute(name, "units", "count")
	h.Define()

	data := make([]float32, days*hours*len(lats)*len(lons))
	n := len(lats) * len(lons)
	for i := range data {
		data[i] = float32(i/n + i%n)
	}
	data[0] = float32(lightning.FillSentinel)

	path := filepath.Join(dir, filename)
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []struct {
		name string
		data interface{}
	}{
		{name: lightning.LongitudeVar, data: lons},
		{name: lightning.LatitudeVar, data: lats},
		{name: name, data: data},
	} {
		if _, err := f.Writer(v.name, nil, nil).Write(v.data); err != nil && err != io.EOF {
			t.Fatal(err)
		}
	}
	return path
}

// testConfig returns a configuration that does not log or display
// anything.
func testConfig() *Cfg {
	cfg := InitializeConfig()
	cfg.Log.Out = ioutil.Discard
	cfg.Display = func(string) error { return nil }
	return cfg
}

func quietLog() logrus.FieldLogger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return log
}
