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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// caseStudyFields returns a model field and two observation fields
// on the testField grid.
func caseStudyFields() (model, obs1, obs2 *GriddedField) {
	model = testField()
	obs1 = testField()
	obs1.Name = "flashes"
	obs2 = testField()
	obs2.Name = "groups"
	for i := range obs2.Data.Elements {
		obs2.Data.Elements[i] = math.Mod(obs2.Data.Elements[i], 7)
	}
	return
}

var caseStudyWindow = Window{
	Lon:  [2]float64{-104, -100},
	Lat:  [2]float64{37, 40},
	Time: time.Date(2019, time.July, 5, 20, 0, 0, 0, time.UTC),
}

func quietLog() logrus.FieldLogger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return log
}

func TestCaseStudyPlot(t *testing.T) {
	model, obs1, obs2 := caseStudyFields()
	path := filepath.Join(t.TempDir(), "case.png")
	var shown []string
	display := func(p string) error {
		shown = append(shown, p)
		return nil
	}
	vmax := 120.0
	cfg := PlotConfig{
		VMax:          &vmax,
		Levels1:       []float64{105, 115, 125},
		Label1:        "GLM flashes",
		Label2:        "GLM groups",
		ColorBarLabel: "CAPE (J/kg)",
		Title:         "5 July 2019 20Z",
		SavePath:      path,
	}
	basemap := &Basemap{
		Coastlines: []geom.LineString{{{X: -1.15e7, Y: 4.4e6}, {X: -1.12e7, Y: 4.6e6}}},
	}
	err := CaseStudyPlot(model, obs1, obs2, caseStudyWindow, cfg,
		WithBasemap(basemap), WithDisplayer(display), WithLogger(quietLog()))
	if err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Error("saved figure is empty")
	}
	if len(shown) != 1 || shown[0] != path {
		t.Errorf("displayed %v, want [%s]", shown, path)
	}
}

func TestCaseStudyPlotTemporaryFile(t *testing.T) {
	model, obs1, obs2 := caseStudyFields()
	var shown []string
	display := func(p string) error {
		shown = append(shown, p)
		return nil
	}
	for i := 0; i < 2; i++ {
		err := CaseStudyPlot(model, obs1, obs2, caseStudyWindow, PlotConfig{},
			WithDisplayer(display), WithLogger(quietLog()))
		if err != nil {
			t.Fatal(err)
		}
	}
	if len(shown) != 2 {
		t.Fatalf("displayed %v, want 2 files", shown)
	}
	defer os.Remove(shown[1])
	if filepath.Ext(shown[1]) != ".png" {
		t.Fatalf("displayed %q, want a png file", shown[1])
	}
	if fi, err := os.Stat(shown[1]); err != nil || fi.Size() == 0 {
		t.Errorf("temporary figure: %v", err)
	}
	if _, err := os.Stat(shown[0]); !os.IsNotExist(err) {
		t.Errorf("previous temporary figure %s was not removed", shown[0])
	}
}

func TestCaseStudyPlotVectorFormats(t *testing.T) {
	model, obs1, obs2 := caseStudyFields()
	dir := t.TempDir()
	for _, ext := range []string{".svg", ".pdf", ".eps"} {
		path := filepath.Join(dir, "case"+ext)
		err := CaseStudyPlot(model, obs1, obs2, caseStudyWindow, PlotConfig{SavePath: path},
			WithDisplayer(nil), WithLogger(quietLog()))
		if err != nil {
			t.Errorf("%s: %v", ext, err)
			continue
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Errorf("%s: %v", ext, err)
		}
	}
}

func TestCaseStudyPlotNoDisplay(t *testing.T) {
	model, obs1, obs2 := caseStudyFields()
	err := CaseStudyPlot(model, obs1, obs2, caseStudyWindow, PlotConfig{},
		WithDisplayer(nil), WithLogger(quietLog()))
	if err != nil {
		t.Fatal(err)
	}
}

func TestCaseStudyPlotDisplayError(t *testing.T) {
	model, obs1, obs2 := caseStudyFields()
	want := errors.New("no viewer")
	cfg := PlotConfig{SavePath: filepath.Join(t.TempDir(), "case.svg")}
	err := CaseStudyPlot(model, obs1, obs2, caseStudyWindow, cfg,
		WithDisplayer(func(string) error { return want }), WithLogger(quietLog()))
	if err != want {
		t.Errorf("have %v, want %v", err, want)
	}
}

func TestCaseStudyPlotErrors(t *testing.T) {
	model, obs1, obs2 := caseStudyFields()
	vmin, vmax := 5.0, 1.0
	outside := caseStudyWindow
	outside.Lon = [2]float64{10, 20}
	late := caseStudyWindow
	late.Time = late.Time.Add(24 * time.Hour)
	obsOutside := testField()
	obsOutside.Latitudes = []float64{50, 51, 52, 53}

	tests := []struct {
		name              string
		model, obs1, obs2 *GriddedField
		w                 Window
		cfg               PlotConfig
		err               error
	}{
		{name: "window outside", model: model, obs1: obs1, obs2: obs2, w: outside, err: ErrEmptySelection},
		{name: "time missing", model: model, obs1: obs1, obs2: obs2, w: late, err: ErrTimeNotFound},
		{name: "obs outside", model: model, obs1: obs1, obs2: obsOutside, w: caseStudyWindow, err: ErrEmptySelection},
		{name: "colormap", model: model, obs1: obs1, obs2: obs2, w: caseStudyWindow,
			cfg: PlotConfig{ColorMap: "jet"}, err: ErrUnknownColorMap},
		{name: "color", model: model, obs1: obs1, obs2: obs2, w: caseStudyWindow,
			cfg: PlotConfig{Color2: "nocolor"}, err: ErrUnknownColor},
		{name: "format", model: model, obs1: obs1, obs2: obs2, w: caseStudyWindow,
			cfg: PlotConfig{SavePath: filepath.Join(t.TempDir(), "case.bmp")}, err: ErrUnsupportedFormat},
		{name: "limits", model: model, obs1: obs1, obs2: obs2, w: caseStudyWindow,
			cfg: PlotConfig{VMin: &vmin, VMax: &vmax}},
		{name: "nil field", model: model, obs1: nil, obs2: obs2, w: caseStudyWindow},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := CaseStudyPlot(test.model, test.obs1, test.obs2, test.w, test.cfg,
				WithDisplayer(nil), WithLogger(quietLog()))
			if err == nil {
				t.Fatal("want an error")
			}
			if test.err != nil && !errors.Is(err, test.err) {
				t.Errorf("want %v, have %v", test.err, err)
			}
		})
	}
	if _, err := os.Stat(tests[5].cfg.SavePath); !os.IsNotExist(err) {
		t.Error("a file with an unsupported format should not be left behind")
	}
}

func TestFigureFormats(t *testing.T) {
	model, obs1, obs2 := caseStudyFields()
	fig, err := NewCaseStudyFigure(model, obs1, obs2, caseStudyWindow, PlotConfig{DPI: 72}, WithLogger(quietLog()))
	if err != nil {
		t.Fatal(err)
	}
	w, h := fig.Size()
	if w != DefaultWidth || h <= 0 {
		t.Errorf("size: %v × %v", w, h)
	}
	for _, format := range []string{"png", "jpg", "tiff", "svg", "pdf", "eps"} {
		var b bytes.Buffer
		if err := fig.Encode(&b, format); err != nil {
			t.Errorf("%s: %v", format, err)
			continue
		}
		if b.Len() == 0 {
			t.Errorf("%s: empty output", format)
		}
	}
	if err := fig.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fig.Encode(ioutil.Discard, "png"); err == nil {
		t.Error("writing a closed figure should fail")
	}
	if err := fig.Close(); err != nil {
		t.Error("closing twice should not fail")
	}
}

// A window with a single grid cell and constant values still plots.
func TestCaseStudyPlotSingleCell(t *testing.T) {
	model, obs1, obs2 := caseStudyFields()
	w := caseStudyWindow
	w.Lon = [2]float64{-102, -102}
	w.Lat = [2]float64{38, 38}
	err := CaseStudyPlot(model, obs1, obs2, w, PlotConfig{}, WithDisplayer(nil), WithLogger(quietLog()))
	if err != nil {
		t.Fatal(err)
	}
}

func TestAutoLevels(t *testing.T) {
	levels := autoLevels([]float64{0.5, math.NaN(), 9.5})
	if len(levels) == 0 {
		t.Fatal("no levels")
	}
	for i, l := range levels {
		if l <= 0.5 || l >= 9.5 {
			t.Errorf("level %g is outside the data range", l)
		}
		if i > 0 && l <= levels[i-1] {
			t.Errorf("levels are not increasing: %v", levels)
		}
	}
	if l := autoLevels([]float64{3, 3}); l != nil {
		t.Errorf("constant data: have %v, want none", l)
	}
	if l := autoLevels([]float64{math.NaN()}); l != nil {
		t.Errorf("missing data: have %v, want none", l)
	}
}

func TestCellEdges(t *testing.T) {
	e := cellEdges([]float64{0, 1, 3})
	want := []float64{-0.5, 0.5, 2, 4}
	for i := range want {
		if e[i] != want[i] {
			t.Errorf("have %v, want %v", e, want)
			break
		}
	}
	if e := cellEdges([]float64{40, 39}); e[0] != 40.5 || e[2] != 38.5 {
		t.Errorf("descending: have %v", e)
	}
}

func TestDegreeTicks(t *testing.T) {
	d := degreeTicks{neg: "W", pos: "E"}
	for _, test := range []struct {
		v    float64
		want string
	}{
		{v: -100, want: "100°W"},
		{v: 12.5, want: "12.5°E"},
		{v: 0, want: "0°"},
	} {
		if got := d.format(test.v); got != test.want {
			t.Errorf("%g: have %q, want %q", test.v, got, test.want)
		}
	}
}

// gridField returns a single-timestamp field on a 1° grid with
// nx longitudes and ny latitudes, where the value at column c and row
// r is z(c, r).
func gridField(nx, ny int, z func(c, r int) float64) *GriddedField {
	f := &GriddedField{
		Name:     "flashes",
		Datetime: []time.Time{caseStudyWindow.Time},
		Data:     sparse.ZerosDense(1, ny, nx),
	}
	for c := 0; c < nx; c++ {
		f.Longitudes = append(f.Longitudes, -104+float64(c))
	}
	for r := 0; r < ny; r++ {
		f.Latitudes = append(f.Latitudes, 36+float64(r))
	}
	for r := 0; r < ny; r++ {
		for c := 0; c < nx; c++ {
			f.Data.Set(z(c, r), 0, r, c)
		}
	}
	return f
}

func testContourGrid(t *testing.T, f *GriddedField) *contourGrid {
	t.Helper()
	m, err := newMercator()
	if err != nil {
		t.Fatal(err)
	}
	return newContourGrid(f, m)
}

func TestContourClosed(t *testing.T) {
	g := testContourGrid(t, gridField(5, 5, func(c, r int) float64 {
		if c == 2 && r == 2 {
			return 10
		}
		return 0
	}))
	paths := g.contour(5)
	if len(paths) != 1 {
		t.Fatalf("have %d paths, want 1", len(paths))
	}
	p := paths[0]
	if len(p) != 5 {
		t.Errorf("have %d points, want 5", len(p))
	}
	if p[0] != p[len(p)-1] {
		t.Errorf("path is not closed: %v", p)
	}
	if n := len(g.rowCrossings(5)); n != 2 {
		t.Errorf("have %d row crossings, want 2", n)
	}
}

// A missing value inside a region above the level is not outlined.
func TestContourMissingCell(t *testing.T) {
	g := testContourGrid(t, gridField(5, 5, func(c, r int) float64 {
		if c == 2 && r == 2 {
			return math.NaN()
		}
		return 5
	}))
	if paths := g.contour(1.25); len(paths) != 0 {
		t.Errorf("have %d paths, want none", len(paths))
	}
	if p := g.rowCrossings(1.25); len(p) != 0 {
		t.Errorf("have label positions %v, want none", p)
	}
}

// A contour that runs into missing data is split at the gap.
func TestContourGap(t *testing.T) {
	g := testContourGrid(t, gridField(5, 5, func(c, r int) float64 {
		if c == 2 && r == 2 {
			return math.NaN()
		}
		return float64(c)
	}))
	paths := g.contour(1.5)
	if len(paths) != 2 {
		t.Fatalf("have %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		if len(p) != 2 {
			t.Errorf("have %d points, want 2", len(p))
		}
	}
	if n := len(g.rowCrossings(1.5)); n != 4 {
		t.Errorf("have %d row crossings, want 4", n)
	}
}

// Missing values produce no contour labels in a finished figure.
func TestCaseStudyPlotMissingObservation(t *testing.T) {
	model, _, obs2 := caseStudyFields()
	obs1 := testField()
	obs1.Name = "flashes"
	for i := range obs1.Data.Elements {
		obs1.Data.Elements[i] = 5
	}
	obs1.Data.Set(math.NaN(), 1, 1, 2)
	cfg := PlotConfig{Levels1: []float64{1.25}, SavePath: filepath.Join(t.TempDir(), "case.svg")}
	err := CaseStudyPlot(model, obs1, obs2, caseStudyWindow, cfg, WithDisplayer(nil), WithLogger(quietLog()))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(cfg.SavePath)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(b, []byte(">1.25<")) {
		t.Error("figure has a contour label around a missing value")
	}
}
