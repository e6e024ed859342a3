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
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// writeShp writes geometries of shape type st to a shapefile in a
// temporary directory. No .prj file is written.
func writeShp(t *testing.T, name string, st goshp.ShapeType, geoms ...geom.Geom) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	e, err := shp.NewEncoderFromFields(path, st, goshp.StringField("NAME", 20))
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range geoms {
		if err := e.EncodeFields(g, "x"); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()
	return path
}

func TestLoadBasemap(t *testing.T) {
	coast := writeShp(t, "coast.shp", goshp.POLYLINE,
		geom.MultiLineString{
			{{X: -100, Y: 35}, {X: -95, Y: 35}, {X: -95, Y: 40}},
			{{X: -90, Y: 30}, {X: -85, Y: 30}},
		},
	)
	states := writeShp(t, "states.shp", goshp.POLYGON,
		geom.Polygon{{{X: -100, Y: 30}, {X: -90, Y: 30}, {X: -90, Y: 40}, {X: -100, Y: 30}}},
	)

	b, err := LoadBasemap(coast, states)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Coastlines) != 2 {
		t.Fatalf("coastlines: have %d lines, want 2", len(b.Coastlines))
	}
	if len(b.Coastlines[0]) != 3 || len(b.Coastlines[1]) != 2 {
		t.Errorf("coastline lengths: have %d and %d", len(b.Coastlines[0]), len(b.Coastlines[1]))
	}
	if len(b.States) != 1 {
		t.Fatalf("states: have %d rings, want 1", len(b.States))
	}
	ring := b.States[0]
	if ring[0] != ring[len(ring)-1] {
		t.Error("polygon ring is not closed")
	}

	m, err := newMercator()
	if err != nil {
		t.Fatal(err)
	}
	const tolerance = 1e-3 // meters
	p := b.Coastlines[0][0]
	if want := m.x(-100); math.Abs(p.X-want) > tolerance {
		t.Errorf("x: have %g, want %g", p.X, want)
	}
	if want := m.y(35); math.Abs(p.Y-want) > tolerance {
		t.Errorf("y: have %g, want %g", p.Y, want)
	}
	if want := -100 * math.Pi / 180 * 6378137; math.Abs(p.X-want) > tolerance {
		t.Errorf("x: have %g, want %g", p.X, want)
	}
}

func TestLoadBasemapEmpty(t *testing.T) {
	b, err := LoadBasemap("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Coastlines) != 0 || len(b.States) != 0 {
		t.Errorf("have %d coastlines and %d states, want none", len(b.Coastlines), len(b.States))
	}
}

func TestLoadBasemapMissing(t *testing.T) {
	_, err := LoadBasemap(filepath.Join(t.TempDir(), "missing.shp"), "")
	var fe *FileError
	if !errors.As(err, &fe) {
		t.Errorf("want FileError, have %v", err)
	}
}

func TestPathsOf(t *testing.T) {
	open := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	tests := []struct {
		name string
		g    geom.Geom
		want []int // lengths of the paths
	}{
		{name: "line", g: geom.LineString(open), want: []int{3}},
		{name: "multiline", g: geom.MultiLineString{open, open[:2]}, want: []int{3, 2}},
		{name: "polygon", g: geom.Polygon{open}, want: []int{4}},
		{name: "multipolygon", g: geom.MultiPolygon{{open}, {open, open}}, want: []int{4, 4, 4}},
		{name: "point", g: geom.Point{X: 1, Y: 1}, want: nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			paths := pathsOf(test.g)
			if len(paths) != len(test.want) {
				t.Fatalf("have %d paths, want %d", len(paths), len(test.want))
			}
			for i, p := range paths {
				if len(p) != test.want[i] {
					t.Errorf("path %d: have %d points, want %d", i, len(p), test.want[i])
				}
			}
		})
	}
}

func TestMercator(t *testing.T) {
	m, err := newMercator()
	if err != nil {
		t.Fatal(err)
	}
	for _, lon := range []float64{-179.5, -100, 0, 45.5} {
		if got := m.lon(m.x(lon)); math.Abs(got-lon) > 1e-9 {
			t.Errorf("lon %g: round trip gave %g", lon, got)
		}
	}
	for _, lat := range []float64{-60, 0, 35, 80} {
		if got := m.lat(m.y(lat)); math.Abs(got-lat) > 1e-9 {
			t.Errorf("lat %g: round trip gave %g", lat, got)
		}
	}
	if m.y(90) != m.y(maxMercatorLat) || math.IsInf(m.y(90), 0) {
		t.Error("latitudes beyond the Mercator limit should be clamped")
	}
}
