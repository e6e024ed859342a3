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
	"image/color"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default Natural Earth basemap layers.
const (
	DefaultCoastlines = "https://naturalearth.s3.amazonaws.com/110m_physical/ne_110m_coastline.zip"
	DefaultStates     = "https://naturalearth.s3.amazonaws.com/110m_cultural/ne_110m_admin_1_states_provinces_lakes.zip"
)

// Basemap holds coastline and state boundary lines in Mercator
// coordinates.
type Basemap struct {
	Coastlines []geom.LineString
	States     []geom.LineString
}

// LoadBasemap reads coastlines and state boundaries from shapefiles.
// Either path may be empty, in which case that layer is left empty.
// Shapefiles without a .prj file are assumed to be in longitude and
// latitude.
func LoadBasemap(coastlines, states string) (*Basemap, error) {
	m, err := newMercator()
	if err != nil {
		return nil, err
	}
	b := new(Basemap)
	if coastlines != "" {
		if b.Coastlines, err = readLines(coastlines, m); err != nil {
			return nil, err
		}
	}
	if states != "" {
		if b.States, err = readLines(states, m); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// readLines reads the lines and polygon rings in a shapefile and
// projects them to Mercator.
func readLines(filename string, m *mercator) ([]geom.LineString, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}
	defer d.Close()

	sr, err := d.SR()
	if err != nil {
		sr = m.longLat
	}
	ct, err := sr.NewTransform(m.sr)
	if err != nil {
		return nil, fmt.Errorf("lightning: basemap %s: %v", filename, err)
	}
	longLat := sr.Name == m.longLat.Name

	var lines []geom.LineString
	for {
		var rec struct {
			geom.Geom
		}
		if more := d.DecodeRow(&rec); !more {
			break
		}
		for _, l := range pathsOf(rec.Geom) {
			pl, err := projectLine(l, ct, longLat)
			if err != nil {
				return nil, fmt.Errorf("lightning: basemap %s: %v", filename, err)
			}
			lines = append(lines, pl)
		}
	}
	if err := d.Error(); err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}
	return lines, nil
}

// pathsOf returns the lines making up g. Polygons contribute their rings.
func pathsOf(g geom.Geom) []geom.LineString {
	switch t := g.(type) {
	case geom.LineString:
		return []geom.LineString{t}
	case geom.MultiLineString:
		return t
	case geom.Polygon:
		o := make([]geom.LineString, len(t))
		for i, r := range t {
			o[i] = closeRing(r)
		}
		return o
	case geom.MultiPolygon:
		var o []geom.LineString
		for _, p := range t {
			o = append(o, pathsOf(p)...)
		}
		return o
	}
	return nil
}

func closeRing(r []geom.Point) geom.LineString {
	if len(r) > 1 && r[0] != r[len(r)-1] {
		r = append(r[:len(r):len(r)], r[0])
	}
	return geom.LineString(r)
}

func projectLine(l geom.LineString, ct proj.Transformer, longLat bool) (geom.LineString, error) {
	o := make(geom.LineString, len(l))
	for i, p := range l {
		y := p.Y
		if longLat {
			y = clampLat(y)
		}
		x, y, err := ct(p.X, y)
		if err != nil {
			return nil, err
		}
		o[i] = geom.Point{X: x, Y: y}
	}
	return o, nil
}

// basemapLines draws lines clipped to the plot area. It does not
// affect the plot's data range.
type basemapLines struct {
	lines []geom.LineString
	draw.LineStyle
}

func newBasemapLines(lines []geom.LineString) *basemapLines {
	return &basemapLines{
		lines: lines,
		LineStyle: draw.LineStyle{
			Color: color.Black,
			Width: vg.Points(0.5),
		},
	}
}

func (b *basemapLines) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	xmin, xmax := plt.X.Min, plt.X.Max
	ymin, ymax := plt.Y.Min, plt.Y.Max
	for _, l := range b.lines {
		bb := l.Bounds()
		if bb.Max.X < xmin || bb.Min.X > xmax || bb.Max.Y < ymin || bb.Min.Y > ymax {
			continue
		}
		pts := make([]vg.Point, len(l))
		for i, p := range l {
			pts[i] = vg.Point{X: trX(p.X), Y: trY(p.Y)}
		}
		c.StrokeLines(b.LineStyle, c.ClipLinesXY(pts)...)
	}
}
