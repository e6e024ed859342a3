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
	"image/color"
	"math"
	"sort"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// cellEdges returns the boundaries of the cells centered on c. Interior
// edges are halfway between neighboring centers and the outer edges are
// extrapolated.
func cellEdges(c []float64) []float64 {
	n := len(c)
	e := make([]float64, n+1)
	if n == 1 {
		e[0], e[1] = c[0]-0.5, c[0]+0.5
		return e
	}
	for i := 1; i < n; i++ {
		e[i] = (c[i-1] + c[i]) / 2
	}
	e[0] = c[0] - (e[1] - c[0])
	e[n] = c[n-1] + (c[n-1] - e[n-1])
	return e
}

// mesh is a pseudocolor plot of one timestamp of a field. Cells with
// missing values are not drawn.
type mesh struct {
	x, y  []float64 // projected cell edges
	z     *sparse.DenseArray
	color func(float64) color.Color
}

func newMesh(f *GriddedField, m *mercator, c func(float64) color.Color) *mesh {
	xe, ye := cellEdges(f.Longitudes), cellEdges(f.Latitudes)
	o := &mesh{
		x:     make([]float64, len(xe)),
		y:     make([]float64, len(ye)),
		z:     f.Data,
		color: c,
	}
	for i, lon := range xe {
		o.x[i] = m.x(lon)
	}
	for j, lat := range ye {
		o.y[j] = m.y(lat)
	}
	return o
}

func (m *mesh) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for j := 0; j < len(m.y)-1; j++ {
		y0, y1 := trY(m.y[j]), trY(m.y[j+1])
		for i := 0; i < len(m.x)-1; i++ {
			v := m.z.Get(0, j, i)
			if math.IsNaN(v) {
				continue
			}
			x0, x1 := trX(m.x[i]), trX(m.x[i+1])
			pts := []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
			c.FillPolygon(m.color(v), c.ClipPolygonXY(pts))
		}
	}
}

func (m *mesh) DataRange() (xmin, xmax, ymin, ymax float64) {
	return floats.Min(m.x), floats.Max(m.x), floats.Min(m.y), floats.Max(m.y)
}

// contourGrid presents one timestamp of a field as a grid in projected
// coordinates, with both axes ascending. Missing values are NaN.
type contourGrid struct {
	x, y   []float64
	xi, yi []int
	z      *sparse.DenseArray
}

func newContourGrid(f *GriddedField, m *mercator) *contourGrid {
	g := &contourGrid{z: f.Data}
	g.xi, g.x = ascending(f.Longitudes, m.x)
	g.yi, g.y = ascending(f.Latitudes, m.y)
	return g
}

// ascending returns the indices that sort c and the sorted, transformed
// values.
func ascending(c []float64, tr func(float64) float64) ([]int, []float64) {
	idx := make([]int, len(c))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return c[idx[i]] < c[idx[j]] })
	v := make([]float64, len(c))
	for i, ix := range idx {
		v[i] = tr(c[ix])
	}
	return idx, v
}

func (g *contourGrid) Dims() (c, r int)   { return len(g.x), len(g.y) }
func (g *contourGrid) Z(c, r int) float64 { return g.z.Get(0, g.yi[r], g.xi[c]) }

// gridEdge is the edge between node (c, r) and node (c+1, r), or node
// (c, r+1) if vert is true.
type gridEdge struct {
	c, r int
	vert bool
}

// crossing returns the point where level lev crosses e. It returns
// false if lev does not cross e or either end of e is missing.
func (g *contourGrid) crossing(e gridEdge, lev float64) (geom.Point, bool) {
	c1, r1 := e.c+1, e.r
	if e.vert {
		c1, r1 = e.c, e.r+1
	}
	z0, z1 := g.Z(e.c, e.r), g.Z(c1, r1)
	if math.IsNaN(z0) || math.IsNaN(z1) || (z0 < lev) == (z1 < lev) {
		return geom.Point{}, false
	}
	f := (lev - z0) / (z1 - z0)
	return geom.Point{
		X: g.x[e.c] + f*(g.x[c1]-g.x[e.c]),
		Y: g.y[e.r] + f*(g.y[r1]-g.y[e.r]),
	}, true
}

// contour returns the paths of level lev through the grid, found with
// marching squares. Cells with a missing corner are skipped, so
// contours stop at missing data. Closed paths end at their first point.
func (g *contourGrid) contour(lev float64) [][]geom.Point {
	nc, nr := g.Dims()
	var segs [][2]gridEdge
	for r := 0; r+1 < nr; r++ {
		for c := 0; c+1 < nc; c++ {
			z := [4]float64{g.Z(c, r), g.Z(c+1, r), g.Z(c+1, r+1), g.Z(c, r+1)}
			if math.IsNaN(z[0]) || math.IsNaN(z[1]) || math.IsNaN(z[2]) || math.IsNaN(z[3]) {
				continue
			}
			// Bottom, right, top, left.
			var cut []gridEdge
			for _, e := range [4]gridEdge{{c: c, r: r}, {c: c + 1, r: r, vert: true}, {c: c, r: r + 1}, {c: c, r: r, vert: true}} {
				if _, ok := g.crossing(e, lev); ok {
					cut = append(cut, e)
				}
			}
			switch len(cut) {
			case 2:
				segs = append(segs, [2]gridEdge{cut[0], cut[1]})
			case 4:
				// Saddle. The mean of the corners decides whether the
				// lower left and upper right corners are connected.
				mean := (z[0] + z[1] + z[2] + z[3]) / 4
				if (mean < lev) == (z[0] < lev) {
					segs = append(segs, [2]gridEdge{cut[0], cut[1]}, [2]gridEdge{cut[2], cut[3]})
				} else {
					segs = append(segs, [2]gridEdge{cut[0], cut[3]}, [2]gridEdge{cut[1], cut[2]})
				}
			}
		}
	}
	return g.join(segs, lev)
}

// join links segments that share an edge into paths.
func (g *contourGrid) join(segs [][2]gridEdge, lev float64) [][]geom.Point {
	at := make(map[gridEdge][]int)
	for i, s := range segs {
		at[s[0]] = append(at[s[0]], i)
		at[s[1]] = append(at[s[1]], i)
	}
	used := make([]bool, len(segs))
	next := func(e gridEdge) (gridEdge, bool) {
		for _, i := range at[e] {
			if used[i] {
				continue
			}
			used[i] = true
			if segs[i][0] == e {
				return segs[i][1], true
			}
			return segs[i][0], true
		}
		return gridEdge{}, false
	}

	var paths [][]geom.Point
	for i, s := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		fwd := []gridEdge{s[0], s[1]}
		for e, ok := next(s[1]); ok; e, ok = next(e) {
			fwd = append(fwd, e)
		}
		var back []gridEdge
		for e, ok := next(s[0]); ok; e, ok = next(e) {
			back = append(back, e)
		}
		edges := make([]gridEdge, 0, len(back)+len(fwd))
		for j := len(back) - 1; j >= 0; j-- {
			edges = append(edges, back[j])
		}
		edges = append(edges, fwd...)

		path := make([]geom.Point, len(edges))
		for j, e := range edges {
			path[j], _ = g.crossing(e, lev)
		}
		paths = append(paths, path)
	}
	return paths
}

// rowCrossings returns the points where level lev crosses the rows of
// the grid between two values that are not missing.
func (g *contourGrid) rowCrossings(lev float64) []geom.Point {
	nc, nr := g.Dims()
	var o []geom.Point
	for r := 0; r < nr; r++ {
		for c := 0; c+1 < nc; c++ {
			if p, ok := g.crossing(gridEdge{c: c, r: r}, lev); ok {
				o = append(o, p)
			}
		}
	}
	return o
}

// contourLines draws the contours of a grid at each level.
type contourLines struct {
	grid   *contourGrid
	levels []float64
	style  draw.LineStyle
}

func (l *contourLines) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, lev := range l.levels {
		for _, path := range l.grid.contour(lev) {
			line := make([]vg.Point, len(path))
			for i, p := range path {
				line[i] = vg.Point{X: trX(p.X), Y: trY(p.Y)}
			}
			c.StrokeLines(l.style, c.ClipLinesXY(line)...)
		}
	}
}

// autoLevels chooses contour levels for data: the major ticks of the
// data range that fall strictly inside it.
func autoLevels(data []float64) []float64 {
	min, max, ok := valueRange(data)
	if !ok || min == max {
		return nil
	}
	var o []float64
	for _, t := range (plot.DefaultTicks{}).Ticks(min, max) {
		if t.Label == "" || t.Value <= min || t.Value >= max {
			continue
		}
		o = append(o, t.Value)
	}
	return o
}

// contourLabels writes the value of each contour level next to the
// places where the contour crosses rows of the grid, keeping labels of
// the same level apart.
type contourLabels struct {
	grid   *contourGrid
	levels []float64
	draw.TextStyle
}

func (l *contourLabels) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	minDist := (c.Max.X - c.Min.X) / 6
	for _, lev := range l.levels {
		label := strconv.FormatFloat(lev, 'g', -1, 64)
		var placed []vg.Point
		for _, p := range l.grid.rowCrossings(lev) {
			pt := vg.Point{X: trX(p.X), Y: trY(p.Y)}
			if !c.Contains(pt) || near(pt, placed, minDist) {
				continue
			}
			placed = append(placed, pt)
			c.FillText(l.TextStyle, pt, label)
		}
	}
}

func near(p vg.Point, others []vg.Point, d vg.Length) bool {
	for _, o := range others {
		if math.Hypot(float64(p.X-o.X), float64(p.Y-o.Y)) < float64(d) {
			return true
		}
	}
	return false
}

// legendEntry is a line sample and its label.
type legendEntry struct {
	label string
	style draw.LineStyle
}

// legendBox draws an opaque legend in the upper right corner of the
// plot area.
type legendBox struct {
	entries []legendEntry
	face    color.Color
	text    draw.TextStyle
}

func (l *legendBox) Plot(c draw.Canvas, _ *plot.Plot) {
	const (
		pad    = vg.Length(4)
		sample = vg.Length(20)
		gap    = vg.Length(4)
	)
	var textW, rowH vg.Length
	for _, e := range l.entries {
		if w := l.text.Width(e.label); w > textW {
			textW = w
		}
	}
	rowH = l.text.Height("M") * 1.4
	w := pad + sample + gap + textW + pad
	h := pad*2 + rowH*vg.Length(len(l.entries))

	x1, y1 := c.Max.X-pad, c.Max.Y-pad
	x0, y0 := x1-w, y1-h
	box := []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	c.FillPolygon(l.face, box)
	c.StrokeLines(draw.LineStyle{Color: color.Gray{Y: 204}, Width: vg.Points(0.5)},
		append(box, box[0]))

	ts := l.text
	ts.YAlign = -0.5
	for i, e := range l.entries {
		y := y1 - pad - rowH*(vg.Length(i)+0.5)
		c.StrokeLine2(e.style, x0+pad, y, x0+pad+sample, y)
		c.FillText(ts, vg.Point{X: x0 + pad + sample + gap, Y: y}, e.label)
	}
}

// degreeTicks labels projected map axes in degrees.
type degreeTicks struct {
	toDeg, fromDeg func(float64) float64
	neg, pos       string
}

func (t degreeTicks) Ticks(min, max float64) []plot.Tick {
	dmin, dmax := t.toDeg(min), t.toDeg(max)
	var o []plot.Tick
	for _, tk := range (plot.DefaultTicks{}).Ticks(dmin, dmax) {
		if tk.Label == "" || tk.Value < dmin || tk.Value > dmax {
			continue
		}
		o = append(o, plot.Tick{Value: t.fromDeg(tk.Value), Label: t.format(tk.Value)})
	}
	return o
}

// format writes d in the style "100°W".
func (t degreeTicks) format(d float64) string {
	d = math.Round(d*1e6) / 1e6
	s := strconv.FormatFloat(math.Abs(d), 'g', -1, 64) + "°"
	switch {
	case d < 0:
		return s + t.neg
	case d > 0:
		return s + t.pos
	}
	return s
}

// capTicks are the color bar ticks that are not above max.
type capTicks struct {
	max float64
}

func (t capTicks) Ticks(min, _ float64) []plot.Tick {
	var o []plot.Tick
	for _, tk := range (plot.DefaultTicks{}).Ticks(min, t.max) {
		if tk.Value >= min && tk.Value <= t.max {
			o = append(o, tk)
		}
	}
	return o
}

// extendCap is the triangle on top of a color bar for values above
// its maximum.
type extendCap struct {
	low, high float64
	color     color.Color
}

func (e *extendCap) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	c.FillPolygon(e.color, []vg.Point{
		{X: trX(0), Y: trY(e.low)},
		{X: trX(1), Y: trY(e.low)},
		{X: trX(0.5), Y: trY(e.high)},
	})
}

func (e *extendCap) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, 1, e.low, e.high
}

// colorStrip is a vertical color bar from min to max drawn with filled
// rectangles instead of an image.
type colorStrip struct {
	cm       palette.ColorMap
	min, max float64
	n        int
}

func (s *colorStrip) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	n := s.n
	if n <= 0 {
		n = 256
	}
	step := (s.max - s.min) / float64(n)
	x0, x1 := trX(0), trX(1)
	for i := 0; i < n; i++ {
		lo := s.min + float64(i)*step
		col, err := s.cm.At(math.Min(lo+step/2, s.max))
		if err != nil {
			continue
		}
		y0, y1 := trY(lo), trY(lo+step)
		c.FillPolygon(col, []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}})
	}
}

func (s *colorStrip) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, 1, s.min, s.max
}
