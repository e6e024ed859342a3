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
	"fmt"
	"image/color"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ctessum/plotextra"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PlotConfig holds the styling of a case-study plot. Zero values are
// replaced with the defaults listed for each field.
type PlotConfig struct {
	// VMin and VMax are the limits of the model color scale. The
	// defaults are the minimum and maximum of the model data in the
	// case-study window.
	VMin, VMax *float64

	// ColorMap is the name of the model colormap. Default "plasma".
	ColorMap string

	// Levels1 are the contour levels of the first observation field.
	// By default they are chosen from the range of the data.
	Levels1 []float64

	// Color1 is the color of the first observation contours.
	// Default "white".
	Color1 string

	// Label1 is the legend label of the first observation contours.
	Label1 string

	// Levels2, Color2 and Label2 are the same as Levels1, Color1 and
	// Label1 for the second observation field, which is drawn with
	// dashed lines. Color2 defaults to "blue".
	Levels2 []float64
	Color2  string
	Label2  string

	// ColorBarLabel labels the model color bar.
	ColorBarLabel string

	// LegendFaceColor is the background of the legend. Default "red".
	LegendFaceColor string

	// Title is the figure title.
	Title string

	// SavePath is where the figure is saved. The image format is
	// determined by the extension. The figure is not saved if
	// SavePath is empty.
	SavePath string

	// Width is the width of the figure. Default 6.4 inches.
	Width vg.Length

	// DPI is the resolution of raster images. Default 200.
	DPI int
}

// Default plot settings.
const (
	DefaultColorMap        = "plasma"
	DefaultColor1          = "white"
	DefaultColor2          = "blue"
	DefaultLegendFaceColor = "red"
	DefaultWidth           = 6.4 * vg.Inch
	DefaultDPI             = 200
)

func (c PlotConfig) withDefaults() PlotConfig {
	if c.ColorMap == "" {
		c.ColorMap = DefaultColorMap
	}
	if c.Color1 == "" {
		c.Color1 = DefaultColor1
	}
	if c.Color2 == "" {
		c.Color2 = DefaultColor2
	}
	if c.LegendFaceColor == "" {
		c.LegendFaceColor = DefaultLegendFaceColor
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	return c
}

// A PlotOption changes how a case study is plotted.
type PlotOption func(*plotOptions)

type plotOptions struct {
	basemap *Basemap
	display Displayer
	log     logrus.FieldLogger
}

// WithBasemap draws coastlines and state boundaries from b. By default
// no basemap is drawn.
func WithBasemap(b *Basemap) PlotOption {
	return func(o *plotOptions) { o.basemap = b }
}

// WithDisplayer shows the finished figure with d instead of
// OpenDisplayer. A nil Displayer disables display.
func WithDisplayer(d Displayer) PlotOption {
	return func(o *plotOptions) { o.display = d }
}

// WithLogger sets the logger for plotting messages.
func WithLogger(l logrus.FieldLogger) PlotOption {
	return func(o *plotOptions) { o.log = l }
}

func newPlotOptions(opts []PlotOption) *plotOptions {
	o := &plotOptions{
		display: OpenDisplayer,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Layout of the figure.
const (
	colorBarWidth = 1.1 * vg.Inch
	axisPad       = 0.45 * vg.Inch
	titlePad      = 0.3 * vg.Inch
)

// Figure is a rendered case-study map with its color bar. A Figure
// must be closed after use.
type Figure struct {
	mapPlot, colorBar *plot.Plot
	width, height     vg.Length
	dpi               int
	closed            bool
}

// CaseStudyPlot draws the model field as a pseudocolor map in the
// case-study window w, overlays solid contours of obs1 and dashed
// contours of obs2, saves the figure to cfg.SavePath if it is set, and
// shows it. A figure that is shown without being saved is written to a
// temporary PNG file, which is removed by the next such call.
func CaseStudyPlot(model, obs1, obs2 *GriddedField, w Window, cfg PlotConfig, opts ...PlotOption) error {
	o := newPlotOptions(opts)
	fig, err := NewCaseStudyFigure(model, obs1, obs2, w, cfg, opts...)
	if err != nil {
		return err
	}
	defer fig.Close()

	path := cfg.SavePath
	if path != "" {
		if err := fig.Save(path); err != nil {
			return err
		}
		o.log.WithField("path", path).Info("lightning: saved case study plot")
	}
	if o.display == nil {
		return nil
	}
	if path == "" {
		tmp, err := ioutil.TempFile("", "lightning-*.png")
		if err != nil {
			return err
		}
		if err := fig.Encode(tmp, "png"); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		path = tmp.Name()
		replaceDisplayFile(path, o.log)
	}
	return o.display(path)
}

// displayFile is the temporary file most recently shown by
// CaseStudyPlot.
var displayFile struct {
	sync.Mutex
	path string
}

// replaceDisplayFile records path as the current temporary figure and
// removes the previous one.
func replaceDisplayFile(path string, log logrus.FieldLogger) {
	displayFile.Lock()
	defer displayFile.Unlock()
	if old := displayFile.path; old != "" {
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			log.WithField("path", old).Warnf("lightning: removing temporary figure: %v", err)
		}
	}
	displayFile.path = path
}

// NewCaseStudyFigure creates the figure drawn by CaseStudyPlot without
// saving or displaying it.
func NewCaseStudyFigure(model, obs1, obs2 *GriddedField, w Window, cfg PlotConfig, opts ...PlotOption) (*Figure, error) {
	o := newPlotOptions(opts)
	cfg = cfg.withDefaults()
	if model == nil || obs1 == nil || obs2 == nil {
		return nil, errors.New("lightning: case study plot requires a model and two observation fields")
	}
	base, err := ColorMapByName(cfg.ColorMap)
	if err != nil {
		return nil, err
	}
	col1, err := ParseColor(cfg.Color1)
	if err != nil {
		return nil, err
	}
	col2, err := ParseColor(cfg.Color2)
	if err != nil {
		return nil, err
	}
	face, err := ParseColor(cfg.LegendFaceColor)
	if err != nil {
		return nil, err
	}
	merc, err := newMercator()
	if err != nil {
		return nil, err
	}

	log := o.log.WithField("window", w.String())

	m, err := model.Select(w)
	if err != nil {
		return nil, err
	}
	vmin, vmax, err := colorLimits(m, cfg)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"variable": m.Name,
		"vmin":     vmin,
		"vmax":     vmax,
	}).Debug("lightning: plotting model field")

	base.SetMin(vmin)
	base.SetMax(vmax)
	over := topColor(base)
	ext := (vmax - vmin) / 9
	cm := &plotextra.BrokenColorMap{
		Base:     base,
		OverFlow: &uniformColorMap{c: over},
	}
	cm.SetMin(vmin)
	cm.SetMax(vmax + ext)
	cm.SetHighCut(vmax)

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = cfg.Title
	p.X.Padding, p.Y.Padding = 0, 0
	p.X.Tick.Marker = degreeTicks{toDeg: merc.lon, fromDeg: merc.x, neg: "W", pos: "E"}
	p.Y.Tick.Marker = degreeTicks{toDeg: merc.lat, fromDeg: merc.y, neg: "S", pos: "N"}

	mm := newMesh(m, merc, func(v float64) color.Color {
		v = math.Max(vmin, math.Min(vmax+ext, v))
		c, err := cm.At(v)
		if err != nil {
			return over
		}
		return c
	})
	p.Add(mm)

	labelFont, err := vg.MakeFont("Helvetica", vg.Points(7.5))
	if err != nil {
		return nil, err
	}
	solid := draw.LineStyle{Color: col1, Width: vg.Points(1)}
	dashed := draw.LineStyle{Color: col2, Width: vg.Points(1), Dashes: []vg.Length{vg.Points(4), vg.Points(2)}}
	for _, c := range []struct {
		f      *GriddedField
		levels []float64
		style  draw.LineStyle
	}{
		{f: obs1, levels: cfg.Levels1, style: solid},
		{f: obs2, levels: cfg.Levels2, style: dashed},
	} {
		s, err := c.f.Select(w)
		if err != nil {
			return nil, err
		}
		if err := addContours(p, s, c.levels, c.style, labelFont, merc, log); err != nil {
			return nil, err
		}
	}

	if b := o.basemap; b != nil {
		p.Add(newBasemapLines(b.Coastlines), newBasemapLines(b.States))
	}

	legendFont, err := vg.MakeFont("Helvetica", vg.Points(8))
	if err != nil {
		return nil, err
	}
	p.Add(&legendBox{
		entries: []legendEntry{{label: cfg.Label1, style: solid}, {label: cfg.Label2, style: dashed}},
		face:    face,
		text:    draw.TextStyle{Color: color.Black, Font: legendFont},
	})

	xmin, xmax, ymin, ymax := mm.DataRange()
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax

	cb, err := colorBar(cfg, vmin, vmax, ext, over)
	if err != nil {
		return nil, err
	}

	fig := &Figure{
		mapPlot:  p,
		colorBar: cb,
		width:    cfg.Width,
		dpi:      cfg.DPI,
	}
	fig.height = figureHeight(cfg.Width, (ymax-ymin)/(xmax-xmin), cfg.Title != "")
	return fig, nil
}

// colorLimits returns the limits of the model color scale.
func colorLimits(m *GriddedField, cfg PlotConfig) (vmin, vmax float64, err error) {
	vmin, vmax, ok := valueRange(m.Data.Elements)
	if !ok {
		vmin, vmax = 0, 1
	}
	if cfg.VMin != nil {
		vmin = *cfg.VMin
	}
	if cfg.VMax != nil {
		vmax = *cfg.VMax
	}
	if vmin > vmax {
		return 0, 0, fmt.Errorf("lightning: color scale minimum %g is greater than maximum %g", vmin, vmax)
	}
	if vmin == vmax {
		vmax = vmin + 1
	}
	return vmin, vmax, nil
}

// addContours adds contours of f and their labels to p. Contours are
// not drawn through cells with missing values.
func addContours(p *plot.Plot, f *GriddedField, levels []float64, style draw.LineStyle, font vg.Font, m *mercator, log logrus.FieldLogger) error {
	if len(levels) == 0 {
		levels = autoLevels(f.Data.Elements)
	}
	log = log.WithFields(logrus.Fields{"variable": f.Name, "levels": levels})
	if len(levels) == 0 || len(f.Longitudes) < 2 || len(f.Latitudes) < 2 {
		log.Debug("lightning: nothing to contour")
		return nil
	}
	log.Debug("lightning: plotting contours")

	g := newContourGrid(f, m)
	p.Add(&contourLines{grid: g, levels: levels, style: style}, &contourLabels{
		grid:   g,
		levels: levels,
		TextStyle: draw.TextStyle{
			Color:  style.Color,
			Font:   font,
			XAlign: -0.5,
			YAlign: -0.5,
		},
	})
	return nil
}

// colorBar creates a vertical color bar from vmin to vmax with a
// triangular extension for values above vmax.
func colorBar(cfg PlotConfig, vmin, vmax, ext float64, over color.Color) (*plot.Plot, error) {
	cm, err := ColorMapByName(cfg.ColorMap)
	if err != nil {
		return nil, err
	}
	cm.SetMin(vmin)
	cm.SetMax(vmax)

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Add(&colorStrip{cm: cm, min: vmin, max: vmax})
	p.Add(&extendCap{low: vmax, high: vmax + ext, color: over})
	p.HideX()
	p.Y.Padding = 0
	p.Y.Label.Text = cfg.ColorBarLabel
	p.Y.Scale = plotextra.BrokenScale{
		HighCut:         vmax,
		HighCutFraction: 0.9,
	}
	p.Y.Tick.Marker = capTicks{max: vmax}
	return p, nil
}

// figureHeight returns the height of a figure of the given width whose
// map has the given aspect ratio.
func figureHeight(width vg.Length, aspect float64, title bool) vg.Length {
	mapW := width - colorBarWidth - axisPad
	h := vg.Length(float64(mapW)*aspect) + axisPad
	if title {
		h += titlePad
	}
	if min := width * 0.4; h < min {
		h = min
	}
	if max := width * 1.5; h > max {
		h = max
	}
	return h
}

// Size returns the width and height of the figure.
func (f *Figure) Size() (width, height vg.Length) {
	return f.width, f.height
}

// Draw draws the figure on c.
func (f *Figure) Draw(c draw.Canvas) {
	w := c.Max.X - c.Min.X
	f.mapPlot.Draw(draw.Crop(c, 0, -colorBarWidth, 0, 0))
	var top vg.Length
	if f.mapPlot.Title.Text != "" {
		top = -titlePad
	}
	f.colorBar.Draw(draw.Crop(c, w-colorBarWidth+vg.Points(8), -vg.Points(4), axisPad, top-vg.Points(4)))
}

var errClosed = errors.New("lightning: figure is closed")

// Encode writes the figure to w in the given format: png, jpg, jpeg,
// tif, tiff, svg, pdf or eps.
func (f *Figure) Encode(w io.Writer, format string) error {
	if f.closed {
		return errClosed
	}
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	var wt io.WriterTo
	switch format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		c := vgimg.NewWith(vgimg.UseWH(f.width, f.height), vgimg.UseDPI(f.dpi))
		f.Draw(draw.New(c))
		switch format {
		case "png":
			wt = vgimg.PngCanvas{Canvas: c}
		case "jpg", "jpeg":
			wt = vgimg.JpegCanvas{Canvas: c}
		default:
			wt = vgimg.TiffCanvas{Canvas: c}
		}
	case "svg", "pdf", "eps":
		c, err := draw.NewFormattedCanvas(f.width, f.height, format)
		if err != nil {
			return err
		}
		f.Draw(draw.New(c))
		wt = c
	default:
		return fmt.Errorf("lightning: %q: %w", format, ErrUnsupportedFormat)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("lightning: writing figure: %v", err)
	}
	return nil
}

// Save writes the figure to the file at path, with the format
// determined by the file extension.
func (f *Figure) Save(path string) error {
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Errorf("lightning: %s has no extension: %w", path, ErrUnsupportedFormat)
	}
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Encode(w, ext); err != nil {
		w.Close()
		os.Remove(path)
		return err
	}
	return w.Close()
}

// Close releases the figure. It is safe to call Close more than once.
func (f *Figure) Close() error {
	f.closed = true
	f.mapPlot, f.colorBar = nil, nil
	return nil
}
