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
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// DateParser extracts the first day of the month of data in a file
// from the name of the file.
type DateParser func(filename string) (time.Time, error)

// R180WMonth is the DateParser for the GEOS and GLM file naming
// convention, where the six characters immediately before the first
// ".r180W" in the name are the year and month of the data as YYYYMM,
// for example "flashes_201907.r180W.nc".
func R180WMonth(filename string) (time.Time, error) {
	i := strings.Index(filename, FilenameDelimiter)
	if i < 0 {
		return time.Time{}, &ParseError{Filename: filename,
			Reason: fmt.Sprintf("missing %q", FilenameDelimiter)}
	}
	prefix := filename[:i]
	if len(prefix) < 6 {
		return time.Time{}, &ParseError{Filename: filename,
			Reason: fmt.Sprintf("fewer than 6 characters before %q", FilenameDelimiter)}
	}
	ym := prefix[len(prefix)-6:]
	for _, c := range ym {
		if c < '0' || c > '9' {
			return time.Time{}, &ParseError{Filename: filename,
				Reason: fmt.Sprintf("%q is not in YYYYMM format", ym)}
		}
	}
	year, _ := strconv.Atoi(ym[:4])
	month, _ := strconv.Atoi(ym[4:])
	if month < 1 || month > 12 {
		return time.Time{}, &ParseError{Filename: filename,
			Reason: fmt.Sprintf("invalid month %d", month)}
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// HourEndingAxis returns nDays*nHours hourly timestamps starting one
// hour after start. Hour index h of day index d is labelled with the end
// of the hour it summarizes and is at position d*nHours+h.
func HourEndingAxis(start time.Time, nDays, nHours int) []time.Time {
	o := make([]time.Time, nDays*nHours)
	for i := range o {
		o[i] = start.Add(time.Duration(i+1) * time.Hour)
	}
	return o
}

// Preprocessor reads raw GEOS and GLM files into GriddedFields.
type Preprocessor struct {
	// DateParser determines the month of a file from its name.
	// The default is R180WMonth.
	DateParser DateParser

	// Log receives progress messages. The default is the logrus
	// standard logger.
	Log logrus.FieldLogger
}

// NewPreprocessor returns a Preprocessor with the default settings.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		DateParser: R180WMonth,
		Log:        logrus.StandardLogger(),
	}
}

// OpenAndPreprocess reads the first of the candidate variables that
// is present in the file at filename using the default Preprocessor.
func OpenAndPreprocess(filename string, candidates []string) (*GriddedField, error) {
	return NewPreprocessor().OpenAndPreprocess(filename, candidates)
}

// OpenAndPreprocess reads the first of the candidate variables that is
// present in the file at filename. The Days and Hours axes of the file
// are collapsed into an hour-ending Datetime axis, values equal to
// FillSentinel become NaN, and the coordinates are renamed to
// Longitudes and Latitudes.
func (p *Preprocessor) OpenAndPreprocess(filename string, candidates []string) (*GriddedField, error) {
	ds, err := openDataset(filename)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	return p.preprocess(filename, ds, candidates)
}

// OpenField opens a raw file with OpenAndPreprocess or, if the file
// was written by WriteNCF, reads it back with ReadNCF.
func (p *Preprocessor) OpenField(filename string, candidates []string) (*GriddedField, error) {
	ds, err := openDataset(filename)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	if ds.HasVariable(DatetimeCoord) {
		p.logger().WithField("file", filename).Debug("lightning: reading preprocessed file")
		return readPreprocessed(filename, ds, candidates)
	}
	return p.preprocess(filename, ds, candidates)
}

func (p *Preprocessor) logger() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

// resolveVariable returns the first candidate for which has returns true.
func resolveVariable(has func(string) bool, candidates []string) (string, error) {
	for _, c := range candidates {
		if has(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("lightning: none of %v: %w", candidates, ErrNoVariable)
}

func (p *Preprocessor) preprocess(filename string, ds dataset, candidates []string) (*GriddedField, error) {
	log := p.logger().WithField("file", filename)

	name, err := resolveVariable(ds.HasVariable, candidates)
	if err != nil {
		return nil, err
	}
	log = log.WithField("variable", name)

	parse := p.DateParser
	if parse == nil {
		parse = R180WMonth
	}
	start, err := parse(filename)
	if err != nil {
		return nil, err
	}

	nDays, err := ds.DimLength(DaysDim)
	if err != nil {
		return nil, &StructuralError{Path: filename, Reason: fmt.Sprintf("missing %s dimension", DaysDim)}
	}
	nHours, err := ds.DimLength(HoursDim)
	if err != nil {
		return nil, &StructuralError{Path: filename, Reason: fmt.Sprintf("missing %s dimension", HoursDim)}
	}

	if nDays*nHours == 0 {
		return nil, &StructuralError{Path: filename, Reason: fmt.Sprintf("%s or %s dimension is empty", DaysDim, HoursDim)}
	}

	lon, err := coordinate(filename, ds, LongitudeVar)
	if err != nil {
		return nil, err
	}
	lat, err := coordinate(filename, ds, LatitudeVar)
	if err != nil {
		return nil, err
	}

	v, err := ds.Variable(name)
	if err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}

	datetime := HourEndingAxis(start, nDays, nHours)
	log.WithFields(logrus.Fields{
		"start": datetime[0].Format(TimeLayout),
		"n":     len(datetime),
	}).Debug("lightning: created time axis")

	masked := mask(v)
	log.WithField("masked", masked).Info("lightning: masked missing values")

	ordered, err := reorder(filename, v, []string{DaysDim, HoursDim, lat.dims[0], lon.dims[0]})
	if err != nil {
		return nil, err
	}
	if ordered.Shape[2] != len(lat.values) || ordered.Shape[3] != len(lon.values) {
		return nil, &StructuralError{Path: filename,
			Reason: fmt.Sprintf("variable %s has shape %v, which does not match the coordinates", name, ordered.Shape)}
	}
	// Days is the outer index, so the Days × Hours block is already
	// in Datetime order.
	data := sparse.ZerosDense(nDays*nHours, len(lat.values), len(lon.values))
	copy(data.Elements, ordered.Elements)

	f := &GriddedField{
		Name:       name,
		Longitudes: lon.values,
		Latitudes:  lat.values,
		Datetime:   datetime,
		Data:       data,
		Attrs:      make(map[string]interface{}),
	}
	for k, a := range v.attrs {
		switch k {
		case "_FillValue", "missing_value", "scale_factor", "add_offset":
			// Consumed by masking and scaling.
		default:
			f.Attrs[k] = a
		}
	}
	f.Attrs["missing_value"] = math.NaN()
	f.Units, _ = v.textAttr("units")
	return f, nil
}

// coordinate reads a one-dimensional coordinate variable.
func coordinate(filename string, ds dataset, name string) (*variable, error) {
	if !ds.HasVariable(name) {
		return nil, &StructuralError{Path: filename, Reason: fmt.Sprintf("missing %s variable", name)}
	}
	v, err := ds.Variable(name)
	if err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}
	if len(v.dims) != 1 {
		return nil, &StructuralError{Path: filename,
			Reason: fmt.Sprintf("%s variable has %d dimensions; it should have 1", name, len(v.dims))}
	}
	return v, nil
}

// mask replaces missing values in v with NaN and applies any scale
// factor and offset. Raw values equal to the _FillValue or missing_value
// attributes are missing, as are scaled values equal to FillSentinel at the
// storage precision of the variable. It returns the number of missing
// values.
func mask(v *variable) int {
	var fills []float64
	for _, a := range []string{"_FillValue", "missing_value"} {
		if x, ok := v.numAttr(a); ok && !math.IsNaN(x) {
			fills = append(fills, x)
		}
	}
	scale, hasScale := v.numAttr("scale_factor")
	offset, hasOffset := v.numAttr("add_offset")
	if !hasScale {
		scale = 1
	}

	sentinel := FillSentinel
	if v.single && !hasScale && !hasOffset {
		sentinel = float64(float32(FillSentinel))
	}

	var n int
	for i, x := range v.values {
		if isFill(x, fills) {
			v.values[i] = math.NaN()
			n++
			continue
		}
		if hasScale || hasOffset {
			x = x*scale + offset
		}
		if x == sentinel || math.IsNaN(x) {
			x = math.NaN()
			n++
		}
		v.values[i] = x
	}
	return n
}

func isFill(x float64, fills []float64) bool {
	for _, f := range fills {
		if x == f {
			return true
		}
	}
	return false
}

// reorder returns the values of v rearranged so that its dimensions are
// in the given order.
func reorder(filename string, v *variable, order []string) (*sparse.DenseArray, error) {
	if len(v.dims) != len(order) {
		return nil, &StructuralError{Path: filename,
			Reason: fmt.Sprintf("variable %s has dimensions %v; it should have dimensions %v", v.name, v.dims, order)}
	}
	stride := make([]int, len(v.shape))
	s := 1
	for i := len(v.shape) - 1; i >= 0; i-- {
		stride[i] = s
		s *= v.shape[i]
	}
	shape := make([]int, len(order))
	srcStride := make([]int, len(order))
	for i, d := range order {
		j := v.dimIndex(d)
		if j < 0 {
			return nil, &StructuralError{Path: filename,
				Reason: fmt.Sprintf("variable %s has dimensions %v; it should have dimensions %v", v.name, v.dims, order)}
		}
		shape[i] = v.shape[j]
		srcStride[i] = stride[j]
	}
	out := sparse.ZerosDense(shape...)
	idx := make([]int, len(shape))
	for o := range out.Elements {
		src := 0
		for i, ix := range idx {
			src += ix * srcStride[i]
		}
		out.Elements[o] = v.values[src]
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return out, nil
}
