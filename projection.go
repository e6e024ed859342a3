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

	"github.com/ctessum/geom/proj"
)

const (
	// MercatorProj is the map projection of case-study plots.
	MercatorProj = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

	// LongLatProj is the spatial reference of field coordinates and of
	// basemap shapefiles that do not have a .prj file.
	LongLatProj = "+proj=longlat +a=6378137 +b=6378137 +no_defs"

	// maxMercatorLat is the latitude at which the projected map
	// becomes square.
	maxMercatorLat = 85.0511287798
)

// mercator converts between geographic and Mercator coordinates.
type mercator struct {
	sr, longLat *proj.SR
	fwd, inv    proj.Transformer
}

func newMercator() (*mercator, error) {
	m := new(mercator)
	var err error
	if m.sr, err = proj.Parse(MercatorProj); err != nil {
		return nil, fmt.Errorf("lightning: parsing Mercator projection: %v", err)
	}
	if m.longLat, err = proj.Parse(LongLatProj); err != nil {
		return nil, fmt.Errorf("lightning: parsing longitude-latitude projection: %v", err)
	}
	if m.fwd, err = m.longLat.NewTransform(m.sr); err != nil {
		return nil, fmt.Errorf("lightning: creating Mercator transform: %v", err)
	}
	if m.inv, err = m.sr.NewTransform(m.longLat); err != nil {
		return nil, fmt.Errorf("lightning: creating Mercator transform: %v", err)
	}
	return m, nil
}

// x returns the projected x coordinate of a longitude.
func (m *mercator) x(lon float64) float64 {
	x, _, err := m.fwd(lon, 0)
	if err != nil {
		return math.NaN()
	}
	return x
}

// y returns the projected y coordinate of a latitude. Latitudes beyond
// the edge of the map are clamped to it.
func (m *mercator) y(lat float64) float64 {
	_, y, err := m.fwd(0, clampLat(lat))
	if err != nil {
		return math.NaN()
	}
	return y
}

func (m *mercator) lon(x float64) float64 {
	lon, _, err := m.inv(x, 0)
	if err != nil {
		return math.NaN()
	}
	return lon
}

func (m *mercator) lat(y float64) float64 {
	_, lat, err := m.inv(0, y)
	if err != nil {
		return math.NaN()
	}
	return lat
}

func clampLat(lat float64) float64 {
	return math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
}
