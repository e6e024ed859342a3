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
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

var colorMaps = map[string]func() palette.ColorMap{
	"plasma":            moreland.ExtendedBlackBody,
	"blackbody":         moreland.BlackBody,
	"extendedblackbody": moreland.ExtendedBlackBody,
	"inferno":           moreland.BlackBody,
	"magma":             moreland.BlackBody,
	"kindlmann":         moreland.Kindlmann,
	"extendedkindlmann": moreland.ExtendedKindlmann,
	"viridis":           moreland.ExtendedKindlmann,
	"coolwarm":          func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"bluered":           func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"bluetan":           func() palette.ColorMap { return moreland.SmoothBlueTan() },
	"greenpurple":       func() palette.ColorMap { return moreland.SmoothGreenPurple() },
	"greenred":          func() palette.ColorMap { return moreland.SmoothGreenRed() },
	"purpleorange":      func() palette.ColorMap { return moreland.SmoothPurpleOrange() },
}

// ColorMapNames returns the names accepted by ColorMapByName, not
// counting reversed variants.
func ColorMapNames() []string {
	o := make([]string, 0, len(colorMaps))
	for n := range colorMaps {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

// ColorMapByName returns a new instance of the named colormap.
// Names are case-insensitive and a "_r" suffix reverses the map.
func ColorMapByName(name string) (palette.ColorMap, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	reverse := strings.HasSuffix(n, "_r")
	n = strings.TrimSuffix(n, "_r")
	f, ok := colorMaps[n]
	if !ok {
		return nil, fmt.Errorf("lightning: %q: %w", name, ErrUnknownColorMap)
	}
	if reverse {
		return palette.Reverse(f()), nil
	}
	return f(), nil
}

// ParseColor parses a CSS color name such as "white" or a hexadecimal
// color of the form #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.Color, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[n]; ok {
		return c, nil
	}
	if !strings.HasPrefix(n, "#") {
		return nil, fmt.Errorf("lightning: %q: %w", s, ErrUnknownColor)
	}
	hex := n[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("lightning: %q: %w", s, ErrUnknownColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("lightning: %q: %w", s, ErrUnknownColor)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// uniformColorMap maps every value in its range to the same color. It
// colors values above the top of a BrokenColorMap.
type uniformColorMap struct {
	c          color.Color
	min, max   float64
	alpha      float64
	alphaIsSet bool
}

func (u *uniformColorMap) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < u.min:
		return u.c, palette.ErrUnderflow
	case v > u.max:
		return u.c, palette.ErrOverflow
	}
	if !u.alphaIsSet {
		return u.c, nil
	}
	c := color.NRGBAModel.Convert(u.c).(color.NRGBA)
	c.A = uint8(math.Round(u.alpha * 255))
	return c, nil
}

func (u *uniformColorMap) Max() float64       { return u.max }
func (u *uniformColorMap) SetMax(v float64)   { u.max = v }
func (u *uniformColorMap) Min() float64       { return u.min }
func (u *uniformColorMap) SetMin(v float64)   { u.min = v }
func (u *uniformColorMap) Alpha() float64     { return u.alpha }
func (u *uniformColorMap) SetAlpha(a float64) { u.alpha, u.alphaIsSet = a, true }
func (u *uniformColorMap) Palette(n int) palette.Palette {
	c := make([]color.Color, n)
	for i := range c {
		c[i] = u.c
	}
	return plainPalette(c)
}

type plainPalette []color.Color

func (p plainPalette) Colors() []color.Color { return p }

// topColor returns the color at the top of cm's range.
func topColor(cm palette.ColorMap) color.Color {
	c, err := cm.At(cm.Max())
	if err != nil {
		return color.Black
	}
	return c
}
