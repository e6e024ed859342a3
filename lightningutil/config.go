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
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/lightning"
	"github.com/spf13/cast"
	"gonum.org/v1/plot/vg"
)

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// toStringSliceE converts a configuration value to a slice of strings.
// Values set from the command line may arrive as a single string
// in the format "[a,b]" or "a,b".
func toStringSliceE(i interface{}) ([]string, error) {
	var raw []string
	switch v := i.(type) {
	case nil:
		return nil, nil
	case string:
		raw = []string{v}
	case []string:
		raw = v
	case []interface{}:
		for _, e := range v {
			s, err := cast.ToStringE(e)
			if err != nil {
				return nil, err
			}
			raw = append(raw, s)
		}
	default:
		return cast.ToStringSliceE(i)
	}
	var o []string
	for _, s := range raw {
		s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				o = append(o, f)
			}
		}
	}
	return o, nil
}

// toFloat64SliceE converts a configuration value to a slice of numbers.
func toFloat64SliceE(i interface{}) ([]float64, error) {
	if v, ok := i.([]float64); ok {
		return v, nil
	}
	if v, ok := i.([]interface{}); ok {
		o := make([]float64, len(v))
		for j, e := range v {
			if s, ok := e.(string); ok {
				e = strings.TrimSpace(s)
			}
			f, err := cast.ToFloat64E(e)
			if err != nil {
				return nil, err
			}
			o[j] = f
		}
		return o, nil
	}
	s, err := toStringSliceE(i)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(s))
	for j, e := range s {
		if o[j], err = cast.ToFloat64E(e); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// variables returns the candidate variable names in configuration
// option name.
func variables(cfg *viper.Viper, name string) ([]string, error) {
	v, err := toStringSliceE(cfg.Get(name))
	if err != nil {
		return nil, fmt.Errorf("lightningutil: invalid %s: %v", name, err)
	}
	return expandStringSlice(v), nil
}

// coordRange returns the two-number range in configuration option name.
func coordRange(cfg *viper.Viper, name string) ([2]float64, error) {
	v, err := toFloat64SliceE(cfg.Get(name))
	if err != nil {
		return [2]float64{}, fmt.Errorf("lightningutil: invalid %s: %v", name, err)
	}
	if len(v) != 2 {
		return [2]float64{}, fmt.Errorf("lightningutil: %s must have two values but has %d", name, len(v))
	}
	return [2]float64{v[0], v[1]}, nil
}

// window returns the case-study window specified by the
// lon, lat and time options.
func window(cfg *viper.Viper) (lightning.Window, error) {
	var w lightning.Window
	var err error
	if w.Lon, err = coordRange(cfg, "lon"); err != nil {
		return w, err
	}
	if w.Lat, err = coordRange(cfg, "lat"); err != nil {
		return w, err
	}
	ts := cfg.GetString("time")
	if ts == "" {
		return w, fmt.Errorf("lightningutil: the 'time' option must be specified")
	}
	if w.Time, err = lightning.ParseTime(ts); err != nil {
		return w, err
	}
	return w, nil
}

// optionalFloat returns nil if configuration option name is unset or
// empty and its value otherwise.
func optionalFloat(cfg *viper.Viper, name string) (*float64, error) {
	i := cfg.Get(name)
	if s, ok := i.(string); ok {
		if i = strings.TrimSpace(s); i == "" {
			return nil, nil
		}
	}
	if i == nil {
		return nil, nil
	}
	v, err := cast.ToFloat64E(i)
	if err != nil {
		return nil, fmt.Errorf("lightningutil: invalid %s: %v", name, err)
	}
	return &v, nil
}

// plotConfig reads the case-study styling options.
func plotConfig(cfg *viper.Viper) (lightning.PlotConfig, error) {
	var pc lightning.PlotConfig
	var err error
	if pc.VMin, err = optionalFloat(cfg, "CaseStudy.VMin"); err != nil {
		return pc, err
	}
	if pc.VMax, err = optionalFloat(cfg, "CaseStudy.VMax"); err != nil {
		return pc, err
	}
	if pc.Levels1, err = toFloat64SliceE(cfg.Get("CaseStudy.Levels1")); err != nil {
		return pc, fmt.Errorf("lightningutil: invalid CaseStudy.Levels1: %v", err)
	}
	if pc.Levels2, err = toFloat64SliceE(cfg.Get("CaseStudy.Levels2")); err != nil {
		return pc, fmt.Errorf("lightningutil: invalid CaseStudy.Levels2: %v", err)
	}
	pc.ColorMap = cfg.GetString("CaseStudy.ColorMap")
	pc.Color1 = cfg.GetString("CaseStudy.Color1")
	pc.Label1 = cfg.GetString("CaseStudy.Label1")
	pc.Color2 = cfg.GetString("CaseStudy.Color2")
	pc.Label2 = cfg.GetString("CaseStudy.Label2")
	pc.ColorBarLabel = cfg.GetString("CaseStudy.ColorBarLabel")
	pc.LegendFaceColor = cfg.GetString("CaseStudy.LegendFaceColor")
	pc.Title = cfg.GetString("CaseStudy.Title")
	pc.SavePath = os.ExpandEnv(cfg.GetString("CaseStudy.SavePath"))
	pc.Width = vg.Length(cfg.GetFloat64("CaseStudy.Width")) * vg.Inch
	pc.DPI = cfg.GetInt("CaseStudy.DPI")
	return pc, nil
}
