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
	"reflect"
	"testing"

	"github.com/lnashier/viper"
)

func TestToFloat64SliceE(t *testing.T) {
	tests := []struct {
		in   interface{}
		want []float64
		err  bool
	}{
		{in: "[-101,-98]", want: []float64{-101, -98}},
		{in: "1.5, 2", want: []float64{1.5, 2}},
		{in: []string{"3", "4"}, want: []float64{3, 4}},
		{in: []string{"[3,4]"}, want: []float64{3, 4}},
		{in: []interface{}{int64(1), 2.5, "3"}, want: []float64{1, 2.5, 3}},
		{in: []float64{7}, want: []float64{7}},
		{in: "", want: []float64{}},
		{in: "a,b", err: true},
	}
	for _, test := range tests {
		got, err := toFloat64SliceE(test.in)
		if test.err {
			if err == nil {
				t.Errorf("%#v: want an error", test.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%#v: %v", test.in, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%#v: have %#v, want %#v", test.in, got, test.want)
		}
	}
}

func TestVariables(t *testing.T) {
	cfg := viper.New()
	cfg.Set("a", "[flashes, groups]")
	cfg.Set("b", []interface{}{"cape", "precon"})
	for key, want := range map[string][]string{
		"a": {"flashes", "groups"},
		"b": {"cape", "precon"},
	} {
		got, err := variables(cfg, key)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: have %v, want %v", key, got, want)
		}
	}
	if got, _ := variables(cfg, "missing"); len(got) != 0 {
		t.Errorf("missing: have %v", got)
	}
}

func TestOptionalFloat(t *testing.T) {
	cfg := viper.New()
	cfg.Set("empty", "")
	cfg.Set("str", " 2.5 ")
	cfg.Set("num", 3)
	cfg.Set("bad", "x")
	if v, err := optionalFloat(cfg, "empty"); v != nil || err != nil {
		t.Errorf("empty: %v %v", v, err)
	}
	if v, err := optionalFloat(cfg, "unset"); v != nil || err != nil {
		t.Errorf("unset: %v %v", v, err)
	}
	if v, err := optionalFloat(cfg, "str"); err != nil || *v != 2.5 {
		t.Errorf("str: %v %v", v, err)
	}
	if v, err := optionalFloat(cfg, "num"); err != nil || *v != 3 {
		t.Errorf("num: %v %v", v, err)
	}
	if _, err := optionalFloat(cfg, "bad"); err == nil {
		t.Error("bad: want an error")
	}
}
