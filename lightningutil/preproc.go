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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/lightning"
)

// Preproc preprocesses the raw file at path, logs a summary of the
// resulting field, and, if output is not empty, writes the field to
// output in NetCDF format.
func Preproc(p *lightning.Preprocessor, path string, variables []string, output string, log logrus.FieldLogger) error {
	f, err := p.OpenField(path, variables)
	if err != nil {
		return err
	}
	s := f.Stats()
	fields := logrus.Fields{
		"variable": f.Name,
		"shape":    fmt.Sprint(f.Data.Shape),
		"masked":   s.Masked,
		"min":      s.Min,
		"max":      s.Max,
		"mean":     s.Mean,
	}
	if n := len(f.Datetime); n > 0 {
		fields["start"] = f.Datetime[0].Format(lightning.TimeLayout)
		fields["end"] = f.Datetime[n-1].Format(lightning.TimeLayout)
	}
	log.WithFields(fields).Info("lightningutil: preprocessed " + path)

	if output == "" {
		return nil
	}
	w, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("lightningutil: creating preprocessed output file: %v", err)
	}
	if err := f.WriteNCF(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.WithField("path", output).Info("lightningutil: wrote preprocessed field")
	return nil
}
