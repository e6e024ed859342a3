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
)

var (
	// ErrNoVariable is returned when none of the candidate variable
	// names are present in a file.
	ErrNoVariable = errors.New("no matching variable")

	// ErrEmptySelection is returned when a case-study window does not
	// contain any longitude or latitude of a field.
	ErrEmptySelection = errors.New("empty selection")

	// ErrTimeNotFound is returned when a timestamp is not on the
	// Datetime axis of a field.
	ErrTimeNotFound = errors.New("timestamp not found")

	// ErrUnknownColorMap is returned for colormap names that are not
	// available.
	ErrUnknownColorMap = errors.New("unknown colormap")

	// ErrUnknownColor is returned for color specifications that cannot
	// be parsed.
	ErrUnknownColor = errors.New("unknown color")

	// ErrUnsupportedFormat is returned when a figure is saved to a file
	// whose extension does not name a supported image format.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// FileError is returned when a data file cannot be opened or parsed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("lightning: opening %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ParseError is returned when the date of a file cannot be extracted
// from its name.
type ParseError struct {
	Filename string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("lightning: parsing date from filename %s: %s", e.Filename, e.Reason)
}

// StructuralError is returned when a file does not have the dimensions
// or coordinate variables that preprocessing requires.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("lightning: %s: %s", e.Path, e.Reason)
}
