//go:build !netcdf
// +build !netcdf

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

import "fmt"

func openNetCDF4(path string) (dataset, error) {
	return nil, fmt.Errorf("%s is a NetCDF-4 file; rebuild with '-tags netcdf' "+
		"and the NetCDF C library installed to read it, or convert it with 'nccopy -k classic'", path)
}
