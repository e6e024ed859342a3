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

// Package lightning loads NASA GEOS model output and GLM satellite
// lightning observations from NetCDF files, puts them on a common
// Longitudes/Latitudes/Datetime coordinate scheme, and draws case-study
// comparison maps of a model field overlaid with observation contours.
package lightning

// Version gives the version number.
const Version = "0.1.0"

// FillSentinel is the value that marks missing data in the raw GEOS and
// GLM files.
const FillSentinel = 1.e15

// FilenameDelimiter is the token in raw file names that immediately
// follows the YYYYMM date of the file.
const FilenameDelimiter = ".r180W"

// Names of the dimensions and coordinate variables in raw files.
const (
	DaysDim      = "Days"
	HoursDim     = "Hours"
	LongitudeVar = "longitude"
	LatitudeVar  = "latitude"
)

// Names of the coordinates of a preprocessed field.
const (
	LongitudesCoord = "Longitudes"
	LatitudesCoord  = "Latitudes"
	DatetimeCoord   = "Datetime"
)

// KnownVariables are the GEOS and GLM variables that OpenAndPreprocess
// looks for by default, in order of preference.
var KnownVariables = []string{
	"precon",
	"energy_f",
	"energy_g",
	"flashes",
	"groups",
	"cape",
	"mf_cbase",
	"pretot",
	"iwc_440",
	"pblh",
	"p_ctop",
	"p_cbase",
	"cnv_mfc_440",
	"z_cbase",
	"cldht",
	"t_sfc",
	"cldfrac_conv_440",
	"cldfrac_ls_440",
	"l_cbase",
}
