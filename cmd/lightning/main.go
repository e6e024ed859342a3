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

// Command lightning preprocesses GEOS and GLM files and draws
// lightning case-study maps.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/lightning/lightningutil"
)

func main() {
	cfg := lightningutil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
