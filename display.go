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

	"github.com/skratchdot/open-golang/open"
)

// A Displayer shows the image file at path to the user.
type Displayer func(path string) error

// OpenDisplayer shows an image with the default viewer of the
// operating system.
func OpenDisplayer(path string) error {
	if err := open.Run(path); err != nil {
		return fmt.Errorf("lightning: displaying %s: %v", path, err)
	}
	return nil
}
