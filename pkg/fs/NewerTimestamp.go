// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"time"
)

// NewerTimestamp returns true if a is strictly after b at precision d.
func NewerTimestamp(a time.Time, b time.Time, d time.Duration) bool {
	return a.Truncate(d).After(b.Truncate(d))
}
