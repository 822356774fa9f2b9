// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLayout(t *testing.T) {
	assert.Equal(t, Layout(time.RFC3339), ParseLayout("RFC3339"))
	assert.Equal(t, NamedLayouts["Default"], ParseLayout(""))
	assert.Equal(t, Layout("2006"), ParseLayout("2006"))
}

func TestLayoutFormat(t *testing.T) {
	now := time.Date(2023, 4, 5, 6, 7, 8, 9_000_000, time.UTC)
	assert.Equal(t, "2023-04-05T06:07:08.009Z", ParseLayout("Default").Format(now))
	assert.Equal(t, "2023-04-05 06:07:08", ParseLayout("DateTime").Format(now))
	assert.Equal(t, "2023-04-05 14:07:08", ParseLayout("DateTime").FormatIn(now, time.FixedZone("UTC+8", 8*60*60)))
	assert.Equal(t, "2023-04-05 06:07:08", ParseLayout("DateTime").FormatIn(now, nil))
}

func TestLayoutNames(t *testing.T) {
	names := LayoutNames()
	assert.Len(t, names, len(NamedLayouts))
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "Default")
}
