// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ts

import (
	"sort"
	"time"
)

// Layout is a time layout used to format log timestamps.
type Layout string

func (l Layout) Format(t time.Time) string {
	return t.Format(string(l))
}

// FormatIn formats the time in the given location.
func (l Layout) FormatIn(t time.Time, location *time.Location) string {
	if location == nil {
		return l.Format(t)
	}
	return t.In(location).Format(string(l))
}

const (
	DefaultLayoutName = "Default"
)

var NamedLayouts = map[string]Layout{
	"Kitchen":     time.Kitchen,
	"RFC3339":     time.RFC3339,
	"RFC3339Nano": time.RFC3339Nano,
	"DateTime":    time.DateTime,
	"Stamp":       time.Stamp,
	"StampMilli":  time.StampMilli,
	"TimeOnly":    time.TimeOnly,
	"Default":     "2006-01-02T15:04:05.000Z07:00",
}

// LayoutNames returns the names of the named layouts in sorted order.
func LayoutNames() []string {
	names := make([]string, 0, len(NamedLayouts))
	for name := range NamedLayouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseLayout returns the named layout, or the layout itself if it is not a name.
// An empty layout returns the default layout.
func ParseLayout(layout string) Layout {
	if len(layout) == 0 {
		return NamedLayouts[DefaultLayoutName]
	}
	format, ok := NamedLayouts[layout]
	if ok {
		return format
	}
	return Layout(layout)
}
