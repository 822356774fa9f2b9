// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package ts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLocation parses "UTC", "Local", a fixed offset in hours ("-8") or
// hours and minutes ("+05:30"), or an IANA time zone name.
func ParseLocation(location string) (*time.Location, error) {
	if location == "" {
		return nil, errors.New("cannot parse location from empty string")
	}
	switch location {
	case "UTC", "Z":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	if hours, err := strconv.Atoi(location); err == nil {
		if hours < -14 || hours > 14 {
			return nil, fmt.Errorf("invalid offset %q: hours must be between -14 and 14", location)
		}
		return time.FixedZone("UTC"+location, hours*60*60), nil
	}
	if h, m, ok := strings.Cut(location, ":"); ok && (strings.HasPrefix(h, "+") || strings.HasPrefix(h, "-")) {
		hours, err := strconv.Atoi(h)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: %w", location, err)
		}
		minutes, err := strconv.Atoi(m)
		if err != nil || minutes < 0 || minutes > 59 {
			return nil, fmt.Errorf("invalid offset %q: minutes must be between 0 and 59", location)
		}
		offset := hours*60*60 + minutes*60
		if strings.HasPrefix(h, "-") {
			offset = hours*60*60 - minutes*60
		}
		return time.FixedZone("UTC"+location, offset), nil
	}
	return time.LoadLocation(location)
}
