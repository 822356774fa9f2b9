// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/navwar/gocopy/pkg/ts"
)

// SimpleLogger writes one JSON object per line.
type SimpleLogger struct {
	encoder  *json.Encoder
	mutex    *sync.Mutex
	layout   ts.Layout
	location *time.Location
	now      func() time.Time
}

func (s *SimpleLogger) Log(msg string, fields ...map[string]interface{}) error {
	obj := map[string]interface{}{}
	for _, f := range fields {
		for k, v := range f {
			obj[k] = v
		}
	}
	obj["msg"] = msg
	obj["ts"] = s.layout.FormatIn(s.now(), s.location)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.encoder.Encode(obj); err != nil {
		return fmt.Errorf("error encoding log message %q: %w", msg, err)
	}
	return nil
}

func NewSimpleLogger(w io.Writer) *SimpleLogger {
	return NewSimpleLoggerWithLayout(w, ts.NamedLayouts["RFC3339Nano"], time.UTC)
}

func NewSimpleLoggerWithLayout(w io.Writer, layout ts.Layout, location *time.Location) *SimpleLogger {
	return &SimpleLogger{
		encoder:  json.NewEncoder(w),
		mutex:    &sync.Mutex{},
		layout:   layout,
		location: location,
		now:      time.Now,
	}
}
