// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/navwar/gocopy/pkg/ts"
)

// TextLogger writes one human readable line per message,
// with the fields sorted by key, e.g.,
//
//	2023-04-05T06:07:08.000Z Copying dst="/dst" jobs=4 src="/src"
type TextLogger struct {
	writer   io.Writer
	mutex    *sync.Mutex
	layout   ts.Layout
	location *time.Location
	now      func() time.Time
}

func formatValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return strconv.Quote(value)
	case error:
		return strconv.Quote(value.Error())
	case fmt.Stringer:
		return strconv.Quote(value.String())
	case bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return fmt.Sprint(value)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return strconv.Quote(fmt.Sprint(v))
	}
	return string(b)
}

func (t *TextLogger) Log(msg string, fields ...map[string]interface{}) error {
	obj := map[string]interface{}{}
	for _, f := range fields {
		for k, v := range f {
			obj[k] = v
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(t.layout.FormatIn(t.now(), t.location))
	b.WriteString(" ")
	b.WriteString(msg)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(formatValue(obj[k]))
	}
	b.WriteString("\n")

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, err := io.WriteString(t.writer, b.String()); err != nil {
		return fmt.Errorf("error writing log message %q: %w", msg, err)
	}
	return nil
}

func NewTextLogger(w io.Writer, layout ts.Layout, location *time.Location) *TextLogger {
	return &TextLogger{
		writer:   w,
		mutex:    &sync.Mutex{},
		layout:   layout,
		location: location,
		now:      time.Now,
	}
}
