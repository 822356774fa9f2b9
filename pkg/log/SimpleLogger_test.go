// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)

func TestSimpleLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSimpleLogger(buf)
	logger.now = func() time.Time { return testNow }

	require.NoError(t, logger.Log("Copying", map[string]interface{}{"src": "/src", "jobs": 4}, map[string]interface{}{"dst": "/dst"}))
	require.NoError(t, logger.Log("Copied"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	obj := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &obj))
	assert.Equal(t, map[string]interface{}{
		"msg":  "Copying",
		"ts":   "2023-04-05T06:07:08Z",
		"src":  "/src",
		"dst":  "/dst",
		"jobs": float64(4),
	}, obj)

	obj = map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &obj))
	assert.Equal(t, "Copied", obj["msg"])
}

func TestSimpleLoggerReservedFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSimpleLogger(buf)
	require.NoError(t, logger.Log("File", map[string]interface{}{"msg": "overridden"}))
	obj := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &obj))
	assert.Equal(t, "File", obj["msg"])
}

func TestSimpleLoggerConcurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSimpleLogger(buf)
	wg := &sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = logger.Log("File", map[string]interface{}{"i": i})
		}(i)
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 10)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)), line)
	}
}

func TestSimpleLoggerUnsupportedValue(t *testing.T) {
	logger := NewSimpleLogger(&bytes.Buffer{})
	assert.Error(t, logger.Log("File", map[string]interface{}{"c": make(chan int)}))
}
