// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package log

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navwar/gocopy/pkg/ts"
)

func TestTextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewTextLogger(buf, ts.ParseLayout("DateTime"), time.FixedZone("UTC+8", 8*60*60))
	logger.now = func() time.Time { return testNow }

	require.NoError(t, logger.Log("Copying", map[string]interface{}{
		"src":       "/src",
		"jobs":      4,
		"recursive": true,
		"counts":    map[string]int{"files": 7},
		"error":     errors.New("boom"),
		"precision": time.Second,
	}))
	assert.Equal(t, "2023-04-05 14:07:08 Copying counts={\"files\":7} error=\"boom\" jobs=4 precision=\"1s\" recursive=true src=\"/src\"\n", buf.String())

	buf.Reset()
	require.NoError(t, logger.Log("Copied"))
	assert.Equal(t, "2023-04-05 14:07:08 Copied\n", buf.String())
}
