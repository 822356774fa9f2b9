// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package log

import (
	"fmt"
	"strings"

	"github.com/aws/smithy-go/logging"

	"github.com/navwar/gocopy/pkg/fs"
)

// ClientLogger writes the events of the AWS SDK to a logger.
type ClientLogger struct {
	logger fs.Logger
}

func (c *ClientLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	event := fmt.Sprintf(format, v...)
	msg := "Client Event"
	details := event
	for _, prefix := range []string{"Request Signature", "Request", "Response"} {
		if strings.HasPrefix(event, prefix+":\n") {
			msg, details = prefix, event[len(prefix)+2:]
			break
		}
		if strings.HasPrefix(event, prefix+"\n") {
			msg, details = prefix, event[len(prefix)+1:]
			break
		}
	}
	// logging.Logger cannot return an error
	_ = c.logger.Log(msg, map[string]interface{}{
		"classification": string(classification),
		"details":        details,
	})
}

func NewClientLogger(logger fs.Logger) *ClientLogger {
	return &ClientLogger{logger: logger}
}

var _ logging.Logger = (*ClientLogger)(nil)
