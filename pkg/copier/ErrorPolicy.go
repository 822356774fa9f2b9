// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package copier

import (
	"sync"

	"github.com/navwar/gocopy/pkg/fs"
)

// ErrorPolicy decides whether a failure aborts the copy or is logged and skipped.
// Only the first failure that aborts the copy is kept.
type ErrorPolicy struct {
	ignoreErrors bool
	logger       fs.Logger
	mu           sync.Mutex
	first        *Error
}

// Handle returns the error if it aborts the copy, otherwise logs it and returns nil.
func (p *ErrorPolicy) Handle(err *Error) error {
	if p.ignoreErrors && !err.Kind.Fatal() {
		if p.logger != nil {
			_ = p.logger.Log("Ignoring error", map[string]interface{}{
				"op":    string(err.Op),
				"path":  err.Path,
				"kind":  string(err.Kind),
				"error": err.Err.Error(),
			})
		}
		return nil
	}
	return p.Abort(err)
}

// Abort records the error as aborting the copy.
func (p *ErrorPolicy) Abort(err *Error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.first == nil {
		p.first = err
	}
	return err
}

func (p *ErrorPolicy) Aborted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.first != nil
}

// Err returns the first error that aborted the copy, or nil.
func (p *ErrorPolicy) Err() *Error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.first
}

func NewErrorPolicy(ignoreErrors bool, logger fs.Logger) *ErrorPolicy {
	return &ErrorPolicy{
		ignoreErrors: ignoreErrors,
		logger:       logger,
	}
}
