// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the default error returned by an injected fault.
var ErrInjected = errors.New("injected fault")

type Operation string

const (
	OperationCopy    Operation = "copy"
	OperationMkdir   Operation = "mkdir"
	OperationOpen    Operation = "open"
	OperationReadDir Operation = "readdir"
	OperationStat    Operation = "stat"
)

// Fault describes when an operation should fail.
type Fault struct {
	Operation Operation
	// Match is a substring of the path.  An empty string matches every path.
	Match string
	// Skip is the number of matching calls that succeed before the fault fires.
	Skip int
	// Times is the number of times the fault fires.  Zero means every time.
	Times int
	// Err is the error returned.  Defaults to ErrInjected.
	Err error
}

type faultState struct {
	fault Fault
	calls int
	fired int
}

// FaultyFileSystem wraps a FileSystem and fails selected operations.
type FaultyFileSystem struct {
	FileSystem
	mu     sync.Mutex
	faults []*faultState
}

func (f *FaultyFileSystem) Inject(fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, &faultState{fault: fault})
}

func (f *FaultyFileSystem) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = nil
}

func (f *FaultyFileSystem) check(op Operation, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.faults {
		if s.fault.Operation != op {
			continue
		}
		if len(s.fault.Match) > 0 && !strings.Contains(name, s.fault.Match) {
			continue
		}
		s.calls++
		if s.calls <= s.fault.Skip {
			continue
		}
		if s.fault.Times > 0 && s.fired >= s.fault.Times {
			continue
		}
		s.fired++
		err := s.fault.Err
		if err == nil {
			err = ErrInjected
		}
		return fmt.Errorf("%s %q: %w", op, name, err)
	}
	return nil
}

func (f *FaultyFileSystem) Copy(ctx context.Context, source string, destination string) error {
	if err := f.check(OperationCopy, source); err != nil {
		return err
	}
	return f.FileSystem.Copy(ctx, source, destination)
}

func (f *FaultyFileSystem) Mkdir(ctx context.Context, name string, mode os.FileMode) error {
	if err := f.check(OperationMkdir, name); err != nil {
		return err
	}
	return f.FileSystem.Mkdir(ctx, name, mode)
}

func (f *FaultyFileSystem) MkdirAll(ctx context.Context, name string, mode os.FileMode) error {
	if err := f.check(OperationMkdir, name); err != nil {
		return err
	}
	return f.FileSystem.MkdirAll(ctx, name, mode)
}

func (f *FaultyFileSystem) Open(ctx context.Context, name string) (File, error) {
	if err := f.check(OperationOpen, name); err != nil {
		return nil, err
	}
	return f.FileSystem.Open(ctx, name)
}

func (f *FaultyFileSystem) ReadDir(ctx context.Context, name string) ([]FileInfo, error) {
	if err := f.check(OperationReadDir, name); err != nil {
		return nil, err
	}
	return f.FileSystem.ReadDir(ctx, name)
}

func (f *FaultyFileSystem) Stat(ctx context.Context, name string) (FileInfo, error) {
	if err := f.check(OperationStat, name); err != nil {
		return nil, err
	}
	return f.FileSystem.Stat(ctx, name)
}

// NewFaultyFileSystem returns a FaultyFileSystem with no faults.
func NewFaultyFileSystem(fileSystem FileSystem) *FaultyFileSystem {
	return &FaultyFileSystem{
		FileSystem: fileSystem,
	}
}
