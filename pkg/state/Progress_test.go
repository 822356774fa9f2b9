// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package state

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBeginComplete(t *testing.T) {
	p := NewProgress(&State{
		WorkInProgress: []string{"/src/a"},
		LastFile:       "/src/a",
		Counts:         Counts{Directories: 2, Files: 3, Copies: 1},
	})

	p.Begin("/src/a")
	p.Begin("/src/b")
	assert.Equal(t, []string{"/src/a", "/src/b"}, p.Snapshot().WorkInProgress)

	assert.Equal(t, int64(4), p.Complete("/src/a", false))
	assert.Equal(t, int64(5), p.Complete("/src/b", true))

	st := p.Snapshot()
	assert.Empty(t, st.WorkInProgress)
	assert.Equal(t, "/src/b", st.LastFile)
	assert.Equal(t, Counts{Directories: 2, Files: 5, Copies: 2}, st.Counts)
}

func TestProgressRetry(t *testing.T) {
	p := NewProgress(&State{
		WorkInProgress: []string{"/src/a"},
		LastFile:       "/src/c",
	})

	p.Retry("/src/a")
	p.Retry("/src/b")
	st := p.Snapshot()
	assert.Equal(t, []string{"/src/a", "/src/b"}, st.WorkInProgress)
	assert.Equal(t, "/src/c", st.LastFile)
}

func TestProgressSnapshotIsCopy(t *testing.T) {
	p := NewProgress(nil)
	p.Begin("/src/a")
	st := p.Snapshot()
	st.WorkInProgress[0] = "/changed"
	assert.Equal(t, []string{"/src/a"}, p.Snapshot().WorkInProgress)
}

func TestProgressConcurrent(t *testing.T) {
	p := NewProgress(nil)
	wg := sync.WaitGroup{}
	for i := 0; i < 64; i++ {
		name := fmt.Sprintf("/src/file%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Enter(name + "_directory")
			p.Begin(name)
			p.Complete(name, true)
		}()
	}
	wg.Wait()
	st := p.Snapshot()
	assert.Empty(t, st.WorkInProgress)
	assert.Equal(t, Counts{Directories: 64, Files: 64, Copies: 64}, st.Counts)
}

func TestProgressEnter(t *testing.T) {
	p := NewProgress(nil)
	p.Enter("/src")
	p.Begin("/src/file1")
	p.Enter("/src/a")
	st := p.Snapshot()
	assert.Equal(t, "/src/a", st.LastFile)
	assert.Equal(t, []string{"/src/file1"}, st.WorkInProgress)
	assert.Equal(t, Counts{Directories: 2}, st.Counts)
}

func TestProgressFinish(t *testing.T) {
	p := NewProgress(nil)
	p.Begin("/src/file1")
	p.Begin("/src/file2")
	p.Complete("/src/file2", true)

	// work in progress keeps the cursor
	p.Finish()
	assert.Equal(t, "/src/file2", p.Snapshot().LastFile)
	assert.True(t, p.Snapshot().Resumable())

	p.Complete("/src/file1", true)
	p.Finish()
	st := p.Snapshot()
	assert.Empty(t, st.LastFile)
	assert.False(t, st.Resumable())
	assert.Equal(t, Counts{Files: 2, Copies: 2}, st.Counts)
}
