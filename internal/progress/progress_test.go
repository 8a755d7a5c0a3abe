package progress

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_ConcurrentTicks(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrackerTo(&buf, "Finding reachable items", 50)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Tick()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), tr.Current())
	tr.FinishSuccess()
}

func TestTracker_FinishError(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrackerTo(&buf, "docs", 2)
	tr.Tick()
	tr.FinishError(errors.New("bad document"))

	assert.Contains(t, buf.String(), "docs error: bad document")
}
