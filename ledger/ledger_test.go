package ledger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger_Snapshot(t *testing.T) {
	l := New()
	l.RecordAttempt()
	l.RecordAttempt()
	l.RecordAttempt()
	l.RecordPaid(2, "aa")
	l.RecordPaid(5, "bb")

	s := l.Snapshot()
	assert.Equal(t, int64(3), s.TotalCalls)
	assert.Equal(t, int64(2), s.PaidCalls)
	assert.Equal(t, int64(7), s.TotalVolumeMinor)
	assert.Equal(t, "0.07", s.TotalVolume)
	assert.Equal(t, 2, s.UniqueUsers)
}

func TestLedger_DuplicateFingerprint(t *testing.T) {
	l := New()
	l.RecordPaid(2, "same")
	l.RecordPaid(2, "same")
	l.RecordPaid(2, "")

	s := l.Snapshot()
	assert.Equal(t, int64(3), s.PaidCalls)
	assert.Equal(t, 1, s.UniqueUsers)
}

func TestLedger_EmptySnapshot(t *testing.T) {
	s := New().Snapshot()
	assert.Equal(t, int64(0), s.TotalCalls)
	assert.Equal(t, "0.00", s.TotalVolume)
	assert.Equal(t, 0, s.UniqueUsers)
}

func TestLedger_ConcurrentUpdates(t *testing.T) {
	l := New()

	const workers = 32
	const perWorker = 250

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				l.RecordAttempt()
				if i%2 == 0 {
					l.RecordPaid(3, fmt.Sprintf("payer-%d", w))
				}
				s := l.Snapshot()
				assert.LessOrEqual(t, s.PaidCalls, s.TotalCalls)
			}
		}(w)
	}
	wg.Wait()

	s := l.Snapshot()
	assert.Equal(t, int64(workers*perWorker), s.TotalCalls)
	assert.Equal(t, int64(workers*perWorker/2), s.PaidCalls)
	assert.Equal(t, int64(workers*perWorker/2*3), s.TotalVolumeMinor)
	assert.Equal(t, workers, s.UniqueUsers)
}
