package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_Every(t *testing.T) {
	var calls atomic.Int32
	h := NewScheduler().Every(5*time.Millisecond, func() { calls.Add(1) })
	defer h.Stop()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestScheduler_StopHaltsCallbacks(t *testing.T) {
	var calls atomic.Int32
	h := NewScheduler().Every(2*time.Millisecond, func() { calls.Add(1) })

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	h.Stop()
	h.Stop()

	// Allow one callback that was already running when Stop was called.
	time.Sleep(10 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, calls.Load())
}
