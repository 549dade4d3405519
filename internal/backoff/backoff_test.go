package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cloud37-dev/s3-operator/internal/config"
)

func testCfg() *config.Backoff {
	return &config.Backoff{
		Base:        time.Second,
		Cap:         60 * time.Second,
		Multiplier:  2,
		Jitter:      0.1,
		MaxAttempts: 5,
	}
}

func TestNextGrowsAndStaysBounded(t *testing.T) {
	tr := NewTracker(testCfg())

	prev := time.Duration(0)
	for i := 0; i < 10; i++ {
		d := tr.Next("default/bucket-a")
		assert.LessOrEqual(t, d, 60*time.Second+6*time.Second, "delay never exceeds cap plus jitter")
		if i > 0 && i < 4 {
			assert.Greater(t, d, prev/2, "delays trend upward while under the cap")
		}
		prev = d
	}
	assert.True(t, tr.Exhausted("default/bucket-a"))
}

func TestNextPinsAtCapAfterBudget(t *testing.T) {
	tr := NewTracker(testCfg())
	key := "default/bucket-b"
	for i := 0; i < 5; i++ {
		tr.Next(key)
	}
	assert.Equal(t, 60*time.Second, tr.Next(key))
}

func TestResetClearsStreak(t *testing.T) {
	tr := NewTracker(testCfg())
	key := "default/bucket-c"
	tr.Next(key)
	tr.Next(key)
	assert.Equal(t, 2, tr.Attempts(key))

	tr.Reset(key)
	assert.Equal(t, 0, tr.Attempts(key))
	assert.False(t, tr.Exhausted(key))

	d := tr.Next(key)
	assert.LessOrEqual(t, d, 1100*time.Millisecond, "streak restarts at the base delay")
}

func TestKeysAreIndependent(t *testing.T) {
	tr := NewTracker(testCfg())
	for i := 0; i < 4; i++ {
		tr.Next("default/x")
	}
	assert.Equal(t, 0, tr.Attempts("default/y"))
	d := tr.Next("default/y")
	assert.LessOrEqual(t, d, 1100*time.Millisecond)
}
