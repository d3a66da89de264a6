package resilience

import (
	"testing"
	"time"

	"whale_analyzer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAtThresholdAndRecovers(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	b := NewCircuitBreaker(3, 5*time.Minute)
	b.now = func() time.Time { return now }

	const ep = "covalent:balances"
	assert.False(t, b.RecordFailure(ep))
	assert.False(t, b.RecordFailure(ep))
	require.NoError(t, b.Allow(ep))
	assert.True(t, b.RecordFailure(ep), "third failure trips the breaker")

	err := b.Allow(ep)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrCircuitOpen)

	now = base.Add(4 * time.Minute)
	assert.True(t, b.IsOpen(ep))

	now = base.Add(5 * time.Minute)
	assert.NoError(t, b.Allow(ep), "cooldown elapsed")
	assert.False(t, b.RecordFailure(ep), "counter restarted after cooldown")
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	b := NewCircuitBreaker(2, time.Minute)
	b.RecordFailure("a")
	b.RecordSuccess("a")
	assert.False(t, b.RecordFailure("a"))
	assert.NoError(t, b.Allow("a"))
}

func TestCircuitBreaker_EndpointsAreIndependent(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute)
	b.RecordFailure("a")
	assert.True(t, b.IsOpen("a"))
	assert.False(t, b.IsOpen("b"))
}
