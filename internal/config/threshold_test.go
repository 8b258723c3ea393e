package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThresholdFallsBackToStandard(t *testing.T) {
	assert.Equal(t, 17, NewThreshold(0).Get())
	assert.Equal(t, 17, NewThreshold(30).Get())
	assert.Equal(t, 15, NewThreshold(15).Get())
}

func TestThresholdSetValidatesRange(t *testing.T) {
	th := NewThreshold(17)

	for _, v := range []int{0, -1, 22} {
		assert.ErrorIs(t, th.Set(v), ErrThresholdRange)
	}
	assert.Equal(t, 17, th.Get())

	require.NoError(t, th.Set(1))
	assert.Equal(t, 1, th.Get())
	require.NoError(t, th.Set(21))
	assert.Equal(t, 21, th.Get())
}

func TestThresholdNotifiesOnChangeOnly(t *testing.T) {
	th := NewThreshold(17)
	var seen []int
	th.Subscribe(func(v int) { seen = append(seen, v) })

	require.NoError(t, th.Set(15))
	require.NoError(t, th.Set(15))
	assert.Error(t, th.Set(40))
	require.NoError(t, th.Set(18))

	assert.Equal(t, []int{15, 18}, seen)
}

func TestThresholdReset(t *testing.T) {
	th := NewThreshold(16)
	var seen []int
	th.Subscribe(func(v int) { seen = append(seen, v) })

	require.NoError(t, th.Set(12))
	th.Reset()

	assert.Equal(t, 16, th.Get())
	assert.Equal(t, []int{12, 16}, seen)
}

// Subscribers may read the threshold from inside the callback.
func TestThresholdSubscriberCanRead(t *testing.T) {
	th := NewThreshold(17)
	var got int
	th.Subscribe(func(int) { got = th.Get() })

	require.NoError(t, th.Set(19))
	assert.Equal(t, 19, got)
}
