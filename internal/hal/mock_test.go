package hal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alibirb/gogrind/internal/hal"
)

func TestMockGPIOWriteThenRead(t *testing.T) {
	m := hal.NewMockGPIO()
	require.NoError(t, m.SetMode(5, hal.Output))
	require.NoError(t, m.DigitalWrite(5, true))

	v, err := m.DigitalRead(5)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestMockGPIOWatchEdgeInvokesCallbackOnInject(t *testing.T) {
	m := hal.NewMockGPIO()
	var gotPin int
	var gotValue bool
	require.NoError(t, m.WatchEdge(7, hal.EdgeBoth, func(pin int, value bool) {
		gotPin, gotValue = pin, value
	}))

	m.Inject(7, true)
	assert.Equal(t, 7, gotPin)
	assert.True(t, gotValue)
}

func TestMockGPIOActivePinsTracksMode(t *testing.T) {
	m := hal.NewMockGPIO()
	require.NoError(t, m.SetMode(1, hal.Output))
	require.NoError(t, m.SetMode(2, hal.Input))

	active := m.ActivePins()
	assert.Equal(t, hal.Output, active[1])
	assert.Equal(t, hal.Input, active[2])
}

func TestMockGPIOWatchEdgeNoneCancelsWatch(t *testing.T) {
	m := hal.NewMockGPIO()
	called := false
	require.NoError(t, m.WatchEdge(3, hal.EdgeBoth, func(int, bool) { called = true }))
	require.NoError(t, m.WatchEdge(3, hal.EdgeNone, nil))

	m.Inject(3, true)
	assert.False(t, called, "cancelled watch must not fire")
}
