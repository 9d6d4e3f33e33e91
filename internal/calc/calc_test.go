package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 10.0, PercentChange(110, 100))
	assert.Equal(t, -5.0, PercentChange(95, 100))
	assert.Equal(t, 0.0, PercentChange(100, 100))
	assert.Equal(t, 0.0, PercentChange(110, 0))
	assert.Equal(t, 33.33, PercentChange(4, 3))
}

func TestMidPrice(t *testing.T) {
	assert.Equal(t, 2.5, MidPrice(2.0, 3.0))
	assert.Equal(t, 3.0, MidPrice(0, 3.0))
	assert.Equal(t, 2.0, MidPrice(2.0, 0))
	assert.Equal(t, 0.0, MidPrice(0, 0))
	assert.Equal(t, 0.0, MidPrice(-1, -1))
}

func TestMoneyness(t *testing.T) {
	assert.Equal(t, 1.0, Moneyness(450, 450))
	assert.Equal(t, 0.956, Moneyness(430, 450))
	assert.Equal(t, 1.044, Moneyness(470, 450))
	assert.Equal(t, 0.0, Moneyness(450, 0))
}

func TestWithinMoneynessRange(t *testing.T) {
	// The band is inclusive on both ends.
	assert.True(t, WithinMoneynessRange(MinMoneyness, MinMoneyness, MaxMoneyness))
	assert.True(t, WithinMoneynessRange(MaxMoneyness, MinMoneyness, MaxMoneyness))
	assert.True(t, WithinMoneynessRange(1.0, MinMoneyness, MaxMoneyness))
	assert.False(t, WithinMoneynessRange(0.849, MinMoneyness, MaxMoneyness))
	assert.False(t, WithinMoneynessRange(1.151, MinMoneyness, MaxMoneyness))
}

func TestSafeFloat(t *testing.T) {
	assert.Equal(t, 1.5, SafeFloat(1.5))
	assert.Equal(t, 2.0, SafeFloat(2))
	assert.Equal(t, 3.0, SafeFloat(int64(3)))
	assert.Equal(t, 0.0, SafeFloat(nil))
	assert.Equal(t, 0.0, SafeFloat("4.2"))
	assert.Equal(t, 0.0, SafeFloat(map[string]any{}))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, 0.956, Round3(0.95555))
	assert.Equal(t, 0.1235, Round4(0.12345))
}
