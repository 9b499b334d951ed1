package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/planty/pkg/money"
)

func TestTimes(t *testing.T) {
	assert.Equal(t, 300.0, money.Times(100, 3))
	assert.Equal(t, 100.0, money.Times(50, 2))
	assert.Equal(t, 0.3, money.Times(0.1, 3))
	assert.Equal(t, 59.97, money.Times(19.99, 3))
}

func TestTimesRoundsToCents(t *testing.T) {
	assert.Equal(t, 3.35, money.Times(1.115, 3))
	assert.Equal(t, 0.0, money.Times(12.5, 0))
}

func TestUnit(t *testing.T) {
	assert.Equal(t, 10.0, money.Unit(30, 3))
	assert.Equal(t, 3.33, money.Unit(9.99, 3))
	assert.Equal(t, 0.0, money.Unit(5, 0))
}
