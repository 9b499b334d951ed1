package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/planty/pkg/collection"
)

type line struct {
	plant string
	qty   int
}

func TestPluckDeduplicatesInOrder(t *testing.T) {
	lines := []line{{"fern", 1}, {"agave", 2}, {"fern", 3}}

	got := collection.Pluck(lines, func(l line) string { return l.plant })
	assert.Equal(t, []string{"fern", "agave"}, got)
}

func TestPluckEmpty(t *testing.T) {
	got := collection.Pluck([]line(nil), func(l line) string { return l.plant })
	assert.Empty(t, got)
}

func TestKeyByLastWins(t *testing.T) {
	lines := []line{{"fern", 1}, {"agave", 2}, {"fern", 3}}

	byPlant := collection.KeyBy(lines, func(l line) string { return l.plant })
	assert.Len(t, byPlant, 2)
	assert.Equal(t, 3, byPlant["fern"].qty)
}

func TestMap(t *testing.T) {
	assert.Equal(t, []int{2, 4}, collection.Map([]int{1, 2}, func(i int) int { return i * 2 }))
}
