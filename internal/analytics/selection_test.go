package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"berlinstats/internal/analytics"
)

func TestSelectionToggle(t *testing.T) {
	var s analytics.Selection

	assert.Equal(t, analytics.SelectionEmpty, s.State())
	assert.False(t, s.CanCompare())

	assert.True(t, s.Toggle(4))
	assert.Equal(t, analytics.SelectionPartial, s.State())
	assert.False(t, s.CanCompare())

	assert.True(t, s.Toggle(1))
	assert.Equal(t, analytics.SelectionReady, s.State())
	assert.True(t, s.CanCompare())

	assert.True(t, s.Toggle(9))
	assert.True(t, s.Full())
	assert.Equal(t, []int{4, 1, 9}, s.IDs())

	// a fourth id is ignored
	assert.False(t, s.Toggle(7))
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Contains(7))

	// removing keeps the order of the rest
	assert.True(t, s.Toggle(1))
	assert.Equal(t, []int{4, 9}, s.IDs())
	assert.Equal(t, analytics.SelectionReady, s.State())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, analytics.SelectionEmpty, s.State())
}

func TestSelectionToggleTwiceRestores(t *testing.T) {
	testCases := []struct {
		name  string
		start []int
		id    int
	}{
		{"empty", nil, 1},
		{"partial", []int{2}, 5},
		{"ready", []int{2, 3}, 5},
		{"present id", []int{2, 3}, 2},
		{"full with absent id", []int{1, 2, 3}, 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := analytics.NewSelection(tc.start...)
			before := s.IDs()

			s.Toggle(tc.id)
			s.Toggle(tc.id)

			assert.ElementsMatch(t, before, s.IDs())
			assert.Equal(t, len(before), s.Len())
		})
	}
}

func TestNewSelection(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, analytics.NewSelection(1, 2, 3, 4).IDs())
	assert.Equal(t, []int{2}, analytics.NewSelection(1, 2, 1).IDs())

	s := analytics.NewSelection(5, 6)
	ids := s.IDs()
	ids[0] = 99
	assert.Equal(t, []int{5, 6}, s.IDs())
}
