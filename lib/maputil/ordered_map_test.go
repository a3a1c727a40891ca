package maputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedMap(t *testing.T) {
	{
		// Empty
		m := NewOrderedMap[int]()
		assert.Equal(t, 0, m.Len())
		assert.Empty(t, m.Values())
	}
	{
		// Insertion order is preserved, replacing a key keeps its position
		m := NewOrderedMap[int]()
		m.Add("c", 1)
		m.Add("a", 2)
		m.Add("b", 3)
		m.Add("a", 4)

		assert.Equal(t, 3, m.Len())
		assert.Equal(t, []int{1, 4, 3}, m.Values())
	}
	{
		// AddIfAbsent keeps the first value, keys are case sensitive
		m := NewOrderedMap[string]()
		assert.True(t, m.AddIfAbsent("job-1", "first"))
		assert.False(t, m.AddIfAbsent("job-1", "second"))
		assert.True(t, m.AddIfAbsent("JOB-1", "upper"))

		assert.Equal(t, 2, m.Len())
		assert.Equal(t, []string{"first", "upper"}, m.Values())
	}
}
