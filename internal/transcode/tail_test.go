package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTail(t *testing.T) {
	testCases := []struct {
		Name     string
		Capacity int
		Lines    []string
		Expected []string
	}{
		{Name: "empty", Capacity: 3, Lines: nil, Expected: []string{}},
		{Name: "partial", Capacity: 3, Lines: []string{"a", "b"}, Expected: []string{"a", "b"}},
		{Name: "exactly full", Capacity: 3, Lines: []string{"a", "b", "c"}, Expected: []string{"a", "b", "c"}},
		{Name: "wrapped", Capacity: 3, Lines: []string{"a", "b", "c", "d", "e"}, Expected: []string{"c", "d", "e"}},
		{Name: "zero capacity", Capacity: 0, Lines: []string{"a"}, Expected: []string{}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			tail := newTail(testCase.Capacity)
			for _, line := range testCase.Lines {
				tail.Add(line)
			}
			assert.Equal(t, testCase.Expected, append([]string{}, tail.Lines()...))
		})
	}
}

func TestTailString(t *testing.T) {
	tail := newTail(2)
	tail.Add("first")
	tail.Add("second")
	tail.Add("third")

	assert.Equal(t, "second; third", tail.String())
}
