package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDIsTimeSortable(t *testing.T) {
	previous := NewID()
	for i := 0; i < 100; i++ {
		next := NewID()
		assert.True(t, IsValidID(next))
		assert.LessOrEqual(t, previous, next)
		previous = next
	}
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("00000000-0000-7000-8000-000000000001"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("not-an-id"))
}

func TestIntFromString(t *testing.T) {
	tests := []struct {
		input        string
		defaultValue int
		expected     int
	}{
		{"42", 0, 42},
		{"-7", 0, -7},
		{"", 20, 20},
		{"abc", 20, 20},
		{"3.5", 20, 20},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IntFromString(tt.input, tt.defaultValue))
		})
	}
}

func TestToJson(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(ToJson(map[string]int{"a": 1})))
}
