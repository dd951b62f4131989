package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1000, "1000.0"},
		{999.99, "999.99"},
		{2.5, "2.5"},
		{10.0, "10.0"},
		{0, "0.0"},
		{-3.75, "-3.75"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDecimal(tt.in))
	}
}

func TestFormatDecimalComma(t *testing.T) {
	assert.Equal(t, "2,5", FormatDecimalComma(2.5))
	assert.Equal(t, "10,0", FormatDecimalComma(10.0))
	assert.Equal(t, "1000,0", FormatDecimalComma(1000))
}
