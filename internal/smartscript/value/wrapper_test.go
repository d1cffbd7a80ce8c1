package value

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapper_Add(t *testing.T) {
	tests := []struct {
		name     string
		left     any
		right    any
		expected any
	}{
		{"null plus null", nil, nil, int32(0)},
		{"numeric string plus int", "12", 1, int32(13)},
		{"exponent string plus int", "1.2E1", 1, 13.0},
		{"int plus double", int32(2), 0.5, 2.5},
		{"double plus null", 1.5, nil, 1.5},
		{"exponent without dot", "1E3", 0, 1000.0},
		{"negative string", "-4", int32(4), int32(0)},
		{"int32 saturates high", int32(math.MaxInt32), 1, int32(math.MaxInt32)},
		{"int32 saturates low", int32(math.MinInt32), -1, int32(math.MinInt32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.left)
			require.NoError(t, w.Add(tt.right))
			assert.Equal(t, tt.expected, w.Value())
		})
	}
}

func TestWrapper_AddRejectsNonNumeric(t *testing.T) {
	tests := []struct {
		name  string
		left  any
		right any
	}{
		{"word", "Ankica", 1},
		{"word on right", 1, "Ankica"},
		{"bad double", "1.2.3", 1},
		{"lowercase exponent", "1e3", 1},
		{"boolean", true, 1},
		{"int64 overflow string", "99999999999", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.left)
			err := w.Add(tt.right)
			require.Error(t, err)
			var coercionErr *CoercionError
			assert.True(t, errors.As(err, &coercionErr))
			assert.Equal(t, New(tt.left).Value(), w.Value(), "receiver must be unchanged on error")
		})
	}
}

func TestWrapper_OperandNotMutated(t *testing.T) {
	a := New(int32(5))
	b := New("7")
	require.NoError(t, a.Add(b))
	assert.Equal(t, int32(12), a.Value())
	assert.Equal(t, "7", b.Value())
}

func TestWrapper_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func(w *Wrapper, other any) error
		left     any
		right    any
		expected any
	}{
		{"subtract ints", (*Wrapper).Subtract, 3, 5, int32(-2)},
		{"subtract doubles", (*Wrapper).Subtract, 3.5, 0.5, 3.0},
		{"multiply ints", (*Wrapper).Multiply, 6, 7, int32(42)},
		{"multiply mixed", (*Wrapper).Multiply, 2, 1.5, 3.0},
		{"divide truncates", (*Wrapper).Divide, 7, 2, int32(3)},
		{"divide negative truncates", (*Wrapper).Divide, -7, 2, int32(-3)},
		{"divide double", (*Wrapper).Divide, 7.0, 2, 3.5},
		{"divide double by zero", (*Wrapper).Divide, 1.0, 0, math.Inf(1)},
		{"power ints", (*Wrapper).Power, 2, 10, int32(1024)},
		{"power zero exponent", (*Wrapper).Power, 9, 0, int32(1)},
		{"power negative exponent truncates", (*Wrapper).Power, 2, -1, int32(0)},
		{"power negative base", (*Wrapper).Power, -2, 3, int32(-8)},
		{"power overflow saturates", (*Wrapper).Power, 2, 40, int32(math.MaxInt32)},
		{"power half exponent", (*Wrapper).Power, 2.0, 1.5, 2.8284271247461903},
		{"power half exponent larger", (*Wrapper).Power, 2.0, 2.5, 5.656854249492381},
		{"power negative half exponent", (*Wrapper).Power, 4.0, -0.5, 0.5},
		{"multiply overflow saturates", (*Wrapper).Multiply, 100000, 100000, int32(math.MaxInt32)},
		{"multiply underflow saturates", (*Wrapper).Multiply, -100000, 100000, int32(math.MinInt32)},
		{"divide min by minus one saturates", (*Wrapper).Divide, int32(math.MinInt32), -1, int32(math.MaxInt32)},
		{"power double", (*Wrapper).Power, 1.5, 2, 2.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.left)
			require.NoError(t, tt.op(w, tt.right))
			assert.Equal(t, tt.expected, w.Value())
		})
	}
}

func TestWrapper_IntegerDivisionByZero(t *testing.T) {
	w := New(10)
	err := w.Divide(0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, int32(10), w.Value())

	w = New(0.0)
	require.NoError(t, w.Divide(0))
	assert.True(t, math.IsNaN(w.Value().(float64)))
}

func TestWrapper_NumCompare(t *testing.T) {
	tests := []struct {
		name     string
		left     any
		right    any
		expected int
	}{
		{"less", 1, 2, -1},
		{"equal", 3, "3", 0},
		{"greater", 2.5, 2, 1},
		{"null equals zero", nil, 0, 0},
		{"string double", "1.5", 1.5, 0},
		{"NaN before numbers", math.NaN(), -1e300, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.left).NumCompare(tt.right)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := New("abc").NumCompare(1)
	assert.Error(t, err)
}

func TestWrapper_String(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, "null"},
		{int32(-17), "-17"},
		{13.0, "13.0"},
		{0.5, "0.5"},
		{0.001, "0.001"},
		{1e7, "1.0E7"},
		{12345678.9, "1.23456789E7"},
		{0.0001234, "1.234E-4"},
		{0.0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{"text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.value).String())
		})
	}
}

func TestWrapper_Copy(t *testing.T) {
	a := New(1)
	b := a.Copy()
	require.NoError(t, b.Add(1))
	assert.Equal(t, int32(1), a.Value())
	assert.Equal(t, int32(2), b.Value())
}
