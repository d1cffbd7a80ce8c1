// File: wrapper.go
// Title: SmartScript Dynamic Values
// Description: Wrapper holds a dynamically typed script value and implements
//              the arithmetic and comparison rules of the interpreter. Null,
//              integers, doubles and numeric strings are coerced through one
//              function; every other type is rejected.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-07
// Modified: 2026-03-21
//
// Change History:
// - 2026-03-07 v0.1.0: Initial implementation
// - 2026-03-09 v0.1.1: Integer power, Java style double text
// - 2026-03-21 v0.1.2: Integer results computed in double and truncated

package value

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrDivisionByZero is returned when both operands of a division are integers
// and the divisor is zero. Divisions involving a double follow IEEE 754.
var ErrDivisionByZero = errors.New("integer division by zero")

// CoercionError reports a value that cannot take part in arithmetic
type CoercionError struct {
	Value  any
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot use %#v (%T) as a number: %s", e.Value, e.Value, e.Reason)
}

// Wrapper is a mutable holder for a script value. The held value is nil,
// int32, float64, string or any other Go value; only the first four can be
// used as operands.
type Wrapper struct {
	value any
}

// New wraps v. Plain Go ints are stored as int32.
func New(v any) *Wrapper {
	return &Wrapper{value: normalize(v)}
}

// Value returns the held value
func (w *Wrapper) Value() any {
	return w.value
}

// SetValue replaces the held value
func (w *Wrapper) SetValue(v any) {
	w.value = normalize(v)
}

// Copy returns an independent wrapper holding the same value
func (w *Wrapper) Copy() *Wrapper {
	return &Wrapper{value: w.value}
}

// Add stores receiver + other in the receiver
func (w *Wrapper) Add(other any) error {
	return w.apply(other, opAdd)
}

// Subtract stores receiver - other in the receiver
func (w *Wrapper) Subtract(other any) error {
	return w.apply(other, opSub)
}

// Multiply stores receiver * other in the receiver
func (w *Wrapper) Multiply(other any) error {
	return w.apply(other, opMul)
}

// Divide stores receiver / other in the receiver
func (w *Wrapper) Divide(other any) error {
	return w.apply(other, opDiv)
}

// Power stores receiver raised to other in the receiver
func (w *Wrapper) Power(other any) error {
	return w.apply(other, opPow)
}

// NumCompare compares the receiver with other numerically and returns -1, 0
// or +1. NaN sorts before every other double.
func (w *Wrapper) NumCompare(other any) (int, error) {
	a, b, err := coercePair(w.value, unwrap(other))
	if err != nil {
		return 0, err
	}
	if ai, ok := a.(int32); ok {
		if bi, ok := b.(int32); ok {
			return cmp.Compare(ai, bi), nil
		}
	}
	return cmp.Compare(toFloat(a), toFloat(b)), nil
}

// String renders the value the way scripts print it
func (w *Wrapper) String() string {
	return Format(w.value)
}

// Format renders v the way scripts print it: nil as "null", integers in
// decimal, doubles in the canonical double notation.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return FormatDouble(x)
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// FormatDouble formats f like "13.0", "0.001", "1.0E7" or "1.234E-5".
// Magnitudes in [1e-3, 1e7) use plain notation, all others scientific.
func FormatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	if abs := math.Abs(f); abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 64), "E")
	if !strings.ContainsRune(mantissa, '.') {
		mantissa += ".0"
	}
	e, _ := strconv.Atoi(exp)
	return mantissa + "E" + strconv.Itoa(e)
}

type operation int

const (
	opAdd operation = iota
	opSub
	opMul
	opDiv
	opPow
)

func (w *Wrapper) apply(other any, op operation) error {
	a, b, err := coercePair(w.value, unwrap(other))
	if err != nil {
		return err
	}

	ai, aInt := a.(int32)
	bi, bInt := b.(int32)
	if aInt && bInt {
		result, err := intOp(ai, bi, op)
		if err != nil {
			return err
		}
		w.value = result
		return nil
	}

	w.value = floatOp(toFloat(a), toFloat(b), op)
	return nil
}

// intOp applies op to two integers in double precision and truncates the
// result back to an integer. Results outside the int32 range saturate.
func intOp(a, b int32, op operation) (any, error) {
	if op == opDiv && b == 0 {
		return nil, ErrDivisionByZero
	}
	return truncate(floatOp(float64(a), float64(b), op)), nil
}

// truncate converts f to int32 toward zero. NaN becomes 0, out of range
// values clamp to the int32 bounds.
func truncate(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func floatOp(a, b float64, op operation) float64 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	case opDiv:
		return a / b
	default:
		return pow(a, b)
	}
}

// pow is math.Pow with half-integer exponents of positive bases computed as
// x^n * sqrt(x), which keeps results like 2^1.5 correctly rounded.
func pow(x, y float64) float64 {
	if x > 0 && !math.IsInf(y, 0) && y != math.Trunc(y) && 2*y == math.Trunc(2*y) {
		n := math.Floor(y)
		return math.Pow(x, n) * math.Sqrt(x)
	}
	return math.Pow(x, y)
}

func coercePair(a, b any) (any, any, error) {
	ca, err := Coerce(a)
	if err != nil {
		return nil, nil, err
	}
	cb, err := Coerce(b)
	if err != nil {
		return nil, nil, err
	}
	return ca, cb, nil
}

// Coerce converts v into an int32 or float64 operand. nil becomes int32(0);
// a string containing '.' or 'E' is parsed as a double, any other string as
// an integer.
func Coerce(v any) (any, error) {
	switch x := normalize(v).(type) {
	case nil:
		return int32(0), nil
	case int32, float64:
		return x, nil
	case string:
		if strings.ContainsAny(x, ".E") {
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, &CoercionError{Value: x, Reason: "not a valid double"}
			}
			return f, nil
		}
		i, err := strconv.ParseInt(x, 10, 32)
		if err != nil {
			return nil, &CoercionError{Value: x, Reason: "not a valid integer"}
		}
		return int32(i), nil
	default:
		return nil, &CoercionError{Value: x, Reason: "unsupported type"}
	}
}

func normalize(v any) any {
	if i, ok := v.(int); ok {
		return int32(i)
	}
	return v
}

func unwrap(v any) any {
	if w, ok := v.(*Wrapper); ok {
		if w == nil {
			return nil
		}
		return w.value
	}
	return normalize(v)
}

func toFloat(v any) float64 {
	if i, ok := v.(int32); ok {
		return float64(i)
	}
	return v.(float64)
}
