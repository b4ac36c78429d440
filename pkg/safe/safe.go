// Package safe provides overflow-checked arithmetic and conversions for
// ledger amounts.
package safe

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a result does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

type signed interface {
	~int | ~int32 | ~int64
}

// Add returns a+b or ErrOverflow.
func Add(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("add %d and %d: %w", a, b, ErrOverflow)
	}
	return a + b, nil
}

// Sub returns a-b or ErrOverflow.
func Sub(a, b int64) (int64, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, fmt.Errorf("sub %d from %d: %w", b, a, ErrOverflow)
	}
	return a - b, nil
}

// Uint32 converts a non-negative signed value to uint32.
func Uint32[T signed](v T) (uint32, error) {
	if v < 0 || int64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of uint32 range: %w", v, ErrOverflow)
	}
	return uint32(v), nil
}

// Uint64 converts a non-negative signed value to uint64.
func Uint64[T signed](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range: %w", v, ErrOverflow)
	}
	return uint64(v), nil
}
