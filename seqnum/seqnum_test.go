package seqnum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	require.Equal(t, Value(5), Value(2).Add(3))
	require.Equal(t, Value(0), Value(math.MaxUint32).Add(1))
}

func TestLessThan(t *testing.T) {
	require.True(t, Value(1).LessThan(Value(2)))
	require.False(t, Value(2).LessThan(Value(1)))
	require.False(t, Value(2).LessThan(Value(2)))
}

func TestWraparoundOrdering(t *testing.T) {
	// math.MaxUint32 logically precedes 1 once the space has wrapped.
	require.True(t, Value(math.MaxUint32).LessThan(Value(1)))
	require.True(t, Value(1).GreaterThan(Value(math.MaxUint32)))
}

func TestLessThanEqAndGreaterThanEq(t *testing.T) {
	require.True(t, Value(3).LessThanEq(Value(3)))
	require.True(t, Value(3).GreaterThanEq(Value(3)))
	require.True(t, Value(4).GreaterThanEq(Value(3)))
	require.False(t, Value(2).GreaterThanEq(Value(3)))
}

func TestInRange(t *testing.T) {
	require.True(t, Value(5).InRange(Value(1), Value(10)))
	require.False(t, Value(10).InRange(Value(1), Value(10))) // half-open: b excluded
	require.True(t, Value(1).InRange(Value(1), Value(10)))   // a included
	require.False(t, Value(0).InRange(Value(1), Value(10)))
}

func TestSize(t *testing.T) {
	require.Equal(t, Size(10), Value(5).Size(Value(15)))
}
