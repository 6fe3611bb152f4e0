package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlagsHasAndWith(t *testing.T) {
	f := FlagACK.With(FlagFIN)
	require.True(t, f.Has(FlagACK))
	require.True(t, f.Has(FlagFIN))
	require.True(t, f.Has(FlagACK|FlagFIN))
}

func TestFlagsMaskDropsReservedBits(t *testing.T) {
	f := Flags(0xffffffff).Mask()
	require.Equal(t, FlagACK|FlagFIN, f)
}

func TestFlagsString(t *testing.T) {
	require.Equal(t, "-", Flags(0).String())
	require.Equal(t, "A", FlagACK.String())
	require.Equal(t, "AF", (FlagACK | FlagFIN).String())
}
