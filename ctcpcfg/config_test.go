package ctcpcfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg, err := New(4096, 4096, time.Second, 0, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxRetransmits, cfg.MaxRetransmits)
	require.Equal(t, MaxMSS, cfg.MSS)
}

func TestNewRejectsNonPositiveWindows(t *testing.T) {
	_, err := New(0, 4096, time.Second, 0, 0)
	require.Error(t, err)

	_, err = New(4096, -1, time.Second, 0, 0)
	require.Error(t, err)
}

func TestNewRejectsNonPositiveTimeout(t *testing.T) {
	_, err := New(4096, 4096, 0, 0, 0)
	require.Error(t, err)
}

func TestNewRejectsMSSAboveMax(t *testing.T) {
	_, err := New(4096, 4096, time.Second, 0, MaxMSS+1)
	require.Error(t, err)
}

func TestNewKeepsExplicitValues(t *testing.T) {
	cfg, err := New(8192, 16384, 3*time.Second, 10, 512)
	require.NoError(t, err)
	require.Equal(t, 8192, cfg.SendWindow)
	require.Equal(t, 16384, cfg.RecvWindow)
	require.Equal(t, 3*time.Second, cfg.RTTimeout)
	require.Equal(t, 10, cfg.MaxRetransmits)
	require.Equal(t, 512, cfg.MSS)
}
