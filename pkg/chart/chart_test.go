package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/pkg/types"
)

func TestRenderProducesPNG(t *testing.T) {
	samples := []types.Sample{
		{Timestamp: 1_700_000_000, CPUPct: 10, MemPct: 40, NetInBps: 1e6, NetOutBps: 5e5, DiskUsedPct: 50},
		{Timestamp: 1_700_000_060, CPUPct: 20, MemPct: 42, NetInBps: 2e6, NetOutBps: 1e6, DiskUsedPct: 50},
		{Timestamp: 1_700_000_120, CPUPct: 90, MemPct: 45, NetInBps: 3e7, NetOutBps: 2e6, DiskUsedPct: 51},
	}

	data, err := Render(samples)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestRenderNotEnoughData(t *testing.T) {
	_, err := Render(nil)
	assert.ErrorIs(t, err, ErrNotEnoughData)

	_, err = Render([]types.Sample{{Timestamp: 1}})
	assert.ErrorIs(t, err, ErrNotEnoughData)
}
