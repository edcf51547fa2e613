package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestChainHeightGaugeReportsValue(t *testing.T) {
	ChainHeightGauge.Set(7)
	require.Equal(t, float64(7), testutil.ToFloat64(ChainHeightGauge))
}

func TestBlocksMinedTotalIncrements(t *testing.T) {
	before := testutil.ToFloat64(BlocksMinedTotal)
	BlocksMinedTotal.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(BlocksMinedTotal))
}

func TestRegistryGatherIncludesRegisteredMetrics(t *testing.T) {
	families, err := Registry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
