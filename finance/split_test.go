package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSplitSinglePocket(t *testing.T) {
	split, err := ComputeSplit(1, 150.0)
	require.NoError(t, err)

	assert.InDelta(t, 150.0, split.Gross, 1e-9)
	assert.InDelta(t, 129.3103, split.OriginalAmount, 0.001)
	assert.InDelta(t, 12.931, split.TithingAmount, 0.001)
	assert.InDelta(t, 9.0, split.ProcessingFee, 1e-9)
	assert.InDelta(t, 128.069, split.NetToGrower, 0.001)

	sum := split.TithingAmount + split.ProcessingFee + split.NetToGrower
	assert.InDelta(t, split.Gross, sum, 0.01)
}

func TestComputeSplitGrossIsCountTimesPrice(t *testing.T) {
	split, err := ComputeSplit(3, 150.0)
	require.NoError(t, err)
	assert.InDelta(t, 450.0, split.Gross, 1e-9)
}

func TestComputeSplitReconciles(t *testing.T) {
	prices := []float64{0.01, 1, 25.5, 150, 999.99, 12345.67}
	for _, price := range prices {
		for count := 1; count <= 250; count += 7 {
			split, err := ComputeSplit(count, price)
			require.NoError(t, err)

			sum := split.TithingAmount + split.ProcessingFee + split.NetToGrower
			assert.InDelta(t, split.Gross, sum, 0.01,
				"count=%d price=%v", count, price)
			assert.InDelta(t, split.Gross, split.OriginalAmount*1.16, 0.01)
		}
	}
}

func TestComputeSplitTitheOnOriginalNotGross(t *testing.T) {
	split, err := ComputeSplit(1, 116.0)
	require.NoError(t, err)

	// original backs out to exactly 100, so the tithe must be 10, not 11.6
	assert.InDelta(t, 100.0, split.OriginalAmount, 1e-9)
	assert.InDelta(t, 10.0, split.TithingAmount, 1e-9)
}

func TestComputeSplitRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		count int
		price float64
	}{
		{"zero count", 0, 150},
		{"negative count", -3, 150},
		{"zero price", 5, 0},
		{"negative price", 5, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeSplit(tc.count, tc.price)
			assert.Error(t, err)
		})
	}
}
