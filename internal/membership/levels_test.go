package membership

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
)

func int64Ptr(v int64) *int64 { return &v }

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func testLevels() []models.MemberLevel {
	return []models.MemberLevel{
		{LevelType: 1, GrowthValueMin: 0, GrowthValueMax: int64Ptr(499)},
		{LevelType: 2, GrowthValueMin: 500, GrowthValueMax: int64Ptr(1999)},
		{LevelType: 3, GrowthValueMin: 2000, GrowthValueMax: int64Ptr(4999)},
		{LevelType: 4, GrowthValueMin: 5000, GrowthValueMax: nil},
	}
}

func TestResolveLevel(t *testing.T) {
	levels := testLevels()

	cases := []struct {
		name   string
		growth int64
		want   int
	}{
		{name: "zero growth is lowest tier", growth: 0, want: 1},
		{name: "upper boundary inclusive", growth: 499, want: 1},
		{name: "lower boundary inclusive", growth: 500, want: 2},
		{name: "mid range", growth: 3000, want: 3},
		{name: "top tier unbounded", growth: 1_000_000, want: 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveLevel(tc.growth, levels)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveLevelFallsBackToLowestOrdinal(t *testing.T) {
	// A gap in the configured ranges must not fail resolution.
	levels := []models.MemberLevel{
		{LevelType: 1, GrowthValueMin: 100, GrowthValueMax: int64Ptr(499)},
		{LevelType: 2, GrowthValueMin: 500, GrowthValueMax: nil},
	}

	got, err := ResolveLevel(50, levels)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestResolveLevelEmptyTable(t *testing.T) {
	_, err := ResolveLevel(100, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfiguration))
}

func TestMultiplierFor(t *testing.T) {
	levels := []models.MemberLevel{
		{LevelType: 1, GrowthMultiplier: nil},
		{LevelType: 2, GrowthMultiplier: decimalPtr("1.25")},
	}

	assert.True(t, MultiplierFor(2, levels).Equal(decimal.RequireFromString("1.25")))

	// Unset multiplier falls back to the default table.
	assert.True(t, MultiplierFor(1, levels).Equal(decimal.RequireFromString("1.00")))
	assert.True(t, MultiplierFor(3, nil).Equal(decimal.RequireFromString("1.10")))

	// Unknown tier degrades to the neutral multiplier.
	assert.True(t, MultiplierFor(9, nil).Equal(decimal.NewFromInt(1)))
}
