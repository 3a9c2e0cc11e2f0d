package membership

import (
	"github.com/shopspring/decimal"

	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
)

// defaultGrowthMultipliers backs MultiplierFor when the level table does not
// carry a growth_multiplier for a tier.
var defaultGrowthMultipliers = map[int]decimal.Decimal{
	1: decimal.NewFromFloat(1.00),
	2: decimal.NewFromFloat(1.05),
	3: decimal.NewFromFloat(1.10),
	4: decimal.NewFromFloat(1.15),
}

// ResolveLevel maps a growth value onto the level table. Levels must be
// ordered by level_type ascending; a nil GrowthValueMax is treated as
// unbounded. When growth falls outside every range the lowest-ordinal level
// is returned, so resolution never fails for a non-empty table.
func ResolveLevel(growth int64, levels []models.MemberLevel) (int, error) {
	if len(levels) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeConfiguration, "member level table is empty")
	}

	for _, lvl := range levels {
		if growth < lvl.GrowthValueMin {
			continue
		}
		if lvl.GrowthValueMax == nil || growth <= *lvl.GrowthValueMax {
			return lvl.LevelType, nil
		}
	}

	return levels[0].LevelType, nil
}

// MultiplierFor returns the growth multiplier for a tier. It degrades to the
// default table and finally to 1.00 instead of failing, since it gates
// monetary accrual.
func MultiplierFor(levelType int, levels []models.MemberLevel) decimal.Decimal {
	for _, lvl := range levels {
		if lvl.LevelType != levelType {
			continue
		}
		if lvl.GrowthMultiplier != nil {
			return *lvl.GrowthMultiplier
		}
		break
	}
	if mult, ok := defaultGrowthMultipliers[levelType]; ok {
		return mult
	}
	return decimal.NewFromInt(1)
}
