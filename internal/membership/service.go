package membership

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
	"github.com/afkahka/kfccfk/pkg/metrics"
)

// LevelInfo is the resolved growth/level pair after a recalculation.
type LevelInfo struct {
	Growth    int64 `json:"growth"`
	LevelType int   `json:"level_type"`
}

// AccrualResult describes what one settled order credited to the account.
type AccrualResult struct {
	CoinsAdded  int64           `json:"coins_added"`
	GrowthAdded int64           `json:"growth_added"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	Growth      int64           `json:"growth"`
	LevelType   int             `json:"level_type"`
}

// ServiceParams groups dependencies for the membership service.
type ServiceParams struct {
	Accounts AccountRepository
	Levels   LevelRepository
	Metrics  *metrics.LoyaltyMetrics
}

// Service is the accrual engine: the only writer of coins, growth_value and
// level_type.
type Service struct {
	accounts AccountRepository
	levels   LevelRepository
	metrics  *metrics.LoyaltyMetrics
}

// NewService builds a membership service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Accounts == nil {
		return nil, errors.New("account repository is required")
	}
	if params.Levels == nil {
		return nil, errors.New("level repository is required")
	}
	return &Service{
		accounts: params.Accounts,
		levels:   params.Levels,
		metrics:  params.Metrics,
	}, nil
}

// AddCoins applies delta to the user's coin balance as a single atomic
// increment and returns the stored balance after the update.
func (s *Service) AddCoins(ctx context.Context, userID int64, delta int64) (int64, error) {
	affected, err := s.accounts.IncrementBalances(ctx, userID, delta, 0)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coins")
	}
	if !affected {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	// Re-read so the caller sees the stored balance, not a locally computed one.
	user, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read coin balance")
	}
	if user == nil {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user.Coins, nil
}

// AddGrowth applies a non-negative growth delta and re-resolves the level.
// Growth never decreases through this path.
func (s *Service) AddGrowth(ctx context.Context, userID int64, delta int64) (*LevelInfo, error) {
	if delta < 0 {
		delta = 0
	}

	affected, err := s.accounts.IncrementBalances(ctx, userID, 0, delta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment growth")
	}
	if !affected {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	return s.RecalcLevel(ctx, userID)
}

// RecalcLevel resolves the user's stored growth against the level table and
// writes the level back when it changed. No other path may set level_type.
func (s *Service) RecalcLevel(ctx context.Context, userID int64) (*LevelInfo, error) {
	user, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read account")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	levels, err := s.levels.ListLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member levels")
	}

	resolved, err := ResolveLevel(user.GrowthValue, levels)
	if err != nil {
		return nil, err
	}

	if user.LevelType == nil || *user.LevelType != resolved {
		if _, err := s.accounts.SetLevel(ctx, userID, resolved); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist level")
		}
	}

	return &LevelInfo{Growth: user.GrowthValue, LevelType: resolved}, nil
}

// OnOrderPaid credits coins and growth for one settled order. The multiplier
// of the level held before this order is used; an upgrade earned by the order
// takes effect starting with the next one.
func (s *Service) OnOrderPaid(ctx context.Context, userID int64, amount decimal.Decimal) (*AccrualResult, error) {
	user, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		s.metrics.IncAccrual("error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read account")
	}
	if user == nil {
		s.metrics.IncAccrual("not_found")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	levelType := 1
	if user.LevelType != nil {
		levelType = *user.LevelType
	}

	// A failed reference read degrades to the default multiplier table rather
	// than blocking the accrual.
	levels, err := s.levels.ListLevels(ctx)
	if err != nil {
		levels = nil
	}
	multiplier := MultiplierFor(levelType, levels)

	if amount.IsNegative() {
		amount = decimal.Zero
	}

	coinsAdded := amount.Floor().IntPart()
	growthAdded := amount.Mul(multiplier).Floor().IntPart()

	affected, err := s.accounts.IncrementBalances(ctx, userID, coinsAdded, growthAdded)
	if err != nil {
		s.metrics.IncAccrual("error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply accrual")
	}
	if !affected {
		s.metrics.IncAccrual("not_found")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	info, err := s.RecalcLevel(ctx, userID)
	if err != nil {
		s.metrics.IncAccrual("error")
		return nil, err
	}

	s.metrics.IncAccrual("ok")
	s.metrics.AddAccrued(coinsAdded, growthAdded)

	return &AccrualResult{
		CoinsAdded:  coinsAdded,
		GrowthAdded: growthAdded,
		Multiplier:  multiplier,
		Growth:      info.Growth,
		LevelType:   info.LevelType,
	}, nil
}

// ListLevels exposes the tier table for the member reference endpoints.
func (s *Service) ListLevels(ctx context.Context) ([]models.MemberLevel, error) {
	levels, err := s.levels.ListLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member levels")
	}
	return levels, nil
}
