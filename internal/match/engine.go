package match

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sevasaathi/sevasaathi/internal/profile"
	"github.com/sevasaathi/sevasaathi/internal/scheme"
)

// ErrUnavailable is the distinguished failure signal a scoring strategy
// returns when the matching service could not produce a usable result
// (transport failure, timeout, unparseable response). The engine reacts by
// falling back to the deterministic strategy.
var ErrUnavailable = errors.New("matching service unavailable")

// Scorer is the strategy interface shared by the reasoning-service matcher
// and the rule-based matcher.
type Scorer interface {
	ScoreAll(ctx context.Context, p *profile.Profile, catalog *scheme.Schemes) ([]*Result, error)
}

// Engine orchestrates eligibility matching: it routes to the primary
// (reasoning-service) strategy when one is configured and the profile has
// content, and falls back to the deterministic strategy on failure or empty
// output. The engine holds no per-request state; all session state is owned
// by the caller.
type Engine struct {
	primary    Scorer
	fallback   Scorer
	maxResults int
	logger     *zap.Logger
}

// NewEngine builds an engine. primary may be nil when no reasoning-service
// credential is configured; every request then routes to fallback directly.
func NewEngine(primary, fallback Scorer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		primary:    primary,
		fallback:   fallback,
		maxResults: MaxDisplayResults,
		logger:     logger,
	}
}

// FindEligible returns the ranked eligibility list for the profile against
// the catalog. All failures are recovered internally; the result is always a
// well-formed (possibly empty) list.
func (e *Engine) FindEligible(ctx context.Context, p *profile.Profile, catalog *scheme.Schemes) []*Result {
	if catalog.Len() == 0 {
		return nil
	}

	if e.primary == nil || p.IsEmpty() {
		return e.runFallback(ctx, p, catalog)
	}

	results, err := e.primary.ScoreAll(ctx, p, catalog)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			e.logger.Warn("matching service unavailable, falling back to rule-based matching", zap.Error(err))
		} else {
			e.logger.Warn("primary matching failed, falling back to rule-based matching", zap.Error(err))
		}
		return e.runFallback(ctx, p, catalog)
	}

	if len(results) == 0 {
		// An empty result is indistinguishable from a soft failure here;
		// both re-score with the deterministic rules.
		e.logger.Info("primary matching returned no schemes, falling back to rule-based matching")
		return e.runFallback(ctx, p, catalog)
	}

	if len(results) > e.maxResults {
		results = results[:e.maxResults]
	}

	return results
}

func (e *Engine) runFallback(ctx context.Context, p *profile.Profile, catalog *scheme.Schemes) []*Result {
	if e.fallback == nil {
		return nil
	}

	results, err := e.fallback.ScoreAll(ctx, p, catalog)
	if err != nil {
		e.logger.Error("rule-based matching failed", zap.Error(err))
		return nil
	}

	return results
}
