package match

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sevasaathi/sevasaathi/internal/profile"
	"github.com/sevasaathi/sevasaathi/internal/scheme"
)

const defaultRuleExplanation = "General eligibility match"

var (
	disabilityKeywords = []string{"disabled", "pwd", "disability", "handicapped"}
	womenKeywords      = []string{"women", "girl", "female", "mahila"}
	categoryKeywords   = []string{"sc", "st", "obc", "minority", "scheduled caste", "scheduled tribe"}
)

// RuleMatcher is the deterministic scoring strategy. Scoring is a pure
// function of (profile, scheme): no I/O, no randomness, identical inputs
// always yield identical scores and reasons.
type RuleMatcher struct {
	threshold int
	logger    *zap.Logger
}

func NewRuleMatcher(logger *zap.Logger) *RuleMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleMatcher{
		threshold: RuleThreshold,
		logger:    logger,
	}
}

// ScoreAll scores every catalog record against the profile and returns the
// records at or above the inclusion threshold, sorted by descending score.
// The error is always nil; the signature satisfies the Scorer strategy
// interface.
func (m *RuleMatcher) ScoreAll(_ context.Context, p *profile.Profile, catalog *scheme.Schemes) ([]*Result, error) {
	if catalog == nil {
		return nil, nil
	}

	results := make([]*Result, 0)
	for _, record := range catalog.Items {
		score, reasons := m.Score(p, record)
		if score < m.threshold {
			continue
		}

		results = append(results, NewResult(record, score, JoinReasons(reasons, defaultRuleExplanation)))
	}

	SortResults(results)

	m.logger.Debug("rule-based matching completed",
		zap.Int("catalog_size", catalog.Len()),
		zap.Int("eligible", len(results)),
		zap.Int("threshold", m.threshold),
	)

	return results, nil
}

// Score computes the additive rule score for one scheme. Each component is
// computed independently; the returned total is unclamped.
func (m *RuleMatcher) Score(p *profile.Profile, record *scheme.Record) (int, []string) {
	if p == nil {
		p = profile.New()
	}

	score := 0
	reasons := make([]string, 0, 6)

	if points, reason := stateScore(p, record); points > 0 {
		score += points
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	if disabilityMatch(p, record) {
		score += ScorePrimaryTarget
		reasons = append(reasons, "Disability benefits available")
	}

	if points, reason := occupationScore(p, record); points > 0 {
		score += points
		reasons = append(reasons, reason)
	}

	if genderMatch(p, record) {
		score += ScoreCategoryMatch
		reasons = append(reasons, "Women/Girl focused scheme")
	}

	if ageAppropriate(p, record) {
		score += ScoreAgeAppropriate
		reasons = append(reasons, "Age appropriate for education scheme")
	}

	if categoryMatch(p, record) {
		score += ScoreCategoryMatch
		reasons = append(reasons, "Social category benefits")
	}

	return score, reasons
}

// stateScore awards the state points when the profile has no state (vacuous
// match), the scheme is national, or the profile state appears in the scheme
// state. The reason is only reported when the user actually stated a state.
func stateScore(p *profile.Profile, record *scheme.Record) (int, string) {
	userState := strings.ToLower(strings.TrimSpace(p.State))
	schemeState := record.StateText()

	matched := userState == "" ||
		schemeState == "all india" ||
		strings.Contains(schemeState, "all states") ||
		strings.Contains(schemeState, userState)

	if !matched {
		return 0, ""
	}

	if userState == "" {
		return ScoreStateMatch, ""
	}
	return ScoreStateMatch, "State eligibility matched"
}

func disabilityMatch(p *profile.Profile, record *scheme.Record) bool {
	if !p.HasDisability() {
		return false
	}
	return record.HasAnyCriteria(disabilityKeywords...)
}

func occupationScore(p *profile.Profile, record *scheme.Record) (int, string) {
	occupation := strings.ToLower(strings.TrimSpace(p.Occupation))
	if occupation == "" {
		return 0, ""
	}

	switch {
	case occupation == "farmer" && record.HasAnyTag("farmer", "agriculture"):
		return ScorePrimaryTarget, "Farmer/Agriculture scheme"
	case occupation == "student" && record.HasAnyTag("student", "education"):
		return ScorePrimaryTarget, "Student/Education scheme"
	case occupation == "unemployed" && record.HasAnyTag("employment", "job"):
		return ScoreAdditionalCriteria, "Employment scheme"
	}

	return 0, ""
}

func genderMatch(p *profile.Profile, record *scheme.Record) bool {
	if !strings.EqualFold(strings.TrimSpace(p.Gender), "female") {
		return false
	}
	return record.HasAnyTag(womenKeywords...)
}

func ageAppropriate(p *profile.Profile, record *scheme.Record) bool {
	if p.Age <= 0 {
		return false
	}

	if p.Age <= 25 && record.HasAnyTag("student", "education") {
		return true
	}

	if p.Age >= 60 && record.HasAnyTag("senior", "elderly") {
		return true
	}

	return false
}

func categoryMatch(p *profile.Profile, record *scheme.Record) bool {
	category := strings.ToUpper(strings.TrimSpace(p.Category))
	if category != "SC" && category != "ST" && category != "OBC" {
		return false
	}
	return record.HasAnyCriteria(categoryKeywords...)
}
