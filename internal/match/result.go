package match

import (
	"sort"
	"strings"

	"github.com/sevasaathi/sevasaathi/internal/scheme"
)

// Scoring weights shared by the rule-based matcher and the reasoning-service
// prompt. The values mirror each other so both strategies rank on the same
// scale.
const (
	ScoreStateMatch         = 30
	ScorePrimaryTarget      = 25
	ScoreCategoryMatch      = 20
	ScoreAgeAppropriate     = 15
	ScoreAdditionalCriteria = 10

	// RuleThreshold is the minimum unclamped rule score for inclusion.
	RuleThreshold = 60
	// AIMinimumScore is the inclusion floor communicated to the reasoning service.
	AIMinimumScore = 40
	// MaxAICandidates bounds how many scheme summaries go into a single request.
	MaxAICandidates = 15
	// MaxDisplayResults caps the ranked list returned for display.
	MaxDisplayResults = 10

	// MaxScore is the clamp ceiling for a matching score.
	MaxScore = 100
)

// Result is one ranked eligibility match: a scheme, a clamped score, and a
// human-readable explanation. Results are ephemeral, rebuilt on every
// matching call.
type Result struct {
	SchemeName  string         `json:"scheme_name"`
	Score       int            `json:"matching_score"`
	Explanation string         `json:"eligibility_explanation"`
	Scheme      *scheme.Record `json:"scheme_details,omitempty"`
}

// NewResult builds a result with the score clamped to [0,100].
func NewResult(record *scheme.Record, score int, explanation string) *Result {
	name := ""
	if record != nil {
		name = record.Name
	}
	return &Result{
		SchemeName:  name,
		Score:       ClampScore(score),
		Explanation: explanation,
		Scheme:      record,
	}
}

// ClampScore bounds a matching score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// JoinReasons joins reason strings with "; ", falling back to the provided
// default when none fired.
func JoinReasons(reasons []string, fallback string) string {
	filtered := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		reason = strings.TrimSpace(reason)
		if reason != "" {
			filtered = append(filtered, reason)
		}
	}

	if len(filtered) == 0 {
		return fallback
	}
	return strings.Join(filtered, "; ")
}

// SortResults orders results by descending score. The sort is stable so
// equal-scored results keep their input order.
func SortResults(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
