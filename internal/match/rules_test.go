package match

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sevasaathi/sevasaathi/internal/profile"
	"github.com/sevasaathi/sevasaathi/internal/scheme"
)

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	p := &profile.Profile{State: "Maharashtra", Occupation: "farmer", Category: "SC", Age: 62, Gender: "female"}
	record := &scheme.Record{
		Name:                "Everything Scheme",
		State:               "All India",
		Tags:                "farmer, agriculture, women, senior",
		EligibilityCriteria: "open to SC/ST households",
	}

	firstScore, firstReasons := matcher.Score(p, record)
	secondScore, secondReasons := matcher.Score(p, record)

	if firstScore != secondScore {
		t.Fatalf("expected identical scores, got %d and %d", firstScore, secondScore)
	}

	if !reflect.DeepEqual(firstReasons, secondReasons) {
		t.Fatalf("expected identical reasons, got %v and %v", firstReasons, secondReasons)
	}
}

func TestScoreVacuousStateMatch(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	record := &scheme.Record{Name: "Any", State: "Karnataka", Tags: "pension"}

	score, reasons := matcher.Score(profile.New(), record)

	if score != ScoreStateMatch {
		t.Fatalf("expected vacuous state match worth %d, got %d", ScoreStateMatch, score)
	}

	if len(reasons) != 0 {
		t.Fatalf("expected no reason for vacuous state match, got %v", reasons)
	}
}

func TestScoreStateReasonOnlyWhenStated(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	p := &profile.Profile{State: "Karnataka"}
	record := &scheme.Record{Name: "Any", State: "Karnataka"}

	_, reasons := matcher.Score(p, record)

	if len(reasons) != 1 || reasons[0] != "State eligibility matched" {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}

func TestScoreScenarioAllIndiaFarmer(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	p := &profile.Profile{State: "Maharashtra", Occupation: "farmer"}
	record := &scheme.Record{Name: "A", State: "All India", Tags: "farmer, agriculture"}

	score, _ := matcher.Score(p, record)

	if score != 55 {
		t.Fatalf("expected 55 (state 30 + occupation 25), got %d", score)
	}

	results, err := matcher.ScoreAll(context.Background(), p, &scheme.Schemes{Items: []*scheme.Record{record}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 0 {
		t.Fatalf("expected 55 to be below the %d threshold, got %d results", RuleThreshold, len(results))
	}
}

func TestScoreScenarioCategoryPushesOverThreshold(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	p := &profile.Profile{State: "Maharashtra", Occupation: "farmer", Category: "SC"}
	record := &scheme.Record{
		Name:                "B",
		State:               "Maharashtra",
		Tags:                "farmer, agriculture, employment",
		EligibilityCriteria: "open to SC/ST",
	}

	score, reasons := matcher.Score(p, record)

	if score != 75 {
		t.Fatalf("expected 75, got %d", score)
	}

	explanation := JoinReasons(reasons, defaultRuleExplanation)
	for _, expected := range []string{"State eligibility matched", "Farmer/Agriculture scheme", "Social category benefits"} {
		if !strings.Contains(explanation, expected) {
			t.Fatalf("expected explanation to contain %q, got %q", expected, explanation)
		}
	}

	results, err := matcher.ScoreAll(context.Background(), p, &scheme.Schemes{Items: []*scheme.Record{record}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected inclusion above threshold, got %d results", len(results))
	}
}

func TestScoreAllEmptyProfileNeverReachesThreshold(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	catalog := &scheme.Schemes{Items: []*scheme.Record{
		{Name: "One", State: "All India", Tags: "farmer, women, student, senior", EligibilityCriteria: "SC/ST"},
		{Name: "Two", State: "Kerala", Tags: "employment"},
	}}

	results, err := matcher.ScoreAll(context.Background(), profile.New(), catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 0 {
		t.Fatalf("expected empty result for an empty profile, got %d", len(results))
	}
}

func TestScoreAllThresholdLaw(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	p := &profile.Profile{State: "Bihar", Occupation: "student", Age: 20, Gender: "female", Category: "OBC", Disability: "yes"}
	catalog := &scheme.Schemes{Items: []*scheme.Record{
		{Name: "Low", State: "Punjab", Tags: "pension"},
		{Name: "High", State: "All India", Tags: "student, education, women", EligibilityCriteria: "OBC applicants"},
		{Name: "Mid", State: "All India", Tags: "housing"},
	}}

	results, err := matcher.ScoreAll(context.Background(), p, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, result := range results {
		score, _ := matcher.Score(p, result.Scheme)
		if score < RuleThreshold {
			t.Fatalf("result %q has unclamped score %d below threshold", result.SchemeName, score)
		}
		if result.Score < 0 || result.Score > MaxScore {
			t.Fatalf("result %q has out-of-range display score %d", result.SchemeName, result.Score)
		}
	}
}

func TestScoreClampedInResult(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	// Everything fires: 30 + 25 + 25 + 20 + 15 + 20 = 135 before clamping.
	p := &profile.Profile{
		State:      "Maharashtra",
		Occupation: "farmer",
		Category:   "SC",
		Age:        62,
		Gender:     "female",
		Disability: "yes",
	}
	record := &scheme.Record{
		Name:                "Kitchen Sink",
		State:               "All India",
		Tags:                "farmer, agriculture, women, senior, disability",
		EligibilityCriteria: "open to SC/ST",
	}

	score, _ := matcher.Score(p, record)
	if score <= MaxScore {
		t.Fatalf("expected unclamped score above %d, got %d", MaxScore, score)
	}
	if score > 145 {
		t.Fatalf("unclamped score %d exceeds the rule-sum bound", score)
	}

	results, err := matcher.ScoreAll(context.Background(), p, &scheme.Schemes{Items: []*scheme.Record{record}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 || results[0].Score != MaxScore {
		t.Fatalf("expected clamped score %d, got %+v", MaxScore, results)
	}
}

func TestScoreAllStableSortOnTies(t *testing.T) {
	t.Parallel()

	matcher := NewRuleMatcher(zap.NewNop())
	p := &profile.Profile{State: "Assam", Occupation: "farmer", Category: "ST"}

	first := &scheme.Record{Name: "First", State: "All India", Tags: "farmer", EligibilityCriteria: "ST families"}
	second := &scheme.Record{Name: "Second", State: "All India", Tags: "agriculture", EligibilityCriteria: "ST families"}
	catalog := &scheme.Schemes{Items: []*scheme.Record{first, second}}

	results, err := matcher.ScoreAll(context.Background(), p, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected both schemes included, got %d", len(results))
	}

	if results[0].Score != results[1].Score {
		t.Fatalf("expected a tie, got %d and %d", results[0].Score, results[1].Score)
	}

	if results[0].SchemeName != "First" || results[1].SchemeName != "Second" {
		t.Fatalf("expected catalog order preserved on ties, got %s then %s",
			results[0].SchemeName, results[1].SchemeName)
	}
}

func TestOccupationScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		occupation string
		tags       string
		points     int
		reason     string
	}{
		{"farmer on agriculture tags", "farmer", "agriculture, subsidy", ScorePrimaryTarget, "Farmer/Agriculture scheme"},
		{"student on education tags", "student", "education, scholarship", ScorePrimaryTarget, "Student/Education scheme"},
		{"unemployed on job tags", "unemployed", "job, training", ScoreAdditionalCriteria, "Employment scheme"},
		{"unmatched occupation", "farmer", "housing", 0, ""},
		{"unknown occupation", "engineer", "farmer, agriculture", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &profile.Profile{Occupation: tt.occupation}
			record := &scheme.Record{Tags: tt.tags}

			points, reason := occupationScore(p, record)
			if points != tt.points || reason != tt.reason {
				t.Fatalf("expected (%d, %q), got (%d, %q)", tt.points, tt.reason, points, reason)
			}
		})
	}
}

func TestAgeAppropriate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		age    int
		tags   string
		expect bool
	}{
		{"young student scheme", 22, "student, scholarship", true},
		{"senior pension scheme", 65, "senior, pension", true},
		{"middle aged education scheme", 40, "education", false},
		{"unset age", 0, "student", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &profile.Profile{Age: tt.age}
			record := &scheme.Record{Tags: tt.tags}

			if got := ageAppropriate(p, record); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestGenderMatchRequiresFemaleAndTags(t *testing.T) {
	t.Parallel()

	record := &scheme.Record{Tags: "mahila, empowerment"}

	if !genderMatch(&profile.Profile{Gender: "female"}, record) {
		t.Fatal("expected female profile to match mahila tags")
	}

	if genderMatch(&profile.Profile{Gender: "male"}, record) {
		t.Fatal("expected male profile not to match")
	}

	if genderMatch(&profile.Profile{Gender: "female"}, &scheme.Record{Tags: "farmer"}) {
		t.Fatal("expected no match without women-focused tags")
	}
}
