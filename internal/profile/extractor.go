package profile

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// KeywordExtractor is the deterministic profile extraction strategy: it scans
// a user utterance for the ten recognized fields using keyword and pattern
// matching. It never fails; fields it cannot recognize are simply left alone.
type KeywordExtractor struct {
	logger *zap.Logger
}

func NewKeywordExtractor(logger *zap.Logger) *KeywordExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordExtractor{logger: logger}
}

var (
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:years?|yrs?)(?:\s*old)?\b`),
		regexp.MustCompile(`(?i)\bage(?:d)?(?:\s+is)?\s+(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\bi\s*(?:am|'m)\s+(\d{1,3})\b`),
	}

	familySizePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfamily\s+of\s+(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:family\s+members|members?\s+in\s+(?:my|the|our)\s+family)\b`),
	}

	landHoldingPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:hectares?|ha)\b`)

	categoryPatterns = []struct {
		re    *regexp.Regexp
		value string
	}{
		{regexp.MustCompile(`(?i)\bscheduled\s+caste\b`), "SC"},
		{regexp.MustCompile(`(?i)\bscheduled\s+tribe\b`), "ST"},
		{regexp.MustCompile(`(?i)\bsc\b`), "SC"},
		{regexp.MustCompile(`(?i)\bst\b`), "ST"},
		{regexp.MustCompile(`(?i)\bobc\b`), "OBC"},
		{regexp.MustCompile(`(?i)\bminority\b`), "Minority"},
		{regexp.MustCompile(`(?i)\bgeneral\s+category\b`), "General"},
	}

	occupationKeywords = []struct {
		keywords []string
		value    string
	}{
		{[]string{"farmer", "farming", "agriculture worker"}, "farmer"},
		{[]string{"student", "studying", "college", "school"}, "student"},
		{[]string{"unemployed", "jobless", "no job", "looking for work"}, "unemployed"},
		{[]string{"business", "shopkeeper", "self-employed", "self employed"}, "business"},
	}

	educationKeywords = []struct {
		keywords []string
		value    string
	}{
		{[]string{"postgraduate", "post-graduate", "post graduate", "masters", "mba", "m.tech"}, "postgraduate"},
		{[]string{"graduate", "graduation", "bachelor", "b.tech", "degree"}, "graduate"},
		{[]string{"diploma"}, "diploma"},
		{[]string{"12th", "higher secondary", "intermediate", "hsc"}, "12th"},
		{[]string{"10th", "matric", "ssc"}, "10th"},
	}

	femalePattern = regexp.MustCompile(`(?i)\b(?:female|woman|girl|lady|widow|mother|housewife)\b`)
	malePattern   = regexp.MustCompile(`(?i)\b(?:male|man|boy)\b`)

	disabilityKeywords = []string{"disabled", "disability", "handicapped", "pwd", "divyang"}

	bplPattern = regexp.MustCompile(`(?i)\b(?:bpl|below\s+poverty\s+line)\b`)
	aplPattern = regexp.MustCompile(`(?i)\b(?:apl|above\s+poverty\s+line)\b`)

	// States and union territories recognized in free text.
	indianStates = []string{
		"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
		"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand",
		"Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra", "Manipur",
		"Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab", "Rajasthan",
		"Sikkim", "Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh",
		"Uttarakhand", "West Bengal", "Delhi", "Jammu and Kashmir", "Ladakh",
		"Puducherry", "Chandigarh",
	}
)

// Extract scans the input for recognized profile fields and returns a copy of
// current with every mentioned field overwritten. Fields not mentioned keep
// their prior value. The error is always nil; the signature matches the
// reasoning-service extractor so the two strategies are interchangeable.
func (e *KeywordExtractor) Extract(_ context.Context, input string, current *Profile) (*Profile, error) {
	update := &Profile{}
	lowered := strings.ToLower(input)

	if age, ok := firstNumber(agePatterns, input); ok && age > 0 {
		update.Age = age
	}

	if size, ok := firstNumber(familySizePatterns, input); ok && size > 0 {
		update.FamilySize = size
	}

	if match := landHoldingPattern.FindStringSubmatch(input); match != nil {
		if land, err := strconv.ParseFloat(match[1], 64); err == nil && land > 0 {
			update.LandHolding = land
		}
	}

	for _, state := range indianStates {
		if strings.Contains(lowered, strings.ToLower(state)) {
			update.State = state
			break
		}
	}

	for _, category := range categoryPatterns {
		if category.re.MatchString(input) {
			update.Category = category.value
			break
		}
	}

	for _, occupation := range occupationKeywords {
		if containsAnyKeyword(lowered, occupation.keywords) {
			update.Occupation = occupation.value
			break
		}
	}

	for _, education := range educationKeywords {
		if containsAnyKeyword(lowered, education.keywords) {
			update.Education = education.value
			break
		}
	}

	if femalePattern.MatchString(input) {
		update.Gender = "female"
	} else if malePattern.MatchString(input) {
		update.Gender = "male"
	}

	if containsAnyKeyword(lowered, disabilityKeywords) {
		update.Disability = "yes"
	}

	if bplPattern.MatchString(input) {
		update.Income = "BPL"
	} else if aplPattern.MatchString(input) {
		update.Income = "APL"
	}

	merged := current.Merge(update)

	if fields := update.Fields(); len(fields) > 0 {
		e.logger.Debug("keyword extraction updated profile fields",
			zap.Any("fields", fields),
		)
	}

	return merged, nil
}

func firstNumber(patterns []*regexp.Regexp, input string) (int, bool) {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(input)
		if match == nil {
			continue
		}
		value, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}

func containsAnyKeyword(lowered string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
