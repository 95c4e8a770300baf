package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/sevasaathi/sevasaathi/internal/ai"
	"github.com/sevasaathi/sevasaathi/internal/logger"
	"github.com/sevasaathi/sevasaathi/internal/match"
	"github.com/sevasaathi/sevasaathi/internal/profile"
	"github.com/sevasaathi/sevasaathi/internal/scheme"
)

//go:embed match_prompt.md
var matchPromptTemplate string

const defaultAIExplanation = "General match"

// errorMarkers are substrings that mark a generation body as a failure
// report rather than a scheme list. Matching is case-insensitive.
var errorMarkers = []string{"error", "timeout", "connection error", "api error"}

// Matcher is the reasoning-service scoring strategy. It satisfies
// match.Scorer and reports match.ErrUnavailable on any failure so the engine
// can fall back to the deterministic rules.
type Matcher struct {
	generator ai.Generator
	minScore  int
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

func NewMatcher(generator ai.Generator, log *zap.Logger, maxLogLength int) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Matcher{
		generator: generator,
		minScore:  match.AIMinimumScore,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// aiResult is the wire shape of one element in the generation response.
type aiResult struct {
	SchemeName string   `json:"scheme_name"`
	Score      int      `json:"matching_score"`
	Reasons    []string `json:"reasons"`
}

// ScoreAll asks the generation service to rank the catalog against the
// profile. Candidate summaries are bounded, but names are resolved against
// the full catalog so a correct answer is never dropped for being outside
// the candidate window.
func (m *Matcher) ScoreAll(ctx context.Context, p *profile.Profile, catalog *scheme.Schemes) ([]*match.Result, error) {
	if m.generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", match.ErrUnavailable)
	}

	prompt, err := m.buildPrompt(p, catalog)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini matching request",
		zap.String(logger.FieldModel, m.generator.Model()),
		zap.Int("candidates", min(catalog.Len(), match.MaxAICandidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", match.ErrUnavailable, err)
	}

	m.logger.Debug("gemini matching response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, m.maxLogLen)),
	)

	if isErrorBody(raw) {
		return nil, fmt.Errorf("%w: response body reports a failure", match.ErrUnavailable)
	}

	parsed, err := parseMatchResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", match.ErrUnavailable, err)
	}

	return m.resolve(parsed, catalog), nil
}

func (m *Matcher) buildPrompt(p *profile.Profile, catalog *scheme.Schemes) (string, error) {
	profileJSON, err := json.MarshalIndent(p.Fields(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	summariesJSON, err := json.MarshalIndent(catalog.Summaries(match.MaxAICandidates), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal scheme summaries: %w", err)
	}

	prompt := strings.ReplaceAll(matchPromptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{SCHEMES_JSON}}", string(summariesJSON))
	prompt = strings.ReplaceAll(prompt, "{{MIN_SCORE}}", strconv.Itoa(m.minScore))
	prompt = strings.ReplaceAll(prompt, "{{MAX_RESULTS}}", strconv.Itoa(match.MaxDisplayResults))

	return prompt, nil
}

// resolve maps wire results back onto catalog records. Names that do not
// resolve are dropped; the service occasionally invents schemes and those
// must never reach the user.
func (m *Matcher) resolve(items []aiResult, catalog *scheme.Schemes) []*match.Result {
	results := make([]*match.Result, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.SchemeName)
		if name == "" {
			continue
		}

		record := catalog.FindByName(name)
		if record == nil {
			record = catalog.FindByNameFold(name)
		}
		if record == nil {
			m.logger.Debug("dropping unresolved scheme from gemini response",
				zap.String(logger.FieldScheme, name))
			continue
		}

		if item.Score < m.minScore {
			continue
		}

		results = append(results, match.NewResult(record, item.Score, match.JoinReasons(item.Reasons, defaultAIExplanation)))
	}

	match.SortResults(results)
	return results
}

func parseMatchResponse(raw string) ([]aiResult, error) {
	cleaned := extractJSON(raw)

	var data []any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	items := make([]aiResult, 0, len(data))
	for _, element := range data {
		var item aiResult
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           &item,
		})
		if err != nil {
			return nil, fmt.Errorf("build response decoder: %w", err)
		}
		if err := decoder.Decode(element); err != nil {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// isErrorBody reports whether a generation body is a failure report. An
// empty body counts as one.
func isErrorBody(raw string) bool {
	body := strings.ToLower(strings.TrimSpace(raw))
	if body == "" {
		return true
	}
	for _, marker := range errorMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
