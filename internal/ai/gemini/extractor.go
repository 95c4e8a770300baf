package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/sevasaathi/sevasaathi/internal/ai"
	"github.com/sevasaathi/sevasaathi/internal/logger"
	"github.com/sevasaathi/sevasaathi/internal/profile"
)

//go:embed extract_prompt.md
var extractPromptTemplate string

// jsonObjectPattern grabs the outermost JSON object in a response that may
// carry prose around it.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Extractor extracts profile fields from free text via the generation
// service. On any failure it returns the current profile unchanged along
// with the error, so the caller can retry with the keyword extractor.
type Extractor struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator ai.Generator, log *zap.Logger, maxLogLength int) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Extractor{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (e *Extractor) Extract(ctx context.Context, input string, current *profile.Profile) (*profile.Profile, error) {
	if current == nil {
		current = profile.New()
	}

	if e.generator == nil {
		return current, fmt.Errorf("no generator configured")
	}

	profileJSON, err := json.MarshalIndent(current.Fields(), "", "  ")
	if err != nil {
		return current, fmt.Errorf("marshal current profile: %w", err)
	}

	prompt := strings.ReplaceAll(extractPromptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{USER_INPUT}}", input)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return current, fmt.Errorf("extract profile fields: %w", err)
	}

	e.logger.Debug("gemini extraction response",
		zap.String(logger.FieldModel, e.generator.Model()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	update, err := parseProfileResponse(raw)
	if err != nil {
		return current, err
	}

	return current.Merge(update), nil
}

func parseProfileResponse(raw string) (*profile.Profile, error) {
	cleaned := extractJSON(raw)
	object := jsonObjectPattern.FindString(cleaned)
	if object == "" {
		return nil, fmt.Errorf("no JSON object in extraction response")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(object), &data); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	update := profile.New()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           update,
	})
	if err != nil {
		return nil, fmt.Errorf("build profile decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode profile fields: %w", err)
	}

	return update, nil
}
