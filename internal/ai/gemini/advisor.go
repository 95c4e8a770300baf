package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/sevasaathi/sevasaathi/internal/ai"
	"github.com/sevasaathi/sevasaathi/internal/logger"
	"github.com/sevasaathi/sevasaathi/internal/profile"
	"github.com/sevasaathi/sevasaathi/internal/scheme"
)

//go:embed advise_prompt.md
var advisePromptTemplate string

// maxAdvisorSchemes bounds how many catalog records are inlined into a
// question prompt.
const maxAdvisorSchemes = 20

// Advisor answers free-form questions about schemes using the generation
// service, grounded in the loaded catalog and the known profile.
type Advisor struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewAdvisor(generator ai.Generator, log *zap.Logger, maxLogLength int) *Advisor {
	if log == nil {
		log = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Advisor{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (a *Advisor) Advise(ctx context.Context, question string, p *profile.Profile, catalog *scheme.Schemes) (string, error) {
	if a.generator == nil {
		return "", fmt.Errorf("no generator configured")
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question must not be empty")
	}

	if p == nil {
		p = profile.New()
	}

	profileJSON, err := json.MarshalIndent(p.Fields(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	prompt := strings.ReplaceAll(advisePromptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{SCHEMES_CONTEXT}}", schemesContext(catalog))
	prompt = strings.ReplaceAll(prompt, "{{QUESTION}}", question)

	a.logger.Debug("gemini advisor request",
		zap.String(logger.FieldModel, a.generator.Model()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("question", logger.TruncateForLog(question, a.maxLogLen)),
	)

	answer, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("advise: %w", err)
	}

	return strings.TrimSpace(answer), nil
}

// schemesContext renders a bounded plain-text catalog excerpt. The full
// record set would blow the prompt budget on real catalogs.
func schemesContext(catalog *scheme.Schemes) string {
	if catalog == nil || catalog.Len() == 0 {
		return "(no schemes loaded)"
	}

	var builder strings.Builder
	for i, record := range catalog.Items {
		if i >= maxAdvisorSchemes {
			fmt.Fprintf(&builder, "... and %d more schemes not shown.\n", catalog.Len()-maxAdvisorSchemes)
			break
		}
		fmt.Fprintf(&builder, "- %s (%s, %s): %s\n",
			record.Name, record.Category, record.State, record.Benefits)
	}

	return strings.TrimSpace(builder.String())
}
