package ai

import (
	"context"

	"github.com/sevasaathi/sevasaathi/internal/profile"
	"github.com/sevasaathi/sevasaathi/internal/scheme"
)

// Generator is the narrow text-generation port the assistant components
// depend on. The concrete Gemini client satisfies it; tests substitute stubs.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Extractor turns a free-text self-description into structured profile
// fields, merged over the current profile.
type Extractor interface {
	Extract(ctx context.Context, input string, current *profile.Profile) (*profile.Profile, error)
}

// Advisor answers free-form questions about schemes, grounded in the loaded
// catalog and the user's profile.
type Advisor interface {
	Advise(ctx context.Context, question string, p *profile.Profile, catalog *scheme.Schemes) (string, error)
}
