package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sevasaathi/sevasaathi/internal/ai"
	"github.com/sevasaathi/sevasaathi/internal/ai/gemini"
	"github.com/sevasaathi/sevasaathi/internal/logger"
	"github.com/sevasaathi/sevasaathi/internal/match"
	"github.com/sevasaathi/sevasaathi/internal/profile"
	"github.com/sevasaathi/sevasaathi/internal/scheme"
	"github.com/sevasaathi/sevasaathi/internal/secrets"
	"github.com/sevasaathi/sevasaathi/internal/session"
)

const (
	PromptDescribe       = "Describe yourself to find matching schemes"
	PromptAsk            = "Ask a question about schemes"
	PromptShowProfile    = "Show my profile"
	PromptShowResults    = "Show last results"
	PromptBrowse         = "Browse the scheme catalog"
	PromptSearch         = "Search schemes"
	PromptCategories     = "List categories"
	PromptReset          = "Reset my profile"
	PromptQuit           = "Quit"
	PromptBack           = "back"
	defaultCatalogFile   = "schemes.json"
	unavailableAIMessage = "AI assistance is not available right now. Describe yourself instead and I will match schemes with the built-in rules."
)

var errExit = errors.New("exit requested")

var actionPrompt = promptui.Select{
	Label: "What would you like to do?",
	Items: []string{
		PromptDescribe, PromptAsk, PromptShowProfile, PromptShowResults,
		PromptBrowse, PromptSearch, PromptCategories, PromptReset, PromptQuit,
	},
	Size: 9,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive scheme assistant",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("catalog-file", "c", "", "JSON file with the scheme catalog (default is schemes.json in current directory)")

	viper.BindPFlag("catalog-file", runCmd.Flags().Lookup("catalog-file"))
}

// assistant bundles everything one interactive run needs.
type assistant struct {
	catalog   *scheme.Schemes
	engine    *match.Engine
	extractor ai.Extractor
	keywords  *profile.KeywordExtractor
	advisor   ai.Advisor
	logger    *zap.Logger
}

// run is the main command for the cli.
func run(_ *cobra.Command) {
	ctx := context.Background()

	logr, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logr.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}

	logr.Info("starting the sevasaathi assistant", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logr.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	catalog := loadCatalog(config, logr)

	rules := match.NewRuleMatcher(logr)

	var primary match.Scorer
	var extractor ai.Extractor
	var advisor ai.Advisor

	if components, err := newAIComponents(ctx, config.AI, logr); err != nil {
		logr.Warn("running without AI assistance",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
	} else {
		primary = components.matcher
		extractor = components.extractor
		advisor = components.advisor
	}

	a := &assistant{
		catalog:   catalog,
		engine:    match.NewEngine(primary, rules, logr),
		extractor: extractor,
		keywords:  profile.NewKeywordExtractor(logr),
		advisor:   advisor,
		logger:    logr,
	}

	sess := session.New()

	for {
		_, action, err := actionPrompt.Run()
		if err != nil {
			logr.Fatal("exiting", zap.Error(err))
		}

		if err := a.handleAction(ctx, action, sess); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logr.Fatal("exiting", zap.Error(err))
		}
	}
}

func (a *assistant) handleAction(ctx context.Context, action string, sess *session.Session) error {
	switch action {
	case PromptDescribe:
		return a.describe(ctx, sess)
	case PromptAsk:
		return a.ask(ctx, sess)
	case PromptShowProfile:
		fmt.Println(sess.Profile.String())
		return nil
	case PromptShowResults:
		displayResults(sess.LastResults)
		return nil
	case PromptBrowse:
		return a.browse()
	case PromptSearch:
		return a.search()
	case PromptCategories:
		for _, category := range a.catalog.Categories() {
			fmt.Println(category)
		}
		return nil
	case PromptReset:
		sess.ResetProfile()
		fmt.Println("Profile cleared. Tell me about yourself again whenever you are ready.")
		return nil
	case PromptQuit:
		a.logger.Info("exiting", zap.String("reason", "got quit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// describe reads a free-text self-description, updates the session profile
// and shows the matching schemes.
func (a *assistant) describe(ctx context.Context, sess *session.Session) error {
	input, err := (&promptui.Prompt{Label: "Tell me about yourself"}).Run()
	if err != nil {
		return err
	}

	if strings.TrimSpace(input) == "" {
		return nil
	}

	sess.Remember(session.RoleUser, input)
	sess.UpdateProfile(a.extractProfile(ctx, input, sess.Profile))

	if sess.Profile.IsEmpty() {
		fmt.Println("I could not pick out any details yet. Try mentioning your age, state, occupation or category.")
		return nil
	}

	fmt.Println("Here is what I know about you so far:")
	fmt.Println(sess.Profile.String())

	results := a.engine.FindEligible(ctx, sess.Profile, a.catalog)
	sess.RememberResults(results)
	sess.Remember(session.RoleAssistant, fmt.Sprintf("found %d matching schemes", len(results)))

	displayResults(results)
	return nil
}

// extractProfile runs the reasoning-service extractor first and falls back
// to the keyword extractor when it fails or is not configured.
func (a *assistant) extractProfile(ctx context.Context, input string, current *profile.Profile) *profile.Profile {
	if a.extractor != nil {
		updated, err := a.extractor.Extract(ctx, input, current)
		if err == nil {
			return updated
		}
		a.logger.Warn("profile extraction via AI failed, using keyword extraction", zap.Error(err))
	}

	updated, err := a.keywords.Extract(ctx, input, current)
	if err != nil {
		a.logger.Error("keyword extraction failed", zap.Error(err))
		return current
	}
	return updated
}

func (a *assistant) ask(ctx context.Context, sess *session.Session) error {
	question, err := (&promptui.Prompt{Label: "Your question"}).Run()
	if err != nil {
		return err
	}

	if strings.TrimSpace(question) == "" {
		return nil
	}

	sess.Remember(session.RoleUser, question)

	if a.advisor == nil {
		fmt.Println(unavailableAIMessage)
		sess.Remember(session.RoleAssistant, unavailableAIMessage)
		return nil
	}

	answer, err := a.advisor.Advise(ctx, question, sess.Profile, a.catalog)
	if err != nil {
		a.logger.Warn("advisor request failed", zap.Error(err))
		fmt.Println(unavailableAIMessage)
		sess.Remember(session.RoleAssistant, unavailableAIMessage)
		return nil
	}

	fmt.Println(answer)
	sess.Remember(session.RoleAssistant, answer)
	return nil
}

func (a *assistant) browse() error {
	if a.catalog.Len() == 0 {
		fmt.Println("No schemes loaded.")
		return nil
	}

	for {
		schemePrompt := promptui.Select{
			Label: "Choose a scheme and press ENTER",
			Items: append(a.catalog.Names(), PromptBack),
			Size:  15,
		}

		_, selected, err := schemePrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		record := a.catalog.FindByName(selected)
		if record == nil {
			return fmt.Errorf("there is no such scheme %s", selected)
		}

		displayRecord(record)
	}
}

func (a *assistant) search() error {
	query, err := (&promptui.Prompt{Label: "Search for"}).Run()
	if err != nil {
		return err
	}

	found := a.catalog.Search(query)
	if found.Len() == 0 {
		fmt.Println("No schemes matched your search.")
		return nil
	}

	for _, record := range found.Items {
		fmt.Printf("- %s (%s, %s)\n", record.Name, record.Category, record.State)
	}
	return nil
}

func displayResults(results []*match.Result) {
	if len(results) == 0 {
		fmt.Println("No matching schemes found yet.")
		return
	}

	fmt.Printf("Found %d matching schemes:\n\n", len(results))
	for i, result := range results {
		fmt.Printf("%d. %s (score %d)\n   %s\n", i+1, result.SchemeName, result.Score, result.Explanation)
	}
}

func displayRecord(record *scheme.Record) {
	fmt.Printf("\n%s\n", record.Name)
	printField("Category", record.Category)
	printField("State", record.State)
	printField("Level", record.Level)
	printField("Target beneficiaries", record.TargetBeneficiaries)
	printField("Eligibility", record.EligibilityCriteria)
	printField("Benefits", record.Benefits)
	printField("Documents required", record.DocumentsRequired)
	printField("Description", record.Description)
	for name, link := range record.Links {
		printField(name, link)
	}
	fmt.Println()
}

func printField(name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Printf("  %s: %s\n", name, value)
}

func loadCatalog(config *Config, logr *zap.Logger) *scheme.Schemes {
	path := strings.TrimSpace(config.CatalogFile)
	if path == "" {
		path = strings.TrimSpace(viper.GetString("catalog-file"))
	}
	if path == "" {
		path = defaultCatalogFile
	}

	catalog, err := scheme.LoadFile(path)
	if err != nil {
		// The assistant can still answer questions without a catalog, so a
		// load failure degrades instead of aborting.
		logr.Warn("loading scheme catalog", zap.Error(err), zap.String("path", path))
		return catalog
	}

	logr.Info("loaded scheme catalog", zap.String("path", path), zap.Int("schemes", catalog.Len()))
	return catalog
}

// aiComponents groups the reasoning-service backed parts of the assistant.
type aiComponents struct {
	matcher   *gemini.Matcher
	extractor *gemini.Extractor
	advisor   *gemini.Advisor
}

func newAIComponents(ctx context.Context, cfg *AIConfig, logr *zap.Logger) (*aiComponents, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("ai assistance is disabled in the configuration")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	keyFile := strings.TrimSpace(cfg.Gemini.APIKeyFile)
	if keyFile == "" {
		keyFile = strings.TrimSpace(viper.GetString("gemini-api-key-file"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	aiLogger := logger.WithCommonAIFields(logr, "gemini", generator.Model())

	return &aiComponents{
		matcher:   gemini.NewMatcher(generator, aiLogger, cfg.Gemini.MaxLogLength),
		extractor: gemini.NewExtractor(generator, aiLogger, cfg.Gemini.MaxLogLength),
		advisor:   gemini.NewAdvisor(generator, aiLogger, cfg.Gemini.MaxLogLength),
	}, nil
}
