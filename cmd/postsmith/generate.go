package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/postsmith/internal/keystore"
	"github.com/jonathan/postsmith/internal/llm"
	"github.com/jonathan/postsmith/internal/pipeline"
	"github.com/jonathan/postsmith/internal/session"
	"github.com/jonathan/postsmith/internal/types"
)

type generateFlags struct {
	page    pageFlags
	content contentFlags

	provider   string
	apiKey     string
	scraperKey string
	variants   int
	retone     string
	showPrompt bool
}

func newGenerateCmd(root *rootFlags) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a post or a comment from a profile page",
		Long: `Extracts the profile from the page, optionally fetches the article to comment on,
composes the prompt and calls the chosen provider.

With --variants N, the extra variants reuse the extracted profile and article; --retone
changes the tone for those variants only.

API keys are read from --api-key / --scraper-key, then OPENAI_API_KEY, GEMINI_API_KEY and
SCRAPINGBEE_API_KEY, then the key store ("postsmith keys set").`,
		Example: `  postsmith generate --page profile.html --tone "Direct" --topic "remote work"
  postsmith generate --page-url https://www.linkedin.com/in/me --use-browser --mode comment \
    --article-url https://example.com/post --provider openai --variants 3 --retone "Warm"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), a, flags)
		},
	}

	flags.page.register(cmd)
	flags.content.register(cmd)
	cmd.Flags().StringVarP(&flags.provider, "provider", "p", "", "LLM provider: openai or gemini (default from config)")
	cmd.Flags().StringVar(&flags.apiKey, "api-key", "", "API key for the provider")
	cmd.Flags().StringVar(&flags.scraperKey, "scraper-key", "", "ScrapingBee API key (comment mode with --article-url)")
	cmd.Flags().IntVarP(&flags.variants, "variants", "n", 1, "Number of variants to generate")
	cmd.Flags().StringVar(&flags.retone, "retone", "", "Tone for variants after the first")
	cmd.Flags().BoolVar(&flags.showPrompt, "show-prompt", false, "Print the composed prompt")
	return cmd
}

func runGenerate(ctx context.Context, out io.Writer, a *app, flags *generateFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if flags.variants < 1 {
		return types.NewPreconditionError("variants", "--variants must be at least 1")
	}

	providerName := flags.provider
	if providerName == "" {
		providerName = a.cfg.Provider
	}
	provider, err := llm.ParseProvider(providerName)
	if err != nil {
		return err
	}

	opts, err := flags.content.options(a.defaults())
	if err != nil {
		return err
	}
	flags.page.apply(a)

	store := a.keys()
	apiKey := keystore.ResolveProvider(store, provider, flags.apiKey)
	scraperKey := keystore.Resolve(store, keystore.ScraperKey, flags.scraperKey)

	history, err := a.openHistory(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("generation history disabled")
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	orch := a.orchestrator(history)
	sess := session.NewRegistry().Create()

	result, err := orch.Generate(ctx, sess.Cache, pipeline.GenerateRequest{
		SessionID:  sess.ID,
		Page:       flags.page.source(),
		Provider:   provider,
		APIKey:     apiKey,
		ScraperKey: scraperKey,
		Options:    opts,
		OnProgress: a.progressLogger(),
	})
	if err != nil {
		return err
	}
	a.report(out, result, flags.showPrompt, 1)

	var overrides types.Overrides
	if flags.retone != "" {
		overrides.Tone = &flags.retone
	}
	for i := 2; i <= flags.variants; i++ {
		result, err = orch.Regenerate(ctx, sess.Cache, pipeline.RegenerateRequest{
			SessionID:  sess.ID,
			Mode:       opts.Mode,
			Provider:   provider,
			APIKey:     apiKey,
			Overrides:  overrides,
			OnProgress: a.progressLogger(),
		})
		if err != nil {
			return fmt.Errorf("variant %d: %w", i, err)
		}
		a.report(out, result, flags.showPrompt, i)
	}
	return nil
}

// report prints one result. Verbose mode adds the profile and config boxes.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (a *app) report(out io.Writer, result *pipeline.Result, showPrompt bool, n int) {
	if a.verbose && n == 1 {
		a.printer.PrintProfile(result.Profile)
		a.printer.PrintConfig(result.Config)
	}
	if showPrompt {
		a.printer.PrintPrompt(result.Prompt)
	}
	if a.verbose {
		a.printer.PrintResult(string(result.Provider), result.Mode, result.Regenerated, result.Text)
		return
	}
	if n > 1 {
		fmt.Fprintln(out, "---")
	}
	fmt.Fprintln(out, result.Text)
}
