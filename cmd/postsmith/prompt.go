package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/postsmith/internal/keystore"
	"github.com/jonathan/postsmith/internal/prompts"
	"github.com/jonathan/postsmith/internal/scraper"
	"github.com/jonathan/postsmith/internal/types"
)

type promptFlags struct {
	page       pageFlags
	content    contentFlags
	scraperKey string
}

func newPromptCmd(root *rootFlags) *cobra.Command {
	flags := &promptFlags{}

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Compose the prompt without calling a provider",
		Long: `Runs extraction and, in comment mode, the article fetch, then prints the exact prompt
that generate would send.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			return runPrompt(cmd.Context(), cmd.OutOrStdout(), a, flags)
		},
	}

	flags.page.register(cmd)
	flags.content.register(cmd)
	cmd.Flags().StringVar(&flags.scraperKey, "scraper-key", "", "ScrapingBee API key (comment mode with --article-url)")
	return cmd
}

func runPrompt(ctx context.Context, out io.Writer, a *app, flags *promptFlags) error {
	opts, err := flags.content.options(a.defaults())
	if err != nil {
		return err
	}
	flags.page.apply(a)

	doc, err := a.loadDocument(ctx, flags.page.source())
	if err != nil {
		return err
	}
	prof := a.resolver().Resolve(doc)

	if opts.Mode == types.ModeComment && strings.TrimSpace(opts.ArticleText) == "" {
		if strings.TrimSpace(opts.ArticleURL) == "" {
			return types.NewPreconditionError("article_url", "enter an article URL for comment mode")
		}
		key := keystore.Resolve(a.keys(), keystore.ScraperKey, flags.scraperKey)
		text, err := scraper.New(a.cfg.ScraperOptions(a.log)).FetchArticleText(ctx, opts.ArticleURL, key)
		if err != nil {
			return fmt.Errorf("failed to fetch article: %w", err)
		}
		opts.ArticleText = text
	}

	cfg, err := types.NewGenerationConfig(opts)
	if err != nil {
		return err
	}
	prompt, err := prompts.Compose(prof, cfg)
	if err != nil {
		return err
	}

	if a.verbose {
		a.printer.PrintProfile(prof)
		a.printer.PrintConfig(cfg)
	}
	_, err = fmt.Fprint(out, prompt)
	return err
}
