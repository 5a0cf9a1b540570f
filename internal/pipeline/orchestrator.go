// Package pipeline runs the generation flow: page extraction, optional article fetch,
// prompt composition and one provider call, with a per-session regeneration cache.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/postsmith/internal/db"
	"github.com/jonathan/postsmith/internal/extract"
	"github.com/jonathan/postsmith/internal/fetch"
	"github.com/jonathan/postsmith/internal/llm"
	"github.com/jonathan/postsmith/internal/profile"
	"github.com/jonathan/postsmith/internal/prompts"
	"github.com/jonathan/postsmith/internal/session"
	"github.com/jonathan/postsmith/internal/types"
)

// ProgressEvent is a status update emitted while a flow runs.
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProgressCallback receives progress events.
type ProgressCallback func(event ProgressEvent)

// Progress steps.
const (
	StepExtract  = "extract"
	StepArticle  = "article"
	StepCompose  = "compose"
	StepGenerate = "generate"
	StepDone     = "done"
)

// PageLoader loads the profile page document.
type PageLoader interface {
	LoadDocument(ctx context.Context, src fetch.Source) (extract.Document, error)
}

// PageLoaderFunc adapts a function to PageLoader.
type PageLoaderFunc func(ctx context.Context, src fetch.Source) (extract.Document, error)

// LoadDocument implements PageLoader.
func (f PageLoaderFunc) LoadDocument(ctx context.Context, src fetch.Source) (extract.Document, error) {
	return f(ctx, src)
}

// ArticleFetcher retrieves article text for comment mode.
type ArticleFetcher interface {
	FetchArticleText(ctx context.Context, articleURL, apiKey string) (string, error)
}

// Generator sends a prompt to a provider.
type Generator interface {
	Generate(ctx context.Context, cred llm.Credential, prompt string) (string, error)
}

// HistoryRecorder stores successful generations.
type HistoryRecorder interface {
	SaveGeneration(ctx context.Context, g *db.Generation) error
}

// Deps are the collaborators of an Orchestrator. Pages, Articles and Generator are required.
type Deps struct {
	Pages     PageLoader
	Resolver  *profile.Resolver
	Articles  ArticleFetcher
	Generator Generator
	History   HistoryRecorder
	Logger    zerolog.Logger
}

// Orchestrator sequences one generation flow at a time per session cache.
type Orchestrator struct {
	pages     PageLoader
	resolver  *profile.Resolver
	articles  ArticleFetcher
	generator Generator
	history   HistoryRecorder
	log       zerolog.Logger
}

// New creates an Orchestrator.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		pages:     deps.Pages,
		resolver:  deps.Resolver,
		articles:  deps.Articles,
		generator: deps.Generator,
		history:   deps.History,
		log:       deps.Logger,
	}
}

// GenerateRequest describes a first run.
type GenerateRequest struct {
	SessionID string
	// Page is loaded through the PageLoader unless Document is set.
	Page     fetch.Source
	Document extract.Document

	Provider   llm.ProviderID
	APIKey     string
	ScraperKey string

	// Options carry the user configuration. For comment mode, ArticleText may be given
	// directly; otherwise ArticleURL is fetched through the ArticleFetcher.
	Options types.ConfigOptions

	OnProgress ProgressCallback
}

// RegenerateRequest describes a regeneration from the cached pair of Mode.
type RegenerateRequest struct {
	SessionID string
	Mode      types.Mode
	Provider  llm.ProviderID
	APIKey    string
	Overrides types.Overrides

	OnProgress ProgressCallback
}

// Result is a successful generation.
type Result struct {
	Text        string                 `json:"text"`
	Prompt      string                 `json:"prompt,omitempty"`
	Mode        types.Mode             `json:"mode"`
	Provider    llm.ProviderID         `json:"provider"`
	Regenerated bool                   `json:"regenerated"`
	Profile     types.Profile          `json:"profile"`
	Config      types.GenerationConfig `json:"config"`
}

// Generate performs a first run. Extraction and article fetch happen exactly once.
// The cache entry for the mode is overwritten only after the provider returned text;
// any failure leaves cache untouched.
func (o *Orchestrator) Generate(ctx context.Context, cache *session.Cache, req GenerateRequest) (*Result, error) {
	if cache == nil {
		return nil, errors.New("session cache is required")
	}
	notify := progress(req.OnProgress)

	cred, err := credential(req.Provider, req.APIKey)
	if err != nil {
		return nil, err
	}
	opts, err := preflight(req.Options, req.ScraperKey)
	if err != nil {
		return nil, err
	}

	notify(StepExtract, "Extracting profile…")
	prof, err := o.resolveProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	o.log.Debug().Str("profession", prof.Profession).Int("about_chars", len([]rune(prof.About))).Msg("profile resolved")

	if opts.Mode == types.ModeComment && strings.TrimSpace(opts.ArticleText) == "" {
		notify(StepArticle, "Extracting article content…")
		if o.articles == nil {
			return nil, errors.New("no article fetcher configured")
		}
		text, err := o.articles.FetchArticleText(ctx, opts.ArticleURL, req.ScraperKey)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch article: %w", err)
		}
		opts.ArticleText = text
	}

	cfg, err := types.NewGenerationConfig(opts)
	if err != nil {
		return nil, err
	}
	staged := session.Entry{Profile: prof, Config: cfg}

	result, err := o.run(ctx, cred, staged.Profile, staged.Config, notify)
	if err != nil {
		return nil, err
	}

	cache.Store(cfg.Mode, staged.Profile, staged.Config)
	o.record(ctx, req.SessionID, result)
	return result, nil
}

// Regenerate reuses the cached profile and configuration of req.Mode, applies the overrides
// to a copy and generates again. It never extracts, fetches or writes the cache.
func (o *Orchestrator) Regenerate(ctx context.Context, cache *session.Cache, req RegenerateRequest) (*Result, error) {
	if cache == nil {
		return nil, errors.New("session cache is required")
	}
	notify := progress(req.OnProgress)

	cred, err := credential(req.Provider, req.APIKey)
	if err != nil {
		return nil, err
	}

	mode, err := types.ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	overrides := req.Overrides
	if overrides.Length != nil {
		length, err := types.ParseLength(string(*overrides.Length))
		if err != nil {
			return nil, err
		}
		overrides.Length = &length
	}

	entry, ok := cache.Load(mode)
	if !ok {
		return nil, types.NewPreconditionError("mode", "no previous %s to regenerate; generate one first", mode)
	}

	cfg, err := entry.Config.WithOverrides(overrides)
	if err != nil {
		return nil, err
	}

	result, err := o.run(ctx, cred, entry.Profile, cfg, notify)
	if err != nil {
		return nil, err
	}
	result.Regenerated = true
	o.record(ctx, req.SessionID, result)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, cred llm.Credential, prof types.Profile, cfg types.GenerationConfig, notify func(step, msg string)) (*Result, error) {
	notify(StepCompose, "Composing prompt…")
	prompt, err := prompts.Compose(prof, cfg)
	if err != nil {
		return nil, err
	}

	notify(StepGenerate, "Generating with "+cred.Provider.DisplayName()+"…")
	text, err := o.generator.Generate(ctx, cred, prompt)
	if err != nil {
		o.log.Warn().Err(err).Str("provider", string(cred.Provider)).Str("kind", string(types.Classify(err))).Msg("generation failed")
		return nil, err
	}

	if cfg.Mode == types.ModeComment {
		notify(StepDone, "Comment generated!")
	} else {
		notify(StepDone, "Post generated!")
	}
	o.log.Info().Str("mode", string(cfg.Mode)).Str("provider", string(cred.Provider)).Str("tone", cfg.Tone).Msg("generated")

	return &Result{
		Text:     text,
		Prompt:   prompt,
		Mode:     cfg.Mode,
		Provider: cred.Provider,
		Profile:  prof,
		Config:   cfg,
	}, nil
}

func (o *Orchestrator) resolveProfile(ctx context.Context, req GenerateRequest) (types.Profile, error) {
	doc := req.Document
	if doc == nil {
		if o.pages == nil {
			return types.Profile{}, errors.New("no page loader configured")
		}
		loaded, err := o.pages.LoadDocument(ctx, req.Page)
		if err != nil {
			return types.Profile{}, fmt.Errorf("failed to load profile page: %w", err)
		}
		doc = loaded
	}
	return o.resolver.Resolve(doc), nil
}

func (o *Orchestrator) record(ctx context.Context, sessionID string, r *Result) {
	if o.history == nil {
		return
	}
	err := o.history.SaveGeneration(ctx, &db.Generation{
		SessionID:   sessionID,
		Mode:        string(r.Mode),
		Provider:    string(r.Provider),
		Tone:        r.Config.Tone,
		Length:      string(r.Config.Length),
		Topic:       r.Config.Topic,
		PromptHash:  db.PromptHash(r.Prompt),
		Text:        r.Text,
		Regenerated: r.Regenerated,
	})
	if err != nil {
		o.log.Warn().Err(err).Msg("failed to record generation")
	}
}

// credential validates the provider and key before any I/O.
func credential(provider llm.ProviderID, apiKey string) (llm.Credential, error) {
	p, err := llm.ParseProvider(string(provider))
	if err != nil {
		return llm.Credential{}, err
	}
	if strings.TrimSpace(apiKey) == "" {
		return llm.Credential{}, types.NewPreconditionError("api_key", "enter API key for %s", p.DisplayName())
	}
	return llm.Credential{Provider: p, APIKey: strings.TrimSpace(apiKey)}, nil
}

// preflight rejects invalid options before the page is loaded.
// preflight normalizes mode and length and checks the comment inputs before any I/O.
func preflight(opts types.ConfigOptions, scraperKey string) (types.ConfigOptions, error) {
	mode, err := types.ParseMode(string(opts.Mode))
	if err != nil {
		return opts, err
	}
	length, err := types.ParseLength(string(opts.Length))
	if err != nil {
		return opts, err
	}
	opts.Mode = mode
	opts.Length = length

	if opts.Mode != types.ModeComment || strings.TrimSpace(opts.ArticleText) != "" {
		return opts, nil
	}
	if strings.TrimSpace(opts.ArticleURL) == "" {
		return opts, types.NewPreconditionError("article_url", "enter an article URL for comment mode")
	}
	if strings.TrimSpace(scraperKey) == "" {
		return opts, types.NewPreconditionError("scraper_api_key", "enter a ScrapingBee API key for comment mode")
	}
	return opts, nil
}

func progress(cb ProgressCallback) func(step, msg string) {
	return func(step, msg string) {
		if cb != nil {
			cb(ProgressEvent{Step: step, Message: msg})
		}
	}
}
