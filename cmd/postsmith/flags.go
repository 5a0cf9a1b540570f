package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/postsmith/internal/fetch"
	"github.com/jonathan/postsmith/internal/types"
)

// pageFlags select the profile page source.
type pageFlags struct {
	path       string
	url        string
	useBrowser bool
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "page", "", "Path to a saved profile page (HTML)")
	cmd.Flags().StringVar(&f.url, "page-url", "", "URL of the profile page to load")
	cmd.Flags().BoolVar(&f.useBrowser, "use-browser", false, "Render --page-url in headless Chrome (requires Chrome)")
	cmd.MarkFlagsMutuallyExclusive("page", "page-url")
}

func (f *pageFlags) source() fetch.Source {
	return fetch.Source{Path: f.path, URL: f.url}
}

// apply copies browser settings into the loaded configuration.
func (f *pageFlags) apply(a *app) {
	if f.useBrowser {
		a.cfg.Page.UseBrowser = true
	}
}

// contentFlags are the user options that shape the prompt.
type contentFlags struct {
	mode        string
	tone        string
	length      string
	topic       string
	profession  string
	articleURL  string
	articleText string
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "post", "What to write: post or comment")
	cmd.Flags().StringVarP(&f.tone, "tone", "t", "", `Tone label, e.g. "Professional" or "Subtle Desi & Witty" (default from config)`)
	cmd.Flags().StringVarP(&f.length, "length", "l", "", "Length: short, medium or long (default from config)")
	cmd.Flags().StringVar(&f.topic, "topic", "", "Topic for a post (optional)")
	cmd.Flags().StringVar(&f.profession, "profession", "", "Profession to use instead of the extracted headline")
	cmd.Flags().StringVar(&f.articleURL, "article-url", "", "Article to comment on (comment mode; fetched via ScrapingBee)")
	cmd.Flags().StringVar(&f.articleText, "article-text", "", "Article text to comment on, skipping the fetch")
}

// options builds ConfigOptions, filling tone and length from the configured defaults.
func (f *contentFlags) options(d defaults) (types.ConfigOptions, error) {
	mode, err := types.ParseMode(f.mode)
	if err != nil {
		return types.ConfigOptions{}, err
	}

	lengthName := f.length
	if lengthName == "" {
		lengthName = d.length
	}
	length, err := types.ParseLength(lengthName)
	if err != nil {
		return types.ConfigOptions{}, err
	}

	tone := f.tone
	if tone == "" {
		tone = d.tone
	}

	return types.ConfigOptions{
		Mode:             mode,
		Tone:             tone,
		Length:           length,
		Topic:            f.topic,
		CustomProfession: f.profession,
		ArticleURL:       f.articleURL,
		ArticleText:      f.articleText,
	}, nil
}

type defaults struct {
	tone   string
	length string
}

func (a *app) defaults() defaults {
	return defaults{tone: a.cfg.Defaults.Tone, length: a.cfg.Defaults.Length}
}
