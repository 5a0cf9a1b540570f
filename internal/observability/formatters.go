// Package observability provides logging setup and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/postsmith/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxPromptLines caps how many prompt lines PrintPrompt shows
	maxPromptLines = 40
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range wrap(content, boxWidth-4) {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap splits content into lines no wider than width runes.
func wrap(content string, width int) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			lines = append(lines, string(runes[:width]))
			runes = runes[width:]
		}
		lines = append(lines, string(runes))
	}
	return lines
}

func shorten(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return types.Truncate(s, n-3) + "..."
}

// PrintProfile outputs the extracted profile.
func (p *Printer) PrintProfile(profile types.Profile) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profession: %s\n", profile.Profession))
	sb.WriteString("\n")
	if profile.About == "" {
		sb.WriteString("About: (empty)")
	} else {
		sb.WriteString(fmt.Sprintf("About (%d chars):\n", len([]rune(profile.About))))
		sb.WriteString(shorten(profile.About, 200))
	}
	p.printBox("EXTRACTED PROFILE", sb.String())
}

// PrintConfig outputs the generation parameters.
func (p *Printer) PrintConfig(cfg types.GenerationConfig) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode:    %s\n", cfg.Mode))
	sb.WriteString(fmt.Sprintf("Tone:    %s\n", cfg.Tone))
	sb.WriteString(fmt.Sprintf("Length:  %s (%s words)\n", cfg.Length, cfg.Length.WordRange()))
	if cfg.Topic != "" {
		sb.WriteString(fmt.Sprintf("Topic:   %s\n", shorten(cfg.Topic, 45)))
	}
	if cfg.CustomProfession != "" {
		sb.WriteString(fmt.Sprintf("Profession override: %s\n", shorten(cfg.CustomProfession, 30)))
	}
	if cfg.Mode == types.ModeComment {
		if cfg.ArticleURL != "" {
			sb.WriteString(fmt.Sprintf("Article: %s\n", shorten(cfg.ArticleURL, 45)))
		}
		sb.WriteString(fmt.Sprintf("Article text: %d chars\n", len([]rune(cfg.ArticleText))))
	}
	p.printBox("GENERATION CONFIG", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPrompt outputs the composed prompt, trimmed to maxPromptLines.
func (p *Printer) PrintPrompt(prompt string) {
	lines := strings.Split(strings.TrimRight(prompt, "\n"), "\n")
	if len(lines) > maxPromptLines {
		more := len(lines) - maxPromptLines
		lines = append(lines[:maxPromptLines], fmt.Sprintf("... and %d more lines", more))
	}
	p.printBox("COMPOSED PROMPT", strings.Join(lines, "\n"))
}

// PrintResult outputs the generated text with its provenance.
func (p *Printer) PrintResult(provider string, mode types.Mode, regenerated bool, text string) {
	title := fmt.Sprintf("%s FROM %s", strings.ToUpper(string(mode)), strings.ToUpper(provider))
	if regenerated {
		title += " (regenerated)"
	}
	words := len(strings.Fields(text))
	p.printBox(title, fmt.Sprintf("%s\n\n%d words", text, words))
}
