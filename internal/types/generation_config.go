package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Mode selects what kind of content is generated.
type Mode string

const (
	// ModePost generates a standalone post.
	ModePost Mode = "post"
	// ModeComment generates a comment on an external article.
	ModeComment Mode = "comment"
)

// ParseMode parses a mode name. "commentary" is accepted as an alias of comment.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "post", "":
		return ModePost, nil
	case "comment", "commentary":
		return ModeComment, nil
	default:
		return "", NewPreconditionError("mode", "unknown mode %q (expected post or comment)", s)
	}
}

// Length selects the target word-count range.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// ParseLength parses a length name; empty means medium.
func ParseLength(s string) (Length, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short":
		return LengthShort, nil
	case "medium", "":
		return LengthMedium, nil
	case "long":
		return LengthLong, nil
	default:
		return "", NewPreconditionError("length", "unknown length %q (expected short, medium or long)", s)
	}
}

// WordRange returns the word-count range for the length. Unknown lengths map to medium.
func (l Length) WordRange() string {
	switch l {
	case LengthShort:
		return "30–50"
	case LengthLong:
		return "80–120"
	default:
		return "50–80"
	}
}

const (
	// DefaultTone is used when no tone label was chosen.
	DefaultTone = "Professional"
	// ReservedTone triggers the extended style exemplar block in composed prompts.
	ReservedTone = "Subtle Desi & Witty"
)

// ConfigOptions is the raw user input a GenerationConfig is built from.
type ConfigOptions struct {
	Mode             Mode
	Tone             string
	Length           Length
	Topic            string
	CustomProfession string
	ArticleURL       string
	ArticleText      string
}

// GenerationConfig holds the user-chosen parameters that shape a prompt.
// It is built once per run by NewGenerationConfig and treated as a value afterwards.
type GenerationConfig struct {
	Mode             Mode   `json:"mode" validate:"required,oneof=post comment"`
	Tone             string `json:"tone" validate:"required"`
	Length           Length `json:"length" validate:"required,oneof=short medium long"`
	Topic            string `json:"topic,omitempty"`
	CustomProfession string `json:"custom_profession,omitempty"`
	ArticleURL       string `json:"article_url,omitempty"`
	ArticleText      string `json:"article_text,omitempty" validate:"required_if=Mode comment"`
}

// NewGenerationConfig normalizes opts and validates the result.
// Post mode drops any article fields; comment mode truncates the article to MaxArticleChars.
func NewGenerationConfig(opts ConfigOptions) (GenerationConfig, error) {
	cfg := GenerationConfig{
		Mode:             opts.Mode,
		Tone:             strings.TrimSpace(opts.Tone),
		Length:           opts.Length,
		Topic:            strings.TrimSpace(opts.Topic),
		CustomProfession: strings.TrimSpace(opts.CustomProfession),
	}
	if cfg.Mode == "" {
		cfg.Mode = ModePost
	}
	if cfg.Tone == "" {
		cfg.Tone = DefaultTone
	}
	if cfg.Length == "" {
		cfg.Length = LengthMedium
	}
	if cfg.Mode == ModeComment {
		cfg.ArticleURL = strings.TrimSpace(opts.ArticleURL)
		cfg.ArticleText = Truncate(strings.TrimSpace(opts.ArticleText), MaxArticleChars)
	}

	if err := cfg.Validate(); err != nil {
		return GenerationConfig{}, err
	}
	return cfg, nil
}

// Validate checks the config invariants and reports violations as a PreconditionError.
func (c GenerationConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate generation config: %w", err)
	}

	fe := verrs[0]
	if fe.Field() == "article_text" {
		return NewPreconditionError("article_text", "article text is required for comment mode")
	}
	return NewPreconditionError(fe.Field(), "invalid %s %q (rule: %s)", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
}

// Overrides are the fields a regeneration may change. Nil fields keep the original value.
type Overrides struct {
	Tone             *string
	Length           *Length
	Topic            *string
	CustomProfession *string
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool {
	return o.Tone == nil && o.Length == nil && o.Topic == nil && o.CustomProfession == nil
}

// WithOverrides returns a copy of c with the overrides applied and validated.
// The receiver is never modified.
func (c GenerationConfig) WithOverrides(o Overrides) (GenerationConfig, error) {
	next := c
	if o.Tone != nil {
		next.Tone = strings.TrimSpace(*o.Tone)
		if next.Tone == "" {
			next.Tone = DefaultTone
		}
	}
	if o.Length != nil {
		next.Length = *o.Length
		if next.Length == "" {
			next.Length = LengthMedium
		}
	}
	if o.Topic != nil {
		next.Topic = strings.TrimSpace(*o.Topic)
	}
	if o.CustomProfession != nil {
		next.CustomProfession = strings.TrimSpace(*o.CustomProfession)
	}

	if err := next.Validate(); err != nil {
		return GenerationConfig{}, err
	}
	return next, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
