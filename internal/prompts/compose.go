package prompts

import (
	"strings"

	"github.com/jonathan/postsmith/internal/types"
)

const composeFile = "compose.json"

// Compose builds the generation prompt for profile and cfg.
// The result is the rules block, the optional style block, the task block and the profile block,
// concatenated in that order. Identical inputs always produce an identical prompt.
func Compose(profile types.Profile, cfg types.GenerationConfig) (string, error) {
	task, err := TaskBlock(cfg)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(RulesBlock(cfg.Mode))
	b.WriteString(StyleBlock(cfg.Tone))
	b.WriteString(task)
	b.WriteString(ProfileBlock(profile, cfg))
	return b.String(), nil
}

// RulesBlock returns the role and core rules for mode. Unknown modes get the post rules.
func RulesBlock(mode types.Mode) string {
	if mode == types.ModeComment {
		return MustGet(composeFile, "comment-rules")
	}
	return MustGet(composeFile, "post-rules")
}

// StyleBlock returns the style exemplar block for the reserved tone, or "" for any other tone.
func StyleBlock(tone string) string {
	if tone != types.ReservedTone {
		return ""
	}
	return Format(MustGet(composeFile, "reserved-style"), map[string]string{"Tone": tone})
}

// TaskBlock returns the task instruction for cfg, ending with the word-count instruction.
// Comment mode without article text fails with a PreconditionError.
func TaskBlock(cfg types.GenerationConfig) (string, error) {
	data := map[string]string{"WordInstruction": WordInstruction(cfg.Length)}

	switch {
	case cfg.Mode == types.ModeComment:
		article := types.Truncate(strings.TrimSpace(cfg.ArticleText), types.MaxArticleChars)
		if article == "" {
			return "", types.NewPreconditionError("article_text", "article text is required for comment mode")
		}
		data["Article"] = article
		return Format(MustGet(composeFile, "task-comment"), data), nil
	case cfg.Topic != "":
		data["Topic"] = cfg.Topic
		return Format(MustGet(composeFile, "task-post-topic"), data), nil
	default:
		return Format(MustGet(composeFile, "task-post-general"), data), nil
	}
}

// ProfileBlock returns the labeled profile context. A custom profession replaces the extracted one.
func ProfileBlock(profile types.Profile, cfg types.GenerationConfig) string {
	return Format(MustGet(composeFile, "profile"), map[string]string{
		"Profession": EffectiveProfession(profile, cfg),
		"About":      profile.About,
		"Tone":       cfg.Tone,
	})
}

// EffectiveProfession returns cfg.CustomProfession when set, else the profile's profession.
func EffectiveProfession(profile types.Profile, cfg types.GenerationConfig) string {
	if p := strings.TrimSpace(cfg.CustomProfession); p != "" {
		return p
	}
	return profile.Profession
}

// WordInstruction returns the word-count sentence for length.
func WordInstruction(length types.Length) string {
	return Format(MustGet(composeFile, "word-instruction"), map[string]string{"WordRange": length.WordRange()})
}
