package keystore

import (
	"os"
	"strings"

	"github.com/jonathan/postsmith/internal/llm"
)

// EnvVars maps key names to the environment variables consulted before the store.
var EnvVars = map[string]string{
	OpenAIKey:  "OPENAI_API_KEY",
	GeminiKey:  "GEMINI_API_KEY",
	ScraperKey: "SCRAPINGBEE_API_KEY",
}

// Resolve returns the first non-empty value among flagValue, the key's environment
// variable and the store. s may be nil.
func Resolve(s *Store, name, flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if env, ok := EnvVars[name]; ok {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if s != nil {
		return s.Get(name)
	}
	return ""
}

// ResolveProvider resolves the API key for provider p.
func ResolveProvider(s *Store, p llm.ProviderID, flagValue string) string {
	name := KeyForProvider(p)
	if name == "" {
		return strings.TrimSpace(flagValue)
	}
	return Resolve(s, name, flagValue)
}
