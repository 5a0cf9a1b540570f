// Package keystore persists user API keys in a YAML file readable only by the owner.
package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/jonathan/postsmith/internal/llm"
	"github.com/jonathan/postsmith/internal/types"
)

// Key names.
const (
	OpenAIKey  = "openai_api_key"
	GeminiKey  = "gemini_api_key"
	ScraperKey = "scraper_api_key"
)

// FileMode is the permission of the key file.
const FileMode fs.FileMode = 0o600

// Names lists the keys the store accepts.
var Names = []string{OpenAIKey, GeminiKey, ScraperKey}

// ErrUnknownKey is returned for a key name outside Names.
var ErrUnknownKey = errors.New("unknown key name")

// KeyForProvider returns the key name holding the credential for p.
func KeyForProvider(p llm.ProviderID) string {
	switch p {
	case llm.ProviderOpenAI:
		return OpenAIKey
	case llm.ProviderGemini:
		return GeminiKey
	default:
		return ""
	}
}

// Entry is a stored key with its masked value.
type Entry struct {
	Name   string
	Masked string
}

// Store is a file-backed key store. Every change is written immediately.
type Store struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// Open reads the key file at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, v: newViper(path)}
	if err := s.v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	return s, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetConfigPermissions(FileMode)
	return v
}

// Path returns the key file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value of name, or "" when unset.
func (s *Store) Get(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(name)
}

// Set stores value under name and persists the file.
func (s *Store) Set(name, value string) error {
	if err := checkName(name); err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return types.NewPreconditionError(name, "key value must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(name, value)
	return s.write(s.v)
}

// Delete removes name and persists the file.
func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// viper has no unset; rebuild from the remaining keys
	next := newViper(s.path)
	for _, n := range Names {
		if n == name {
			continue
		}
		if val := s.v.GetString(n); val != "" {
			next.Set(n, val)
		}
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.v = next
	return nil
}

// List returns the stored keys with masked values, sorted by name.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, n := range Names {
		if val := s.v.GetString(n); val != "" {
			out = append(out, Entry{Name: n, Masked: Mask(val)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) write(v *viper.Viper) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	if err := os.Chmod(s.path, FileMode); err != nil {
		return fmt.Errorf("failed to restrict key file permissions: %w", err)
	}
	return nil
}

func checkName(name string) error {
	for _, n := range Names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("%w %q (expected one of %s)", ErrUnknownKey, name, strings.Join(Names, ", "))
}

// Mask hides all but the ends of a secret.
func Mask(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", 4) + secret[len(secret)-4:]
}
