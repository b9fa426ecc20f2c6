// Package localization provides functionality for internationalization (i18n).
// It loads translation strings from JSON files and provides a simple way to get
// localized strings for different languages. The key set is a closed list of
// typed constants so a missing key is visible at compile time, not runtime.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Key identifies one translatable string.
type Key string

// The closed set of translation keys.
const (
	KeyGrievanceFiled        Key = "grievance.filed"
	KeyGrievanceTransitioned Key = "grievance.transitioned"
	KeyGrievanceSolution     Key = "grievance.solution"
	KeyErrDuplicate          Key = "error.duplicate"
	KeyErrSpam               Key = "error.spam"
	KeyErrNotFound           Key = "error.not_found"
	KeyErrCredentials        Key = "error.invalid_credentials"
	KeyErrValidation         Key = "error.validation"
	KeyAIUnavailable         Key = "ai.unavailable"
)

// DefaultLang is the fallback locale when a key is missing elsewhere.
const DefaultLang = "en"

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer creates and returns a new Localizer instance.
// It loads all translations from the provided directory path.
// The directory should contain JSON files named with the language code (e.g., "en.json").
func NewLocalizer(path string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		filePath := filepath.Join(path, file.Name())

		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	return l, nil
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it falls back to the default
// language, and finally to the key itself.
func (l *Localizer) GetString(lang string, key Key) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[string(key)]; ok {
			return value
		}
	}

	if lang != DefaultLang {
		if defaults, ok := l.translations[DefaultLang]; ok {
			if value, ok := defaults[string(key)]; ok {
				return value
			}
		}
	}

	return string(key)
}
