package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Language ties file types to a named formatter from the [formatter] table.
type Language struct {
	Name      string   `toml:"name"`
	FileTypes []string `toml:"file-types"`
	Formatter string   `toml:"formatter"`
}

type Languages struct {
	Languages  []Language               `toml:"language"`
	Formatters map[string]FormatOptions `toml:"formatter"`
}

func (l Languages) Match(path string) *Language {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range l.Languages {
		lang := &l.Languages[i]
		for _, ft := range lang.FileTypes {
			ftLower := strings.ToLower(ft)
			if ftLower == ext || ftLower == baseLower {
				return lang
			}
			if strings.HasPrefix(ftLower, ".") && strings.TrimPrefix(ftLower, ".") == ext {
				return lang
			}
		}
	}
	return nil
}

// FormatterFor returns the formatter configured for path, or fallback when no
// language matches or the language names an unknown formatter. A matched
// formatter without a timeout inherits the fallback's.
func (l Languages) FormatterFor(path string, fallback FormatOptions) FormatOptions {
	lang := l.Match(path)
	if lang == nil || lang.Formatter == "" {
		return fallback
	}
	f, ok := l.Formatters[lang.Formatter]
	if !ok {
		return fallback
	}
	if f.Timeout == "" {
		f.Timeout = fallback.Timeout
	}
	return f
}

func LoadLanguages() (Languages, error) {
	path, err := LanguagesPath()
	if err != nil {
		return Languages{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Languages{}, nil
		}
		return Languages{}, err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Languages{}, err
	}
	if cfg.Formatters == nil {
		cfg.Formatters = map[string]FormatOptions{}
	}
	return cfg, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
