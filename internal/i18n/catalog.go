// Package i18n holds the static label catalog for the supported UI
// languages and the locale tags used for voice input.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/krishichetan/kchetan/internal/models"
)

//go:embed locales/*.yaml
var embedded embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog maps language → label key → text. It is read-only after load.
type Catalog struct {
	messages map[models.Language]map[string]string
}

var defaultCatalog = mustLoadEmbedded()

func mustLoadEmbedded() *Catalog {
	c, err := LoadFS(embedded)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return defaultCatalog
}

// LoadFS reads every locales/<lang>.yaml file in fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	c := &Catalog{messages: map[models.Language]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}

		fromName := strings.TrimSuffix(path.Base(p), path.Ext(p))
		lang, ok := models.ParseLanguage(file.Locale)
		if !ok {
			return nil, fmt.Errorf("%s: unsupported locale %q", p, file.Locale)
		}
		if string(lang) != fromName {
			return nil, fmt.Errorf("%s: locale %q must match file name", p, file.Locale)
		}
		if _, dup := c.messages[lang]; dup {
			return nil, fmt.Errorf("%s: locale %q defined twice", p, lang)
		}

		msgs := make(map[string]string, len(file.Messages))
		for k, v := range file.Messages {
			k = strings.TrimSpace(k)
			if k == "" {
				return nil, fmt.Errorf("%s: blank message key", p)
			}
			msgs[k] = v
		}
		c.messages[lang] = msgs
	}

	if _, ok := c.messages[models.DefaultLanguage]; !ok {
		return nil, fmt.Errorf("base locale %s is missing", models.DefaultLanguage)
	}
	return c, nil
}

// Lookup returns the text for key in lang. A missing entry reports false;
// there is no fallback to another language.
func (c *Catalog) Lookup(lang models.Language, key string) (string, bool) {
	v, ok := c.messages[lang][key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Labels returns the initial label set: every key rendered in the base
// language.
func (c *Catalog) Labels() map[string]string {
	out := make(map[string]string)
	for k, v := range c.messages[models.DefaultLanguage] {
		out[k] = v
	}
	return out
}

// Apply re-renders labels in lang. Keys with no entry for lang keep their
// current text. The input map is not modified.
func (c *Catalog) Apply(lang models.Language, labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		if t, ok := c.Lookup(lang, k); ok {
			out[k] = t
			continue
		}
		out[k] = v
	}
	return out
}

var voiceTags = map[models.Language]language.Tag{
	models.English: language.AmericanEnglish,
	models.Hindi:   language.MustParse("hi-IN"),
	models.Marathi: language.MustParse("mr-IN"),
}

// VoiceTag returns the speech-recognition locale for lang.
func VoiceTag(lang models.Language) language.Tag {
	if t, ok := voiceTags[lang]; ok {
		return t
	}
	return language.AmericanEnglish
}

// Match picks the supported language closest to a BCP 47 preference list
// such as an Accept-Language header or $LANG.
func Match(pref string) models.Language {
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return models.DefaultLanguage
	}
	supported := []language.Tag{language.English, language.Hindi, language.Marathi}
	matcher := language.NewMatcher(supported)
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return models.DefaultLanguage
	}
	return models.Languages[idx]
}

// FromLocale maps a POSIX locale such as "hi_IN.UTF-8" to the closest
// supported language. "C", "POSIX" and empty values give the default.
func FromLocale(locale string) models.Language {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	switch locale {
	case "", "C", "POSIX":
		return models.DefaultLanguage
	}
	return Match(strings.ReplaceAll(locale, "_", "-"))
}
