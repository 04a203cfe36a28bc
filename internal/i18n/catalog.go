// Package i18n loads the translation catalog and negotiates the request locale.
package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/bg"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var placeholderRegex = regexp.MustCompile(`\{\d+\}`)

var knownLocales = map[string]func() locales.Translator{
	"en": en.New,
	"bg": bg.New,
}

// Catalog holds translated messages for every supported locale.
type Catalog struct {
	uni          *ut.UniversalTranslator
	fallback     string
	supported    []string
	placeholders map[string]map[string]int
	matcher      language.Matcher
}

// Load reads every locales/<locale>.yaml file from fsys. Nested YAML maps are
// flattened into dotted keys. fallback must be one of the loaded locales.
func Load(fsys fs.FS, fallback string) (*Catalog, error) {
	files, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("i18n: glob: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("i18n: no locale files")
	}
	sort.Strings(files)

	newFallback, ok := knownLocales[fallback]
	if !ok {
		return nil, fmt.Errorf("i18n: unsupported fallback locale %q", fallback)
	}
	c := &Catalog{
		fallback:     fallback,
		placeholders: make(map[string]map[string]int),
	}
	translators := []locales.Translator{}
	for _, file := range files {
		locale := strings.TrimSuffix(path.Base(file), ".yaml")
		newLocale, ok := knownLocales[locale]
		if !ok {
			return nil, fmt.Errorf("i18n: unsupported locale file %s", file)
		}
		translators = append(translators, newLocale())
		c.supported = append(c.supported, locale)
	}
	c.uni = ut.New(newFallback(), translators...)

	for i, file := range files {
		locale := c.supported[i]
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", file, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", file, err)
		}
		messages := make(map[string]string)
		flatten("", tree, messages)

		trans, _ := c.uni.GetTranslator(locale)
		counts := make(map[string]int, len(messages))
		for key, text := range messages {
			if err := trans.Add(key, text, true); err != nil {
				return nil, fmt.Errorf("i18n: %s %s: %w", locale, key, err)
			}
			counts[key] = len(placeholderRegex.FindAllString(text, -1))
		}
		c.placeholders[locale] = counts
	}

	tags := []language.Tag{language.Make(fallback)}
	for _, locale := range c.supported {
		if locale != fallback {
			tags = append(tags, language.Make(locale))
		}
	}
	c.matcher = language.NewMatcher(tags)
	if _, ok := c.placeholders[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %q has no catalog", fallback)
	}
	// matcher indexes follow tags, which start with the fallback.
	ordered := make([]string, 0, len(tags))
	for _, tag := range tags {
		base, _ := tag.Base()
		ordered = append(ordered, base.String())
	}
	c.supported = ordered
	return c, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case string:
			out[full] = v
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}

// Locales returns the supported locales, fallback first.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.supported...)
}

// Fallback returns the default locale.
func (c *Catalog) Fallback() string { return c.fallback }

// Supports reports whether locale has a catalog.
func (c *Catalog) Supports(locale string) bool {
	_, ok := c.placeholders[locale]
	return ok
}

// Has reports whether key exists in the fallback catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.placeholders[c.fallback][key]
	return ok
}

// T translates key. Params that are themselves catalog keys are translated
// first, so a label key can be passed as a parameter. Missing keys fall back to
// the default locale and then to the key itself.
func (c *Catalog) T(locale, key string, params ...string) string {
	params = append([]string(nil), params...)
	for i, p := range params {
		if p != key && c.has(locale, p) {
			params[i] = c.lookup(locale, p, nil)
		}
	}
	return c.lookup(locale, key, params)
}

func (c *Catalog) has(locale, key string) bool {
	if _, ok := c.placeholders[locale][key]; ok {
		return true
	}
	return c.Has(key)
}

func (c *Catalog) lookup(locale, key string, params []string) string {
	for _, candidate := range []string{locale, c.fallback} {
		count, ok := c.placeholders[candidate][key]
		if !ok {
			continue
		}
		trans, _ := c.uni.GetTranslator(candidate)
		args := make([]string, count)
		copy(args, params)
		if text, err := trans.T(key, args...); err == nil {
			return text
		}
	}
	return key
}

// For binds the catalog to one locale.
func (c *Catalog) For(locale string) Translator {
	if !c.Supports(locale) {
		locale = c.fallback
	}
	trans, _ := c.uni.GetTranslator(locale)
	return Translator{catalog: c, locale: locale, fmt: trans}
}

// Translator is a Catalog bound to a locale, handed to templates.
type Translator struct {
	catalog *Catalog
	locale  string
	fmt     ut.Translator
}

// Locale returns the bound locale.
func (t Translator) Locale() string { return t.locale }

// T translates key.
func (t Translator) T(key string, params ...string) string {
	if t.catalog == nil {
		return key
	}
	return t.catalog.T(t.locale, key, params...)
}

// Amount formats a decimal string with two fraction digits in the locale's
// number format. Values that do not parse are returned unchanged.
func (t Translator) Amount(value string) string {
	if value == "" || t.fmt == nil {
		return value
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}
	f, _ := d.Round(2).Float64()
	return t.fmt.FmtNumber(f, 2)
}

// Date formats an ISO date or timestamp in the locale's short date format.
func (t Translator) Date(value string) string {
	if value == "" || t.fmt == nil {
		return value
	}
	if len(value) > len("2006-01-02") {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			return t.fmt.FmtDateShort(ts)
		}
		value = value[:len("2006-01-02")]
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return t.fmt.FmtDateShort(d)
}
