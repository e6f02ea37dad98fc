// Package i18n loads the embedded message catalogs and hands out
// translators bound to one locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale; every other locale falls back to it.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds the messages of every locale.
type Bundle struct {
	locales map[string]map[string]string
	tags    []language.Tag
	names   []string
	matcher language.Matcher
	cat     *catalog.Builder
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads locales/<locale>/<Namespace>.yaml files from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.addFile(p, file); err != nil {
			return nil, err
		}
	}
	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	if err := b.build(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) addFile(p string, file catalogFile) error {
	localeFromPath := path.Base(path.Dir(p))
	namespaceFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(file.Locale)
	if locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", p, locale, localeFromPath)
	}
	namespace := strings.TrimSpace(file.Namespace)
	if namespace != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename %q", p, namespace, namespaceFromPath)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("catalog %s: messages map is required", p)
	}

	messages, ok := b.locales[locale]
	if !ok {
		messages = map[string]string{}
		b.locales[locale] = messages
	}
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, namespace+".") {
			return fmt.Errorf("catalog %s: key %q must start with %q", p, key, namespace+".")
		}
		if _, dup := messages[key]; dup {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", p, key, locale)
		}
		messages[key] = value
	}
	return nil
}

// build registers every locale with the base locale merged underneath so
// missing keys render in English instead of as raw keys.
func (b *Bundle) build() error {
	base := b.locales[BaseLocale]
	b.cat = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))

	names := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		names = append(names, locale)
	}
	sort.Strings(names)
	// base first so the matcher defaults to it
	sort.SliceStable(names, func(i, j int) bool { return names[i] == BaseLocale })

	for _, locale := range names {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		for key, value := range base {
			if err := b.cat.SetString(tag, key, value); err != nil {
				return fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
		for key, value := range b.locales[locale] {
			if err := b.cat.SetString(tag, key, value); err != nil {
				return fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
		b.tags = append(b.tags, tag)
		b.names = append(b.names, locale)
	}
	b.matcher = language.NewMatcher(b.tags)
	return nil
}

// Locales returns the available locale identifiers, base locale first.
func (b *Bundle) Locales() []string {
	return append([]string(nil), b.names...)
}

// Match resolves a requested locale ("es", "ja-JP", "") to a supported one.
func (b *Bundle) Match(requested string) string {
	if strings.TrimSpace(requested) == "" {
		return BaseLocale
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return BaseLocale
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return BaseLocale
	}
	return b.names[idx]
}

// Message returns the raw catalog entry for key with base-locale fallback.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if v, ok := b.locales[locale][key]; ok {
		return v, true
	}
	v, ok := b.locales[BaseLocale][key]
	return v, ok
}

// Translator binds a bundle to one locale.
type Translator struct {
	locale  string
	printer *message.Printer
}

// Translator returns a translator for the best match of requested.
func (b *Bundle) Translator(requested string) *Translator {
	locale := b.Match(requested)
	tag := language.MustParse(locale)
	return &Translator{
		locale:  locale,
		printer: message.NewPrinter(tag, message.Catalog(b.cat)),
	}
}

// Locale reports the resolved locale.
func (t *Translator) Locale() string { return t.locale }

// T renders key with printf-style args. Unknown keys render as the key.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}
