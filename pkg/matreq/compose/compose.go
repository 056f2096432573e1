// Package compose renders material requests as localized text.
//
// Templates are YAML files, one per language, registered into a private
// x/text message catalog. Every language is completed with the English
// text for keys it does not translate, so a printer never falls through to
// a raw key.
package compose

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/matreq/pkg/matreq/decision"
	"github.com/cognicore/matreq/pkg/matreq/internalerr"
	"github.com/cognicore/matreq/pkg/matreq/lang"
)

type templateFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed templates/*.yaml
var embeddedTemplates embed.FS

var (
	defaultOnce     sync.Once
	defaultComposer *Composer
	defaultErr      error
)

// Composer renders requests in any supported language. It is read-only
// after loading and safe for concurrent use.
type Composer struct {
	cat     *catalog.Builder
	base    map[string]string // English source text
	locales map[lang.Code]bool
	steps   map[decision.Status][]string
}

// Default returns the composer built from the embedded templates.
func Default() (*Composer, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			defaultErr = err
			return
		}
		defaultComposer, defaultErr = LoadFS(sub)
	})
	return defaultComposer, defaultErr
}

// LoadDir loads templates from every *.yaml file in dir.
func LoadDir(dir string) (*Composer, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads templates from every *.yaml file at the root of fsys. Each
// file holds one locale and must be named after it (hi.yaml for hi).
func LoadFS(fsys fs.FS) (*Composer, error) {
	paths, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no template files found", internalerr.ErrInvalidConfig)
	}
	sort.Strings(paths)

	files := make(map[lang.Code]map[string]string, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", p, err)
		}
		var f templateFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p, err)
		}
		code, err := lang.Parse(strings.TrimSpace(f.Locale))
		if err != nil || f.Locale == "" {
			return nil, fmt.Errorf("%w: template %s: locale %q", internalerr.ErrInvalidConfig, p, f.Locale)
		}
		if stem := strings.TrimSuffix(path.Base(p), path.Ext(p)); stem != string(code) {
			return nil, fmt.Errorf("%w: template %s: locale %q must match file name", internalerr.ErrInvalidConfig, p, code)
		}
		if _, dup := files[code]; dup {
			return nil, fmt.Errorf("%w: locale %q defined twice", internalerr.ErrInvalidConfig, code)
		}
		files[code] = f.Messages
	}
	return build(files)
}

func build(files map[lang.Code]map[string]string) (*Composer, error) {
	base, ok := files[lang.English]
	if !ok || len(base) == 0 {
		return nil, fmt.Errorf("%w: English templates are required", internalerr.ErrInvalidConfig)
	}
	keys := make([]string, 0, len(base))
	for k := range base {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := &Composer{
		cat:     catalog.NewBuilder(catalog.Fallback(language.English)),
		base:    base,
		locales: make(map[lang.Code]bool, len(files)),
		steps:   make(map[decision.Status][]string),
	}

	for _, st := range decision.Statuses {
		for n := 1; ; n++ {
			key := "next." + string(st) + "." + strconv.Itoa(n)
			if _, ok := base[key]; !ok {
				break
			}
			c.steps[st] = append(c.steps[st], key)
		}
		if len(c.steps[st]) == 0 {
			return nil, fmt.Errorf("%w: no next steps for status %s", internalerr.ErrInvalidConfig, st)
		}
	}

	for code, msgs := range files {
		for k := range msgs {
			if _, ok := base[k]; !ok {
				return nil, fmt.Errorf("%w: %s: key %q has no English source", internalerr.ErrInvalidConfig, code, k)
			}
		}
		tag := code.Tag()
		for _, k := range keys {
			msg, ok := msgs[k]
			if !ok {
				msg = base[k]
			}
			if err := c.cat.SetString(tag, k, msg); err != nil {
				return nil, fmt.Errorf("%s: register %q: %w", code, k, err)
			}
		}
		c.locales[code] = true
	}
	return c, nil
}

// Locales lists the languages with templates, in sorted order.
func (c *Composer) Locales() []lang.Code {
	out := make([]lang.Code, 0, len(c.locales))
	for code := range c.locales {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether key exists in the templates.
func (c *Composer) Has(key string) bool {
	_, ok := c.base[key]
	return ok
}

// Text renders one template key in code, falling back to English for a
// language without templates.
func (c *Composer) Text(code lang.Code, key string, args ...any) string {
	return c.printer(code).Sprintf(key, args...)
}

func (c *Composer) printer(code lang.Code) *message.Printer {
	if !c.locales[code] {
		code = lang.English
	}
	return message.NewPrinter(code.Tag(), message.Catalog(c.cat))
}
