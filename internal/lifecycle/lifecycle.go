// Package lifecycle loads and validates lifecycles files.
//
// A lifecycles file describes, per language, how to install dependencies and
// run a build. Each language names a defaultKey; keys may guard themselves
// with a fileExistsCondition and defer to a fallbackKey when the file is
// absent:
//
//	ruby:
//	  defaultKey: rake1
//	  friendlyName: Ruby
//	  rake1:
//	    fileExistsCondition: Gemfile.lock
//	    fallbackKey: rake2
//	    install: bundle install --jobs=3 --retry=3 --deployment
//	    script: bundle exec rake
//	  rake2:
//	    install: bundle install --jobs=3 --retry=3
//	    script: bundle exec rake
package lifecycle

import (
	"fmt"
	"os"
	"slices"

	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
	"git.home.luguber.info/inful/jervis/internal/util/sets"
	"git.home.luguber.info/inful/jervis/internal/util/yamlmap"
)

const (
	keyDefault      = "defaultKey"
	keyFriendlyName = "friendlyName"
	keyFileExists   = "fileExistsCondition"
	keyFallback     = "fallbackKey"
)

// Key is one build recipe of a language.
type Key struct {
	Name                string
	FileExistsCondition string
	FallbackKey         string
	Env                 []string
	Install             []string
	Script              []string
}

// Lifecycle holds the recipes of one language.
type Lifecycle struct {
	Language     string
	FriendlyName string
	DefaultKey   string
	Keys         map[string]Key
}

// File is a validated lifecycles file.
type File struct {
	lifecycles map[string]*Lifecycle
}

// Languages returns the languages the file describes, sorted.
func (f *File) Languages() []string {
	out := make([]string, 0, len(f.lifecycles))
	for lang := range f.lifecycles {
		out = append(out, lang)
	}
	slices.Sort(out)
	return out
}

// Get returns the lifecycle of language.
func (f *File) Get(language string) (*Lifecycle, bool) {
	l, ok := f.lifecycles[language]
	return l, ok
}

// Resolve picks the key a build of language would use.
func (f *File) Resolve(language string, fileExists func(string) bool) (Key, bool) {
	l, ok := f.lifecycles[language]
	if !ok {
		return Key{}, false
	}
	return l.Resolve(fileExists), true
}

// Resolve walks the fallback chain from the default key and returns the
// first key whose fileExistsCondition holds, or the end of the chain.
// A nil fileExists treats every file as absent.
func (l *Lifecycle) Resolve(fileExists func(string) bool) Key {
	if fileExists == nil {
		fileExists = func(string) bool { return false }
	}
	key := l.Keys[l.DefaultKey]
	for i, n := 0, len(l.Keys); i < n; i++ {
		if key.FileExistsCondition == "" || fileExists(key.FileExistsCondition) || key.FallbackKey == "" {
			return key
		}
		key = l.Keys[key.FallbackKey]
	}
	return key
}

// Validator parses lifecycles files and reports problems as lifecycle
// validation errors.
type Validator struct {
	errs *jerrors.Factory
}

// NewValidator returns a validator composing errors with errs, or with the
// default factory when errs is nil.
func NewValidator(errs *jerrors.Factory) *Validator {
	if errs == nil {
		errs = jerrors.Default()
	}
	return &Validator{errs: errs}
}

// Load reads and validates the lifecycles file at path.
func (v *Validator) Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lifecycles file: %w", err)
	}
	return v.Parse(data)
}

// Parse validates a lifecycles document (YAML or JSON).
func (v *Validator) Parse(data []byte) (*File, error) {
	root, err := yamlmap.Decode(data)
	if err != nil {
		return nil, v.errs.LifecycleValidation("lifecycles file could not be parsed as YAML or JSON.").WithCause(err)
	}

	f := &File{lifecycles: make(map[string]*Lifecycle, len(root))}
	for _, lang := range root.Keys() {
		l, err := v.parseLanguage(lang, root[lang])
		if err != nil {
			return nil, err
		}
		if err := v.checkLoops(l); err != nil {
			return nil, err
		}
		f.lifecycles[lang] = l
	}
	return f, nil
}

func (v *Validator) parseLanguage(lang string, raw any) (*Lifecycle, error) {
	section, ok := yamlmap.AsMap(raw)
	if !ok {
		return nil, v.errs.LifecycleValidation(lang + " must be a map of lifecycle keys.")
	}

	l := &Lifecycle{Language: lang, Keys: make(map[string]Key)}
	for _, required := range []string{keyDefault, keyFriendlyName} {
		if !section.Has(required) {
			return nil, v.errs.LifecycleMissingKey(lang + "." + required)
		}
		if _, ok := section.String(required); !ok {
			return nil, v.errs.LifecycleValidation(lang + "." + required + " must be a string.")
		}
	}
	l.DefaultKey, _ = section.String(keyDefault)
	l.FriendlyName, _ = section.String(keyFriendlyName)

	for _, name := range section.Keys() {
		if name == keyDefault || name == keyFriendlyName {
			continue
		}
		key, err := v.parseKey(lang, name, section[name])
		if err != nil {
			return nil, err
		}
		l.Keys[name] = key
	}

	if _, ok := l.Keys[l.DefaultKey]; !ok {
		return nil, v.errs.LifecycleMissingKey(lang + "." + l.DefaultKey)
	}
	for _, name := range section.Keys() {
		key, ok := l.Keys[name]
		if !ok || key.FallbackKey == "" {
			continue
		}
		if _, ok := l.Keys[key.FallbackKey]; !ok {
			return nil, v.errs.LifecycleMissingKey(lang + "." + key.FallbackKey)
		}
	}
	return l, nil
}

func (v *Validator) parseKey(lang, name string, raw any) (Key, error) {
	path := lang + "." + name
	m, ok := yamlmap.AsMap(raw)
	if !ok {
		return Key{}, v.errs.LifecycleValidation(path + " must be a map.")
	}

	key := Key{Name: name}
	scalars := []struct {
		field string
		dst   *string
	}{
		{keyFileExists, &key.FileExistsCondition},
		{keyFallback, &key.FallbackKey},
	}
	for _, f := range scalars {
		if !m.Has(f.field) {
			continue
		}
		s, ok := m.String(f.field)
		if !ok {
			return Key{}, v.errs.LifecycleValidation(path + "." + f.field + " must be a string.")
		}
		*f.dst = s
	}
	if key.FallbackKey != "" && key.FileExistsCondition == "" {
		return Key{}, v.errs.LifecycleMissingKey(path + "." + keyFileExists)
	}

	lists := []struct {
		field string
		dst   *[]string
	}{
		{"env", &key.Env},
		{"install", &key.Install},
		{"script", &key.Script},
	}
	for _, f := range lists {
		if !m.Has(f.field) {
			continue
		}
		lines, ok := m.StringOrList(f.field)
		if !ok {
			return Key{}, v.errs.LifecycleValidation(path + "." + f.field + " must be a string or a list of strings.")
		}
		*f.dst = lines
	}
	return key, nil
}

// checkLoops follows every fallback chain and reports the last key visited
// before a chain returns to a key it has already passed through.
func (v *Validator) checkLoops(l *Lifecycle) error {
	names := make([]string, 0, len(l.Keys))
	for name := range l.Keys {
		names = append(names, name)
	}
	slices.Sort(names)
	// Start from the default key so the reported key matches what a build
	// would actually walk.
	names = append([]string{l.DefaultKey}, names...)

	for _, start := range names {
		seen := sets.New(start)
		current := start
		for {
			next := l.Keys[current].FallbackKey
			if next == "" {
				break
			}
			if seen.Has(next) {
				return v.errs.LifecycleInfiniteLoop(l.Language + "." + current)
			}
			seen.Add(next)
			current = next
		}
	}
	return nil
}

var defaultValidator = NewValidator(nil)

// Parse validates a lifecycles document using the default error factory.
func Parse(data []byte) (*File, error) {
	return defaultValidator.Parse(data)
}

// Load reads and validates a lifecycles file using the default error factory.
func Load(path string) (*File, error) {
	return defaultValidator.Load(path)
}
