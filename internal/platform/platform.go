// Package platform loads and validates platforms files, which declare the
// build platforms and operating systems available and what each of them can
// build.
package platform

import (
	"fmt"
	"os"
	"slices"

	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
	"git.home.luguber.info/inful/jervis/internal/util/sets"
	"git.home.luguber.info/inful/jervis/internal/util/yamlmap"
)

const (
	keyDefaults     = "defaults"
	keyPlatforms    = "supported_platforms"
	keyRestrictions = "restrictions"
	keyLanguage     = "language"
	keyToolchain    = "toolchain"
	keyOnlyOrgs     = "only_organizations"
	keyOnlyProjects = "only_projects"
)

// Defaults apply to projects that do not pick a platform themselves.
type Defaults struct {
	Platform  string
	OS        string
	Stability string
	Sudo      string
}

var (
	stabilities = sets.New("stable", "unstable")
	sudoValues  = sets.New("sudo", "nosudo")
)

// OS lists what one operating system of a platform can build.
type OS struct {
	Languages  []string
	Toolchains []string
}

// Restriction limits a platform to some organizations or projects.
type Restriction struct {
	OnlyOrganizations []string
	OnlyProjects      []string
}

// File is a validated platforms file.
type File struct {
	Defaults     Defaults
	platforms    map[string]map[string]OS
	restrictions map[string]Restriction
}

// Platforms returns the declared platforms, sorted.
func (f *File) Platforms() []string {
	out := make([]string, 0, len(f.platforms))
	for p := range f.platforms {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// OS returns the operating system osName of platform.
func (f *File) OS(platform, osName string) (OS, bool) {
	o, ok := f.platforms[platform][osName]
	return o, ok
}

// SupportsLanguage reports whether language builds on platform/os.
func (f *File) SupportsLanguage(platform, osName, language string) bool {
	o, ok := f.OS(platform, osName)
	return ok && slices.Contains(o.Languages, language)
}

// SupportsToolchain reports whether tool is available on platform/os.
func (f *File) SupportsToolchain(platform, osName, tool string) bool {
	o, ok := f.OS(platform, osName)
	return ok && slices.Contains(o.Toolchains, tool)
}

// Allowed reports whether project (owner/name) may build on platform.
// Unrestricted platforms allow every project.
func (f *File) Allowed(platform, organization, project string) bool {
	r, ok := f.restrictions[platform]
	if !ok {
		return true
	}
	if len(r.OnlyOrganizations) == 0 && len(r.OnlyProjects) == 0 {
		return true
	}
	return slices.Contains(r.OnlyOrganizations, organization) || slices.Contains(r.OnlyProjects, project)
}

// Validator parses platforms files and reports problems as platform
// validation errors.
type Validator struct {
	errs *jerrors.Factory
}

// NewValidator returns a validator using errs, or the default factory when nil.
func NewValidator(errs *jerrors.Factory) *Validator {
	if errs == nil {
		errs = jerrors.Default()
	}
	return &Validator{errs: errs}
}

// Load reads and validates the platforms file at path.
func (v *Validator) Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read platforms file: %w", err)
	}
	return v.Parse(data)
}

// Parse validates a platforms document.
func (v *Validator) Parse(data []byte) (*File, error) {
	root, err := yamlmap.Decode(data)
	if err != nil {
		return nil, v.errs.PlatformValidation("platforms file could not be parsed as YAML or JSON.").WithCause(err)
	}

	f := &File{
		platforms:    make(map[string]map[string]OS),
		restrictions: make(map[string]Restriction),
	}
	for _, section := range []string{keyDefaults, keyPlatforms} {
		if !root.Has(section) {
			return nil, v.errs.PlatformMissingKey(section)
		}
	}

	if err := v.parsePlatforms(root, f); err != nil {
		return nil, err
	}
	if err := v.parseDefaults(root, f); err != nil {
		return nil, err
	}
	if err := v.parseRestrictions(root, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (v *Validator) parsePlatforms(root yamlmap.Map, f *File) error {
	platforms, ok := root.Map(keyPlatforms)
	if !ok {
		return v.errs.PlatformValidation(keyPlatforms + " must be a map of platforms.")
	}
	for _, name := range platforms.Keys() {
		oses, ok := platforms.Map(name)
		if !ok {
			return v.errs.PlatformValidation(keyPlatforms + "." + name + " must be a map of operating systems.")
		}
		f.platforms[name] = make(map[string]OS, len(oses))
		for _, osName := range oses.Keys() {
			path := keyPlatforms + "." + name + "." + osName
			section, ok := oses.Map(osName)
			if !ok {
				return v.errs.PlatformValidation(path + " must be a map.")
			}
			var o OS
			for _, list := range []struct {
				key string
				dst *[]string
			}{{keyLanguage, &o.Languages}, {keyToolchain, &o.Toolchains}} {
				if !section.Has(list.key) {
					return v.errs.PlatformMissingKey(path + "." + list.key)
				}
				items, ok := section.StringList(list.key)
				if !ok {
					return v.errs.PlatformBadValueInKey(path + "." + list.key + ": " + fmt.Sprint(section[list.key]))
				}
				*list.dst = items
			}
			f.platforms[name][osName] = o
		}
	}
	return nil
}

func (v *Validator) parseDefaults(root yamlmap.Map, f *File) error {
	defaults, ok := root.Map(keyDefaults)
	if !ok {
		return v.errs.PlatformValidation(keyDefaults + " must be a map.")
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"platform", &f.Defaults.Platform},
		{"os", &f.Defaults.OS},
		{"stability", &f.Defaults.Stability},
		{"sudo", &f.Defaults.Sudo},
	}
	for _, field := range fields {
		path := keyDefaults + "." + field.key
		if !defaults.Has(field.key) {
			return v.errs.PlatformMissingKey(path)
		}
		s, ok := defaults.String(field.key)
		if !ok {
			return v.errs.PlatformBadValueInKey(path + ": " + fmt.Sprint(defaults[field.key]))
		}
		*field.dst = s
	}

	d := f.Defaults
	switch {
	case !stabilities.Has(d.Stability):
		return v.errs.PlatformBadValueInKey(keyDefaults + ".stability: " + d.Stability)
	case !sudoValues.Has(d.Sudo):
		return v.errs.PlatformBadValueInKey(keyDefaults + ".sudo: " + d.Sudo)
	}
	if _, ok := f.platforms[d.Platform]; !ok {
		return v.errs.PlatformBadValueInKey(keyDefaults + ".platform: " + d.Platform)
	}
	if _, ok := f.platforms[d.Platform][d.OS]; !ok {
		return v.errs.PlatformBadValueInKey(keyDefaults + ".os: " + d.OS)
	}
	return nil
}

func (v *Validator) parseRestrictions(root yamlmap.Map, f *File) error {
	if !root.Has(keyRestrictions) {
		return nil
	}
	restrictions, ok := root.Map(keyRestrictions)
	if !ok {
		return v.errs.PlatformValidation(keyRestrictions + " must be a map of platforms.")
	}
	for _, name := range restrictions.Keys() {
		path := keyRestrictions + "." + name
		if _, ok := f.platforms[name]; !ok {
			return v.errs.PlatformBadValueInKey(keyRestrictions + ": " + name)
		}
		section, ok := restrictions.Map(name)
		if !ok {
			return v.errs.PlatformValidation(path + " must be a map.")
		}
		var r Restriction
		for _, list := range []struct {
			key string
			dst *[]string
		}{{keyOnlyOrgs, &r.OnlyOrganizations}, {keyOnlyProjects, &r.OnlyProjects}} {
			if !section.Has(list.key) {
				continue
			}
			items, ok := section.StringList(list.key)
			if !ok {
				return v.errs.PlatformBadValueInKey(path + "." + list.key + ": " + fmt.Sprint(section[list.key]))
			}
			*list.dst = items
		}
		f.restrictions[name] = r
	}
	return nil
}

var defaultValidator = NewValidator(nil)

// Parse validates a platforms document using the default error factory.
func Parse(data []byte) (*File, error) {
	return defaultValidator.Parse(data)
}

// Load reads and validates a platforms file using the default error factory.
func Load(path string) (*File, error) {
	return defaultValidator.Load(path)
}
