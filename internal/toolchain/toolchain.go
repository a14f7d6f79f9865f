// Package toolchain loads and validates toolchains files.
//
// A toolchains file lists, per language, the tools a project may configure,
// and gives every tool a section mapping configured values to setup script:
//
//	toolchains:
//	  ruby: [rvm, env]
//	rvm:
//	  default_ival: "2.7"
//	  "2.7": rvm use 2.7
//	  "*": rvm use ${jervis_toolchain_ival}
//	env:
//	  default_ival: ""
//	  matrix: advanced
//	  "*": export ${jervis_toolchain_ival}
package toolchain

import (
	"fmt"
	"os"
	"slices"
	"strings"

	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
	"git.home.luguber.info/inful/jervis/internal/util/sets"
	"git.home.luguber.info/inful/jervis/internal/util/yamlmap"
)

const (
	keyToolchains  = "toolchains"
	keyDefaultIval = "default_ival"
	keyMatrix      = "matrix"
	keyComment     = "comment"

	// CatchAll names the section entry used for values without their own entry.
	CatchAll = "*"
	// IvalPlaceholder is replaced by the configured value in catch-all scripts.
	IvalPlaceholder = "${jervis_toolchain_ival}"
)

// Matrix describes how a tool expands list values into build matrix axes.
type Matrix string

const (
	MatrixSimple   Matrix = ""
	MatrixAdvanced Matrix = "advanced"
	MatrixDisabled Matrix = "disabled"
)

// Tool is the validated section of one tool.
type Tool struct {
	Name        string
	DefaultIval string
	Matrix      Matrix
	values      map[string][]string
}

// Supports reports whether value has an entry or a catch-all applies.
func (t *Tool) Supports(value string) bool {
	if _, ok := t.values[value]; ok {
		return true
	}
	_, ok := t.values[CatchAll]
	return ok
}

// Script returns the setup lines for value. Catch-all lines have the
// placeholder replaced by value.
func (t *Tool) Script(value string) ([]string, bool) {
	if lines, ok := t.values[value]; ok {
		return slices.Clone(lines), true
	}
	lines, ok := t.values[CatchAll]
	if !ok {
		return nil, false
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.ReplaceAll(line, IvalPlaceholder, value)
	}
	return out, true
}

// Values returns the explicit values of the tool, sorted, without the
// catch-all.
func (t *Tool) Values() []string {
	out := make([]string, 0, len(t.values))
	for v := range t.values {
		if v != CatchAll {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// File is a validated toolchains file.
type File struct {
	toolchains map[string][]string
	tools      map[string]*Tool
}

// Languages returns the languages with a toolchain, sorted.
func (f *File) Languages() []string {
	out := make([]string, 0, len(f.toolchains))
	for lang := range f.toolchains {
		out = append(out, lang)
	}
	slices.Sort(out)
	return out
}

// Supports reports whether language has a toolchain.
func (f *File) Supports(language string) bool {
	_, ok := f.toolchains[language]
	return ok
}

// ToolsFor returns the tools of language in declaration order.
func (f *File) ToolsFor(language string) []string {
	return slices.Clone(f.toolchains[language])
}

// Tool returns the section of name.
func (f *File) Tool(name string) (*Tool, bool) {
	t, ok := f.tools[name]
	return t, ok
}

// Validator parses toolchains files and reports problems as toolchain
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

// Load reads and validates the toolchains file at path.
func (v *Validator) Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read toolchains file: %w", err)
	}
	return v.Parse(data)
}

// Parse validates a toolchains document.
func (v *Validator) Parse(data []byte) (*File, error) {
	root, err := yamlmap.Decode(data)
	if err != nil {
		return nil, v.errs.ToolchainValidation("toolchains file could not be parsed as YAML or JSON.").WithCause(err)
	}
	if !root.Has(keyToolchains) {
		return nil, v.errs.ToolchainMissingKey(keyToolchains)
	}
	langs, ok := root.Map(keyToolchains)
	if !ok {
		return nil, v.errs.ToolchainBadValueInKey(keyToolchains)
	}

	f := &File{
		toolchains: make(map[string][]string, len(langs)),
		tools:      make(map[string]*Tool),
	}
	used := sets.New[string]()
	for _, lang := range langs.Keys() {
		tools, ok := langs.StringList(lang)
		if !ok {
			return nil, v.errs.ToolchainBadValueInKey(keyToolchains + "." + lang)
		}
		f.toolchains[lang] = tools
		for _, tool := range tools {
			used.Add(tool)
		}
	}

	for _, name := range sets.Sorted(used) {
		if !root.Has(name) {
			return nil, v.errs.ToolchainMissingKey(name)
		}
		tool, err := v.parseTool(name, root[name])
		if err != nil {
			return nil, err
		}
		f.tools[name] = tool
	}
	return f, nil
}

func (v *Validator) parseTool(name string, raw any) (*Tool, error) {
	section, ok := yamlmap.AsMap(raw)
	if !ok {
		return nil, v.errs.ToolchainBadValueInKey(name)
	}
	if !section.Has(keyDefaultIval) {
		return nil, v.errs.ToolchainMissingKey(name + "." + keyDefaultIval)
	}
	ival, ok := section.String(keyDefaultIval)
	if !ok {
		return nil, v.errs.ToolchainBadValueInKey(name + "." + keyDefaultIval)
	}

	tool := &Tool{Name: name, DefaultIval: ival, values: make(map[string][]string)}
	if section.Has(keyMatrix) {
		m, _ := section.String(keyMatrix)
		switch Matrix(m) {
		case MatrixAdvanced, MatrixDisabled:
			tool.Matrix = Matrix(m)
		default:
			return nil, v.errs.ToolchainBadValueInKey(name + "." + keyMatrix + ": " + m)
		}
	}

	for _, value := range section.Keys() {
		switch value {
		case keyDefaultIval, keyMatrix, keyComment:
			continue
		}
		lines, ok := section.StringOrList(value)
		if !ok {
			return nil, v.errs.ToolchainBadValueInKey(name + "." + value)
		}
		tool.values[value] = lines
	}

	if !tool.Supports(ival) {
		return nil, v.errs.ToolchainMissingKey(name + "." + ival)
	}
	return tool, nil
}

var defaultValidator = NewValidator(nil)

// Parse validates a toolchains document using the default error factory.
func Parse(data []byte) (*File, error) {
	return defaultValidator.Parse(data)
}

// Load reads and validates a toolchains file using the default error factory.
func Load(path string) (*File, error) {
	return defaultValidator.Load(path)
}
