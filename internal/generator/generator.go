// Package generator turns a project's YAML build description into a build
// plan using validated lifecycles, toolchains and platforms files.
package generator

import (
	"fmt"
	"strings"

	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
	"git.home.luguber.info/inful/jervis/internal/lifecycle"
	"git.home.luguber.info/inful/jervis/internal/platform"
	"git.home.luguber.info/inful/jervis/internal/toolchain"
	"git.home.luguber.info/inful/jervis/internal/util/yamlmap"
)

const (
	keyLanguage    = "language"
	keyJenkins     = "jenkins"
	keyJenkinsfile = "pipeline_jenkinsfile"
	keyPlatform    = "platform"
	keyOS          = "os"

	// DefaultJenkinsfile is used when the project does not name one.
	DefaultJenkinsfile = "Jenkinsfile"
)

// Plan is everything needed to run one project build.
type Plan struct {
	Language     string
	FriendlyName string
	LifecycleKey string
	Platform     string
	OS           string
	Jenkinsfile  string
	// Tools maps each tool of the language toolchain to its configured values.
	Tools map[string][]string
	// MatrixAxes lists tools whose multiple values expand the build matrix.
	MatrixAxes []string
	Script     string
}

// Generator builds plans. Platforms are optional; without them no platform
// checks are made.
type Generator struct {
	Lifecycles *lifecycle.File
	Toolchains *toolchain.File
	Platforms  *platform.File
	// FileExists decides lifecycle fallbacks. Nil means no file exists.
	FileExists func(string) bool
	// Project is the owner/name of the repository being built. It is only
	// used to enforce platform restrictions.
	Project string

	errs *jerrors.Factory
}

// New returns a generator reporting problems through errs, or through the
// default factory when errs is nil.
func New(lifecycles *lifecycle.File, toolchains *toolchain.File, errs *jerrors.Factory) *Generator {
	if errs == nil {
		errs = jerrors.Default()
	}
	return &Generator{Lifecycles: lifecycles, Toolchains: toolchains, errs: errs}
}

// Generate validates project and assembles its plan.
func (g *Generator) Generate(project []byte) (*Plan, error) {
	doc, err := yamlmap.Decode(project)
	if err != nil {
		return nil, g.errs.Generator("project YAML could not be parsed.").WithCause(err)
	}

	if !doc.Has(keyLanguage) {
		return nil, g.errs.Generator("language key is required")
	}
	lang, ok := doc.String(keyLanguage)
	if !ok {
		return nil, g.errs.Generator("language key must be a string")
	}

	lc, ok := g.Lifecycles.Get(lang)
	if !ok || !g.Toolchains.Supports(lang) {
		return nil, g.errs.UnsupportedLanguage(lang)
	}

	plan := &Plan{
		Language:     lang,
		FriendlyName: lc.FriendlyName,
		Jenkinsfile:  DefaultJenkinsfile,
		Tools:        make(map[string][]string),
	}
	if err := g.applyJenkins(doc, plan); err != nil {
		return nil, err
	}

	var script []string
	for _, name := range g.Toolchains.ToolsFor(lang) {
		lines, err := g.toolScript(doc, name, plan)
		if err != nil {
			return nil, err
		}
		script = append(script, lines...)
	}

	exists := g.FileExists
	if exists == nil {
		exists = func(string) bool { return false }
	}
	key := lc.Resolve(exists)
	plan.LifecycleKey = key.Name
	for _, env := range key.Env {
		script = append(script, "export "+env)
	}
	script = append(script, key.Install...)
	script = append(script, key.Script...)

	plan.Script = strings.Join(script, "\n")
	if plan.Script != "" {
		plan.Script += "\n"
	}
	return plan, nil
}

func (g *Generator) toolScript(doc yamlmap.Map, name string, plan *Plan) ([]string, error) {
	tool, ok := g.Toolchains.Tool(name)
	if !ok {
		return nil, g.errs.UnsupportedTool(name)
	}
	if g.Platforms != nil && !g.Platforms.SupportsToolchain(plan.Platform, plan.OS, name) {
		return nil, g.errs.UnsupportedTool(fmt.Sprintf("%s (not available on %s/%s)", name, plan.Platform, plan.OS))
	}

	values := []string{tool.DefaultIval}
	if doc.Has(name) {
		v, ok := doc.StringOrList(name)
		if !ok || len(v) == 0 {
			return nil, g.errs.UnsupportedTool(fmt.Sprintf("%s: %v", name, doc[name]))
		}
		values = v
	}
	for _, value := range values {
		if !tool.Supports(value) {
			return nil, g.errs.UnsupportedTool(name + ": " + value)
		}
	}
	plan.Tools[name] = values

	// Disabled tools apply every value; matrix tools set up their first
	// value and expand the rest as axes.
	apply := values
	if tool.Matrix != toolchain.MatrixDisabled {
		apply = values[:1]
		if len(values) > 1 {
			plan.MatrixAxes = append(plan.MatrixAxes, name)
		}
	}

	var lines []string
	for _, value := range apply {
		s, _ := tool.Script(value)
		lines = append(lines, s...)
	}
	return lines, nil
}

func (g *Generator) applyJenkins(doc yamlmap.Map, plan *Plan) error {
	if g.Platforms != nil {
		plan.Platform = g.Platforms.Defaults.Platform
		plan.OS = g.Platforms.Defaults.OS
	}

	if doc.Has(keyJenkins) {
		jenkins, ok := doc.Map(keyJenkins)
		if !ok {
			return g.errs.PipelineGenerator("jenkins must be a map.")
		}
		fields := []struct {
			key string
			dst *string
		}{
			{keyJenkinsfile, &plan.Jenkinsfile},
			{keyPlatform, &plan.Platform},
			{keyOS, &plan.OS},
		}
		for _, field := range fields {
			if !jenkins.Has(field.key) {
				continue
			}
			s, ok := jenkins.String(field.key)
			if !ok || s == "" {
				return g.errs.PipelineGenerator(keyJenkins + "." + field.key + " must be a non-empty string.")
			}
			*field.dst = s
		}
	}

	if g.Platforms == nil {
		return nil
	}
	if _, ok := g.Platforms.OS(plan.Platform, plan.OS); !ok {
		return g.errs.PipelineGenerator(fmt.Sprintf("platform %s/%s is not supported.", plan.Platform, plan.OS))
	}
	if !g.Platforms.SupportsLanguage(plan.Platform, plan.OS, plan.Language) {
		return g.errs.UnsupportedLanguage(plan.Language)
	}
	if g.Project != "" {
		org, _, _ := strings.Cut(g.Project, "/")
		if !g.Platforms.Allowed(plan.Platform, org, g.Project) {
			return g.errs.PipelineGenerator(fmt.Sprintf("project %s may not build on platform %s.", g.Project, plan.Platform))
		}
	}
	return nil
}
