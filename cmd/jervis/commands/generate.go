package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/jervis/internal/generator"
	"git.home.luguber.info/inful/jervis/internal/lifecycle"
	"git.home.luguber.info/inful/jervis/internal/logfields"
	"git.home.luguber.info/inful/jervis/internal/platform"
	"git.home.luguber.info/inful/jervis/internal/toolchain"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Lifecycles string `required:"" placeholder:"FILE" help:"Lifecycles file"`
	Toolchains string `required:"" placeholder:"FILE" help:"Toolchains file"`
	Platforms  string `placeholder:"FILE" help:"Platforms file; enables platform checks"`
	Project    string `name:"project-name" placeholder:"OWNER/NAME" help:"Repository name, checked against platform restrictions"`
	Root       string `placeholder:"DIR" help:"Repository checkout used to resolve fileExistsCondition (defaults to the project file's directory)"`

	File string `arg:"" optional:"" help:"Project build file, or - for stdin" default:".jervis.yml"`
}

func (c *GenerateCmd) Run(g *Global) error {
	lc, err := lifecycle.NewValidator(g.Errors).Load(c.Lifecycles)
	if err != nil {
		return err
	}
	tc, err := toolchain.NewValidator(g.Errors).Load(c.Toolchains)
	if err != nil {
		return err
	}

	gen := generator.New(lc, tc, g.Errors)
	gen.Project = c.Project
	if c.Platforms != "" {
		pf, err := platform.NewValidator(g.Errors).Load(c.Platforms)
		if err != nil {
			return err
		}
		gen.Platforms = pf
	}

	root := c.Root
	if root == "" && c.File != "-" {
		root = filepath.Dir(c.File)
	}
	if root == "" {
		root = "."
	}
	gen.FileExists = func(name string) bool {
		_, err := os.Stat(filepath.Join(root, name))
		return err == nil
	}

	project, err := readInput(c.File)
	if err != nil {
		return err
	}
	plan, err := gen.Generate(project)
	if err != nil {
		return err
	}

	g.Logger.Info("Generated build plan",
		logfields.File(c.File),
		logfields.Language(plan.Language),
		"lifecycle_key", plan.LifecycleKey,
		"jenkinsfile", plan.Jenkinsfile)
	for _, tool := range plan.MatrixAxes {
		g.Logger.Debug("Matrix axis", logfields.Tool(tool), "values", strings.Join(plan.Tools[tool], ","))
	}

	_, err = fmt.Fprintf(g.Out, "#!/bin/bash\n# %s build (%s)\nset -ex\n%s", plan.FriendlyName, plan.LifecycleKey, plan.Script)
	return err
}
