package commands

import (
	"fmt"

	"git.home.luguber.info/inful/jervis/internal/lifecycle"
	"git.home.luguber.info/inful/jervis/internal/logfields"
	"git.home.luguber.info/inful/jervis/internal/platform"
	"git.home.luguber.info/inful/jervis/internal/toolchain"
)

// ValidateCmd implements the 'validate' command group.
type ValidateCmd struct {
	Lifecycles ValidateLifecyclesCmd `cmd:"" help:"Validate a lifecycles file"`
	Toolchains ValidateToolchainsCmd `cmd:"" help:"Validate a toolchains file"`
	Platforms  ValidatePlatformsCmd  `cmd:"" help:"Validate a platforms file"`
}

type ValidateLifecyclesCmd struct {
	File string `arg:"" help:"Lifecycles file (YAML or JSON)"`
}

func (v *ValidateLifecyclesCmd) Run(g *Global) error {
	g.Logger.Debug("Validating lifecycles", logfields.File(v.File))
	f, err := lifecycle.NewValidator(g.Errors).Load(v.File)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Out, "%s: valid lifecycles file (%d languages)\n", v.File, len(f.Languages()))
	return err
}

type ValidateToolchainsCmd struct {
	File string `arg:"" help:"Toolchains file (YAML or JSON)"`
}

func (v *ValidateToolchainsCmd) Run(g *Global) error {
	g.Logger.Debug("Validating toolchains", logfields.File(v.File))
	f, err := toolchain.NewValidator(g.Errors).Load(v.File)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Out, "%s: valid toolchains file (%d languages)\n", v.File, len(f.Languages()))
	return err
}

type ValidatePlatformsCmd struct {
	File string `arg:"" help:"Platforms file (YAML or JSON)"`
}

func (v *ValidatePlatformsCmd) Run(g *Global) error {
	g.Logger.Debug("Validating platforms", logfields.File(v.File))
	f, err := platform.NewValidator(g.Errors).Load(v.File)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Out, "%s: valid platforms file (%d platforms, default %s/%s)\n",
		v.File, len(f.Platforms()), f.Defaults.Platform, f.Defaults.OS)
	return err
}
