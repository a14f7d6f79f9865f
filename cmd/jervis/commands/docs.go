package commands

import (
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/jervis/internal/doclinks"
)

// DocsCmd implements the 'docs' command.
type DocsCmd struct {
	Overridden bool `help:"Only list topics whose URL was overridden"`
}

func (c *DocsCmd) Run(g *Global) error {
	w := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	for _, topic := range doclinks.Topics() {
		overridden := g.Registry.IsOverridden(topic)
		if c.Overridden && !overridden {
			continue
		}
		source := "default"
		if overridden {
			source = "override"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", topic, g.Registry.Lookup(topic), source); err != nil {
			return err
		}
	}
	return w.Flush()
}
