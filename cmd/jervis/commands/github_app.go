package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/jervis/internal/githubapp"
	"git.home.luguber.info/inful/jervis/internal/retry"
)

// GitHubAppCmd implements the 'github-app' command group.
type GitHubAppCmd struct {
	AppID          int64  `name:"app-id" help:"Override github_app.app_id"`
	InstallationID int64  `name:"installation-id" help:"Override github_app.installation_id"`
	PrivateKeyFile string `name:"private-key-file" placeholder:"FILE" help:"Override github_app.private_key_file"`
	Retries        int    `default:"2" help:"Retries after a transient API failure"`
	Backoff        string `default:"linear" enum:"fixed,linear,exponential" help:"Delay growth between retries (fixed, linear, exponential)"`

	Token GitHubAppTokenCmd `cmd:"" help:"Print an installation access token"`
}

type GitHubAppTokenCmd struct {
	ShowExpiry bool `help:"Print the expiry time after the token"`
}

func (c *GitHubAppTokenCmd) Run(parent *GitHubAppCmd, g *Global) error {
	cfg := g.Config.GitHubApp
	if parent.AppID != 0 {
		cfg.AppID = parent.AppID
	}
	if parent.InstallationID != 0 {
		cfg.InstallationID = parent.InstallationID
	}
	if parent.PrivateKeyFile != "" {
		cfg.PrivateKeyFile = parent.PrivateKeyFile
	}

	mode, err := retry.ParseBackoffMode(parent.Backoff)
	if err != nil {
		return err
	}
	cred, err := githubapp.NewCredential(cfg,
		githubapp.WithErrors(g.Errors),
		githubapp.WithRetryPolicy(retry.NewPolicy(mode, 0, 0, parent.Retries)))
	if err != nil {
		return err
	}
	tok, err := cred.InstallationToken(g.Context)
	if err != nil {
		return err
	}
	g.Logger.Debug("Issued installation token",
		"app_id", cred.AppID(),
		"installation_id", cred.InstallationID(),
		"expires_at", tok.ExpiresAt.Format(time.RFC3339))

	if c.ShowExpiry {
		_, err = fmt.Fprintf(g.Out, "%s %s\n", tok.Value, tok.ExpiresAt.Format(time.RFC3339))
		return err
	}
	_, err = fmt.Fprintln(g.Out, tok.Value)
	return err
}
