package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/jervis/internal/config"
	"git.home.luguber.info/inful/jervis/internal/doclinks"
	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
	"git.home.luguber.info/inful/jervis/internal/logfields"
	"git.home.luguber.info/inful/jervis/internal/metrics"
	"git.home.luguber.info/inful/jervis/internal/version"
)

// Global is shared with every command.
type Global struct {
	Context  context.Context
	Logger   *slog.Logger
	Config   *config.Config
	Registry *doclinks.Registry
	Errors   *jerrors.Factory
	Recorder metrics.Recorder
	Out      io.Writer
	Err      io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config          string            `short:"c" help:"Configuration file path" default:"jervis.yaml"`
	Verbose         bool              `short:"v" help:"Enable verbose logging and show error causes"`
	DocLink         map[string]string `name:"doc-link" placeholder:"TOPIC=URL" help:"Override a documentation URL (repeatable)"`
	MetricsTextfile string            `name:"metrics-textfile" placeholder:"PATH" help:"Write Prometheus metrics to this file on exit"`
	Version         kong.VersionFlag  `name:"version" help:"Show version and exit"`

	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
	Validate  ValidateCmd  `cmd:"" help:"Validate lifecycles, toolchains and platforms files"`
	Generate  GenerateCmd  `cmd:"" help:"Generate the build script of a project"`
	Encrypt   EncryptCmd   `cmd:"" help:"Encrypt a secret with a key pair"`
	Decrypt   DecryptCmd   `cmd:"" help:"Decrypt a secret with a key pair"`
	Docs      DocsCmd      `cmd:"" help:"Print the documentation URL of every topic"`
	GitHubApp GitHubAppCmd `cmd:"" name:"github-app" help:"Authenticate as a GitHub App installation"`
}

// AfterApply loads configuration and sets up logging and error
// documentation links once flags are parsed.
func (c *CLI) AfterApply(kctx *kong.Context, g *Global) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		// init creates the file that is missing.
		if !strings.HasPrefix(kctx.Command(), "init") {
			return err
		}
		cfg = config.Default()
	}
	if c.MetricsTextfile != "" {
		cfg.Metrics.Textfile = c.MetricsTextfile
	}
	g.Config = cfg
	g.Logger = cfg.Logging.NewLogger(g.Err, c.Verbose)

	// Overrides go to the process-wide registry so the package-level
	// constructors see them too. Earlier runs in the same process are cleared.
	g.Registry = doclinks.Default()
	g.Registry.ResetAll()
	if err := g.Registry.Apply(cfg.Documentation); err != nil {
		return fmt.Errorf("invalid documentation override in %s: %w", c.Config, err)
	}
	if err := g.Registry.Apply(c.DocLink); err != nil {
		return fmt.Errorf("invalid --doc-link: %w", err)
	}
	g.Errors = jerrors.NewFactory(g.Registry)
	return nil
}

type exitCode int

// Main runs the CLI with args and returns the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	var cli CLI
	promRegistry := prom.NewRegistry()
	g := &Global{
		Context:  ctx,
		Logger:   slog.New(slog.NewTextHandler(stderr, nil)),
		Recorder: metrics.NewPrometheusRecorder(promRegistry),
		Out:      stdout,
		Err:      stderr,
	}

	parser, err := kong.New(&cli,
		kong.Name("jervis"),
		kong.Description("Validate CI build descriptions and generate build scripts."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Bind(g),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return jerrors.ExitGeneral
	}

	// --help and --version exit through kong.
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	kctx, err := parser.Parse(args)
	adapter := jerrors.NewCLIErrorAdapter(cli.Verbose, g.Logger).
		WithRecorder(g.Recorder).
		WithOutput(stderr).
		WithExit(func(c int) { code = c })
	if err != nil {
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) {
			_ = parseErr.Context.PrintUsage(true)
		}
		adapter.HandleError(err)
		return code
	}

	command := commandName(kctx)
	start := time.Now()
	err = kctx.Run()
	elapsed := time.Since(start)

	g.Recorder.ObserveCommandDuration(command, elapsed)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailed
	}
	g.Recorder.IncCommandResult(command, result)
	g.Logger.Debug("Command finished",
		logfields.Command(command),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))

	adapter.HandleError(err)

	if path := g.Config.Metrics.Textfile; path != "" {
		if werr := metrics.WriteTextfile(path, promRegistry); werr != nil {
			g.Logger.Warn("Failed to write metrics textfile", logfields.File(path), logfields.Error(werr))
		}
	}
	return code
}

// commandName drops positional placeholders so metric labels stay bounded.
func commandName(kctx *kong.Context) string {
	var parts []string
	for _, f := range strings.Fields(kctx.Command()) {
		if !strings.HasPrefix(f, "<") {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// readInput returns the contents of path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
