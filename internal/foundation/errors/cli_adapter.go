package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/jervis/internal/logfields"
	"git.home.luguber.info/inful/jervis/internal/metrics"
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitValidation = 2
	ExitGenerator  = 3
	ExitSecurity   = 5
	ExitExternal   = 8
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose  bool
	logger   *slog.Logger
	out      io.Writer
	recorder metrics.Recorder
	exit     func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose:  verbose,
		logger:   logger,
		out:      os.Stderr,
		recorder: metrics.NoopRecorder{},
		exit:     os.Exit,
	}
}

// WithRecorder counts reported errors on r.
func (a *CLIErrorAdapter) WithRecorder(r metrics.Recorder) *CLIErrorAdapter {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	a.recorder = r
	return a
}

// WithOutput redirects user-facing messages, which go to stderr by default.
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	a.out = w
	return a
}

// WithExit replaces os.Exit in HandleError.
func (a *CLIErrorAdapter) WithExit(exit func(int)) *CLIErrorAdapter {
	if exit == nil {
		exit = os.Exit
	}
	a.exit = exit
	return a
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if e, ok := As(err); ok {
		return exitCodeForCategory(e.Category())
	}
	return ExitGeneral
}

func exitCodeForCategory(c Category) int {
	switch c {
	case CategoryLifecycleValidation, CategoryPlatformValidation, CategoryToolchainValidation:
		return ExitValidation
	case CategoryGenerator, CategoryPipelineGenerator:
		return ExitGenerator
	case CategorySecurity:
		return ExitSecurity
	case CategoryGitHubApp, CategoryVault:
		return ExitExternal
	default:
		return ExitGeneral
	}
}

// FormatError formats an error for display. Taxonomy messages are already
// display-ready and are returned verbatim; verbose mode appends the cause.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	e, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	msg := err.Error()
	if a.verbose && e.Cause() != nil {
		msg += fmt.Sprintf("Caused by: %v\n", e.Cause())
	}
	return msg
}

// Report logs and counts err, prints it for the user and returns the exit
// code the process should end with.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return ExitOK
	}

	a.logError(err)

	category, kind := CategoryOf(err), KindOf(err)
	if category == "" {
		category = "unclassified"
	}
	a.recorder.IncErrorReported(string(category), string(kind))

	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// HandleError reports err and exits the program with the matching code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	a.exit(a.Report(err))
}

// logError logs an error with its classification. The full message is only
// logged in verbose mode since Report prints it anyway.
func (a *CLIErrorAdapter) logError(err error) {
	e, ok := As(err)
	if !ok {
		a.logger.Error("Unclassified error", logfields.Error(err))
		return
	}

	attrs := []slog.Attr{logfields.Category(string(e.Category()))}
	if e.Kind() != KindNone {
		attrs = append(attrs, logfields.Kind(string(e.Kind())))
	}
	if url := e.DocumentationURL(); url != "" {
		attrs = append(attrs, logfields.DocURL(url))
	}
	if a.verbose {
		if e.Fragment() != "" {
			attrs = append(attrs, logfields.Fragment(e.Fragment()))
		}
		if e.Cause() != nil {
			attrs = append(attrs, logfields.Cause(e.Cause()))
		}
	}
	a.logger.LogAttrs(context.Background(), slog.LevelError, e.Category().Label(), attrs...)
}
