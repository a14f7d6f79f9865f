package errors

import (
	"fmt"
	"strings"
	"sync"

	"git.home.luguber.info/inful/jervis/internal/doclinks"
)

// New creates a root error whose message is stored verbatim. Prefer a
// category or leaf constructor; New is for failures no category describes.
func New(message string) *Error {
	if message == "" {
		message = unspecifiedMessage
	}
	return &Error{category: CategoryRoot, fragment: message, message: message}
}

// Wrap creates a root error that attaches message to cause, typically to
// point at supplementary documentation. The message is set off by blank
// lines so it stands apart from the cause in console output.
func Wrap(message string, cause error) *Error {
	return &Error{
		category: CategoryRoot,
		fragment: message,
		message:  "\n\n" + message + "\n",
		cause:    cause,
	}
}

// Factory composes category and leaf errors, reading documentation URLs
// from its registry at construction time.
type Factory struct {
	registry *doclinks.Registry
}

// NewFactory returns a factory bound to registry, or to doclinks.Default()
// when registry is nil.
func NewFactory(registry *doclinks.Registry) *Factory {
	if registry == nil {
		registry = doclinks.Default()
	}
	return &Factory{registry: registry}
}

var (
	defaultFactoryOnce sync.Once
	defaultFactory     *Factory
)

// Default returns the factory bound to the process-wide registry. The
// package-level constructors use it.
func Default() *Factory {
	defaultFactoryOnce.Do(func() {
		defaultFactory = NewFactory(nil)
	})
	return defaultFactory
}

// Registry returns the registry the factory reads URLs from.
func (f *Factory) Registry() *doclinks.Registry {
	return f.registry
}

// Category builds a category error. Any fragment is accepted, including "".
// Passing CategoryRoot is equivalent to New.
func (f *Factory) Category(category Category, fragment string) *Error {
	if category == CategoryRoot {
		return New(fragment)
	}
	if !category.Valid() {
		panic(fmt.Sprintf("errors: unknown category %q", string(category)))
	}
	return f.compose(category, KindNone, fragment, fragment, category.Topic())
}

// Leaf builds the error for one concrete failure kind.
func (f *Factory) Leaf(kind Kind, fragment string) *Error {
	if !kind.Valid() {
		panic(fmt.Sprintf("errors: unknown kind %q", string(kind)))
	}
	return f.compose(kind.Category(), kind, fragment, kind.SubPrefix()+fragment, kind.Topic())
}

func (f *Factory) compose(category Category, kind Kind, fragment, body string, topic doclinks.Topic) *Error {
	e := &Error{category: category, kind: kind, fragment: fragment}

	var b strings.Builder
	b.WriteString("\n")
	if category.IsService() {
		b.WriteString("ERROR: ")
		b.WriteString(categoryTable[category].service)
		b.WriteString(" issue occurred.  ")
		b.WriteString(body)
		b.WriteString("\n\n")
	} else {
		e.docURL = f.registry.Lookup(topic)
		b.WriteString(category.Prefix())
		b.WriteString("  ")
		b.WriteString(body)
		b.WriteString("\n\nSee documentation:\n")
		b.WriteString(e.docURL)
		b.WriteString("\n\n")
	}
	e.message = b.String()
	return e
}

// Category constructors

// LifecycleValidation reports a malformed or self-referential lifecycles file.
func (f *Factory) LifecycleValidation(fragment string) *Error {
	return f.Category(CategoryLifecycleValidation, fragment)
}

// PlatformValidation reports a malformed platforms file.
func (f *Factory) PlatformValidation(fragment string) *Error {
	return f.Category(CategoryPlatformValidation, fragment)
}

// ToolchainValidation reports a malformed toolchains file.
func (f *Factory) ToolchainValidation(fragment string) *Error {
	return f.Category(CategoryToolchainValidation, fragment)
}

// Generator reports a script generation failure.
func (f *Factory) Generator(fragment string) *Error {
	return f.Category(CategoryGenerator, fragment)
}

// PipelineGenerator reports a pipeline generation failure.
func (f *Factory) PipelineGenerator(fragment string) *Error {
	return f.Category(CategoryPipelineGenerator, fragment)
}

// Security reports an encryption related failure.
func (f *Factory) Security(fragment string) *Error {
	return f.Category(CategorySecurity, fragment)
}

// GitHubApp reports a failure talking to GitHub as an App.
func (f *Factory) GitHubApp(fragment string) *Error {
	return f.Category(CategoryGitHubApp, fragment)
}

// Vault reports a failure talking to the secret store.
func (f *Factory) Vault(fragment string) *Error {
	return f.Category(CategoryVault, fragment)
}

// Leaf constructors

// LifecycleMissingKey reports a required lifecycles key that is absent.
func (f *Factory) LifecycleMissingKey(key string) *Error {
	return f.Leaf(KindLifecycleMissingKey, key)
}

// LifecycleInfiniteLoop reports lifecycle keys whose fallbacks form a cycle.
// key is the last key visited before the cycle closed.
func (f *Factory) LifecycleInfiniteLoop(key string) *Error {
	return f.Leaf(KindLifecycleInfiniteLoop, key)
}

// PlatformMissingKey reports a required platforms key that is absent.
func (f *Factory) PlatformMissingKey(key string) *Error {
	return f.Leaf(KindPlatformMissingKey, key)
}

// PlatformBadValueInKey reports a platforms key holding a disallowed value.
func (f *Factory) PlatformBadValueInKey(key string) *Error {
	return f.Leaf(KindPlatformBadValueInKey, key)
}

// ToolchainMissingKey reports a required toolchains key that is absent.
func (f *Factory) ToolchainMissingKey(key string) *Error {
	return f.Leaf(KindToolchainMissingKey, key)
}

// ToolchainBadValueInKey reports a toolchains key holding a disallowed value.
func (f *Factory) ToolchainBadValueInKey(key string) *Error {
	return f.Leaf(KindToolchainBadValueInKey, key)
}

// UnsupportedLanguage reports a project language the generator cannot handle.
func (f *Factory) UnsupportedLanguage(language string) *Error {
	return f.Leaf(KindUnsupportedLanguage, language)
}

// UnsupportedTool reports a tool value the generator cannot handle. Pass the
// offending YAML fragment, e.g. "jdk: derpy", so users can find it.
func (f *Factory) UnsupportedTool(fragment string) *Error {
	return f.Leaf(KindUnsupportedTool, fragment)
}

// Decrypt reports why decrypting a secret failed.
func (f *Factory) Decrypt(reason string) *Error {
	return f.Leaf(KindDecrypt, reason)
}

// KeyPairDecode reports why a private key could not be decoded.
func (f *Factory) KeyPairDecode(reason string) *Error {
	return f.Leaf(KindKeyPairDecode, reason)
}

// Convenience constructors bound to the default factory

func LifecycleValidation(fragment string) *Error { return Default().LifecycleValidation(fragment) }
func PlatformValidation(fragment string) *Error  { return Default().PlatformValidation(fragment) }
func ToolchainValidation(fragment string) *Error { return Default().ToolchainValidation(fragment) }
func Generator(fragment string) *Error           { return Default().Generator(fragment) }
func PipelineGenerator(fragment string) *Error   { return Default().PipelineGenerator(fragment) }
func Security(fragment string) *Error            { return Default().Security(fragment) }
func GitHubApp(fragment string) *Error           { return Default().GitHubApp(fragment) }
func Vault(fragment string) *Error               { return Default().Vault(fragment) }

func LifecycleMissingKey(key string) *Error    { return Default().LifecycleMissingKey(key) }
func LifecycleInfiniteLoop(key string) *Error  { return Default().LifecycleInfiniteLoop(key) }
func PlatformMissingKey(key string) *Error     { return Default().PlatformMissingKey(key) }
func PlatformBadValueInKey(key string) *Error  { return Default().PlatformBadValueInKey(key) }
func ToolchainMissingKey(key string) *Error    { return Default().ToolchainMissingKey(key) }
func ToolchainBadValueInKey(key string) *Error { return Default().ToolchainBadValueInKey(key) }
func UnsupportedLanguage(language string) *Error {
	return Default().UnsupportedLanguage(language)
}
func UnsupportedTool(fragment string) *Error { return Default().UnsupportedTool(fragment) }
func Decrypt(reason string) *Error           { return Default().Decrypt(reason) }
func KeyPairDecode(reason string) *Error     { return Default().KeyPairDecode(reason) }
