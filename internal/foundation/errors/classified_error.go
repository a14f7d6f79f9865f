package errors

import (
	"errors"
	"strings"
)

// unspecifiedMessage stands in for an empty root message so that Error never
// returns "".
const unspecifiedMessage = "ERROR: An unspecified jervis error occurred."

// Error is the single error type of the taxonomy. Its Category and Kind
// place it in the root -> category -> leaf hierarchy; its message is
// composed once at construction and never changes.
type Error struct {
	category Category
	kind     Kind
	fragment string
	docURL   string
	message  string
	cause    error
	sentinel bool
}

// Error returns the composed, display-ready message.
func (e *Error) Error() string {
	return e.message
}

// Unwrap implements Go 1.13+ error unwrapping.
func (e *Error) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *Error) Category() Category {
	return e.category
}

// Kind returns the leaf kind, or KindNone for category and root errors.
func (e *Error) Kind() Kind {
	return e.kind
}

// Fragment returns the caller-supplied diagnostic text.
func (e *Error) Fragment() string {
	return e.fragment
}

// DocumentationURL returns the URL embedded in the message, or "".
func (e *Error) DocumentationURL() string {
	return e.docURL
}

// Message returns the composed message.
func (e *Error) Message() string {
	return e.message
}

// Cause returns the wrapped error, if any.
func (e *Error) Cause() error {
	return e.cause
}

// WithCause returns a copy of e that wraps cause. The message is unchanged.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.cause = cause
	cp.sentinel = false
	return &cp
}

// Is lets errors.Is match against the package sentinels: ErrJervis matches
// every taxonomy error, a category sentinel matches every error of that
// category, and a leaf sentinel matches its kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !t.sentinel {
		return false
	}
	switch {
	case t.kind != KindNone:
		return e.kind == t.kind
	case t.category == CategoryRoot:
		return true
	default:
		return e.category == t.category
	}
}

// IsCategory checks if the error belongs to a specific category.
func (e *Error) IsCategory(category Category) bool {
	return e.category == category
}

// IsLeaf reports whether e was built by a leaf constructor.
func (e *Error) IsLeaf() bool {
	return e.kind != KindNone
}

func sentinel(category Category, kind Kind) *Error {
	label := category.Label()
	if kind != KindNone {
		label += " (" + strings.ReplaceAll(string(kind), "_", " ") + ")"
	}
	return &Error{category: category, kind: kind, message: label, sentinel: true}
}

// Sentinels for errors.Is. They are never returned by constructors.
var (
	ErrJervis = sentinel(CategoryRoot, KindNone)

	ErrLifecycleValidation = sentinel(CategoryLifecycleValidation, KindNone)
	ErrPlatformValidation  = sentinel(CategoryPlatformValidation, KindNone)
	ErrToolchainValidation = sentinel(CategoryToolchainValidation, KindNone)
	ErrGenerator           = sentinel(CategoryGenerator, KindNone)
	ErrPipelineGenerator   = sentinel(CategoryPipelineGenerator, KindNone)
	ErrSecurity            = sentinel(CategorySecurity, KindNone)
	ErrGitHubApp           = sentinel(CategoryGitHubApp, KindNone)
	ErrVault               = sentinel(CategoryVault, KindNone)

	ErrLifecycleMissingKey    = sentinel(CategoryLifecycleValidation, KindLifecycleMissingKey)
	ErrLifecycleInfiniteLoop  = sentinel(CategoryLifecycleValidation, KindLifecycleInfiniteLoop)
	ErrPlatformMissingKey     = sentinel(CategoryPlatformValidation, KindPlatformMissingKey)
	ErrPlatformBadValueInKey  = sentinel(CategoryPlatformValidation, KindPlatformBadValueInKey)
	ErrToolchainMissingKey    = sentinel(CategoryToolchainValidation, KindToolchainMissingKey)
	ErrToolchainBadValueInKey = sentinel(CategoryToolchainValidation, KindToolchainBadValueInKey)
	ErrUnsupportedLanguage    = sentinel(CategoryGenerator, KindUnsupportedLanguage)
	ErrUnsupportedTool        = sentinel(CategoryGenerator, KindUnsupportedTool)
	ErrDecrypt                = sentinel(CategorySecurity, KindDecrypt)
	ErrKeyPairDecode          = sentinel(CategorySecurity, KindKeyPairDecode)
)

// Helper functions for error detection and extraction

// As finds the first taxonomy error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsTaxonomy reports whether err's chain contains a taxonomy error.
func IsTaxonomy(err error) bool {
	_, ok := As(err)
	return ok
}

// HasCategory checks if any error in the chain belongs to a category.
func HasCategory(err error, category Category) bool {
	if !category.Valid() {
		return false
	}
	if category == CategoryRoot {
		return IsTaxonomy(err)
	}
	return errors.Is(err, sentinelFor(category))
}

// CategoryOf returns the category of the first taxonomy error in err's
// chain, or "" when there is none.
func CategoryOf(err error) Category {
	if e, ok := As(err); ok {
		return e.Category()
	}
	return ""
}

// KindOf returns the kind of the first taxonomy error in err's chain.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind()
	}
	return KindNone
}

func sentinelFor(category Category) *Error {
	switch category {
	case CategoryLifecycleValidation:
		return ErrLifecycleValidation
	case CategoryPlatformValidation:
		return ErrPlatformValidation
	case CategoryToolchainValidation:
		return ErrToolchainValidation
	case CategoryGenerator:
		return ErrGenerator
	case CategoryPipelineGenerator:
		return ErrPipelineGenerator
	case CategorySecurity:
		return ErrSecurity
	case CategoryGitHubApp:
		return ErrGitHubApp
	case CategoryVault:
		return ErrVault
	default:
		return ErrJervis
	}
}
