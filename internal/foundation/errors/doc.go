// Package errors is the jervis error taxonomy.
//
// Every failure is an *Error with a fixed place in a three-level hierarchy:
//
//	root (ErrJervis)
//	├── lifecycle validation   ── missing key, infinite loop
//	├── platform validation    ── missing key, bad value in key
//	├── toolchain validation   ── missing key, bad value in key
//	├── generator              ── unsupported language, unsupported tool
//	├── pipeline generator
//	├── security               ── decrypt, key pair decode
//	├── GitHub App
//	└── Vault
//
// Callers construct the most specific error that applies, passing a short
// fragment naming what went wrong. The message is composed once from the
// category prefix, the leaf sub-prefix, the fragment and, for documentation
// linked categories, the URL the Factory's registry holds for the topic:
//
//	err := errors.LifecycleMissingKey("ruby.friendlyName")
//	// ERROR: Lifecycle validation failed.  Missing key: ruby.friendlyName
//	//
//	// See documentation:
//	// https://github.com/samrocketman/jervis/wiki/Specification-for-lifecycles-file
//
// Handlers catch at whatever granularity they need:
//
//	switch {
//	case stderrors.Is(err, errors.ErrLifecycleInfiniteLoop):
//		// break the cycle
//	case stderrors.Is(err, errors.ErrLifecycleValidation):
//		// any other lifecycle problem
//	}
package errors
