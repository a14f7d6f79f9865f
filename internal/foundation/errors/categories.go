package errors

import "git.home.luguber.info/inful/jervis/internal/doclinks"

// Category groups related failures under one catchable kind.
type Category string

const (
	// CategoryRoot is carried by errors built directly with New or Wrap.
	CategoryRoot Category = "jervis"

	// Configuration file validation.
	CategoryLifecycleValidation Category = "lifecycle_validation"
	CategoryPlatformValidation  Category = "platform_validation"
	CategoryToolchainValidation Category = "toolchain_validation"

	// Script and pipeline generation.
	CategoryGenerator         Category = "generator"
	CategoryPipelineGenerator Category = "pipeline_generator"

	// Secret handling.
	CategorySecurity Category = "security"

	// External services. These carry no documentation link.
	CategoryGitHubApp Category = "github_app"
	CategoryVault     Category = "vault"
)

// Kind names one concrete failure within a category. Errors built with a
// category constructor have KindNone.
type Kind string

const (
	KindNone Kind = ""

	KindLifecycleMissingKey    Kind = "lifecycle_missing_key"
	KindLifecycleInfiniteLoop  Kind = "lifecycle_infinite_loop"
	KindPlatformMissingKey     Kind = "platform_missing_key"
	KindPlatformBadValueInKey  Kind = "platform_bad_value_in_key"
	KindToolchainMissingKey    Kind = "toolchain_missing_key"
	KindToolchainBadValueInKey Kind = "toolchain_bad_value_in_key"
	KindUnsupportedLanguage    Kind = "unsupported_language"
	KindUnsupportedTool        Kind = "unsupported_tool"
	KindDecrypt                Kind = "decrypt"
	KindKeyPairDecode          Kind = "key_pair_decode"
)

type categoryInfo struct {
	label   string
	prefix  string         // documentation-linked categories
	topic   doclinks.Topic // empty for service categories
	service string         // service categories only
}

var categoryTable = map[Category]categoryInfo{
	CategoryRoot: {
		label: "jervis error",
	},
	CategoryLifecycleValidation: {
		label:  "lifecycle validation error",
		prefix: "ERROR: Lifecycle validation failed.",
		topic:  doclinks.TopicLifecyclesSpec,
	},
	CategoryPlatformValidation: {
		label:  "platform validation error",
		prefix: "ERROR: Platform validation failed.",
		topic:  doclinks.TopicPlatformsSpec,
	},
	CategoryToolchainValidation: {
		label:  "toolchain validation error",
		prefix: "ERROR: Toolchain validation failed.",
		topic:  doclinks.TopicToolchainsSpec,
	},
	CategoryGenerator: {
		label:  "generator error",
		prefix: "ERROR: Generator failed.",
		topic:  doclinks.TopicSupportedTools,
	},
	CategoryPipelineGenerator: {
		label:  "pipeline generator error",
		prefix: "ERROR: Pipeline generator failed.",
		topic:  doclinks.TopicPipelineSupport,
	},
	CategorySecurity: {
		label:  "security error",
		prefix: "ERROR: An encryption related issue occurred.",
		topic:  doclinks.TopicSecureSecrets,
	},
	CategoryGitHubApp: {
		label:   "GitHub App error",
		service: "A GitHub App",
	},
	CategoryVault: {
		label:   "Vault service error",
		service: "A Vault service",
	},
}

type kindInfo struct {
	category  Category
	subPrefix string
	topic     doclinks.Topic // overrides the category topic when set
}

var kindTable = map[Kind]kindInfo{
	KindLifecycleMissingKey:    {category: CategoryLifecycleValidation, subPrefix: "Missing key: "},
	KindLifecycleInfiniteLoop:  {category: CategoryLifecycleValidation, subPrefix: "Infinite loop detected.  Last known key: "},
	KindPlatformMissingKey:     {category: CategoryPlatformValidation, subPrefix: "Missing key: "},
	KindPlatformBadValueInKey:  {category: CategoryPlatformValidation, subPrefix: "Bad value in key: "},
	KindToolchainMissingKey:    {category: CategoryToolchainValidation, subPrefix: "Missing key: "},
	KindToolchainBadValueInKey: {category: CategoryToolchainValidation, subPrefix: "Bad value in key: "},
	KindUnsupportedLanguage: {
		category:  CategoryGenerator,
		subPrefix: "Unsupported language in configuration -> language: ",
		topic:     doclinks.TopicSupportedLanguages,
	},
	KindUnsupportedTool: {
		category:  CategoryGenerator,
		subPrefix: "Unsupported tool in configuration -> ",
		topic:     doclinks.TopicSupportedTools,
	},
	KindDecrypt:       {category: CategorySecurity},
	KindKeyPairDecode: {category: CategorySecurity},
}

// Categories returns every category, root first.
func Categories() []Category {
	return []Category{
		CategoryRoot,
		CategoryLifecycleValidation,
		CategoryPlatformValidation,
		CategoryToolchainValidation,
		CategoryGenerator,
		CategoryPipelineGenerator,
		CategorySecurity,
		CategoryGitHubApp,
		CategoryVault,
	}
}

// Kinds returns every leaf kind.
func Kinds() []Kind {
	return []Kind{
		KindLifecycleMissingKey,
		KindLifecycleInfiniteLoop,
		KindPlatformMissingKey,
		KindPlatformBadValueInKey,
		KindToolchainMissingKey,
		KindToolchainBadValueInKey,
		KindUnsupportedLanguage,
		KindUnsupportedTool,
		KindDecrypt,
		KindKeyPairDecode,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Label is a short human description used in logs and sentinel messages.
func (c Category) Label() string {
	return categoryTable[c].label
}

// Prefix is the fixed message prefix of a documentation-linked category.
func (c Category) Prefix() string {
	return categoryTable[c].prefix
}

// Topic is the documentation topic linked from the category's messages, or
// "" when the category carries no link.
func (c Category) Topic() doclinks.Topic {
	return categoryTable[c].topic
}

// IsService reports whether c describes an external-service failure.
func (c Category) IsService() bool {
	return categoryTable[c].service != ""
}

// Valid reports whether k is a known leaf kind.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Category returns the parent category of k.
func (k Kind) Category() Category {
	return kindTable[k].category
}

// SubPrefix is prepended to the caller's fragment before the category
// prefix is applied.
func (k Kind) SubPrefix() string {
	return kindTable[k].subPrefix
}

// Topic returns the documentation topic linked from errors of kind k.
func (k Kind) Topic() doclinks.Topic {
	info := kindTable[k]
	if info.topic != "" {
		return info.topic
	}
	return info.category.Topic()
}
