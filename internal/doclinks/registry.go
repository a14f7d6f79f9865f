// Package doclinks holds the documentation URLs that error messages point
// users at.
//
// Every documentation-linked error category names a Topic. The Registry maps
// each Topic to a URL; embedding applications that host their own
// documentation override the URLs before any error is constructed:
//
//	reg := doclinks.Default()
//	if err := reg.Override(doclinks.TopicLifecyclesSpec, "https://wiki.example.com/lifecycle_explanation.html"); err != nil {
//		return err
//	}
//
// Errors read the URL once, at construction time. Overriding a topic later
// does not change messages that were already composed.
package doclinks

import (
	"fmt"
	"net/url"
	"sort"
	"sync"

	"git.home.luguber.info/inful/jervis/internal/foundation/normalization"
)

// Topic identifies a documentation page. The set is closed.
type Topic string

const (
	TopicSupportedLanguages Topic = "supported-languages"
	TopicSupportedTools     Topic = "supported-tools"
	TopicLifecyclesSpec     Topic = "lifecycles-spec"
	TopicToolchainsSpec     Topic = "toolchains-spec"
	TopicPlatformsSpec      Topic = "platforms-spec"
	TopicSecureSecrets      Topic = "secure-secrets"
	TopicPipelineSupport    Topic = "pipeline-support"
)

const wikiBase = "https://github.com/samrocketman/jervis/wiki/"

var defaultURLs = map[Topic]string{
	TopicSupportedLanguages: wikiBase + "Supported-Languages",
	TopicSupportedTools:     wikiBase + "Supported-Tools",
	TopicLifecyclesSpec:     wikiBase + "Specification-for-lifecycles-file",
	TopicToolchainsSpec:     wikiBase + "Specification-for-toolchains-file",
	TopicPlatformsSpec:      wikiBase + "Specification-for-platforms-file",
	TopicSecureSecrets:      wikiBase + "Secure-secrets-in-repositories",
	TopicPipelineSupport:    wikiBase + "Pipeline-support",
}

var topicNormalizer = normalization.NewNormalizer("documentation topic", map[string]Topic{
	string(TopicSupportedLanguages): TopicSupportedLanguages,
	string(TopicSupportedTools):     TopicSupportedTools,
	string(TopicLifecyclesSpec):     TopicLifecyclesSpec,
	string(TopicToolchainsSpec):     TopicToolchainsSpec,
	string(TopicPlatformsSpec):      TopicPlatformsSpec,
	string(TopicSecureSecrets):      TopicSecureSecrets,
	string(TopicPipelineSupport):    TopicPipelineSupport,
}, "")

// ParseTopic resolves a topic name written in any case with '-', '_' or
// ' ' separators.
func ParseTopic(raw string) (Topic, error) {
	return topicNormalizer.Parse(raw)
}

// Topics returns every known topic in sorted order.
func Topics() []Topic {
	topics := make([]Topic, 0, len(defaultURLs))
	for t := range defaultURLs {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// Valid reports whether t is one of the known topics.
func (t Topic) Valid() bool {
	_, ok := defaultURLs[t]
	return ok
}

// DefaultURL returns the built-in URL for t.
func (t Topic) DefaultURL() string {
	return defaultURLs[t]
}

// Registry maps topics to documentation URLs. It is safe for concurrent use;
// concurrent readers observe either the previous or the new URL of a topic
// being overridden.
type Registry struct {
	mu   sync.RWMutex
	urls map[Topic]string
}

// NewRegistry returns a registry populated with the built-in URLs.
func NewRegistry() *Registry {
	urls := make(map[Topic]string, len(defaultURLs))
	for t, u := range defaultURLs {
		urls[t] = u
	}
	return &Registry{urls: urls}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Lookup returns the URL for t. Asking for a topic outside the closed set
// is a programming error and panics.
func (r *Registry) Lookup(t Topic) string {
	r.mu.RLock()
	u, ok := r.urls[t]
	r.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("doclinks: unknown documentation topic %q", string(t)))
	}
	return u
}

// Override replaces the URL for t. The URL must be absolute.
func (r *Registry) Override(t Topic, rawURL string) error {
	if !t.Valid() {
		return fmt.Errorf("doclinks: unknown documentation topic %q", string(t))
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("doclinks: invalid URL for %s: %w", t, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("doclinks: URL for %s must be absolute, got %q", t, rawURL)
	}

	r.mu.Lock()
	r.urls[t] = rawURL
	r.mu.Unlock()
	return nil
}

// Reset restores the built-in URL for t.
func (r *Registry) Reset(t Topic) {
	if !t.Valid() {
		return
	}
	r.mu.Lock()
	r.urls[t] = defaultURLs[t]
	r.mu.Unlock()
}

// ResetAll restores every built-in URL.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	for t, u := range defaultURLs {
		r.urls[t] = u
	}
	r.mu.Unlock()
}

// Apply overrides topics from a name -> URL map such as the documentation
// section of the configuration file. Names are parsed with ParseTopic.
// Nothing is applied when any entry is invalid.
func (r *Registry) Apply(overrides map[string]string) error {
	parsed := make(map[Topic]string, len(overrides))
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t, err := ParseTopic(name)
		if err != nil {
			return fmt.Errorf("doclinks: %w", err)
		}
		rawURL := overrides[name]
		u, err := url.Parse(rawURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("doclinks: URL for %s must be absolute, got %q", t, rawURL)
		}
		parsed[t] = rawURL
	}

	r.mu.Lock()
	for t, u := range parsed {
		r.urls[t] = u
	}
	r.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current topic -> URL mapping.
func (r *Registry) Snapshot() map[Topic]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Topic]string, len(r.urls))
	for t, u := range r.urls {
		out[t] = u
	}
	return out
}

// IsOverridden reports whether t currently differs from its built-in URL.
func (r *Registry) IsOverridden(t Topic) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.urls[t] != defaultURLs[t]
}
