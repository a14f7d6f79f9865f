package doclinks

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_HasEveryTopic(t *testing.T) {
	reg := NewRegistry()
	for _, topic := range Topics() {
		assert.NotEmpty(t, reg.Lookup(topic), "topic %s", topic)
		assert.Equal(t, topic.DefaultURL(), reg.Lookup(topic))
	}
	assert.Len(t, Topics(), 7)
	assert.Equal(t,
		"https://github.com/samrocketman/jervis/wiki/Specification-for-lifecycles-file",
		reg.Lookup(TopicLifecyclesSpec))
}

func TestLookup_UnknownTopicPanics(t *testing.T) {
	reg := NewRegistry()
	assert.Panics(t, func() { reg.Lookup(Topic("nope")) })
}

func TestOverride(t *testing.T) {
	const custom = "https://wiki.example.com/lifecycle_explanation.html"

	t.Run("replaces url", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Override(TopicLifecyclesSpec, custom))
		assert.Equal(t, custom, reg.Lookup(TopicLifecyclesSpec))
		assert.True(t, reg.IsOverridden(TopicLifecyclesSpec))
		assert.False(t, reg.IsOverridden(TopicPlatformsSpec))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := NewRegistry()
		twice := NewRegistry()
		require.NoError(t, once.Override(TopicLifecyclesSpec, custom))
		require.NoError(t, twice.Override(TopicLifecyclesSpec, custom))
		require.NoError(t, twice.Override(TopicLifecyclesSpec, custom))
		assert.Equal(t, once.Lookup(TopicLifecyclesSpec), twice.Lookup(TopicLifecyclesSpec))
		assert.Equal(t, once.Snapshot(), twice.Snapshot())
	})

	t.Run("rejects unknown topic", func(t *testing.T) {
		reg := NewRegistry()
		require.Error(t, reg.Override(Topic("nope"), custom))
	})

	t.Run("rejects relative url", func(t *testing.T) {
		reg := NewRegistry()
		require.Error(t, reg.Override(TopicSecureSecrets, "/docs/secrets"))
		require.Error(t, reg.Override(TopicSecureSecrets, ""))
		assert.Equal(t, TopicSecureSecrets.DefaultURL(), reg.Lookup(TopicSecureSecrets))
	})
}

func TestReset(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Override(TopicSupportedTools, "https://docs.example.com/tools"))
	require.NoError(t, reg.Override(TopicSupportedLanguages, "https://docs.example.com/languages"))

	reg.Reset(TopicSupportedTools)
	assert.Equal(t, TopicSupportedTools.DefaultURL(), reg.Lookup(TopicSupportedTools))
	assert.Equal(t, "https://docs.example.com/languages", reg.Lookup(TopicSupportedLanguages))

	reg.ResetAll()
	assert.Equal(t, TopicSupportedLanguages.DefaultURL(), reg.Lookup(TopicSupportedLanguages))
}

func TestApply(t *testing.T) {
	t.Run("parses loose topic names", func(t *testing.T) {
		reg := NewRegistry()
		err := reg.Apply(map[string]string{
			"lifecycles_spec":  "https://wiki.example.com/lifecycles",
			"PIPELINE SUPPORT": "https://wiki.example.com/pipelines",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://wiki.example.com/lifecycles", reg.Lookup(TopicLifecyclesSpec))
		assert.Equal(t, "https://wiki.example.com/pipelines", reg.Lookup(TopicPipelineSupport))
	})

	t.Run("all or nothing", func(t *testing.T) {
		reg := NewRegistry()
		err := reg.Apply(map[string]string{
			"lifecycles-spec": "https://wiki.example.com/lifecycles",
			"not-a-topic":     "https://wiki.example.com/other",
		})
		require.Error(t, err)
		assert.Equal(t, TopicLifecyclesSpec.DefaultURL(), reg.Lookup(TopicLifecyclesSpec))
	})

	t.Run("rejects relative url", func(t *testing.T) {
		reg := NewRegistry()
		require.Error(t, reg.Apply(map[string]string{"secure-secrets": "secrets.html"}))
	})
}

func TestParseTopic(t *testing.T) {
	topic, err := ParseTopic("Secure_Secrets")
	require.NoError(t, err)
	assert.Equal(t, TopicSecureSecrets, topic)

	_, err = ParseTopic("changelog")
	require.Error(t, err)
}

func TestSnapshot_IsACopy(t *testing.T) {
	reg := NewRegistry()
	snap := reg.Snapshot()
	snap[TopicPlatformsSpec] = "https://mutated.example.com"
	assert.Equal(t, TopicPlatformsSpec.DefaultURL(), reg.Lookup(TopicPlatformsSpec))
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestRegistry_ConcurrentOverrideAndLookup(t *testing.T) {
	reg := NewRegistry()
	valid := map[string]bool{TopicToolchainsSpec.DefaultURL(): true}
	for i := 0; i < 8; i++ {
		valid[fmt.Sprintf("https://docs.example.com/toolchains/%d", i)] = true
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = reg.Override(TopicToolchainsSpec, fmt.Sprintf("https://docs.example.com/toolchains/%d", i))
		}(i)
		go func() {
			defer wg.Done()
			got := reg.Lookup(TopicToolchainsSpec)
			assert.True(t, valid[got], "unexpected url %q", got)
		}()
	}
	wg.Wait()
}
