package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnum string

const (
	testAlpha    testEnum = "alpha"
	testBetaMax  testEnum = "beta-max"
	testGammaRay testEnum = "gamma-ray"
)

func newTestNormalizer() *Normalizer[testEnum] {
	return NewNormalizer("test enum", map[string]testEnum{
		"alpha":     testAlpha,
		"beta_max":  testBetaMax,
		"gamma-ray": testGammaRay,
	}, testAlpha)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name     string
		input    string
		expected testEnum
	}{
		{"exact match", "alpha", testAlpha},
		{"case insensitive", "ALPHA", testAlpha},
		{"surrounding spaces", "  beta-max  ", testBetaMax},
		{"underscore separator", "GAMMA_RAY", testGammaRay},
		{"space separator", "beta max", testBetaMax},
		{"unknown falls back to default", "delta", testAlpha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_Parse(t *testing.T) {
	n := newTestNormalizer()

	v, err := n.Parse("Beta_Max")
	require.NoError(t, err)
	assert.Equal(t, testBetaMax, v)

	_, err = n.Parse("delta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid test enum "delta"`)
	assert.Contains(t, err.Error(), "beta-max")
}

func TestNormalizer_IsValidAndKeys(t *testing.T) {
	n := newTestNormalizer()

	assert.True(t, n.IsValid("gamma ray"))
	assert.False(t, n.IsValid(""))
	assert.Equal(t, []string{"alpha", "beta-max", "gamma-ray"}, n.ValidKeys())

	keys := n.ValidKeys()
	keys[0] = "mutated"
	assert.Equal(t, "alpha", n.ValidKeys()[0], "ValidKeys must return a copy")
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "secure-secrets", Canonical(" Secure_Secrets "))
	assert.Equal(t, "pipeline-support", Canonical("pipeline support"))
	assert.Equal(t, "", Canonical("   "))
}
