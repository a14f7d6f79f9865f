package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
)

const platforms = `
defaults:
  platform: docker
  os: ubuntu2204
  stability: stable
  sudo: nosudo
supported_platforms:
  docker:
    ubuntu2204:
      language: [ruby, java]
      toolchain: [rvm, jdk, env]
  gpu:
    rocky9:
      language: [python]
      toolchain: [python]
restrictions:
  gpu:
    only_organizations: [ml-team]
    only_projects: [infra/cuda-builds]
`

func TestParse_Valid(t *testing.T) {
	f, err := Parse([]byte(platforms))
	require.NoError(t, err)

	assert.Equal(t, Defaults{Platform: "docker", OS: "ubuntu2204", Stability: "stable", Sudo: "nosudo"}, f.Defaults)
	assert.Equal(t, []string{"docker", "gpu"}, f.Platforms())
	assert.True(t, f.SupportsLanguage("docker", "ubuntu2204", "ruby"))
	assert.False(t, f.SupportsLanguage("docker", "ubuntu2204", "python"))
	assert.True(t, f.SupportsToolchain("gpu", "rocky9", "python"))
	assert.False(t, f.SupportsToolchain("gpu", "centos", "python"))
}

func TestAllowed(t *testing.T) {
	f, err := Parse([]byte(platforms))
	require.NoError(t, err)

	assert.True(t, f.Allowed("docker", "anyone", "anyone/thing"))
	assert.True(t, f.Allowed("gpu", "ml-team", "ml-team/model"))
	assert.True(t, f.Allowed("gpu", "infra", "infra/cuda-builds"))
	assert.False(t, f.Allowed("gpu", "infra", "infra/website"))
}

func TestParse_Errors(t *testing.T) {
	valid := func(replace ...string) string {
		return strings.NewReplacer(replace...).Replace(platforms)
	}

	tests := []struct {
		name     string
		doc      string
		kind     jerrors.Kind
		fragment string
	}{
		{"missing defaults", "supported_platforms: {}\n", jerrors.KindPlatformMissingKey, "defaults"},
		{"missing supported_platforms", "defaults: {}\n", jerrors.KindPlatformMissingKey, "supported_platforms"},
		{"missing sudo", valid("  sudo: nosudo\n", ""), jerrors.KindPlatformMissingKey, "defaults.sudo"},
		{"bad stability", valid("stability: stable", "stability: shaky"), jerrors.KindPlatformBadValueInKey, "defaults.stability: shaky"},
		{"bad sudo", valid("sudo: nosudo", "sudo: maybe"), jerrors.KindPlatformBadValueInKey, "defaults.sudo: maybe"},
		{"unknown default platform", valid("platform: docker", "platform: vm"), jerrors.KindPlatformBadValueInKey, "defaults.platform: vm"},
		{"unknown default os", valid("os: ubuntu2204\n", "os: alpine\n"), jerrors.KindPlatformBadValueInKey, "defaults.os: alpine"},
		{"missing toolchain list", valid("      toolchain: [python]\n", ""), jerrors.KindPlatformMissingKey, "supported_platforms.gpu.rocky9.toolchain"},
		{"language not a list", valid("language: [python]", "language: python"), jerrors.KindPlatformBadValueInKey, "supported_platforms.gpu.rocky9.language: python"},
		{"restriction for unknown platform", valid("restrictions:\n  gpu:", "restrictions:\n  tpu:"), jerrors.KindPlatformBadValueInKey, "restrictions: tpu"},
		{"restriction not a list", valid("only_organizations: [ml-team]", "only_organizations: ml-team"), jerrors.KindPlatformBadValueInKey, "restrictions.gpu.only_organizations: ml-team"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, jerrors.ErrPlatformValidation)

			je, ok := jerrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, je.Kind())
			assert.Equal(t, tt.fragment, je.Fragment())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platforms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(platforms), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "docker", f.Defaults.Platform)
}
