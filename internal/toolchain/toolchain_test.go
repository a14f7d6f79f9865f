package toolchain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
)

const rubyToolchains = `
toolchains:
  ruby: [rvm, env]
  java: [jdk]
rvm:
  default_ival: 2.7
  "2.7": rvm use 2.7
  "*": rvm use ${jervis_toolchain_ival}
env:
  default_ival: ""
  matrix: advanced
  comment: environment variables
  "*":
    - export ${jervis_toolchain_ival}
jdk:
  default_ival: openjdk11
  matrix: disabled
  openjdk11: use-jdk 11
`

func TestParse_Valid(t *testing.T) {
	f, err := Parse([]byte(rubyToolchains))
	require.NoError(t, err)

	assert.Equal(t, []string{"java", "ruby"}, f.Languages())
	assert.True(t, f.Supports("ruby"))
	assert.False(t, f.Supports("cobol"))
	assert.Equal(t, []string{"rvm", "env"}, f.ToolsFor("ruby"))

	rvm, ok := f.Tool("rvm")
	require.True(t, ok)
	assert.Equal(t, "2.7", rvm.DefaultIval)
	assert.Equal(t, MatrixSimple, rvm.Matrix)
	assert.Equal(t, []string{"2.7"}, rvm.Values())

	env, _ := f.Tool("env")
	assert.Equal(t, MatrixAdvanced, env.Matrix)
	assert.Empty(t, env.Values(), "comment is not a value")

	jdk, _ := f.Tool("jdk")
	assert.Equal(t, MatrixDisabled, jdk.Matrix)
}

func TestTool_Script(t *testing.T) {
	f, err := Parse([]byte(rubyToolchains))
	require.NoError(t, err)
	rvm, _ := f.Tool("rvm")
	jdk, _ := f.Tool("jdk")

	lines, ok := rvm.Script("2.7")
	require.True(t, ok)
	assert.Equal(t, []string{"rvm use 2.7"}, lines)

	lines, ok = rvm.Script("3.3")
	require.True(t, ok)
	assert.Equal(t, []string{"rvm use 3.3"}, lines)

	assert.False(t, jdk.Supports("derpy"))
	_, ok = jdk.Script("derpy")
	assert.False(t, ok)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		kind     jerrors.Kind
		fragment string
	}{
		{"missing toolchains", "rvm:\n  default_ival: x\n", jerrors.KindToolchainMissingKey, "toolchains"},
		{"toolchains not a map", "toolchains: [ruby]\n", jerrors.KindToolchainBadValueInKey, "toolchains"},
		{"language not a list", "toolchains:\n  ruby: rvm\n", jerrors.KindToolchainBadValueInKey, "toolchains.ruby"},
		{"tool section missing", "toolchains:\n  ruby: [rvm]\n", jerrors.KindToolchainMissingKey, "rvm"},
		{"default_ival missing", "toolchains:\n  ruby: [rvm]\nrvm:\n  \"2.7\": x\n", jerrors.KindToolchainMissingKey, "rvm.default_ival"},
		{"bad matrix", "toolchains:\n  ruby: [rvm]\nrvm:\n  default_ival: a\n  matrix: sideways\n  a: x\n", jerrors.KindToolchainBadValueInKey, "rvm.matrix: sideways"},
		{"default_ival not a key", "toolchains:\n  ruby: [rvm]\nrvm:\n  default_ival: a\n  b: x\n", jerrors.KindToolchainMissingKey, "rvm.a"},
		{"value not a script", "toolchains:\n  ruby: [rvm]\nrvm:\n  default_ival: a\n  a: {nested: 1}\n", jerrors.KindToolchainBadValueInKey, "rvm.a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, jerrors.ErrToolchainValidation)

			je, ok := jerrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, je.Kind())
			assert.Equal(t, tt.fragment, je.Fragment())
			assert.Contains(t, je.Error(), "See documentation:")
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte("toolchains: [\n"))
	require.ErrorIs(t, err, jerrors.ErrToolchainValidation)
	assert.Equal(t, jerrors.KindNone, jerrors.KindOf(err))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolchains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rubyToolchains), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.True(t, f.Supports("java"))
}
